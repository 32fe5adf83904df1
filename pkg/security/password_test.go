package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/pkg/security"
)

func TestHashAndCompare(t *testing.T) {
	hasher := security.NewBcryptHasher(4)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.NoError(t, hasher.Compare(hash, "correct-horse"))
	assert.Error(t, hasher.Compare(hash, "wrong-horse"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := security.NewBcryptHasher(4)

	_, err := hasher.Hash("short")
	assert.ErrorIs(t, err, security.ErrPasswordTooShort)
}

func TestBadCostFallsBack(t *testing.T) {
	// out-of-range costs must not panic or weaken the hash
	hasher := security.NewBcryptHasher(99)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hash, "correct-horse"))
}
