// Package security keeps credential hashing behind a small interface so
// callers never handle bcrypt directly.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is enforced before hashing; bcrypt itself accepts
// anything up to 72 bytes.
const MinPasswordLen = 8

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// PasswordHasher hashes credentials at rest and verifies login attempts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher. A cost outside the
// range bcrypt accepts falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
