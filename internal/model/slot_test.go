package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medisched/scheduler-api/internal/model"
)

func TestSlotOverlaps(t *testing.T) {
	base := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		StartTime: base,
		EndTime:   base.Add(30 * time.Minute),
	}

	// identical window
	assert.True(t, slot.Overlaps(base, base.Add(30*time.Minute)))
	// partial overlap on either side
	assert.True(t, slot.Overlaps(base.Add(-15*time.Minute), base.Add(15*time.Minute)))
	assert.True(t, slot.Overlaps(base.Add(15*time.Minute), base.Add(45*time.Minute)))
	// containing window
	assert.True(t, slot.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))

	// adjacent windows do not overlap
	assert.False(t, slot.Overlaps(base.Add(-30*time.Minute), base))
	assert.False(t, slot.Overlaps(base.Add(30*time.Minute), base.Add(time.Hour)))
}
