package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var anchor = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestHoursRemaining(t *testing.T) {
	assert.Equal(t, 42, HoursRemaining(anchor, anchor))
	assert.Equal(t, 37, HoursRemaining(anchor.Add(5*time.Hour), anchor))
	assert.Equal(t, 42, HoursRemaining(anchor.Add(59*time.Minute), anchor))
	assert.Equal(t, 0, HoursRemaining(anchor.Add(42*time.Hour), anchor))
	assert.Equal(t, -1, HoursRemaining(anchor.Add(43*time.Hour), anchor))
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, 7, DaysRemaining(anchor, anchor))
	assert.Equal(t, 6, DaysRemaining(anchor.Add(24*time.Hour), anchor))
	assert.Equal(t, 0, DaysRemaining(anchor.Add(7*24*time.Hour), anchor))
	assert.Equal(t, -1, DaysRemaining(anchor.Add(8*24*time.Hour), anchor))
}

// The countdown must never increase as time advances, and must drop by
// exactly one per elapsed hour boundary.
func TestHoursRemainingMonotonic(t *testing.T) {
	prev := HoursRemaining(anchor, anchor)
	for m := 1; m <= 60*50; m += 7 {
		now := anchor.Add(time.Duration(m) * time.Minute)
		h := HoursRemaining(now, anchor)
		assert.LessOrEqual(t, h, prev, "minute %d", m)
		assert.Equal(t, 42-m/60, h, "minute %d", m)
		prev = h
	}
}

func TestExpiredNilAnchor(t *testing.T) {
	// No upload yet: the clock has not started.
	assert.False(t, Expired(anchor.Add(100*24*time.Hour), nil))
	assert.False(t, UploadWindowClosed(anchor.Add(100*time.Hour), nil))
}

func TestExpired(t *testing.T) {
	a := anchor
	assert.False(t, Expired(anchor.Add(7*24*time.Hour), &a))
	assert.True(t, Expired(anchor.Add(8*24*time.Hour), &a))
}

func TestUploadWindowClosed(t *testing.T) {
	a := anchor
	assert.False(t, UploadWindowClosed(anchor.Add(42*time.Hour), &a))
	assert.True(t, UploadWindowClosed(anchor.Add(43*time.Hour), &a))
}

func TestDeleteBeforeMatchesExpired(t *testing.T) {
	now := anchor.Add(30 * 24 * time.Hour)
	cutoff := DeleteBefore(now)

	justExpired := cutoff
	stillAlive := cutoff.Add(time.Minute)
	assert.True(t, Expired(now, &justExpired))
	assert.False(t, Expired(now, &stillAlive))
}
