// Package retention computes an album's remaining upload window and
// lifetime from its retention anchor. The anchor is the first-upload
// time; an album that never received an upload has no anchor and never
// expires.
package retention

import "time"

const (
	// UploadWindowHours is how long uploads stay open after the first
	// upload. Past it the album is read-only but still viewable.
	UploadWindowHours = 42

	// LifetimeDays is the hard deletion threshold. Past it the album is
	// hidden from listings, treated as not found, and swept.
	LifetimeDays = 7
)

// HoursRemaining returns how many whole hours of the upload window are
// left at now. Zero still permits uploads; negative means the window has
// closed.
func HoursRemaining(now, anchor time.Time) int {
	elapsed := now.Sub(anchor) / time.Hour
	return UploadWindowHours - int(elapsed)
}

// DaysRemaining returns how many whole days of the album lifetime are
// left at now. Negative means the album is past its deletion threshold.
func DaysRemaining(now, anchor time.Time) int {
	elapsed := now.Sub(anchor) / (24 * time.Hour)
	return LifetimeDays - int(elapsed)
}

// Expired reports whether the album is past its lifetime. A nil anchor
// means the retention clock never started, so the album cannot expire.
func Expired(now time.Time, anchor *time.Time) bool {
	if anchor == nil {
		return false
	}
	return DaysRemaining(now, *anchor) < 0
}

// UploadWindowClosed reports whether new uploads are rejected. With no
// anchor the window has not started and uploads are open.
func UploadWindowClosed(now time.Time, anchor *time.Time) bool {
	if anchor == nil {
		return false
	}
	return HoursRemaining(now, *anchor) < 0
}

// DeleteBefore returns the cutoff: albums anchored before it are past
// their lifetime and eligible for the sweeper.
func DeleteBefore(now time.Time) time.Time {
	return now.Add(-time.Duration(LifetimeDays+1) * 24 * time.Hour)
}
