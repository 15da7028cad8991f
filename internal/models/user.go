package models

import (
	"time"

	"github.com/lib/pq"
)

// UserEntry is the per-user bookmark record, keyed by the identity
// provider's user ID. It is independent of the authentication identity
// itself; it only tracks which lobbies the user joined.
type UserEntry struct {
	ID           string         `gorm:"primaryKey;size:128" json:"id"`
	JoinedAlbums pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"joinedAlbums"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasJoined reports whether the album is in the user's joined list.
func (u *UserEntry) HasJoined(albumID string) bool {
	for _, id := range u.JoinedAlbums {
		if id == albumID {
			return true
		}
	}
	return false
}
