package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry is an append-only signup record, optionally tagged with
// the lobby the visitor came from.
type WaitlistEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	PhoneNumber string    `gorm:"size:32" json:"phoneNumber"`
	FromAlbumID *string   `gorm:"size:12" json:"fromAlbumId,omitempty"`
	CreatedOn   time.Time `json:"createdOn"`
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedOn.IsZero() {
		w.CreatedOn = time.Now().UTC()
	}
	return nil
}
