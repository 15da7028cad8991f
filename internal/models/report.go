package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportStatusOpen      = "open"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
)

// Report is an append-only moderation ticket filed against an album.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AlbumID   string    `gorm:"size:12;not null;index" json:"albumId"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Desc      string    `gorm:"size:2000;not null" json:"desc"`
	Status    string    `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedAt time.Time `json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReportStatusOpen
	}
	if r.CreatedOn.IsZero() {
		r.CreatedOn = time.Now().UTC()
	}
	return nil
}

// ValidStatusTransition gates the moderation workflow: open -> reviewing
// -> resolved, with open -> resolved allowed as a shortcut.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case ReportStatusOpen:
		return to == ReportStatusReviewing || to == ReportStatusResolved
	case ReportStatusReviewing:
		return to == ReportStatusResolved
	default:
		return false
	}
}
