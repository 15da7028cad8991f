package services

import (
	"context"
	"fmt"

	"github.com/pluur/backend/internal/models"
	"gorm.io/gorm"
)

// WaitlistService records signup interest, optionally tagged with the
// lobby the visitor arrived from.
type WaitlistService struct {
	db *gorm.DB
}

func NewWaitlistService(db *gorm.DB) *WaitlistService {
	return &WaitlistService{db: db}
}

// Submit appends a waitlist entry.
func (s *WaitlistService) Submit(ctx context.Context, email, phoneNumber string, fromAlbumID *string) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		Email:       email,
		PhoneNumber: phoneNumber,
		FromAlbumID: fromAlbumID,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return entry, nil
}
