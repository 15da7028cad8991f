package services

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/pluur/backend/internal/models"
	"gorm.io/gorm"
)

// UserService maintains the per-user joined-lobby bookmark list.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// EnsureUserEntry creates the bookmark record on first sight of a user.
func (s *UserService) EnsureUserEntry(ctx context.Context, userID string) (*models.UserEntry, error) {
	var entry models.UserEntry
	err := s.db.WithContext(ctx).First(&entry, "id = ?", userID).Error
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry = models.UserEntry{ID: userID, JoinedAlbums: pq.StringArray{}}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// HasJoined reports whether the user bookmarked the album.
func (s *UserService) HasJoined(ctx context.Context, userID, albumID string) (bool, error) {
	var entry models.UserEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return entry.HasJoined(albumID), nil
}

// JoinAlbum adds the album to the user's joined list. Adding twice is a
// no-op.
func (s *UserService) JoinAlbum(ctx context.Context, userID, albumID string) error {
	entry, err := s.EnsureUserEntry(ctx, userID)
	if err != nil {
		return err
	}
	if entry.HasJoined(albumID) {
		return nil
	}
	return s.db.WithContext(ctx).Model(entry).
		Update("joined_albums", gorm.Expr("array_append(joined_albums, ?)", albumID)).Error
}

// LeaveAlbum removes the album from the user's joined list.
func (s *UserService) LeaveAlbum(ctx context.Context, userID, albumID string) error {
	return s.db.WithContext(ctx).Model(&models.UserEntry{}).
		Where("id = ?", userID).
		Update("joined_albums", gorm.Expr("array_remove(joined_albums, ?)", albumID)).Error
}

// JoinedAlbumIDs returns the user's bookmark list; a missing record means
// an empty list.
func (s *UserService) JoinedAlbumIDs(ctx context.Context, userID string) ([]string, error) {
	var entry models.UserEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return entry.JoinedAlbums, nil
}
