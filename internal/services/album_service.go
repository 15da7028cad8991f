package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/models"
	"github.com/pluur/backend/internal/retention"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlbumService owns album reads and mutations. Expired albums are treated
// as not found everywhere; the sweeper eventually hard-deletes them.
type AlbumService struct {
	db    *gorm.DB
	cfg   *config.Config
	store ImageStore
	cache *StorageService
}

func NewAlbumService(db *gorm.DB, cfg *config.Config, store ImageStore, cache *StorageService) *AlbumService {
	return &AlbumService{db: db, cfg: cfg, store: store, cache: cache}
}

// AlbumView is an album plus its countdown state at read time.
type AlbumView struct {
	Album          *models.Album
	HoursRemaining *int
	DaysRemaining  *int
	Locked         bool
}

// GetAlbum returns the album or ErrAlbumNotFound, including when the
// album exists but is past its lifetime.
func (s *AlbumService) GetAlbum(ctx context.Context, albumID string) (*AlbumView, error) {
	var album models.Album
	if err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if retention.Expired(now, album.FirstUploadOn) {
		return nil, ErrAlbumNotFound
	}

	view := &AlbumView{Album: &album}
	if album.FirstUploadOn != nil {
		hours := retention.HoursRemaining(now, *album.FirstUploadOn)
		days := retention.DaysRemaining(now, *album.FirstUploadOn)
		view.HoursRemaining = &hours
		view.DaysRemaining = &days
		view.Locked = hours < 0
	}
	return view, nil
}

// AlbumSummary is the listing shape: id, name, owner, anchor, thumbnail.
type AlbumSummary struct {
	ID            string     `json:"id"`
	AlbumName     string     `json:"albumName"`
	OwnerID       string     `json:"ownerId"`
	FirstUploadOn *time.Time `json:"firstUploadOn"`
	Thumbnail     string     `json:"thumbnailImage"`
}

// GetUserAlbums lists the albums a user owns, newest first, with expired
// ones filtered out.
func (s *AlbumService) GetUserAlbums(ctx context.Context, userID string) ([]AlbumSummary, error) {
	var albums []models.Album
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_on DESC").
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return summarize(albums), nil
}

// GetAlbumsByID resolves a joined-albums bookmark list, dropping expired
// and deleted entries.
func (s *AlbumService) GetAlbumsByID(ctx context.Context, albumIDs []string) ([]AlbumSummary, error) {
	if len(albumIDs) == 0 {
		return []AlbumSummary{}, nil
	}
	var albums []models.Album
	if err := s.db.WithContext(ctx).
		Where("id IN ?", albumIDs).
		Order("created_on DESC").
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return summarize(albums), nil
}

func summarize(albums []models.Album) []AlbumSummary {
	now := time.Now().UTC()
	out := []AlbumSummary{}
	for i := range albums {
		a := &albums[i]
		if retention.Expired(now, a.FirstUploadOn) {
			continue
		}
		out = append(out, AlbumSummary{
			ID:            a.ID,
			AlbumName:     a.AlbumName,
			OwnerID:       a.OwnerID,
			FirstUploadOn: a.FirstUploadOn,
			Thumbnail:     a.Thumbnail(),
		})
	}
	return out
}

// UpdateAlbumFields renames the album and/or flips viewersCanEdit. Owner
// only.
func (s *AlbumService) UpdateAlbumFields(ctx context.Context, albumID, userID, albumName string, viewersCanEdit bool) error {
	view, err := s.GetAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if view.Album.OwnerID != userID {
		return ErrUnauthorized
	}
	return s.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ?", albumID).
		Updates(map[string]interface{}{
			"album_name":       albumName,
			"viewers_can_edit": viewersCanEdit,
		}).Error
}

// UpdateAlbumImages replaces the image list (reorders/removals decided by
// the owner) and deletes the blobs of removed images. Blob deletion
// failures are logged and skipped; the sweeper catches leftovers.
func (s *AlbumService) UpdateAlbumImages(ctx context.Context, albumID, userID string, editedList models.ImageList, deletedImageIDs []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album models.Album
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&album, "id = ?", albumID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}
		if retention.Expired(time.Now().UTC(), album.FirstUploadOn) {
			return ErrAlbumNotFound
		}
		if album.OwnerID != userID {
			return ErrUnauthorized
		}
		return tx.Model(&album).Update("image_list", editedList).Error
	})
	if err != nil {
		return err
	}

	for _, imageID := range deletedImageIDs {
		key := ImageKey(albumID, imageID)
		if err := s.store.DeleteImage(ctx, key); err != nil {
			log.Printf("WARN: failed to delete blob %s: %v", key, err)
		}
		if s.cache != nil {
			_ = s.cache.Remove(key)
		}
	}
	return nil
}

// DeleteAlbum removes the album and every blob it owns. Owner only.
func (s *AlbumService) DeleteAlbum(ctx context.Context, albumID, userID string) error {
	var album models.Album
	if err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlbumNotFound
		}
		return err
	}
	if album.OwnerID != userID {
		return ErrUnauthorized
	}
	return s.destroyAlbum(ctx, &album)
}

// ReactToImage applies one user's reaction to the image at imageIndex
// and returns the new summary string. Missing, expired, or out-of-range
// targets mutate nothing; the read-modify-write itself runs under the
// album row lock so concurrent reactions cannot overwrite each other.
func (s *AlbumService) ReactToImage(ctx context.Context, albumID, userID string, imageIndex int, symbol string) (string, error) {
	var album models.Album
	if err := s.db.WithContext(ctx).First(&album, "id = ?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAlbumNotFound
		}
		return "", err
	}
	if retention.Expired(time.Now().UTC(), album.FirstUploadOn) {
		return "", ErrAlbumNotFound
	}
	if imageIndex < 0 || imageIndex >= len(album.ImageList) {
		return "", models.ErrImageIndexOutOfRange
	}

	var summary string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Album
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", albumID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		// Re-applied against the locked row; the list may have shrunk
		// since the pre-check.
		var err error
		summary, err = applyReactionAt(locked.ImageList, imageIndex, userID, symbol)
		if err != nil {
			return err
		}
		return tx.Model(&locked).Update("image_list", locked.ImageList).Error
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}

// applyReactionAt updates the entry at index in place and returns the new
// reaction summary. An out-of-range index mutates nothing.
func applyReactionAt(list models.ImageList, index int, userID, symbol string) (string, error) {
	if index < 0 || index >= len(list) {
		return "", models.ErrImageIndexOutOfRange
	}
	entry := &list[index]
	entry.Reactions = models.ApplyReaction(entry.Reactions, userID, symbol)
	entry.ReactionString = models.ReactionDigest(entry.Reactions)
	return models.ReactionSummary(entry.Reactions), nil
}

// CleanupExpired hard-deletes albums whose retention anchor is past the
// lifetime threshold, blobs first. Returns how many albums were removed.
func (s *AlbumService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := retention.DeleteBefore(time.Now().UTC())

	var expired []models.Album
	if err := s.db.WithContext(ctx).
		Where("first_upload_on IS NOT NULL AND first_upload_on <= ?", cutoff).
		Find(&expired).Error; err != nil {
		return 0, err
	}

	deleted := 0
	for i := range expired {
		if err := s.destroyAlbum(ctx, &expired[i]); err != nil {
			log.Printf("WARN: retention sweep failed for album %s: %v", expired[i].ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// AlbumKeyLister lists every blob key under an album's storage prefix.
// *S3Service implements it; fakes in tests need not.
type AlbumKeyLister interface {
	ListAlbumKeys(ctx context.Context, albumID string) ([]string, error)
}

func (s *AlbumService) destroyAlbum(ctx context.Context, album *models.Album) error {
	for _, imageID := range album.ImageIDs() {
		key := ImageKey(album.ID, imageID)
		if err := s.store.DeleteImage(ctx, key); err != nil {
			log.Printf("WARN: failed to delete blob %s: %v", key, err)
		}
		if s.cache != nil {
			_ = s.cache.Remove(key)
		}
	}

	// Blobs orphaned from the image list (edits, failed appends) would
	// otherwise outlive the album.
	if lister, ok := s.store.(AlbumKeyLister); ok {
		keys, err := lister.ListAlbumKeys(ctx, album.ID)
		if err != nil {
			log.Printf("WARN: failed to list blobs for album %s: %v", album.ID, err)
		}
		for _, key := range keys {
			if err := s.store.DeleteImage(ctx, key); err != nil {
				log.Printf("WARN: failed to delete blob %s: %v", key, err)
			}
			if s.cache != nil {
				_ = s.cache.Remove(key)
			}
		}
	}

	return s.db.WithContext(ctx).Delete(album).Error
}
