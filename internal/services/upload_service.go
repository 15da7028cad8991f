package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/imaging"
	"github.com/pluur/backend/internal/models"
	"github.com/pluur/backend/internal/retention"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageStore is the blob backend the orchestrator uploads into.
// *S3Service is the production implementation.
type ImageStore interface {
	UploadImage(ctx context.Context, key string, body io.Reader, ctype string) error
	DeleteImage(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadFile is one client-selected file in a batch.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadResult reports the outcome for one file of a batch, in input
// order. Failed files carry Err and a nil Image.
type UploadResult struct {
	Index int                `json:"index"`
	Name  string             `json:"name"`
	Image *models.ImageEntry `json:"image,omitempty"`
	Err   error              `json:"-"`
}

// UploadService fans a batch of images out to the blob store with bounded
// concurrency, re-encoding each file first and aggregating byte progress
// into a single percentage. The assembled image list preserves input
// order regardless of completion order, and a batch commits whichever
// files succeeded.
type UploadService struct {
	db    *gorm.DB
	cfg   *config.Config
	store ImageStore
	cache *StorageService
}

func NewUploadService(db *gorm.DB, cfg *config.Config, store ImageStore, cache *StorageService) *UploadService {
	return &UploadService{db: db, cfg: cfg, store: store, cache: cache}
}

// CreateAlbum allocates a fresh join code, uploads the batch at the
// create-time compression profile, and persists the album with whichever
// images landed. The retention clock starts only if at least one image
// made it.
func (s *UploadService) CreateAlbum(ctx context.Context, name, ownerID string, files []UploadFile, viewersCanEdit, isFullQuality bool, progress ProgressFunc) (*models.Album, []UploadResult, error) {
	if len(files) > s.cfg.AlbumMaxImages {
		return nil, nil, ErrTooManyImages
	}

	albumID, err := s.generateAlbumID()
	if err != nil {
		return nil, nil, err
	}

	maxDim := uint(s.cfg.StandardMaxDimension)
	if isFullQuality {
		maxDim = uint(s.cfg.FullQualityMaxDim)
	}

	results := s.uploadBatch(ctx, albumID, ownerID, files, maxDim, s.cfg.JPEGQualityCreate, progress)

	imageList := assembleImageList(results)
	if len(files) > 0 && len(imageList) == 0 {
		return nil, results, ErrAllUploadsFailed
	}

	now := time.Now().UTC()
	album := &models.Album{
		ID:             albumID,
		AlbumName:      name,
		OwnerID:        ownerID,
		ViewersCanEdit: viewersCanEdit,
		IsFullQuality:  isFullQuality,
		CreatedOn:      now,
		ImageList:      imageList,
	}
	if len(imageList) > 0 {
		album.FirstUploadOn = &now
	}

	if err := s.db.WithContext(ctx).Create(album).Error; err != nil {
		// Roll the blobs back; the album record never existed.
		for _, img := range imageList {
			_ = s.store.DeleteImage(ctx, ImageKey(albumID, img.ID))
		}
		return nil, results, fmt.Errorf("failed to create album: %w", err)
	}

	return album, results, nil
}

// AddImagesToAlbum authorizes the caller against the album, uploads the
// batch at the add-time compression profile, and appends the successes to
// the image list under the album row lock. The first successful upload
// starts the retention clock.
func (s *UploadService) AddImagesToAlbum(ctx context.Context, albumID, userID string, files []UploadFile, progress ProgressFunc) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

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
	if !album.CanEdit(userID) {
		return nil, ErrUnauthorized
	}
	if retention.UploadWindowClosed(now, album.FirstUploadOn) {
		return nil, ErrUploadWindowClosed
	}
	if len(album.ImageList)+len(files) > s.cfg.AlbumMaxImages {
		return nil, ErrTooManyImages
	}

	maxDim := uint(s.cfg.StandardMaxDimension)
	if album.IsFullQuality {
		maxDim = uint(s.cfg.FullQualityMaxDim)
	}

	results := s.uploadBatch(ctx, albumID, userID, files, maxDim, s.cfg.JPEGQualityAdd, progress)
	added := assembleImageList(results)
	if len(added) == 0 {
		return results, ErrAllUploadsFailed
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Album
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", albumID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}

		// Re-check the cap on the locked row; a concurrent batch may
		// have filled the album since the pre-lock read.
		if len(locked.ImageList)+len(added) > s.cfg.AlbumMaxImages {
			return ErrTooManyImages
		}

		updates := map[string]interface{}{
			"image_list": append(locked.ImageList, added...),
		}
		if locked.FirstUploadOn == nil {
			uploadTime := time.Now().UTC()
			updates["first_upload_on"] = uploadTime
		}
		return tx.Model(&locked).Updates(updates).Error
	})
	if err != nil {
		// The blobs exist but were never recorded; remove them.
		for _, img := range added {
			_ = s.store.DeleteImage(ctx, ImageKey(albumID, img.ID))
		}
		return results, fmt.Errorf("failed to append images: %w", err)
	}

	return results, nil
}

// UploadSingle re-encodes and stores one image, returning the entry to
// embed. Used by the per-file upload endpoints.
func (s *UploadService) UploadSingle(ctx context.Context, albumID, uploaderID string, data []byte, maxDim uint, quality int) (*models.ImageEntry, error) {
	if int64(len(data)) > s.cfg.UploadMaxImageSize {
		return nil, ErrFileTooLarge
	}
	if !imaging.IsImage(data) {
		return nil, ErrNotAnImage
	}

	jpegData, err := imaging.Recode(data, maxDim, quality)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	key := ImageKey(albumID, imageID)
	if err := s.store.UploadImage(ctx, key, bytes.NewReader(jpegData), "image/jpeg"); err != nil {
		return nil, fmt.Errorf("failed to upload to storage: %w", err)
	}

	if s.cache != nil {
		if _, _, _, err := s.cache.SaveStream(ctx, key, bytes.NewReader(jpegData)); err != nil {
			// S3 is the source of truth; a cold cache only costs latency.
			log.Printf("WARN: failed to cache image locally: %v", err)
		}
	}

	return &models.ImageEntry{
		ID:             imageID,
		ImageURL:       s.store.PublicURL(key),
		UploaderID:     uploaderID,
		UploadedOn:     time.Now().UTC().UnixMilli(),
		Reactions:      []models.Reaction{},
		ReactionString: "",
	}, nil
}

// QualityFor returns the compression profile for a per-file upload on the
// given route.
func (s *UploadService) QualityFor(create bool, isFullQuality bool) (uint, int) {
	maxDim := uint(s.cfg.StandardMaxDimension)
	if isFullQuality {
		maxDim = uint(s.cfg.FullQualityMaxDim)
	}
	if create {
		return maxDim, s.cfg.JPEGQualityCreate
	}
	return maxDim, s.cfg.JPEGQualityAdd
}

func (s *UploadService) uploadBatch(ctx context.Context, albumID, uploaderID string, files []UploadFile, maxDim uint, quality int, progress ProgressFunc) []UploadResult {
	results := make([]UploadResult, len(files))

	sizes := make([]int64, len(files))
	for i, f := range files {
		sizes[i] = int64(len(f.Data))
	}
	tracker := newProgressTracker(sizes, progress)

	sem := make(chan struct{}, s.cfg.UploadMaxConcurrent)
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(idx int, file UploadFile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			// Snap the file to done either way so the aggregate converges.
			defer tracker.complete(idx)

			results[idx] = s.uploadOne(ctx, albumID, uploaderID, idx, file, maxDim, quality, tracker)
		}(i, f)
	}
	wg.Wait()

	return results
}

func (s *UploadService) uploadOne(ctx context.Context, albumID, uploaderID string, idx int, file UploadFile, maxDim uint, quality int, tracker *progressTracker) UploadResult {
	res := UploadResult{Index: idx, Name: file.Name}

	if int64(len(file.Data)) > s.cfg.UploadMaxImageSize {
		res.Err = ErrFileTooLarge
		return res
	}
	if !imaging.IsImage(file.Data) {
		res.Err = ErrNotAnImage
		return res
	}

	jpegData, err := imaging.Recode(file.Data, maxDim, quality)
	if err != nil {
		res.Err = err
		return res
	}

	imageID := uuid.New().String()
	key := ImageKey(albumID, imageID)
	body := &progressReader{r: bytes.NewReader(jpegData), idx: idx, tracker: tracker}
	if err := s.store.UploadImage(ctx, key, body, "image/jpeg"); err != nil {
		res.Err = fmt.Errorf("failed to upload to storage: %w", err)
		return res
	}

	if s.cache != nil {
		if _, _, _, err := s.cache.SaveStream(ctx, key, bytes.NewReader(jpegData)); err != nil {
			log.Printf("WARN: failed to cache image locally: %v", err)
		}
	}

	res.Image = &models.ImageEntry{
		ID:             imageID,
		ImageURL:       s.store.PublicURL(key),
		UploaderID:     uploaderID,
		UploadedOn:     time.Now().UTC().UnixMilli(),
		Reactions:      []models.Reaction{},
		ReactionString: "",
	}
	return res
}

// assembleImageList collects the successful entries in input order,
// regardless of the order uploads finished in.
func assembleImageList(results []UploadResult) models.ImageList {
	list := models.ImageList{}
	for _, r := range results {
		if r.Image != nil {
			list = append(list, *r.Image)
		}
	}
	return list
}

const albumIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const albumIDLength = 6

// generateAlbumID allocates a short join code, retrying until it does not
// collide with an existing album.
func (s *UploadService) generateAlbumID() (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		id, err := randomAlbumID(albumIDLength)
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.Model(&models.Album{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique album id")
}

func randomAlbumID(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = albumIDAlphabet[int(b)%len(albumIDAlphabet)]
	}
	return string(buf), nil
}
