package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ImageStore whose per-key delays force uploads
// to finish in a chosen order.
type fakeStore struct {
	mu        sync.Mutex
	delays    []time.Duration
	nextDelay int
	keys      []string
	completed []string
}

func (f *fakeStore) UploadImage(ctx context.Context, key string, body io.Reader, ctype string) error {
	f.mu.Lock()
	var delay time.Duration
	if f.nextDelay < len(f.delays) {
		delay = f.delays[f.nextDelay]
		f.nextDelay++
	}
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	time.Sleep(delay)

	f.mu.Lock()
	f.completed = append(f.completed, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) DeleteImage(ctx context.Context, key string) error { return nil }

func (f *fakeStore) PublicURL(key string) string { return "https://media.test/" + key }

func testUploadConfig() *config.Config {
	return &config.Config{
		UploadMaxImageSize:   20 * 1024 * 1024,
		UploadMaxConcurrent:  3,
		AlbumMaxImages:       75,
		JPEGQualityCreate:    50,
		JPEGQualityAdd:       80,
		StandardMaxDimension: 1920,
		FullQualityMaxDim:    4096,
	}
}

func pngFile(t *testing.T, name string, w, h int) UploadFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return UploadFile{Name: name, Data: buf.Bytes()}
}

func TestUploadBatchPreservesInputOrder(t *testing.T) {
	// The last file finishes first and the first finishes last; the
	// assembled list must still follow input order.
	store := &fakeStore{delays: []time.Duration{60 * time.Millisecond, 30 * time.Millisecond, 0}}
	svc := &UploadService{cfg: testUploadConfig(), store: store}

	files := []UploadFile{
		pngFile(t, "a.png", 40, 40),
		pngFile(t, "b.png", 40, 40),
		pngFile(t, "c.png", 40, 40),
	}

	results := svc.uploadBatch(context.Background(), "abc123", "user-1", files, 1920, 80, nil)

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, files[i].Name, res.Name)
		require.NoError(t, res.Err)
		require.NotNil(t, res.Image)
		assert.Equal(t, "user-1", res.Image.UploaderID)
		assert.Contains(t, res.Image.ImageURL, "albums/abc123/")
	}

	list := assembleImageList(results)
	require.Len(t, list, 3)
	for i := range list {
		assert.Equal(t, results[i].Image.ID, list[i].ID)
	}

	// Sanity: completion really happened out of order.
	require.Len(t, store.completed, 3)
	assert.NotEqual(t, store.keys, store.completed)
}

func TestUploadBatchProgressConvergesTo100(t *testing.T) {
	store := &fakeStore{}
	svc := &UploadService{cfg: testUploadConfig(), store: store}

	files := []UploadFile{
		pngFile(t, "a.png", 120, 80),
		pngFile(t, "b.png", 64, 64),
	}

	var mu sync.Mutex
	var reported []int
	progress := func(pct int) {
		mu.Lock()
		reported = append(reported, pct)
		mu.Unlock()
	}

	results := svc.uploadBatch(context.Background(), "abc123", "user-1", files, 1920, 80, progress)
	for _, res := range results {
		require.NoError(t, res.Err)
	}

	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.GreaterOrEqual(t, reported[i], reported[i-1])
	}
	for _, pct := range reported {
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
}

func TestUploadBatchPartialFailure(t *testing.T) {
	store := &fakeStore{}
	svc := &UploadService{cfg: testUploadConfig(), store: store}

	files := []UploadFile{
		pngFile(t, "good.png", 40, 40),
		{Name: "junk.bin", Data: []byte("definitely not an image")},
		pngFile(t, "also-good.png", 40, 40),
	}

	var reported []int
	var mu sync.Mutex
	progress := func(pct int) {
		mu.Lock()
		reported = append(reported, pct)
		mu.Unlock()
	}

	results := svc.uploadBatch(context.Background(), "abc123", "user-1", files, 1920, 80, progress)

	require.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrNotAnImage)
	assert.Nil(t, results[1].Image)
	require.NoError(t, results[2].Err)

	list := assembleImageList(results)
	require.Len(t, list, 2)
	assert.Equal(t, results[0].Image.ID, list[0].ID)
	assert.Equal(t, results[2].Image.ID, list[1].ID)

	// Failed files still count as done so the aggregate finishes.
	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])
}

func TestUploadBatchRejectsOversizedFile(t *testing.T) {
	cfg := testUploadConfig()
	cfg.UploadMaxImageSize = 64
	svc := &UploadService{cfg: cfg, store: &fakeStore{}}

	results := svc.uploadBatch(context.Background(), "abc123", "user-1",
		[]UploadFile{pngFile(t, "big.png", 200, 200)}, 1920, 80, nil)

	assert.ErrorIs(t, results[0].Err, ErrFileTooLarge)
	assert.Empty(t, assembleImageList(results))
}

func TestCreateAlbumWithoutImages(t *testing.T) {
	db := newTestDB(t)
	svc := NewUploadService(db, testUploadConfig(), &fakeStore{}, nil)

	album, results, err := svc.CreateAlbum(context.Background(), "empty lobby", "owner", nil, false, false, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, album.ImageList)
	// No uploads yet: the retention clock has not started.
	assert.Nil(t, album.FirstUploadOn)

	view, err := NewAlbumService(db, testUploadConfig(), &fakeStore{}, nil).GetAlbum(context.Background(), album.ID)
	require.NoError(t, err)
	assert.Nil(t, view.HoursRemaining)
	assert.Nil(t, view.DaysRemaining)
	assert.False(t, view.Locked)
}

func TestAddImagesToAlbumMissing(t *testing.T) {
	svc := NewUploadService(newTestDB(t), testUploadConfig(), &fakeStore{}, nil)

	_, err := svc.AddImagesToAlbum(context.Background(), "nope42", "u1",
		[]UploadFile{pngFile(t, "a.png", 40, 40)}, nil)
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestAddImagesToAlbumWindowClosed(t *testing.T) {
	db := newTestDB(t)
	anchor := time.Now().UTC().Add(-43 * time.Hour)
	seedAlbum(t, db, &models.Album{
		ID:            "abc123",
		AlbumName:     "late",
		OwnerID:       "owner",
		CreatedOn:     anchor,
		FirstUploadOn: &anchor,
		ImageList:     models.ImageList{{ID: "img-1"}},
	})

	svc := NewUploadService(db, testUploadConfig(), &fakeStore{}, nil)
	_, err := svc.AddImagesToAlbum(context.Background(), "abc123", "owner",
		[]UploadFile{pngFile(t, "a.png", 40, 40)}, nil)
	assert.ErrorIs(t, err, ErrUploadWindowClosed)
}

func TestAddImagesToAlbumEnforcesCap(t *testing.T) {
	db := newTestDB(t)
	cfg := testUploadConfig()
	cfg.AlbumMaxImages = 2
	now := time.Now().UTC()
	seedAlbum(t, db, &models.Album{
		ID:            "abc123",
		AlbumName:     "full",
		OwnerID:       "owner",
		CreatedOn:     now,
		FirstUploadOn: &now,
		ImageList:     models.ImageList{{ID: "a"}, {ID: "b"}},
	})

	svc := NewUploadService(db, cfg, &fakeStore{}, nil)
	_, err := svc.AddImagesToAlbum(context.Background(), "abc123", "owner",
		[]UploadFile{pngFile(t, "c.png", 40, 40)}, nil)
	assert.ErrorIs(t, err, ErrTooManyImages)
}

func TestProgressTrackerClampsAndSnaps(t *testing.T) {
	var reported []int
	tracker := newProgressTracker([]int64{100, 100}, func(pct int) {
		reported = append(reported, pct)
	})

	// Overshoot on one file is clamped to that file's share.
	tracker.add(0, 250)
	assert.Equal(t, []int{50}, reported)

	// A file that sent fewer bytes than its size snaps to done.
	tracker.add(1, 10)
	tracker.complete(1)
	tracker.complete(0)
	assert.Equal(t, 100, reported[len(reported)-1])
}

func TestProgressTrackerZeroTotal(t *testing.T) {
	called := false
	tracker := newProgressTracker([]int64{}, func(int) { called = true })
	tracker.flushLocked()
	assert.False(t, called)
}

func TestRandomAlbumID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := randomAlbumID(albumIDLength)
		require.NoError(t, err)
		assert.Len(t, id, albumIDLength)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(albumIDAlphabet, r), "unexpected rune %q", r)
		}
		seen[id] = true
	}
	// 50 draws from 36^6 colliding would be astonishing.
	assert.Greater(t, len(seen), 45)
}
