package services

import (
	"context"
	"testing"
	"time"

	"github.com/pluur/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database. Row-locking paths still
// need Postgres; tests here stay on the guard paths that return before
// any lock is taken.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Album{}))
	return db
}

func seedAlbum(t *testing.T, db *gorm.DB, album *models.Album) {
	t.Helper()
	require.NoError(t, db.Create(album).Error)
}

func TestGetAlbumMissing(t *testing.T) {
	svc := NewAlbumService(newTestDB(t), testUploadConfig(), &fakeStore{}, nil)

	_, err := svc.GetAlbum(context.Background(), "nope42")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestGetAlbumExpiredIsNotFound(t *testing.T) {
	db := newTestDB(t)
	anchor := time.Now().UTC().Add(-8 * 24 * time.Hour)
	seedAlbum(t, db, &models.Album{
		ID:            "abc123",
		AlbumName:     "old party",
		OwnerID:       "owner",
		CreatedOn:     anchor,
		FirstUploadOn: &anchor,
		ImageList:     models.ImageList{{ID: "img-1"}},
	})

	svc := NewAlbumService(db, testUploadConfig(), &fakeStore{}, nil)
	_, err := svc.GetAlbum(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestReactToImageMissingAlbum(t *testing.T) {
	svc := NewAlbumService(newTestDB(t), testUploadConfig(), &fakeStore{}, nil)

	_, err := svc.ReactToImage(context.Background(), "nope42", "u1", 0, "😂")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestReactToImageIndexOutOfRange(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedAlbum(t, db, &models.Album{
		ID:            "abc123",
		AlbumName:     "party",
		OwnerID:       "owner",
		CreatedOn:     now,
		FirstUploadOn: &now,
		ImageList:     models.ImageList{{ID: "img-1", Reactions: []models.Reaction{}}},
	})

	svc := NewAlbumService(db, testUploadConfig(), &fakeStore{}, nil)
	for _, idx := range []int{-1, 1, 5} {
		_, err := svc.ReactToImage(context.Background(), "abc123", "u1", idx, "😂")
		assert.ErrorIs(t, err, models.ErrImageIndexOutOfRange, "index %d", idx)
	}

	// Nothing was written.
	var reloaded models.Album
	require.NoError(t, db.First(&reloaded, "id = ?", "abc123").Error)
	require.Len(t, reloaded.ImageList, 1)
	assert.Empty(t, reloaded.ImageList[0].Reactions)
	assert.Equal(t, "", reloaded.ImageList[0].ReactionString)
}

func TestApplyReactionAt(t *testing.T) {
	list := models.ImageList{{ID: "img-1", Reactions: []models.Reaction{}}}

	summary, err := applyReactionAt(list, 0, "u1", "😂")
	require.NoError(t, err)
	assert.Equal(t, "😂 1", summary)
	assert.Equal(t, "😂", list[0].ReactionString)
	require.Len(t, list[0].Reactions, 1)

	_, err = applyReactionAt(list, 1, "u1", "😂")
	assert.ErrorIs(t, err, models.ErrImageIndexOutOfRange)
	_, err = applyReactionAt(list, -1, "u1", "😂")
	assert.ErrorIs(t, err, models.ErrImageIndexOutOfRange)
}
