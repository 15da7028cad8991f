package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/services"
)

// ImageHandler serves album image files from the local cache, falling
// back to S3 and warming the cache on a miss.
type ImageHandler struct {
	cfg            *config.Config
	albumService   *services.AlbumService
	s3Service      *services.S3Service
	storageService *services.StorageService
}

func NewImageHandler(cfg *config.Config, albumService *services.AlbumService, s3Service *services.S3Service, storageService *services.StorageService) *ImageHandler {
	return &ImageHandler{
		cfg:            cfg,
		albumService:   albumService,
		s3Service:      s3Service,
		storageService: storageService,
	}
}

// resolveImage checks that the album is live and actually contains the
// image. The album gates access: expired or deleted albums serve
// nothing, even if the blob still exists.
func (h *ImageHandler) resolveImage(c *gin.Context) (albumID, imageID string, ok bool) {
	albumID = c.Param("id")
	imageID = c.Param("imageId")

	view, err := h.albumService.GetAlbum(c.Request.Context(), albumID)
	if err != nil {
		if errors.Is(err, services.ErrAlbumNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return "", "", false
		}
		log.Printf("ERROR: resolve image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load album"})
		return "", "", false
	}

	for _, id := range view.Album.ImageIDs() {
		if id == imageID {
			return albumID, imageID, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
	return "", "", false
}

// ServeImage streams one image blob with range support
// GET /api/v1/albums/:id/images/:imageId/file
func (h *ImageHandler) ServeImage(c *gin.Context) {
	albumID, imageID, ok := h.resolveImage(c)
	if !ok {
		return
	}

	key := services.ImageKey(albumID, imageID)
	downloadName := imageID + ".jpg"

	if absPath, ok := h.storageService.LocalPath(key); ok {
		if err := h.storageService.ServeFileWithRange(c.Writer, c.Request, absPath, downloadName); err != nil {
			log.Printf("ERROR: serve cached image %s: %v", key, err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	data, err := h.s3Service.DownloadImage(c.Request.Context(), key)
	if err != nil {
		log.Printf("ERROR: fetch image %s: %v", key, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	if absPath, _, _, err := h.storageService.SaveStream(c.Request.Context(), key, bytes.NewReader(data)); err == nil {
		if err := h.storageService.ServeFileWithRange(c.Writer, c.Request, absPath, downloadName); err != nil {
			log.Printf("ERROR: serve cached image %s: %v", key, err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

// DownloadURL hands out a time-limited direct S3 link, so full-quality
// downloads skip this server entirely
// GET /api/v1/albums/:id/images/:imageId/download
func (h *ImageHandler) DownloadURL(c *gin.Context) {
	albumID, imageID, ok := h.resolveImage(c)
	if !ok {
		return
	}

	ttl := time.Duration(h.cfg.PresignedURLTTLMinutes) * time.Minute
	url, err := h.s3Service.PresignImageGet(c.Request.Context(), services.ImageKey(albumID, imageID), ttl)
	if err != nil {
		log.Printf("ERROR: presign image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create download link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       url,
		"expiresAt": time.Now().UTC().Add(ttl),
	})
}
