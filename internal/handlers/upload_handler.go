package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/middleware"
	"github.com/pluur/backend/internal/services"
)

// UploadHandler serves the original per-file upload endpoints the mobile
// clients still use. Batch clients go through the album routes instead.
type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

type uploadInfo struct {
	IsFullQuality bool   `json:"isFullQuality"`
	AlbumID       string `json:"albumId"`
}

// Upload stores one image during album creation
// POST /api/upload
// Multipart form: image (required), info (JSON: {isFullQuality, albumId})
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)

	data, _, ok := readSingleImage(c)
	if !ok {
		return
	}

	var info uploadInfo
	if raw := c.PostForm("info"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid info JSON"})
			return
		}
	}
	if info.AlbumID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumId is required"})
		return
	}

	maxDim, quality := h.uploadService.QualityFor(true, info.IsFullQuality)
	image, err := h.uploadService.UploadSingle(c.Request.Context(), info.AlbumID, userID, data, maxDim, quality)
	if err != nil {
		respondUploadErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         image.ID,
		"imageUrl":   image.ImageURL,
		"uploaderId": image.UploaderID,
	})
}

// UploadToAlbum adds one image to an existing album. Auth is optional;
// the album's own edit rules decide who may add.
// POST /api/upload-to-album
// Multipart form: image (required), albumId (required)
func (h *UploadHandler) UploadToAlbum(c *gin.Context) {
	userID := middleware.UserID(c)

	data, name, ok := readSingleImage(c)
	if !ok {
		return
	}

	albumID := c.PostForm("albumId")
	if albumID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumId is required"})
		return
	}

	files := []services.UploadFile{{Name: name, Data: data}}
	results, err := h.uploadService.AddImagesToAlbum(c.Request.Context(), albumID, userID, files, nil)
	if err != nil {
		// Surface the per-file failure for a single-file batch.
		if errors.Is(err, services.ErrAllUploadsFailed) && len(results) == 1 && results[0].Err != nil {
			err = results[0].Err
		}
		respondUploadErr(c, err)
		return
	}

	image := results[0].Image
	c.JSON(http.StatusOK, gin.H{
		"id":             image.ID,
		"imageUrl":       image.ImageURL,
		"uploaderId":     image.UploaderID,
		"uploadedOn":     image.UploadedOn,
		"reactionString": image.ReactionString,
		"reactions":      image.Reactions,
	})
}

func readSingleImage(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func respondUploadErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlbumNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not allowed"})
	case errors.Is(err, services.ErrUploadWindowClosed),
		errors.Is(err, services.ErrTooManyImages),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrNotAnImage),
		errors.Is(err, services.ErrNoFiles),
		errors.Is(err, services.ErrAllUploadsFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
	}
}
