package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/middleware"
	"github.com/pluur/backend/internal/models"
	"github.com/pluur/backend/internal/services"
	"github.com/pluur/backend/pkg/validation"
)

type AlbumHandler struct {
	albumService  *services.AlbumService
	uploadService *services.UploadService
	userService   *services.UserService
	qrService     *services.QRService
}

func NewAlbumHandler(albumService *services.AlbumService, uploadService *services.UploadService, userService *services.UserService, qrService *services.QRService) *AlbumHandler {
	return &AlbumHandler{
		albumService:  albumService,
		uploadService: uploadService,
		userService:   userService,
		qrService:     qrService,
	}
}

// CreateAlbum handles batch album creation
// POST /api/v1/albums
// Multipart form: images[] (optional), albumName (required), viewersCanEdit, isFullQuality
func (h *AlbumHandler) CreateAlbum(c *gin.Context) {
	userID := middleware.UserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form"})
		return
	}

	// A batch of zero images is fine: the album starts with an empty
	// list and its retention clock unset.
	fileHeaders := form.File["images[]"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["images"]
	}

	albumName := validation.SanitizeString(c.PostForm("albumName"))
	if !validation.ValidateAlbumName(albumName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumName must be 1-100 characters"})
		return
	}
	viewersCanEdit := c.PostForm("viewersCanEdit") == "true"
	isFullQuality := c.PostForm("isFullQuality") == "true"

	files, err := readUploadFiles(fileHeaders)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	album, results, err := h.uploadService.CreateAlbum(c.Request.Context(), albumName, userID, files, viewersCanEdit, isFullQuality, nil)
	if err != nil {
		status := statusForUploadErr(err)
		c.JSON(status, gin.H{"error": err.Error(), "results": resultsJSON(results)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"album":   album,
		"results": resultsJSON(results),
	})
}

// GetAlbum returns one album with its countdown state
// GET /api/v1/albums/:id
func (h *AlbumHandler) GetAlbum(c *gin.Context) {
	view, err := h.albumService.GetAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAlbumNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		log.Printf("ERROR: get album: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load album"})
		return
	}

	joined := false
	if userID := middleware.UserID(c); userID != "" {
		joined, err = h.userService.HasJoined(c.Request.Context(), userID, view.Album.ID)
		if err != nil {
			log.Printf("WARN: joined lookup: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"album":          view.Album,
		"hoursRemaining": view.HoursRemaining,
		"daysRemaining":  view.DaysRemaining,
		"locked":         view.Locked,
		"joined":         joined,
	})
}

// UpdateAlbum renames the album or flips viewersCanEdit (owner only)
// PUT /api/v1/albums/:id
func (h *AlbumHandler) UpdateAlbum(c *gin.Context) {
	var req struct {
		AlbumName      string `json:"albumName" binding:"required"`
		ViewersCanEdit bool   `json:"viewersCanEdit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumName is required"})
		return
	}
	req.AlbumName = validation.SanitizeString(req.AlbumName)
	if !validation.ValidateAlbumName(req.AlbumName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumName must be 1-100 characters"})
		return
	}

	err := h.albumService.UpdateAlbumFields(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.AlbumName, req.ViewersCanEdit)
	if err != nil {
		respondAlbumErr(c, err, "failed to update album")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "album updated"})
}

// UpdateAlbumImages replaces the image list (reorder/remove, owner only)
// PUT /api/v1/albums/:id/images
func (h *AlbumHandler) UpdateAlbumImages(c *gin.Context) {
	var req struct {
		ImageList       models.ImageList `json:"imageList"`
		DeletedImageIDs []string         `json:"deletedImageIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.albumService.UpdateAlbumImages(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.ImageList, req.DeletedImageIDs)
	if err != nil {
		respondAlbumErr(c, err, "failed to update images")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "images updated"})
}

// AddImages appends a batch of images to an existing album
// POST /api/v1/albums/:id/images
// Multipart form: images[] (required)
func (h *AlbumHandler) AddImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form"})
		return
	}

	fileHeaders := form.File["images[]"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["images"]
	}
	files, err := readUploadFiles(fileHeaders)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.uploadService.AddImagesToAlbum(c.Request.Context(), c.Param("id"), middleware.UserID(c), files, nil)
	if err != nil {
		status := statusForUploadErr(err)
		c.JSON(status, gin.H{"error": err.Error(), "results": resultsJSON(results)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"results": resultsJSON(results)})
}

// DeleteAlbum removes the album and its blobs (owner only)
// DELETE /api/v1/albums/:id
func (h *AlbumHandler) DeleteAlbum(c *gin.Context) {
	err := h.albumService.DeleteAlbum(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondAlbumErr(c, err, "failed to delete album")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "album deleted"})
}

// React applies the caller's reaction to one image
// POST /api/v1/albums/:id/reactions
func (h *AlbumHandler) React(c *gin.Context) {
	var req struct {
		ImageIndex *int   `json:"imageIndex" binding:"required"`
		Reaction   string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageIndex and reaction are required"})
		return
	}

	summary, err := h.albumService.ReactToImage(c.Request.Context(), c.Param("id"), middleware.UserID(c), *req.ImageIndex, req.Reaction)
	if err != nil {
		if errors.Is(err, models.ErrImageIndexOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image index out of range"})
			return
		}
		respondAlbumErr(c, err, "failed to apply reaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactionSummary": summary})
}

// Join bookmarks the album for the caller
// POST /api/v1/albums/:id/join
func (h *AlbumHandler) Join(c *gin.Context) {
	albumID := c.Param("id")

	// Joining a nonexistent or expired album is a 404, same as viewing it.
	if _, err := h.albumService.GetAlbum(c.Request.Context(), albumID); err != nil {
		respondAlbumErr(c, err, "failed to join album")
		return
	}

	if err := h.userService.JoinAlbum(c.Request.Context(), middleware.UserID(c), albumID); err != nil {
		log.Printf("ERROR: join album: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join album"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "album joined"})
}

// Leave drops the album from the caller's bookmarks
// DELETE /api/v1/albums/:id/join
func (h *AlbumHandler) Leave(c *gin.Context) {
	if err := h.userService.LeaveAlbum(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		log.Printf("ERROR: leave album: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave album"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "album left"})
}

// QRCode serves the album's join link as a PNG
// GET /api/v1/albums/:id/qr.png
func (h *AlbumHandler) QRCode(c *gin.Context) {
	view, err := h.albumService.GetAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAlbumErr(c, err, "failed to generate QR code")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "512"))
	png, err := h.qrService.GenerateLobbyQRPNG(view.Album.ID, size)
	if err != nil {
		log.Printf("ERROR: qr png: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// QRCodePDF serves a printable A4 sheet with the album's QR code
// GET /api/v1/albums/:id/qr.pdf
func (h *AlbumHandler) QRCodePDF(c *gin.Context) {
	view, err := h.albumService.GetAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAlbumErr(c, err, "failed to generate QR PDF")
		return
	}

	pdf, err := h.qrService.GenerateLobbyQRPDF(view.Album.ID, view.Album.AlbumName)
	if err != nil {
		log.Printf("ERROR: qr pdf: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR PDF"})
		return
	}
	c.Header("Content-Disposition", `inline; filename="lobby-`+view.Album.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// respondAlbumErr maps service errors onto the handler error contract.
func respondAlbumErr(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAlbumNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not allowed"})
	default:
		log.Printf("ERROR: %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func statusForUploadErr(err error) int {
	switch {
	case errors.Is(err, services.ErrAlbumNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUploadWindowClosed),
		errors.Is(err, services.ErrTooManyImages),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrNotAnImage),
		errors.Is(err, services.ErrNoFiles),
		errors.Is(err, services.ErrAllUploadsFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readUploadFiles buffers the multipart files for the orchestrator.
func readUploadFiles(fileHeaders []*multipart.FileHeader) ([]services.UploadFile, error) {
	files := make([]services.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("failed to open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read uploaded file")
		}
		files = append(files, services.UploadFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// resultsJSON flattens batch results for the response body.
func resultsJSON(results []services.UploadResult) []gin.H {
	out := make([]gin.H, len(results))
	for i, r := range results {
		entry := gin.H{"index": r.Index, "name": r.Name}
		if r.Err != nil {
			entry["error"] = r.Err.Error()
		} else if r.Image != nil {
			entry["image"] = r.Image
		}
		out[i] = entry
	}
	return out
}
