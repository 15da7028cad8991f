package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/middleware"
	"github.com/pluur/backend/internal/services"
)

type UserHandler struct {
	albumService *services.AlbumService
	userService  *services.UserService
}

func NewUserHandler(albumService *services.AlbumService, userService *services.UserService) *UserHandler {
	return &UserHandler{albumService: albumService, userService: userService}
}

// GetMyAlbums lists the albums the caller owns, newest first
// GET /api/v1/user/albums
func (h *UserHandler) GetMyAlbums(c *gin.Context) {
	albums, err := h.albumService.GetUserAlbums(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.Printf("ERROR: list user albums: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list albums"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

// GetJoinedAlbums resolves the caller's bookmarks, dropping albums that
// expired or were deleted since they joined
// GET /api/v1/user/joined-albums
func (h *UserHandler) GetJoinedAlbums(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	ids, err := h.userService.JoinedAlbumIDs(ctx, userID)
	if err != nil {
		log.Printf("ERROR: load joined album ids: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list joined albums"})
		return
	}

	albums, err := h.albumService.GetAlbumsByID(ctx, ids)
	if err != nil {
		log.Printf("ERROR: resolve joined albums: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list joined albums"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": albums})
}
