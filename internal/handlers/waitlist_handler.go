package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/services"
	"github.com/pluur/backend/pkg/validation"
)

type WaitlistHandler struct {
	waitlistService *services.WaitlistService
}

func NewWaitlistHandler(waitlistService *services.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

// Submit records signup interest
// POST /api/v1/waitlist
func (h *WaitlistHandler) Submit(c *gin.Context) {
	var req struct {
		Email       string  `json:"email" binding:"required"`
		PhoneNumber string  `json:"phoneNumber"`
		FromAlbumID *string `json:"fromAlbumId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if !validation.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if req.PhoneNumber != "" && !validation.ValidatePhoneNumber(req.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}

	entry, err := h.waitlistService.Submit(c.Request.Context(), req.Email, req.PhoneNumber, req.FromAlbumID)
	if err != nil {
		log.Printf("ERROR: waitlist submit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join waitlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}
