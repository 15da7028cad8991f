package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pluur/backend/internal/models"
	"github.com/pluur/backend/internal/services"
	"github.com/pluur/backend/pkg/validation"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CreateReport files a moderation report against an album
// POST /api/v1/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req struct {
		AlbumID string `json:"albumId" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Desc    string `json:"desc" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumId, email and desc are required"})
		return
	}
	if !validation.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), req.AlbumID, req.Email, validation.SanitizeString(req.Desc))
	if err != nil {
		log.Printf("ERROR: create report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// ListReports lists the reports filed against one album
// GET /api/v1/reports?albumId=...
func (h *ReportHandler) ListReports(c *gin.Context) {
	albumID := c.Query("albumId")
	if albumID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "albumId is required"})
		return
	}

	reports, err := h.reportService.GetReportsByAlbum(c.Request.Context(), albumID)
	if err != nil {
		log.Printf("ERROR: list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// UpdateReportStatus advances a report through the moderation workflow
// PUT /api/v1/reports/:id/status
func (h *ReportHandler) UpdateReportStatus(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case models.ReportStatusOpen, models.ReportStatusReviewing, models.ReportStatusResolved:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	report, err := h.reportService.UpdateReportStatus(c.Request.Context(), reportID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
