package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pluur/backend/internal/models"
	"gorm.io/gorm"
)

// ReportService files and advances moderation tickets. Reports are
// append-only; only their status moves.
type ReportService struct {
	db    *gorm.DB
	email *EmailService
}

func NewReportService(db *gorm.DB, email *EmailService) *ReportService {
	return &ReportService{db: db, email: email}
}

// CreateReport files a new moderation ticket and mails the reporter a
// receipt. Email failure never fails the report.
func (s *ReportService) CreateReport(ctx context.Context, albumID, email, desc string) (*models.Report, error) {
	report := &models.Report{
		AlbumID: albumID,
		Email:   email,
		Desc:    desc,
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	if s.email != nil {
		if err := s.email.SendReportReceived(report); err != nil {
			log.Printf("WARN: failed to send report receipt to %s: %v", report.Email, err)
		}
	}
	return report, nil
}

// UpdateReportStatus advances a ticket through the moderation workflow
// and notifies the reporter.
func (s *ReportService) UpdateReportStatus(ctx context.Context, reportID uuid.UUID, status string) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if !models.ValidStatusTransition(report.Status, status) {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", report.Status, status)
	}

	if err := s.db.WithContext(ctx).Model(&report).Update("status", status).Error; err != nil {
		return nil, err
	}
	report.Status = status

	if s.email != nil {
		if err := s.email.SendReportStatusUpdate(&report); err != nil {
			log.Printf("WARN: failed to send report update to %s: %v", report.Email, err)
		}
	}
	return &report, nil
}

// GetReportsByAlbum lists tickets filed against one album, newest first.
func (s *ReportService) GetReportsByAlbum(ctx context.Context, albumID string) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_on DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
