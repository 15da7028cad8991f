package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/pluur/backend/internal/config"
	qrcode "github.com/skip2/go-qrcode"
)

type QRService struct {
	cfg *config.Config
}

func NewQRService(cfg *config.Config) *QRService { return &QRService{cfg: cfg} }

// JoinURL is the deep link encoded into a lobby's QR code. The scanned
// flag lets the frontend distinguish QR arrivals from typed codes.
func (s *QRService) JoinURL(albumID string) string {
	return fmt.Sprintf("%s/lobby/%s?scanned=true", s.cfg.FrontendURL, albumID)
}

// GenerateLobbyQRPNG renders the lobby's join link as a QR code PNG.
func (s *QRService) GenerateLobbyQRPNG(albumID string, size int) ([]byte, error) {
	if size <= 0 {
		size = 512
	}
	return qrcode.Encode(s.JoinURL(albumID), qrcode.Medium, size)
}

// GenerateLobbyQRPDF generates a printable A4 PDF with the lobby's QR
// code and join code, for hosts who want a sign at the venue.
func (s *QRService) GenerateLobbyQRPDF(albumID, albumName string) ([]byte, error) {
	joinURL := s.JoinURL(albumID)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, albumName)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, fmt.Sprintf("Code: %s\nURL: %s", albumID, joinURL), "", "L", false)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))

	// Center the QR on the A4 page (210mm wide, QR 100mm).
	x := (210.0 - 100.0) / 2.0
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
