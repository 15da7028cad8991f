package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/models"
)

type EmailService struct {
	cfg       *config.Config
	templates map[string]*template.Template
}

// Report notification templates. Kept inline; the copy is short and the
// binary ships without an assets directory.
var emailTemplates = map[string]string{
	"report_received.html": `<html><body>
<p>Hi,</p>
<p>We received your report for lobby <b>{{.AlbumID}}</b> and will review it shortly.</p>
<p>Reference: {{.ReportID}}</p>
<p>The plurr team</p>
</body></html>`,
	"report_status.html": `<html><body>
<p>Hi,</p>
<p>Your report for lobby <b>{{.AlbumID}}</b> is now <b>{{.Status}}</b>.</p>
<p>Reference: {{.ReportID}}</p>
<p>The plurr team</p>
</body></html>`,
}

func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
	}
	for name, body := range emailTemplates {
		service.templates[name] = template.Must(template.New(name).Parse(body))
	}
	return service
}

// SendReportReceived mails the reporter a receipt for a new report.
func (s *EmailService) SendReportReceived(report *models.Report) error {
	data := map[string]interface{}{
		"AlbumID":  report.AlbumID,
		"ReportID": report.ID.String(),
	}
	return s.sendEmail(report.Email, "We received your report", "report_received.html", data)
}

// SendReportStatusUpdate notifies the reporter that their report moved to
// a new status.
func (s *EmailService) SendReportStatusUpdate(report *models.Report) error {
	data := map[string]interface{}{
		"AlbumID":  report.AlbumID,
		"ReportID": report.ID.String(),
		"Status":   report.Status,
	}
	return s.sendEmail(report.Email, "Update on your report", "report_status.html", data)
}

// sendEmail renders the named template and sends it as an HTML email.
func (s *EmailService) sendEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	from := fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)

	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += body.String()

	return s.sendSMTP(to, []byte(message))
}

// sendSMTP sends an email via SMTP, using implicit TLS on port 465 and
// STARTTLS otherwise.
func (s *EmailService) sendSMTP(to string, message []byte) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if s.cfg.SMTPPort == 465 {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.SMTPHost,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err := client.Mail(s.cfg.SMTPFrom); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err = w.Write(message); err != nil {
			return err
		}
		if err = w.Close(); err != nil {
			return err
		}

		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, message)
}
