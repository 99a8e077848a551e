package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"staffhub-report/internal/config"
	"staffhub-report/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles email delivery via SendGrid
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// SendReportEmail sends one generated report to a recipient with the
// artifact attached
func (s *EmailService) SendReportEmail(toEmail string, report *models.ScheduledReport, artifact *models.Artifact) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("Scheduled Report: %s", report.Name)

	htmlContent := buildReportEmailHTML(report, artifact)
	plainTextContent := buildReportEmailText(report, artifact)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	if len(artifact.Data) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(artifact.Data))
		attachment.SetType(artifact.ContentType)
		attachment.SetFilename(artifact.FileName)
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// buildReportEmailHTML builds the HTML body for a report delivery email
func buildReportEmailHTML(report *models.ScheduledReport, artifact *models.Artifact) string {
	var html bytes.Buffer

	html.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .summary-box { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #0066cc; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">` + report.Name + `</h1>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p>Your scheduled report is ready.</p>
        <div class="summary-box">
            <p style="margin: 0;"><strong>Template:</strong> ` + artifact.TemplateName + `</p>
            <p style="margin: 0;"><strong>Format:</strong> ` + string(artifact.Format) + `</p>
            <p style="margin: 0;"><strong>Records:</strong> ` + fmt.Sprintf("%d", artifact.RecordCount) + `</p>
            <p style="margin: 0;"><strong>Generated:</strong> ` + artifact.GeneratedAt.Format("Jan 2, 2006 15:04 MST") + `</p>
        </div>
        <p>The report is attached to this email.</p>
        <p>Best regards,<br>StaffHub Reports</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>`)

	return html.String()
}

// buildReportEmailText builds the plain text body for a report delivery email
func buildReportEmailText(report *models.ScheduledReport, artifact *models.Artifact) string {
	return fmt.Sprintf(`%s

Hello,

Your scheduled report is ready.

Template: %s
Format: %s
Records: %d
Generated: %s

The report is attached to this email.

Best regards,
StaffHub Reports

---
This is an automated email. Please do not reply.
`,
		report.Name,
		artifact.TemplateName,
		artifact.Format,
		artifact.RecordCount,
		artifact.GeneratedAt.Format("Jan 2, 2006 15:04 MST"),
	)
}
