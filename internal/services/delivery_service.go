package services

import (
	"context"
	"log"
	"time"

	"staffhub-report/internal/models"
)

// Mailer sends a generated report to one email recipient
type Mailer interface {
	SendReportEmail(toEmail string, report *models.ScheduledReport, artifact *models.Artifact) error
}

// LinkNotifier creates the in-app notification for DOWNLOAD_LINK delivery
type LinkNotifier interface {
	NotifyReportReady(ctx context.Context, recipient models.Recipient, report *models.ScheduledReport, artifact *models.Artifact, actionURL string) error
}

// DeliveryService fans a generated artifact out to every recipient of a
// scheduled report. Each recipient is attempted independently: one bad
// address never blocks the others, and Deliver never fails the job.
type DeliveryService struct {
	mailer    Mailer
	notifier  LinkNotifier
	artifacts *ArtifactStore
	grace     time.Duration
}

// NewDeliveryService creates a new delivery dispatcher. A nil mailer
// disables EMAIL delivery (recorded as a per-recipient error).
func NewDeliveryService(mailer Mailer, notifier LinkNotifier, artifacts *ArtifactStore, grace time.Duration) *DeliveryService {
	return &DeliveryService{
		mailer:    mailer,
		notifier:  notifier,
		artifacts: artifacts,
		grace:     grace,
	}
}

// Deliver attempts delivery to every recipient and returns the per-recipient
// failures. After all attempts the artifact file is scheduled for deletion
// once the grace period elapses, leaving time for slow downloads.
func (d *DeliveryService) Deliver(ctx context.Context, report *models.ScheduledReport, artifact *models.Artifact, path string) []models.DeliveryError {
	var failures []models.DeliveryError

	for _, recipient := range report.Recipients {
		method := recipient.DeliveryMethod

		if method == models.DeliveryEmail || method == models.DeliveryBoth {
			if err := d.sendEmail(recipient, report, artifact); err != nil {
				log.Printf("ERROR: Email delivery to %s failed for report %q: %v", recipient.Email, report.Name, err)
				failures = append(failures, models.DeliveryError{
					Email:  recipient.Email,
					Method: string(models.DeliveryEmail),
					Error:  err.Error(),
				})
			}
		}

		if method == models.DeliveryDownloadLink || method == models.DeliveryBoth {
			if err := d.sendLink(ctx, recipient, report, artifact); err != nil {
				log.Printf("ERROR: Download-link delivery to %s failed for report %q: %v", recipient.Email, report.Name, err)
				failures = append(failures, models.DeliveryError{
					Email:  recipient.Email,
					Method: string(models.DeliveryDownloadLink),
					Error:  err.Error(),
				})
			}
		}
	}

	if d.artifacts != nil && path != "" {
		d.artifacts.DeleteAfter(path, d.grace)
	}

	return failures
}

func (d *DeliveryService) sendEmail(recipient models.Recipient, report *models.ScheduledReport, artifact *models.Artifact) error {
	if d.mailer == nil {
		return ErrMailerDisabled
	}
	return d.mailer.SendReportEmail(recipient.Email, report, artifact)
}

func (d *DeliveryService) sendLink(ctx context.Context, recipient models.Recipient, report *models.ScheduledReport, artifact *models.Artifact) error {
	if d.notifier == nil {
		return ErrNotifierDisabled
	}
	actionURL := ""
	if d.artifacts != nil {
		actionURL = d.artifacts.DownloadURL(artifact.FileName)
	}
	return d.notifier.NotifyReportReady(ctx, recipient, report, artifact, actionURL)
}
