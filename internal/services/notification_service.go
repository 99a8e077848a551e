package services

import (
	"context"
	"fmt"

	"staffhub-report/internal/models"
)

// NotificationStore persists in-app notifications. Implemented by
// database.MongoClient.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// NotificationService creates in-app notifications for report delivery and
// failure alerts
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// CreateNotification stores a notification document
func (s *NotificationService) CreateNotification(ctx context.Context, n *models.Notification) error {
	if len(n.Channels) == 0 {
		n.Channels = []string{"in_app"}
	}
	if n.Priority == "" {
		n.Priority = "normal"
	}
	return s.store.InsertNotification(ctx, n)
}

// NotifyReportReady creates the DOWNLOAD_LINK notification carrying the
// artifact's action URL and metadata
func (s *NotificationService) NotifyReportReady(ctx context.Context, recipient models.Recipient, report *models.ScheduledReport, artifact *models.Artifact, actionURL string) error {
	n := &models.Notification{
		Recipient: notificationRecipient(recipient),
		Type:      models.NotificationReportReady,
		Title:     fmt.Sprintf("Report ready: %s", report.Name),
		Message: fmt.Sprintf("Your %s report %q generated at %s is ready for download.",
			artifact.Format, report.Name, artifact.GeneratedAt.Format("Jan 2, 2006 15:04 MST")),
		Priority:  "normal",
		Channels:  []string{"in_app"},
		ActionURL: actionURL,
		Metadata: map[string]interface{}{
			"fileName":     artifact.FileName,
			"format":       string(artifact.Format),
			"templateName": artifact.TemplateName,
			"recordCount":  artifact.RecordCount,
		},
	}
	return s.CreateNotification(ctx, n)
}

// NotifyGenerationFailure alerts the job's creator that an execution failed
func (s *NotificationService) NotifyGenerationFailure(ctx context.Context, report *models.ScheduledReport, genErr error) error {
	if report.CreatedBy == "" {
		return nil
	}
	n := &models.Notification{
		Recipient: report.CreatedBy,
		Type:      models.NotificationReportFailed,
		Title:     fmt.Sprintf("Report failed: %s", report.Name),
		Message:   fmt.Sprintf("Scheduled report %q failed to generate: %v", report.Name, genErr),
		Priority:  "high",
		Channels:  []string{"in_app"},
		Metadata: map[string]interface{}{
			"scheduledReportId": report.ID.Hex(),
			"error":             genErr.Error(),
		},
	}
	return s.CreateNotification(ctx, n)
}

func notificationRecipient(r models.Recipient) string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.Email
}
