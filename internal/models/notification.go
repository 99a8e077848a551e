package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies an in-app notification
type NotificationType string

const (
	NotificationReportReady  NotificationType = "REPORT_READY"
	NotificationReportFailed NotificationType = "REPORT_FAILED"
)

// Notification is an in-app notification document. DOWNLOAD_LINK delivery
// creates one carrying the artifact path/format as metadata plus an action
// URL, rather than the file itself.
type Notification struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient string                 `json:"recipient" bson:"recipient"`
	Type      NotificationType       `json:"type" bson:"type"`
	Title     string                 `json:"title" bson:"title"`
	Message   string                 `json:"message" bson:"message"`
	Priority  string                 `json:"priority" bson:"priority"` // normal | high
	Channels  []string               `json:"channels" bson:"channels"`
	ActionURL string                 `json:"actionUrl,omitempty" bson:"actionUrl,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}
