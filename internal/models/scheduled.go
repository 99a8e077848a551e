package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Frequency is how often a scheduled report fires
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
	FrequencyCustom    Frequency = "CUSTOM"
)

// DeliveryMethod is how a recipient receives a generated artifact
type DeliveryMethod string

const (
	DeliveryEmail        DeliveryMethod = "EMAIL"
	DeliveryDownloadLink DeliveryMethod = "DOWNLOAD_LINK"
	DeliveryBoth         DeliveryMethod = "BOTH"
)

// TimeOfDay is the anchor time of a schedule, in the schedule's timezone
type TimeOfDay struct {
	Hour   int `json:"hour" bson:"hour"`
	Minute int `json:"minute" bson:"minute"`
}

// Schedule is the declarative recurrence specification of a scheduled report.
// DayOfWeek is meaningful only for WEEKLY (0 = Sunday), DayOfMonth only for
// MONTHLY, CronExpression only for CUSTOM.
type Schedule struct {
	Frequency      Frequency `json:"frequency" bson:"frequency"`
	CronExpression string    `json:"cronExpression,omitempty" bson:"cronExpression,omitempty"`
	DayOfWeek      int       `json:"dayOfWeek,omitempty" bson:"dayOfWeek,omitempty"`
	DayOfMonth     int       `json:"dayOfMonth,omitempty" bson:"dayOfMonth,omitempty"`
	Time           TimeOfDay `json:"time" bson:"time"`
	Timezone       string    `json:"timezone,omitempty" bson:"timezone,omitempty"`
}

// Recipient is one delivery target of a scheduled report
type Recipient struct {
	UserID         string         `json:"userId,omitempty" bson:"userId,omitempty"`
	Email          string         `json:"email" bson:"email"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod" bson:"deliveryMethod"`
}

// ScheduledReport binds a template to a recurrence schedule and recipients.
// The run-history fields (NextRun, LastRun, RunCount, FailureCount,
// LastError) are mutated only by the scheduler after an execution attempt.
type ScheduledReport struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name" binding:"required"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	TemplateID    primitive.ObjectID `json:"templateId" bson:"templateId"`
	Schedule      Schedule           `json:"schedule" bson:"schedule"`
	Recipients    []Recipient        `json:"recipients" bson:"recipients"`
	Parameters    Parameters         `json:"parameters,omitempty" bson:"parameters,omitempty"`
	Format        ReportFormat       `json:"format" bson:"format"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	NextRun       time.Time          `json:"nextRun" bson:"nextRun"`
	LastRun       *time.Time         `json:"lastRun,omitempty" bson:"lastRun,omitempty"`
	RunCount      int                `json:"runCount" bson:"runCount"`
	FailureCount  int                `json:"failureCount" bson:"failureCount"`
	LastError     string             `json:"lastError,omitempty" bson:"lastError,omitempty"`
	RetentionDays int                `json:"retentionDays,omitempty" bson:"retentionDays,omitempty"`
	CreatedBy     string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RunResult captures the outcome of one execution attempt
type RunResult struct {
	CompletedAt time.Time
	Success     bool
	Error       string
	NextRun     time.Time
}
