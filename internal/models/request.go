package models

// GenerateReportRequest represents the request to generate an ad-hoc report
type GenerateReportRequest struct {
	TemplateID string       `json:"templateId" binding:"required"`
	Parameters Parameters   `json:"parameters"`
	Format     ReportFormat `json:"format"` // Defaults to JSON
}

// CreateScheduledReportRequest represents the request to create a scheduled report
type CreateScheduledReportRequest struct {
	Name          string       `json:"name" binding:"required"`
	TemplateID    string       `json:"templateId" binding:"required"`
	Schedule      Schedule     `json:"schedule" binding:"required"`
	Recipients    []Recipient  `json:"recipients" binding:"required,min=1"`
	Parameters    Parameters   `json:"parameters"`
	Format        ReportFormat `json:"format"`
	RetentionDays int          `json:"retentionDays"`
	CreatedBy     string       `json:"createdBy"`
}

// UpdateScheduledReportRequest represents a partial update to a scheduled report.
// Nil fields are left unchanged.
type UpdateScheduledReportRequest struct {
	Name          *string       `json:"name,omitempty"`
	Schedule      *Schedule     `json:"schedule,omitempty"`
	Recipients    []Recipient   `json:"recipients,omitempty"`
	Parameters    Parameters    `json:"parameters,omitempty"`
	Format        *ReportFormat `json:"format,omitempty"`
	RetentionDays *int          `json:"retentionDays,omitempty"`
}

// SchedulerStartRequest represents the request to start the report scheduler
type SchedulerStartRequest struct {
	IntervalMinutes int `json:"intervalMinutes"` // Defaults to the configured interval
}
