package services

import "errors"

// Error taxonomy of the report subsystem. Template and format errors abort a
// job before any side effect; generation errors are caught at the poller
// level and recorded on the job; delivery errors are per-recipient and
// non-fatal.
var (
	ErrTemplateNotFound   = errors.New("report template not found")
	ErrUnsupportedFormat  = errors.New("unsupported report format")
	ErrUnsupportedDataset = errors.New("unsupported dataset type")
	ErrClaimConflict      = errors.New("scheduled report already claimed")
	ErrSchedulerRunning   = errors.New("scheduler is already running")
	ErrSchedulerStopped   = errors.New("scheduler is not running")
	ErrReportNotFound     = errors.New("scheduled report not found")
	ErrMailerDisabled     = errors.New("email delivery is not configured")
	ErrNotifierDisabled   = errors.New("in-app notifications are not configured")
)
