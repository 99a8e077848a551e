package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"staffhub-report/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleStore is the persistence surface the poller needs. Implemented by
// database.MongoClient.
type ScheduleStore interface {
	FindDueReports(ctx context.Context, now time.Time) ([]models.ScheduledReport, error)
	ClaimDueReport(ctx context.Context, id primitive.ObjectID, observedNextRun, newNextRun time.Time) (bool, error)
	RecordRun(ctx context.Context, id primitive.ObjectID, run models.RunResult) error
	GetScheduledReport(ctx context.Context, id string) (*models.ScheduledReport, error)
}

// ReportGenerator produces an artifact for one template
type ReportGenerator interface {
	Generate(ctx context.Context, templateID string, params models.Parameters, format models.ReportFormat) (*models.Artifact, error)
}

// Dispatcher delivers an artifact to a job's recipients
type Dispatcher interface {
	Deliver(ctx context.Context, report *models.ScheduledReport, artifact *models.Artifact, path string) []models.DeliveryError
}

// ArtifactSaver persists a rendered artifact and returns its path
type ArtifactSaver interface {
	Save(a *models.Artifact) (string, error)
}

// FailureNotifier alerts a job's creator about a failed execution
type FailureNotifier interface {
	NotifyGenerationFailure(ctx context.Context, report *models.ScheduledReport, genErr error) error
}

// SchedulerStatus is a snapshot of the poller's state
type SchedulerStatus struct {
	Running         bool      `json:"running"`
	IntervalMinutes int       `json:"intervalMinutes"`
	LastTick        time.Time `json:"lastTick,omitempty"`
	TicksCompleted  int       `json:"ticksCompleted"`
	JobsExecuted    int       `json:"jobsExecuted"`
	JobsFailed      int       `json:"jobsFailed"`
}

// SchedulerService is the process-wide poller: it periodically discovers due
// scheduled reports, claims each one, drives the generation engine, fans out
// delivery, and records the outcome.
//
// Per job the order is strictly execute, deliver, record-run. Across jobs no
// ordering is guaranteed. Stop only prevents future ticks; an in-flight tick
// completes.
type SchedulerService struct {
	store     ScheduleStore
	generator ReportGenerator
	delivery  Dispatcher
	artifacts ArtifactSaver
	alerts    FailureNotifier

	mu       sync.Mutex
	running  bool
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	status   SchedulerStatus
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	store ScheduleStore,
	generator ReportGenerator,
	delivery Dispatcher,
	artifacts ArtifactSaver,
	alerts FailureNotifier,
) *SchedulerService {
	return &SchedulerService{
		store:     store,
		generator: generator,
		delivery:  delivery,
		artifacts: artifacts,
		alerts:    alerts,
	}
}

// Start begins periodic polling: one tick immediately, then every
// intervalMinutes
func (s *SchedulerService) Start(intervalMinutes int) error {
	if intervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", intervalMinutes)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerRunning
	}
	s.running = true
	s.interval = time.Duration(intervalMinutes) * time.Minute
	s.stopCh = make(chan struct{})
	s.status.Running = true
	s.status.IntervalMinutes = intervalMinutes
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Tick()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-stopCh:
				return
			}
		}
	}()

	log.Printf("Report scheduler started (interval: %d minute(s))", intervalMinutes)
	return nil
}

// Stop halts future ticks. It does not interrupt an in-flight tick; a
// running job completes and records its outcome.
func (s *SchedulerService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	s.running = false
	s.status.Running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("Report scheduler stopped")
	return nil
}

// GetStatus reports whether the loop is active plus tick counters
func (s *SchedulerService) GetStatus() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Tick runs one polling pass: query all active reports whose nextRun has
// passed and execute each. A job's failure never stops the remaining due
// jobs in the same tick.
func (s *SchedulerService) Tick() {
	ctx := context.Background()
	now := time.Now()

	due, err := s.store.FindDueReports(ctx, now)
	if err != nil {
		log.Printf("ERROR: Scheduler failed to query due reports: %v", err)
		return
	}

	for i := range due {
		s.executeDue(ctx, &due[i], now)
	}

	s.mu.Lock()
	s.status.LastTick = now
	s.status.TicksCompleted++
	s.mu.Unlock()
}

// executeDue claims one due job, then runs it. A lost claim means another
// poller got there first; the job is skipped without recording anything.
func (s *SchedulerService) executeDue(ctx context.Context, report *models.ScheduledReport, now time.Time) {
	next, err := ComputeNextRun(report.Schedule, now)
	if err != nil {
		// A schedule this malformed should have been rejected at save
		// time; park the job a day out so it does not spin every tick.
		log.Printf("ERROR: Cannot compute next run for report %q: %v", report.Name, err)
		next = now.AddDate(0, 0, 1)
	}

	claimed, err := s.store.ClaimDueReport(ctx, report.ID, report.NextRun, next)
	if err != nil {
		log.Printf("ERROR: Failed to claim report %q: %v", report.Name, err)
		return
	}
	if !claimed {
		log.Printf("Report %q already claimed by another poller, skipping", report.Name)
		return
	}

	if err := s.execute(ctx, report, next); err != nil {
		log.Printf("ERROR: Scheduled report %q failed: %v", report.Name, err)
	}
}

// execute runs the generate-deliver-record sequence for one job. The run is
// recorded, and nextRun recomputed, regardless of outcome. Delivery failures
// do not flip a successful generation to a failed run.
func (s *SchedulerService) execute(ctx context.Context, report *models.ScheduledReport, next time.Time) error {
	artifact, err := s.generator.Generate(ctx, report.TemplateID.Hex(), report.Parameters, report.Format)
	if err != nil {
		s.recordOutcome(ctx, report, next, err)
		s.alertFailure(ctx, report, err)
		return err
	}

	path, err := s.artifacts.Save(artifact)
	if err != nil {
		err = fmt.Errorf("failed to store artifact: %w", err)
		s.recordOutcome(ctx, report, next, err)
		s.alertFailure(ctx, report, err)
		return err
	}

	if failures := s.delivery.Deliver(ctx, report, artifact, path); len(failures) > 0 {
		log.Printf("WARNING: Report %q delivered with %d recipient failure(s)", report.Name, len(failures))
	}

	s.recordOutcome(ctx, report, next, nil)
	log.Printf("Scheduled report %q executed (%d record(s), format %s)", report.Name, artifact.RecordCount, artifact.Format)
	return nil
}

// RunNow bypasses the due-time check and executes one report through the
// same execute-deliver-record path. nextRun is still rescheduled.
func (s *SchedulerService) RunNow(ctx context.Context, id string) error {
	report, err := s.store.GetScheduledReport(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load scheduled report: %w", err)
	}
	if report == nil {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}

	now := time.Now()
	next, err := ComputeNextRun(report.Schedule, now)
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	log.Printf("Manual run triggered for report %q", report.Name)
	return s.execute(ctx, report, next)
}

func (s *SchedulerService) recordOutcome(ctx context.Context, report *models.ScheduledReport, next time.Time, runErr error) {
	run := models.RunResult{
		CompletedAt: time.Now(),
		Success:     runErr == nil,
		NextRun:     next,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := s.store.RecordRun(ctx, report.ID, run); err != nil {
		log.Printf("ERROR: Failed to record run for report %q: %v", report.Name, err)
	}

	s.mu.Lock()
	s.status.JobsExecuted++
	if runErr != nil {
		s.status.JobsFailed++
	}
	s.mu.Unlock()
}

func (s *SchedulerService) alertFailure(ctx context.Context, report *models.ScheduledReport, genErr error) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.NotifyGenerationFailure(ctx, report, genErr); err != nil {
		log.Printf("WARNING: Failed to notify creator of report %q: %v", report.Name, err)
	}
}
