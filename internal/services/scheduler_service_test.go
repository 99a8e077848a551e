package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"staffhub-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubScheduleStore struct {
	mu       sync.Mutex
	due      []models.ScheduledReport
	claimOK  bool
	claimErr error
	findErr  error
	recorded map[primitive.ObjectID]models.RunResult
}

func newStubScheduleStore(due ...models.ScheduledReport) *stubScheduleStore {
	return &stubScheduleStore{
		due:      due,
		claimOK:  true,
		recorded: make(map[primitive.ObjectID]models.RunResult),
	}
}

func (s *stubScheduleStore) FindDueReports(ctx context.Context, now time.Time) ([]models.ScheduledReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]models.ScheduledReport, len(s.due))
	copy(out, s.due)
	return out, nil
}

func (s *stubScheduleStore) ClaimDueReport(ctx context.Context, id primitive.ObjectID, observedNextRun, newNextRun time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimOK, s.claimErr
}

func (s *stubScheduleStore) RecordRun(ctx context.Context, id primitive.ObjectID, run models.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded[id] = run
	return nil
}

func (s *stubScheduleStore) GetScheduledReport(ctx context.Context, id string) (*models.ScheduledReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.due {
		if s.due[i].ID.Hex() == id {
			r := s.due[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (s *stubScheduleStore) runFor(id primitive.ObjectID) (models.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.recorded[id]
	return run, ok
}

type stubGenerator struct {
	mu      sync.Mutex
	failFor map[string]error
	calls   []string
}

func (g *stubGenerator) Generate(ctx context.Context, templateID string, params models.Parameters, format models.ReportFormat) (*models.Artifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, templateID)
	if err, ok := g.failFor[templateID]; ok {
		return nil, err
	}
	return &models.Artifact{
		FileName:    "report-test.pdf",
		Format:      format,
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
		RecordCount: 2,
		GeneratedAt: time.Now(),
	}, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type stubDispatcher struct {
	mu       sync.Mutex
	calls    int
	failures []models.DeliveryError
}

func (d *stubDispatcher) Deliver(ctx context.Context, report *models.ScheduledReport, artifact *models.Artifact, path string) []models.DeliveryError {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.failures
}

func (d *stubDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type stubSaver struct {
	err error
}

func (s *stubSaver) Save(a *models.Artifact) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "/tmp/" + a.FileName, nil
}

type stubAlerts struct {
	mu    sync.Mutex
	calls int
}

func (a *stubAlerts) NotifyGenerationFailure(ctx context.Context, report *models.ScheduledReport, genErr error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return nil
}

func (a *stubAlerts) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func dueReport(name string) models.ScheduledReport {
	return models.ScheduledReport{
		ID:         primitive.NewObjectID(),
		Name:       name,
		TemplateID: primitive.NewObjectID(),
		Schedule: models.Schedule{
			Frequency: models.FrequencyDaily,
			Time:      models.TimeOfDay{Hour: 8, Minute: 0},
		},
		Recipients: []models.Recipient{
			{Email: "ops@example.com", DeliveryMethod: models.DeliveryEmail},
		},
		Format:   models.FormatPDF,
		IsActive: true,
		NextRun:  time.Now().Add(-time.Minute),
	}
}

func newTestScheduler(store *stubScheduleStore, gen *stubGenerator, disp *stubDispatcher, alerts *stubAlerts) *SchedulerService {
	return NewSchedulerService(store, gen, disp, &stubSaver{}, alerts)
}

func TestTickExecutesDueJob(t *testing.T) {
	job := dueReport("daily-candidates")
	store := newStubScheduleStore(job)
	gen := &stubGenerator{}
	disp := &stubDispatcher{}
	alerts := &stubAlerts{}

	newTestScheduler(store, gen, disp, alerts).Tick()

	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, 1, disp.callCount())
	assert.Equal(t, 0, alerts.callCount())

	run, ok := store.runFor(job.ID)
	require.True(t, ok)
	assert.True(t, run.Success)
	assert.Empty(t, run.Error)
	assert.True(t, run.NextRun.After(time.Now()))
}

func TestTickSkipsLostClaim(t *testing.T) {
	job := dueReport("claimed-elsewhere")
	store := newStubScheduleStore(job)
	store.claimOK = false
	gen := &stubGenerator{}
	disp := &stubDispatcher{}

	newTestScheduler(store, gen, disp, &stubAlerts{}).Tick()

	assert.Equal(t, 0, gen.callCount())
	assert.Equal(t, 0, disp.callCount())
	_, ok := store.runFor(job.ID)
	assert.False(t, ok)
}

func TestTickIsolatesJobFailures(t *testing.T) {
	failing := dueReport("failing")
	healthy := dueReport("healthy")
	store := newStubScheduleStore(failing, healthy)
	gen := &stubGenerator{failFor: map[string]error{
		failing.TemplateID.Hex(): errors.New("dataset unavailable"),
	}}
	disp := &stubDispatcher{}
	alerts := &stubAlerts{}

	newTestScheduler(store, gen, disp, alerts).Tick()

	// Both jobs attempted; only the healthy one delivered
	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, 1, disp.callCount())
	assert.Equal(t, 1, alerts.callCount())

	failedRun, ok := store.runFor(failing.ID)
	require.True(t, ok)
	assert.False(t, failedRun.Success)
	assert.Contains(t, failedRun.Error, "dataset unavailable")

	healthyRun, ok := store.runFor(healthy.ID)
	require.True(t, ok)
	assert.True(t, healthyRun.Success)
}

func TestTickRecordsRunEvenWhenSaveFails(t *testing.T) {
	job := dueReport("save-fails")
	store := newStubScheduleStore(job)
	gen := &stubGenerator{}
	alerts := &stubAlerts{}
	scheduler := NewSchedulerService(store, gen, &stubDispatcher{}, &stubSaver{err: errors.New("disk full")}, alerts)

	scheduler.Tick()

	run, ok := store.runFor(job.ID)
	require.True(t, ok)
	assert.False(t, run.Success)
	assert.Contains(t, run.Error, "disk full")
	assert.Equal(t, 1, alerts.callCount())
}

func TestDeliveryFailureDoesNotFailRun(t *testing.T) {
	job := dueReport("flaky-recipient")
	store := newStubScheduleStore(job)
	disp := &stubDispatcher{failures: []models.DeliveryError{
		{Email: "bad@example.com", Method: "EMAIL", Error: "mailbox full"},
	}}

	newTestScheduler(store, &stubGenerator{}, disp, &stubAlerts{}).Tick()

	run, ok := store.runFor(job.ID)
	require.True(t, ok)
	assert.True(t, run.Success)
}

func TestRunNow(t *testing.T) {
	job := dueReport("manual")
	store := newStubScheduleStore(job)
	gen := &stubGenerator{}
	disp := &stubDispatcher{}
	scheduler := newTestScheduler(store, gen, disp, &stubAlerts{})

	err := scheduler.RunNow(context.Background(), job.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, 1, disp.callCount())
	run, ok := store.runFor(job.ID)
	require.True(t, ok)
	assert.True(t, run.Success)
}

func TestRunNowUnknownReport(t *testing.T) {
	scheduler := newTestScheduler(newStubScheduleStore(), &stubGenerator{}, &stubDispatcher{}, &stubAlerts{})

	err := scheduler.RunNow(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestStartStopLifecycle(t *testing.T) {
	store := newStubScheduleStore()
	scheduler := newTestScheduler(store, &stubGenerator{}, &stubDispatcher{}, &stubAlerts{})

	require.NoError(t, scheduler.Start(5))
	assert.ErrorIs(t, scheduler.Start(5), ErrSchedulerRunning)

	status := scheduler.GetStatus()
	assert.True(t, status.Running)
	assert.Equal(t, 5, status.IntervalMinutes)

	require.NoError(t, scheduler.Stop())
	assert.ErrorIs(t, scheduler.Stop(), ErrSchedulerStopped)
	assert.False(t, scheduler.GetStatus().Running)
}

func TestStartRejectsBadInterval(t *testing.T) {
	scheduler := newTestScheduler(newStubScheduleStore(), &stubGenerator{}, &stubDispatcher{}, &stubAlerts{})
	assert.Error(t, scheduler.Start(0))
}
