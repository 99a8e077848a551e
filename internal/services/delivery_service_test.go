package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"staffhub-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	failFor map[string]error
	sent    []string
}

func (m *stubMailer) SendReportEmail(toEmail string, report *models.ScheduledReport, artifact *models.Artifact) error {
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

type stubLinkNotifier struct {
	err      error
	notified []string
}

func (n *stubLinkNotifier) NotifyReportReady(ctx context.Context, recipient models.Recipient, report *models.ScheduledReport, artifact *models.Artifact, actionURL string) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, recipient.Email)
	return nil
}

func deliveryFixture(recipients ...models.Recipient) (*models.ScheduledReport, *models.Artifact) {
	report := &models.ScheduledReport{
		Name:       "Weekly Hired Candidates",
		Recipients: recipients,
		Format:     models.FormatPDF,
	}
	artifact := &models.Artifact{
		FileName:    "weekly-hired-candidates-abc.pdf",
		Format:      models.FormatPDF,
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
		RecordCount: 2,
		GeneratedAt: time.Now(),
	}
	return report, artifact
}

func TestDeliverIsolatesRecipientFailures(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "bad@example.com", DeliveryMethod: models.DeliveryEmail},
		models.Recipient{Email: "good@example.com", DeliveryMethod: models.DeliveryEmail},
	)
	mailer := &stubMailer{failFor: map[string]error{"bad@example.com": errors.New("mailbox full")}}
	svc := NewDeliveryService(mailer, &stubLinkNotifier{}, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	require.Len(t, failures, 1)
	assert.Equal(t, "bad@example.com", failures[0].Email)
	assert.Equal(t, "EMAIL", failures[0].Method)
	assert.Contains(t, failures[0].Error, "mailbox full")
	// The second recipient is still attempted
	assert.Equal(t, []string{"good@example.com"}, mailer.sent)
}

func TestDeliverBothFansOut(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "ops@example.com", DeliveryMethod: models.DeliveryBoth},
	)
	mailer := &stubMailer{}
	notifier := &stubLinkNotifier{}
	svc := NewDeliveryService(mailer, notifier, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	assert.Empty(t, failures)
	assert.Equal(t, []string{"ops@example.com"}, mailer.sent)
	assert.Equal(t, []string{"ops@example.com"}, notifier.notified)
}

func TestDeliverBothPartialFailure(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "ops@example.com", DeliveryMethod: models.DeliveryBoth},
	)
	mailer := &stubMailer{failFor: map[string]error{"ops@example.com": errors.New("rejected")}}
	notifier := &stubLinkNotifier{}
	svc := NewDeliveryService(mailer, notifier, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	// Email leg fails, download-link leg still goes through
	require.Len(t, failures, 1)
	assert.Equal(t, "EMAIL", failures[0].Method)
	assert.Equal(t, []string{"ops@example.com"}, notifier.notified)
}

func TestDeliverWithoutMailer(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "ops@example.com", DeliveryMethod: models.DeliveryEmail},
	)
	svc := NewDeliveryService(nil, &stubLinkNotifier{}, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error, "not configured")
}

func TestDeliverWithoutNotifier(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "viewer@example.com", DeliveryMethod: models.DeliveryDownloadLink},
	)
	svc := NewDeliveryService(&stubMailer{}, nil, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error, "not configured")
}

func TestDeliverDownloadLinkOnly(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "viewer@example.com", DeliveryMethod: models.DeliveryDownloadLink},
	)
	mailer := &stubMailer{}
	notifier := &stubLinkNotifier{}
	svc := NewDeliveryService(mailer, notifier, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	assert.Empty(t, failures)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, []string{"viewer@example.com"}, notifier.notified)
}

func TestDeliverNotifierFailure(t *testing.T) {
	report, artifact := deliveryFixture(
		models.Recipient{Email: "viewer@example.com", DeliveryMethod: models.DeliveryDownloadLink},
	)
	notifier := &stubLinkNotifier{err: errors.New("store unavailable")}
	svc := NewDeliveryService(&stubMailer{}, notifier, nil, 0)

	failures := svc.Deliver(context.Background(), report, artifact, "")

	require.Len(t, failures, 1)
	assert.Equal(t, "DOWNLOAD_LINK", failures[0].Method)
}
