package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"greenbin_backend/internal/email"
	"greenbin_backend/internal/events"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/internal/scheduler"
	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/logger"
)

type testNotificationConfig struct {
	digestAddress string
}

func (c testNotificationConfig) GetAppBaseURL() string                { return "https://app.greenbin.example" }
func (c testNotificationConfig) GetMunicipalityDigestAddress() string { return c.digestAddress }

type testSender struct {
	ackCalls    int
	ackRef      string
	digestCalls int
	digestTo    string
	digestLabel string
	digestItems []email.DigestItem
}

func (s *testSender) SendReportAckEmail(_ context.Context, _, _, reportRef, _, _ string) error {
	s.ackCalls++
	s.ackRef = reportRef
	return nil
}

func (s *testSender) SendMunicipalityDigestEmail(_ context.Context, toEmail, municipalityLabel string, items []email.DigestItem) error {
	s.digestCalls++
	s.digestTo = toEmail
	s.digestLabel = municipalityLabel
	s.digestItems = items
	return nil
}

type testDirectory struct{}

func (testDirectory) GetContact(context.Context, uuid.UUID) (string, string, error) {
	return "citizen@example.com", "Max Mustermann", nil
}

type testReportsRepo struct {
	reports map[uuid.UUID]repository.Report
	recent  []repository.Report
}

func (r *testReportsRepo) Create(context.Context, repository.CreateParams) (repository.Report, error) {
	return repository.Report{}, nil
}

func (r *testReportsRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Report, error) {
	report, ok := r.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return report, nil
}

func (r *testReportsRepo) ListByUser(context.Context, uuid.UUID) ([]repository.Report, error) {
	return nil, nil
}

func (r *testReportsRepo) SetStatus(context.Context, uuid.UUID, repository.Status) error { return nil }
func (r *testReportsRepo) SetPhotoKey(context.Context, uuid.UUID, string) error       { return nil }

func (r *testReportsRepo) ListMissingCoordinates(context.Context, int) ([]repository.Report, error) {
	return nil, nil
}

func (r *testReportsRepo) UpdateCoordinate(context.Context, uuid.UUID, geocode.Coordinate) error {
	return nil
}

func (r *testReportsRepo) ListByMunicipalitySince(context.Context, string, int) ([]repository.Report, error) {
	return r.recent, nil
}

type testAckScheduler struct {
	enqueued []scheduler.ReportAckPayload
	err      error
}

func (s *testAckScheduler) EnqueueReportAck(_ context.Context, payload scheduler.ReportAckPayload) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, payload)
	return nil
}

func newTestModule(sender *testSender, repo *testReportsRepo, tasks scheduler.AckScheduler, digestAddress string) *Module {
	svc := NewService(sender, testDirectory{}, repo, municipality.NewMatcher(),
		testNotificationConfig{digestAddress: digestAddress}, logger.New("development"))
	return New(svc, tasks, logger.New("development"))
}

func submittedEvent(reportID uuid.UUID) events.ReportSubmitted {
	return events.ReportSubmitted{
		BaseEvent: events.NewBaseEvent(),
		ReportID:  reportID,
		UserID:    uuid.New(),
	}
}

func TestReportSubmittedPrefersTaskQueue(t *testing.T) {
	sender := &testSender{}
	tasks := &testAckScheduler{}
	m := newTestModule(sender, &testReportsRepo{}, tasks, "")

	reportID := uuid.New()
	if err := m.onReportSubmitted(context.Background(), submittedEvent(reportID)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if len(tasks.enqueued) != 1 || tasks.enqueued[0].ReportID != reportID.String() {
		t.Fatalf("enqueued = %+v", tasks.enqueued)
	}
	if sender.ackCalls != 0 {
		t.Fatalf("ack sent inline despite working queue: %d calls", sender.ackCalls)
	}
}

func TestReportSubmittedFallsBackInlineOnEnqueueFailure(t *testing.T) {
	reportID := uuid.New()
	repo := &testReportsRepo{reports: map[uuid.UUID]repository.Report{
		reportID: {ID: reportID, UserID: uuid.New(), Address: "Hauptmarkt 18", IssueType: repository.IssueOverflowing},
	}}
	sender := &testSender{}
	tasks := &testAckScheduler{err: errors.New("redis down")}
	m := newTestModule(sender, repo, tasks, "")

	if err := m.onReportSubmitted(context.Background(), submittedEvent(reportID)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if sender.ackCalls != 1 {
		t.Fatalf("inline ack calls = %d, want 1", sender.ackCalls)
	}
}

func TestReportSubmittedSendsInlineWithoutScheduler(t *testing.T) {
	reportID := uuid.New()
	repo := &testReportsRepo{reports: map[uuid.UUID]repository.Report{
		reportID: {ID: reportID, UserID: uuid.New(), Address: "Hauptmarkt 18", IssueType: repository.IssueDamaged},
	}}
	sender := &testSender{}
	m := newTestModule(sender, repo, nil, "")

	if err := m.onReportSubmitted(context.Background(), submittedEvent(reportID)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if sender.ackCalls != 1 {
		t.Fatalf("inline ack calls = %d, want 1", sender.ackCalls)
	}
	if len(sender.ackRef) != 11 || sender.ackRef[:3] != "GB-" {
		t.Fatalf("report reference = %q, want GB- prefix with 8 id characters", sender.ackRef)
	}
}

func TestMunicipalityDigestSkipsWithoutReports(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, &testReportsRepo{}, nil, "stadt@nuernberg.example")

	if err := m.Service().SendMunicipalityDigest(context.Background(), "nuernberg"); err != nil {
		t.Fatalf("digest returned error: %v", err)
	}
	if sender.digestCalls != 0 {
		t.Fatalf("empty digest sent mail: %d calls", sender.digestCalls)
	}
}

func TestMunicipalityDigestListsRecentReports(t *testing.T) {
	repo := &testReportsRepo{recent: []repository.Report{
		{ID: uuid.New(), Address: "Hauptmarkt 18", IssueType: repository.IssueOverflowing, CreatedAt: time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)},
		{ID: uuid.New(), Address: "Lorenzer Platz 2", IssueType: repository.IssueDamaged, CreatedAt: time.Date(2026, 8, 28, 16, 0, 0, 0, time.UTC)},
	}}
	sender := &testSender{}
	m := newTestModule(sender, repo, nil, "stadt@nuernberg.example")

	if err := m.Service().SendMunicipalityDigest(context.Background(), "nuernberg"); err != nil {
		t.Fatalf("digest returned error: %v", err)
	}
	if sender.digestCalls != 1 {
		t.Fatalf("digest calls = %d, want 1", sender.digestCalls)
	}
	if sender.digestTo != "stadt@nuernberg.example" || sender.digestLabel != "Nürnberg" {
		t.Fatalf("digest to=%q label=%q", sender.digestTo, sender.digestLabel)
	}
	if len(sender.digestItems) != 2 || sender.digestItems[0].Filed != "28.08.2026 14:30" {
		t.Fatalf("digest items = %+v", sender.digestItems)
	}
}

func TestMunicipalityDigestSkipsWithoutAddress(t *testing.T) {
	repo := &testReportsRepo{recent: []repository.Report{{ID: uuid.New(), Address: "Hauptmarkt 18"}}}
	sender := &testSender{}
	m := newTestModule(sender, repo, nil, "")

	if err := m.Service().SendMunicipalityDigest(context.Background(), "nuernberg"); err != nil {
		t.Fatalf("digest returned error: %v", err)
	}
	if sender.digestCalls != 0 {
		t.Fatalf("digest sent without configured address: %d calls", sender.digestCalls)
	}
}

func TestMunicipalityDigestRejectsUnknownCode(t *testing.T) {
	m := newTestModule(&testSender{}, &testReportsRepo{}, nil, "stadt@nuernberg.example")

	if err := m.Service().SendMunicipalityDigest(context.Background(), "berlin"); err == nil {
		t.Fatal("unknown municipality accepted")
	}
}
