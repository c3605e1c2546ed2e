package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"greenbin_backend/internal/adapters/storage"
	"greenbin_backend/internal/events"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/logger"
)

type fakeRepo struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]repository.Report
	statuses    map[uuid.UUID]repository.Status
	coordinates []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:     make(map[uuid.UUID]repository.Report),
		statuses: make(map[uuid.UUID]repository.Status),
	}
}

func (f *fakeRepo) add(report repository.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[report.ID] = report
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Report, error) {
	report := repository.Report{
		ID:           uuid.New(),
		UserID:       params.UserID,
		BinID:        params.BinID,
		Address:      params.Address,
		Coordinate:   params.Coordinate,
		Municipality: params.Municipality,
		IssueType:    params.IssueType,
		Description:  params.Description,
		ContactPhone: params.ContactPhone,
		Status:       repository.StatusSubmitted,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.add(report)
	return report, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.byID[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return report, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Report
	for _, report := range f.byID {
		if report.UserID == userID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, status repository.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report := f.byID[id]
	report.Status = status
	f.byID[id] = report
	f.statuses[id] = status
	return nil
}

func (f *fakeRepo) SetPhotoKey(_ context.Context, id uuid.UUID, photoKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report := f.byID[id]
	report.PhotoKey = &photoKey
	f.byID[id] = report
	return nil
}

func (f *fakeRepo) ListMissingCoordinates(context.Context, int) ([]repository.Report, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateCoordinate(_ context.Context, id uuid.UUID, coord geocode.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report := f.byID[id]
	report.Coordinate = &coord
	f.byID[id] = report
	f.coordinates = append(f.coordinates, id)
	return nil
}

func (f *fakeRepo) ListByMunicipalitySince(context.Context, string, int) ([]repository.Report, error) {
	return nil, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

type testMinIOConfig struct{}

func (testMinIOConfig) GetMinIOEndpoint() string           { return "" }
func (testMinIOConfig) GetMinIOAccessKey() string          { return "" }
func (testMinIOConfig) GetMinIOSecretKey() string          { return "" }
func (testMinIOConfig) GetMinIOUseSSL() bool               { return false }
func (testMinIOConfig) GetMinIOMaxFileSize() int64         { return 10 << 20 }
func (testMinIOConfig) GetMinioBucketReportPhotos() string { return "report-photos" }
func (testMinIOConfig) IsMinIOEnabled() bool               { return false }

type fakeStore struct {
	uploads []string
	deleted []string
}

func (f *fakeStore) UploadFile(_ context.Context, _, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	key := folder + "/" + fileName
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeStore) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.example/" + fileKey}, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, _, fileKey string) error {
	f.deleted = append(f.deleted, fileKey)
	return nil
}

func (f *fakeStore) EnsureBucketExists(context.Context, string) error { return nil }
func (f *fakeStore) ValidateContentType(string) error                 { return nil }
func (f *fakeStore) ValidateFileSize(int64) error                     { return nil }

func newTestService(repo repository.Repository, store storage.Service, bus events.Bus) *Service {
	return New(repo, municipality.NewMatcher(), store, testMinIOConfig{}, bus, logger.New("development"))
}

func TestCreateClassifiesMunicipalityAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, nil, bus)

	report, err := svc.Create(context.Background(), CreateInput{
		UserID:      uuid.New(),
		Address:     "Hauptmarkt 18, 90403 Nürnberg",
		Coordinate:  &geocode.Coordinate{Lat: 49.4547, Lng: 11.0771},
		IssueType:   repository.IssueOverflowing,
		Description: "Container läuft über",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if report.Municipality != "nuernberg" {
		t.Fatalf("municipality = %q, want nuernberg", report.Municipality)
	}
	if report.Status != repository.StatusSubmitted {
		t.Fatalf("status = %q, want submitted", report.Status)
	}

	published := bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	submitted, ok := published[0].(events.ReportSubmitted)
	if !ok {
		t.Fatalf("published event = %T", published[0])
	}
	if submitted.ReportID != report.ID || submitted.Municipality != "nuernberg" {
		t.Fatalf("event = %+v", submitted)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, &recordingBus{})

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:    uuid.New(),
		Address:   "Hauptmarkt 18",
		IssueType: "exploded",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("unknown issue type error = %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		UserID:    uuid.New(),
		IssueType: repository.IssueDamaged,
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("missing location error = %v", err)
	}
}

func TestCreateAcceptsBinReferenceWithoutAddress(t *testing.T) {
	bus := &recordingBus{}
	svc := newTestService(newFakeRepo(), nil, bus)

	binID := "bin_3"
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    uuid.New(),
		BinID:     &binID,
		IssueType: repository.IssueDamaged,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if report.BinID == nil || *report.BinID != "bin_3" {
		t.Fatalf("bin id = %v", report.BinID)
	}

	submitted := bus.published()[0].(events.ReportSubmitted)
	if submitted.BinID != "bin_3" {
		t.Fatalf("event bin id = %q", submitted.BinID)
	}
}

func TestGetOwnHidesForeignReports(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, &recordingBus{})

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		Address:   "Hauptmarkt 18",
		IssueType: repository.IssueOther,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.GetOwn(context.Background(), owner, report.ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err = svc.GetOwn(context.Background(), uuid.New(), report.ID)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("foreign lookup error = %v, want not found", err)
	}
}

func TestWithdrawLifecycle(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, nil, bus)

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		Address:   "Hauptmarkt 18",
		IssueType: repository.IssueMissedPickup,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Withdraw(context.Background(), owner, report.ID); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if repo.statuses[report.ID] != repository.StatusWithdrawn {
		t.Fatalf("status = %q, want withdrawn", repo.statuses[report.ID])
	}

	// Withdrawing again is a no-op, not an error.
	if err := svc.Withdraw(context.Background(), owner, report.ID); err != nil {
		t.Fatalf("repeated Withdraw returned error: %v", err)
	}

	resolved := repository.Report{ID: uuid.New(), UserID: owner, Status: repository.StatusResolved}
	repo.add(resolved)
	err = svc.Withdraw(context.Background(), owner, resolved.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("withdraw of resolved report = %v, want conflict", err)
	}
}

func TestAttachPhotoReplacesExisting(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{}
	svc := newTestService(repo, store, &recordingBus{})

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		Address:   "Hauptmarkt 18",
		IssueType: repository.IssueDamaged,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := svc.AttachPhoto(context.Background(), owner, report.ID, PhotoUpload{
		FileName:    "before.jpg",
		ContentType: "image/jpeg",
		Size:        100,
		Reader:      strings.NewReader("jpeg"),
	})
	if err != nil {
		t.Fatalf("first AttachPhoto returned error: %v", err)
	}
	if first.PhotoKey == nil {
		t.Fatal("photo key not set")
	}

	second, err := svc.AttachPhoto(context.Background(), owner, report.ID, PhotoUpload{
		FileName:    "after.jpg",
		ContentType: "image/jpeg",
		Size:        100,
		Reader:      strings.NewReader("jpeg"),
	})
	if err != nil {
		t.Fatalf("second AttachPhoto returned error: %v", err)
	}
	if second.PhotoKey == nil || *second.PhotoKey == *first.PhotoKey {
		t.Fatalf("photo key not replaced: %v", second.PhotoKey)
	}
	if len(store.deleted) != 1 || store.deleted[0] != *first.PhotoKey {
		t.Fatalf("replaced photo not deleted: %v", store.deleted)
	}
}

func TestAttachPhotoWithoutGPSKeepsCoordinateEmpty(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{}
	svc := newTestService(repo, store, &recordingBus{})

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		Address:   "Hauptmarkt 18",
		IssueType: repository.IssueOverflowing,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// No EXIF data in the upload; attaching still succeeds.
	attached, err := svc.AttachPhoto(context.Background(), owner, report.ID, PhotoUpload{
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        100,
		Reader:      strings.NewReader("not a real jpeg"),
	})
	if err != nil {
		t.Fatalf("AttachPhoto returned error: %v", err)
	}
	if attached.PhotoKey == nil {
		t.Fatal("photo key not set")
	}
	if attached.Coordinate != nil {
		t.Fatalf("coordinate = %+v, want none", attached.Coordinate)
	}
	if len(repo.coordinates) != 0 {
		t.Fatalf("coordinate updates = %v, want none", repo.coordinates)
	}
}

func TestAttachPhotoKeepsExistingCoordinate(t *testing.T) {
	repo := newFakeRepo()
	store := &fakeStore{}
	svc := newTestService(repo, store, &recordingBus{})

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:     owner,
		Address:    "Hauptmarkt 18",
		Coordinate: &geocode.Coordinate{Lat: 49.4547, Lng: 11.0771},
		IssueType:  repository.IssueOverflowing,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	attached, err := svc.AttachPhoto(context.Background(), owner, report.ID, PhotoUpload{
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        100,
		Reader:      strings.NewReader("jpeg"),
	})
	if err != nil {
		t.Fatalf("AttachPhoto returned error: %v", err)
	}
	if attached.Coordinate == nil || attached.Coordinate.Lat != 49.4547 {
		t.Fatalf("coordinate = %+v, want the reported one", attached.Coordinate)
	}
	if len(repo.coordinates) != 0 {
		t.Fatalf("coordinate updates = %v, want none", repo.coordinates)
	}
}

func TestPhotoCoordinateRejectsNonImageData(t *testing.T) {
	if _, ok := photoCoordinate(strings.NewReader("definitely not exif")); ok {
		t.Fatal("extracted a coordinate from junk data")
	}
}

func TestPhotoEndpointsWithoutStorage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, &recordingBus{})

	owner := uuid.New()
	report, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		Address:   "Hauptmarkt 18",
		IssueType: repository.IssueDamaged,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.AttachPhoto(context.Background(), owner, report.ID, PhotoUpload{})
	if apperr.GetKind(err) != apperr.KindInternal {
		t.Fatalf("AttachPhoto without storage = %v", err)
	}
	_, err = svc.PhotoURL(context.Background(), owner, report.ID)
	if apperr.GetKind(err) != apperr.KindInternal {
		t.Fatalf("PhotoURL without storage = %v", err)
	}
}
