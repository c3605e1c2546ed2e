// Package service contains the bin-report business logic.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"greenbin_backend/internal/adapters/storage"
	"greenbin_backend/internal/events"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
	"greenbin_backend/platform/phone"
	"greenbin_backend/platform/sanitize"
)

// CreateInput carries a new report from the handler.
type CreateInput struct {
	UserID       uuid.UUID
	BinID        *string
	Address      string
	Coordinate   *geocode.Coordinate
	IssueType    repository.IssueType
	Description  string
	ContactPhone string
}

// PhotoUpload carries an uploaded photo stream.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Service implements report creation and lifecycle management.
type Service struct {
	repo    repository.Repository
	matcher *municipality.Matcher
	store   storage.Service
	bucket  string
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new reports service. The storage service may be nil when
// MinIO is not configured; photo uploads are then rejected.
func New(repo repository.Repository, matcher *municipality.Matcher, store storage.Service, cfg config.MinIOConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		matcher: matcher,
		store:   store,
		bucket:  cfg.GetMinioBucketReportPhotos(),
		bus:     bus,
		log:     log,
	}
}

// Create files a new report. The reporter's phone is normalized to E.164 and
// the municipality is derived from the address and coordinate.
func (s *Service) Create(ctx context.Context, input CreateInput) (repository.Report, error) {
	if !input.IssueType.Valid() {
		return repository.Report{}, apperr.Validation("unknown issue type")
	}
	if input.Address == "" && input.BinID == nil {
		return repository.Report{}, apperr.Validation("report needs an address or a bin reference")
	}

	address := sanitize.Text(input.Address)
	report, err := s.repo.Create(ctx, repository.CreateParams{
		UserID:       input.UserID,
		BinID:        input.BinID,
		Address:      address,
		Coordinate:   input.Coordinate,
		Municipality: s.matcher.Classify(address, input.Coordinate),
		IssueType:    input.IssueType,
		Description:  sanitize.Text(input.Description),
		ContactPhone: phone.NormalizeE164(input.ContactPhone),
	})
	if err != nil {
		return repository.Report{}, err
	}

	binID := ""
	if report.BinID != nil {
		binID = *report.BinID
	}
	s.bus.Publish(ctx, events.ReportSubmitted{
		BaseEvent:    events.NewBaseEvent(),
		ReportID:     report.ID,
		UserID:       report.UserID,
		BinID:        binID,
		Address:      report.Address,
		Coordinate:   report.Coordinate,
		Municipality: report.Municipality,
		IssueType:    string(report.IssueType),
		Description:  report.Description,
	})

	return report, nil
}

// ListOwn returns the reports filed by the given user.
func (s *Service) ListOwn(ctx context.Context, userID uuid.UUID) ([]repository.Report, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetOwn returns a single report, enforcing ownership.
func (s *Service) GetOwn(ctx context.Context, userID, reportID uuid.UUID) (repository.Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return repository.Report{}, err
	}
	if report.UserID != userID {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return report, nil
}

// Withdraw marks an owned report as withdrawn. Resolved reports stay resolved.
func (s *Service) Withdraw(ctx context.Context, userID, reportID uuid.UUID) error {
	report, err := s.GetOwn(ctx, userID, reportID)
	if err != nil {
		return err
	}
	if report.Status == repository.StatusResolved {
		return apperr.Conflict("report already resolved")
	}
	if report.Status == repository.StatusWithdrawn {
		return nil
	}

	if err := s.repo.SetStatus(ctx, reportID, repository.StatusWithdrawn); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.ReportWithdrawn{
		BaseEvent: events.NewBaseEvent(),
		ReportID:  reportID,
		UserID:    userID,
	})
	return nil
}

// AttachPhoto uploads a photo for an owned report and stores its file key.
// When the report has no coordinate yet and the photo carries GPS EXIF data,
// the photo's position backfills the report.
func (s *Service) AttachPhoto(ctx context.Context, userID, reportID uuid.UUID, upload PhotoUpload) (repository.Report, error) {
	if s.store == nil {
		return repository.Report{}, apperr.Internal("photo storage is not configured")
	}

	report, err := s.GetOwn(ctx, userID, reportID)
	if err != nil {
		return repository.Report{}, err
	}

	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return repository.Report{}, apperr.Validation("failed to read photo")
	}

	folder := fmt.Sprintf("%s/%s", report.UserID, report.ID)
	fileKey, err := s.store.UploadFile(ctx, s.bucket, folder, upload.FileName, upload.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return repository.Report{}, apperr.Validation(err.Error())
	}

	if report.Coordinate == nil {
		if coord, ok := photoCoordinate(bytes.NewReader(data)); ok {
			if err := s.repo.UpdateCoordinate(ctx, reportID, coord); err != nil {
				s.log.Warn("failed to store photo coordinate", "reportId", reportID, "error", err)
			} else {
				report.Coordinate = &coord
			}
		}
	}

	if report.PhotoKey != nil {
		// Replace, don't accumulate. Best effort; the new key wins either way.
		if err := s.store.DeleteObject(ctx, s.bucket, *report.PhotoKey); err != nil {
			s.log.Warn("failed to delete replaced report photo", "fileKey", *report.PhotoKey, "error", err)
		}
	}

	if err := s.repo.SetPhotoKey(ctx, reportID, fileKey); err != nil {
		return repository.Report{}, err
	}

	report.PhotoKey = &fileKey
	return report, nil
}

// PhotoURL returns a presigned download URL for an owned report's photo.
func (s *Service) PhotoURL(ctx context.Context, userID, reportID uuid.UUID) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Internal("photo storage is not configured")
	}

	report, err := s.GetOwn(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}
	if report.PhotoKey == nil {
		return nil, apperr.NotFound("report has no photo")
	}

	return s.store.GenerateDownloadURL(ctx, s.bucket, *report.PhotoKey)
}
