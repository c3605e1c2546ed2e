// Package repository provides PostgreSQL persistence for bin reports
// and defines the report domain types shared across the module.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/platform/apperr"
)

const reportNotFoundMessage = "report not found"

// CreateParams carries the fields needed to insert a report.
type CreateParams struct {
	UserID       uuid.UUID
	BinID        *string
	Address      string
	Coordinate   *geocode.Coordinate
	Municipality string
	IssueType    IssueType
	Description  string
	ContactPhone string
}

// Repository defines storage access for reports.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Report, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey string) error
	ListMissingCoordinates(ctx context.Context, limit int) ([]Report, error)
	UpdateCoordinate(ctx context.Context, id uuid.UUID, coord geocode.Coordinate) error
	ListByMunicipalitySince(ctx context.Context, municipality string, since int) ([]Report, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const reportColumns = `id, user_id, bin_id, address, lat, lng, municipality, issue_type, description, photo_key, contact_phone, status, created_at, updated_at`

// Create inserts a new report with status submitted.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Report, error) {
	query := `
		INSERT INTO bin_reports (user_id, bin_id, address, lat, lng, municipality, issue_type, description, contact_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'submitted')
		RETURNING ` + reportColumns

	var lat, lng *float64
	if params.Coordinate != nil {
		lat, lng = &params.Coordinate.Lat, &params.Coordinate.Lng
	}

	row := r.pool.QueryRow(ctx, query,
		params.UserID, params.BinID, params.Address, lat, lng, params.Municipality,
		params.IssueType, params.Description, params.ContactPhone,
	)
	report, err := scanReport(row)
	if err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// GetByID retrieves a report by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Report, error) {
	query := `SELECT ` + reportColumns + ` FROM bin_reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, apperr.NotFound(reportNotFoundMessage)
		}
		return Report{}, fmt.Errorf("get report by id: %w", err)
	}
	return report, nil
}

// ListByUser retrieves all reports filed by a user, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM bin_reports WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports by user: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// SetStatus updates a report's lifecycle status.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE bin_reports SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set report status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMessage)
	}
	return nil
}

// SetPhotoKey attaches an uploaded photo to a report.
func (r *Repo) SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE bin_reports SET photo_key = $2, updated_at = now() WHERE id = $1`, id, photoKey)
	if err != nil {
		return fmt.Errorf("set report photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reportNotFoundMessage)
	}
	return nil
}

// ListMissingCoordinates returns reports that have an address but no coordinate.
// Used by the geocode backfill command.
func (r *Repo) ListMissingCoordinates(ctx context.Context, limit int) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM bin_reports
		WHERE lat IS NULL AND address <> ''
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports missing coordinates: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// UpdateCoordinate stores a backfilled coordinate.
func (r *Repo) UpdateCoordinate(ctx context.Context, id uuid.UUID, coord geocode.Coordinate) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE bin_reports SET lat = $2, lng = $3, updated_at = now() WHERE id = $1`,
		id, coord.Lat, coord.Lng); err != nil {
		return fmt.Errorf("update report coordinate: %w", err)
	}
	return nil
}

// ListByMunicipalitySince returns recent reports for a municipality.
// The since parameter is in hours; used by the daily digest.
func (r *Repo) ListByMunicipalitySince(ctx context.Context, municipality string, since int) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM bin_reports
		WHERE municipality = $1 AND created_at > now() - ($2 * interval '1 hour')
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, municipality, since)
	if err != nil {
		return nil, fmt.Errorf("list reports by municipality: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var rep Report
	var lat, lng *float64

	err := row.Scan(
		&rep.ID, &rep.UserID, &rep.BinID, &rep.Address, &lat, &lng, &rep.Municipality,
		&rep.IssueType, &rep.Description, &rep.PhotoKey, &rep.ContactPhone, &rep.Status,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return Report{}, err
	}

	if lat != nil && lng != nil {
		rep.Coordinate = &geocode.Coordinate{Lat: *lat, Lng: *lng}
	}
	return rep, nil
}

func scanReports(rows pgx.Rows) ([]Report, error) {
	var results []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		results = append(results, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return results, nil
}
