package bins

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"greenbin_backend/platform/apperr"
)

const binNotFoundMessage = "bin not found"

// Repository defines storage access for waste-bin markers.
type Repository interface {
	List(ctx context.Context) ([]Marker, error)
	GetByID(ctx context.Context, id string) (Marker, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new bin repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves all bin markers ordered by id.
func (r *Repo) List(ctx context.Context) ([]Marker, error) {
	query := `
		SELECT id, location, lat, lng, status, category
		FROM waste_bins
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	defer rows.Close()

	var results []Marker
	for rows.Next() {
		var m Marker
		if err := rows.Scan(&m.ID, &m.Location, &m.Coordinate.Lat, &m.Coordinate.Lng, &m.Status, &m.Category); err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bins: %w", err)
	}

	return results, nil
}

// GetByID retrieves a bin marker by its identifier.
func (r *Repo) GetByID(ctx context.Context, id string) (Marker, error) {
	query := `
		SELECT id, location, lat, lng, status, category
		FROM waste_bins
		WHERE id = $1`

	var m Marker
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Location, &m.Coordinate.Lat, &m.Coordinate.Lng, &m.Status, &m.Category,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Marker{}, apperr.NotFound(binNotFoundMessage)
		}
		return Marker{}, fmt.Errorf("get bin by id: %w", err)
	}

	return m, nil
}
