package bins

import (
	"context"

	"greenbin_backend/platform/logger"
)

// Service provides read access to the known bin markers.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new bin service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns all known bin markers.
func (s *Service) List(ctx context.Context) ([]Marker, error) {
	return s.repo.List(ctx)
}

// Get returns a single bin marker by id.
func (s *Service) Get(ctx context.Context, id string) (Marker, error) {
	return s.repo.GetByID(ctx, id)
}

// Find looks up a marker and reports whether it exists. Lookup failures are
// treated as unknown ids so selection flows can fall back to a placeholder.
func (s *Service) Find(ctx context.Context, id string) (Marker, bool) {
	marker, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Marker{}, false
	}
	return marker, true
}
