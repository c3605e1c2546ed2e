// Package reports wires the citizen bin-report bounded context into the
// HTTP layer. The domain types live in the repository subpackage.
package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"greenbin_backend/internal/adapters/storage"
	"greenbin_backend/internal/events"
	apphttp "greenbin_backend/internal/http"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/internal/reports/handler"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/internal/reports/service"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
	"greenbin_backend/platform/validator"
)

// Module wires the reports domain into the HTTP layer.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository repository.Repository
}

// NewModule creates the reports module with its dependencies.
func NewModule(pool *pgxpool.Pool, matcher *municipality.Matcher, store storage.Service, cfg config.MinIOConfig, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, matcher, store, cfg, bus, log)
	return &Module{
		handler:    handler.New(svc, validator.New(), log),
		service:    svc,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "reports" }

// Service exposes the reports service for cross-module wiring.
func (m *Module) Service() *service.Service { return m.service }

// Repository exposes the reports repository for batch commands.
func (m *Module) Repository() repository.Repository { return m.repository }

// RegisterRoutes mounts the reports routes. All routes require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/reports")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.ListOwn)
	group.GET("/:id", m.handler.Get)
	group.DELETE("/:id", m.handler.Withdraw)
	group.POST("/:id/photo", m.handler.UploadPhoto)
	group.GET("/:id/photo-url", m.handler.PhotoURL)
}

var _ apphttp.Module = (*Module)(nil)
