package bins

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "greenbin_backend/internal/http"
	"greenbin_backend/platform/logger"
)

// Module wires the bins domain into the HTTP layer.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates the bins module with its dependencies.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	svc := NewService(NewRepository(pool), log)
	return &Module{
		handler: NewHandler(svc, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "bins" }

// Service exposes the bin service for cross-module wiring.
func (m *Module) Service() *Service { return m.service }

// RegisterRoutes mounts the bins routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/bins")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
}

var _ apphttp.Module = (*Module)(nil)
