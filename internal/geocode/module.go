package geocode

import (
	apphttp "greenbin_backend/internal/http"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

// Module wires the geocoding HTTP routes.
type Module struct {
	svc     *Service
	handler *Handler
}

func NewModule(cfg config.GeocodeConfig, log *logger.Logger) *Module {
	svc := NewService(cfg, log)
	h := NewHandler(svc)
	return &Module{svc: svc, handler: h}
}

func (m *Module) Name() string {
	return "geocode"
}

// Service exposes the geocoding service for composition in other modules.
func (m *Module) Service() *Service {
	return m.svc
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/geo")
	group.GET("/search", m.handler.Search)
	group.GET("/reverse", m.handler.Reverse)
}

var _ apphttp.Module = (*Module)(nil)
