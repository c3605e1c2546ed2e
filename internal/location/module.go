package location

import (
	"greenbin_backend/internal/autocomplete"
	apphttp "greenbin_backend/internal/http"
	"greenbin_backend/internal/mapbridge"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/httpkit"
	"greenbin_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// ModuleConfig combines the config slices the location module needs.
type ModuleConfig interface {
	config.LocationConfig
	config.MapEmbedConfig
}

// Module wires the location session HTTP routes.
type Module struct {
	sessions *Manager
	handler  *Handler
	matcher  *municipality.Matcher
}

func NewModule(searcher autocomplete.Searcher, matcher *municipality.Matcher, registry BinRegistry,
	cfg ModuleConfig, log *logger.Logger) *Module {

	bridgeOpts := mapbridge.Options{
		AllowedOrigins: cfg.GetMapAllowedOrigins(),
		TrustedSuffix:  cfg.GetMapTrustedOriginSuffix(),
		ReadyTimeout:   cfg.GetMapReadyTimeout(),
		NavigationZoom: cfg.GetMapNavigationZoom(),
	}

	sessions := NewManager(searcher, matcher, registry, bridgeOpts,
		cfg.GetSearchDebounce(), cfg.GetLocationSessionTTL(), log)

	return &Module{
		sessions: sessions,
		handler:  NewHandler(sessions),
		matcher:  matcher,
	}
}

func (m *Module) Name() string {
	return "location"
}

// Sessions exposes the manager for shutdown wiring.
func (m *Module) Sessions() *Manager {
	return m.sessions
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/location")
	group.POST("/sessions", m.handler.Create)
	group.GET("/sessions/:id", m.handler.Get)
	group.DELETE("/sessions/:id", m.handler.Delete)
	group.GET("/sessions/:id/events", m.handler.Events)
	group.POST("/sessions/:id/query", m.handler.Query)
	group.POST("/sessions/:id/commit", m.handler.Commit)
	group.POST("/sessions/:id/position", m.handler.Position)
	group.POST("/sessions/:id/clear", m.handler.Clear)
	group.POST("/sessions/:id/embed-loaded", m.handler.EmbedLoaded)
	group.POST("/sessions/:id/map-messages", m.handler.MapMessage)
	group.POST("/sessions/:id/bin-field", m.handler.BinField)
	group.POST("/sessions/:id/deselect", m.handler.Deselect)

	// Static partner reference data for the map page.
	group.GET("/municipalities", func(c *gin.Context) {
		httpkit.OK(c, m.matcher.List())
	})
}

var _ apphttp.Module = (*Module)(nil)
