package bins

import (
	"github.com/gin-gonic/gin"

	"greenbin_backend/platform/httpkit"
	"greenbin_backend/platform/logger"
)

// Handler handles bin marker HTTP requests.
type Handler struct {
	svc *Service
	log *logger.Logger
}

// NewHandler creates a new bins handler.
func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// List returns all known bin markers for map rendering.
func (h *Handler) List(c *gin.Context) {
	markers, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, ToMarkerResponses(markers))
}

// Get returns a single bin marker by id.
func (h *Handler) Get(c *gin.Context) {
	marker, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, ToMarkerResponse(marker))
}
