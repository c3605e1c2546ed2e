package geocode

import (
	"net/http"

	"greenbin_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the geocoding endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Search handles GET /api/v1/geo/search?q=...
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 2 chars)", nil)
		return
	}

	results, err := h.svc.Search(c.Request.Context(), req.Query)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, results)
}

// Reverse handles GET /api/v1/geo/reverse?lat=...&lon=...
// It always answers 200; unresolvable coordinates fall back to a
// "lat, lng" formatted label.
func (h *Handler) Reverse(c *gin.Context) {
	var req ReverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "valid 'lat' and 'lon' are required", nil)
		return
	}

	suggestion := h.svc.Reverse(c.Request.Context(), Coordinate{Lat: req.Lat, Lng: req.Lon})
	httpkit.OK(c, suggestion)
}
