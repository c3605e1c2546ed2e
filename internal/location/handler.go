package location

import (
	"encoding/json"
	"net/http"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the location session endpoints.
type Handler struct {
	sessions *Manager
}

func NewHandler(sessions *Manager) *Handler {
	return &Handler{sessions: sessions}
}

type createSessionRequest struct {
	InitialBinID string `json:"initialBinId"`
}

type queryRequest struct {
	Text string `json:"text"`
}

type commitRequest struct {
	Index int `json:"index" binding:"min=0"`
}

type positionRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

type mapMessageRequest struct {
	Origin string          `json:"origin" binding:"required"`
	Data   json.RawMessage `json:"data" binding:"required"`
}

type binFieldRequest struct {
	Value string `json:"value"`
}

// Create handles POST /api/v1/location/sessions
func (h *Handler) Create(c *gin.Context) {
	var req createSessionRequest
	_ = c.ShouldBindJSON(&req)

	session := h.sessions.Create(req.InitialBinID)
	httpkit.Created(c, gin.H{
		"sessionId": session.ID,
		"state":     session.Coordinator.Snapshot(),
	})
}

// Get handles GET /api/v1/location/sessions/:id
func (h *Handler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	httpkit.OK(c, session.Coordinator.Snapshot())
}

// Delete handles DELETE /api/v1/location/sessions/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}
	h.sessions.Remove(id)
	c.Status(http.StatusNoContent)
}

// Query handles POST /api/v1/location/sessions/:id/query
func (h *Handler) Query(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query payload", nil)
		return
	}

	session.Coordinator.SetQuery(req.Text)
	c.Status(http.StatusAccepted)
}

// Commit handles POST /api/v1/location/sessions/:id/commit
func (h *Handler) Commit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid commit payload", nil)
		return
	}

	if !session.Coordinator.CommitSuggestion(req.Index) {
		httpkit.Error(c, http.StatusConflict, "suggestion index out of range", nil)
		return
	}
	httpkit.OK(c, session.Coordinator.Snapshot())
}

// Position handles POST /api/v1/location/sessions/:id/position with a device
// geolocation result. Geolocation denial never reaches this endpoint; the
// client surfaces those errors locally.
func (h *Handler) Position(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid position payload", nil)
		return
	}

	session.Coordinator.CommitPosition(c.Request.Context(), geocode.Coordinate{Lat: req.Lat, Lng: req.Lng})
	httpkit.OK(c, session.Coordinator.Snapshot())
}

// Clear handles POST /api/v1/location/sessions/:id/clear
func (h *Handler) Clear(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Coordinator.ClearAddress()
	c.Status(http.StatusNoContent)
}

// EmbedLoaded handles POST /api/v1/location/sessions/:id/embed-loaded
func (h *Handler) EmbedLoaded(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Coordinator.EmbedLoaded()
	c.Status(http.StatusAccepted)
}

// MapMessage handles POST /api/v1/location/sessions/:id/map-messages, the
// relay path for window messages the page received from the embed.
func (h *Handler) MapMessage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req mapMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid map message payload", nil)
		return
	}

	// Invalid messages are dropped inside the bridge; the relay always
	// acknowledges so the page never retries.
	session.Coordinator.HandleMapMessage(req.Origin, req.Data)
	c.Status(http.StatusAccepted)
}

// BinField handles POST /api/v1/location/sessions/:id/bin-field
func (h *Handler) BinField(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req binFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid bin field payload", nil)
		return
	}

	accepted := session.Coordinator.SetBinIdentifier(req.Value)
	httpkit.OK(c, gin.H{"accepted": accepted})
}

// Deselect handles POST /api/v1/location/sessions/:id/deselect
func (h *Handler) Deselect(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Coordinator.DeselectBin()
	c.Status(http.StatusNoContent)
}

// Events handles GET /api/v1/location/sessions/:id/events as an SSE stream.
func (h *Handler) Events(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	events := session.Stream.subscribe()
	defer session.Stream.unsubscribe(events)

	c.SSEvent(string(EventConnected), gin.H{"sessionId": session.ID})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, open := <-events:
			if !open {
				return
			}
			data, _ := json.Marshal(event.Data)
			c.SSEvent(string(event.Type), string(data))
			c.Writer.Flush()
		}
	}
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return nil, false
	}

	session, ok := h.sessions.Get(id)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "location session not found", nil)
		return nil, false
	}
	return session, true
}
