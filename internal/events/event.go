// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"greenbin_backend/internal/geocode"
	"greenbin_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Report Domain Events
// =============================================================================

// ReportSubmitted is published when a citizen files a bin report.
type ReportSubmitted struct {
	BaseEvent
	ReportID     uuid.UUID           `json:"reportId"`
	UserID       uuid.UUID           `json:"userId"`
	BinID        string              `json:"binId,omitempty"`
	Address      string              `json:"address"`
	Coordinate   *geocode.Coordinate `json:"coordinate,omitempty"`
	Municipality string              `json:"municipality,omitempty"`
	IssueType    string              `json:"issueType"`
	Description  string              `json:"description,omitempty"`
}

func (e ReportSubmitted) EventName() string { return "reports.report.submitted" }

// ReportWithdrawn is published when a citizen withdraws a report.
type ReportWithdrawn struct {
	BaseEvent
	ReportID uuid.UUID `json:"reportId"`
	UserID   uuid.UUID `json:"userId"`
}

func (e ReportWithdrawn) EventName() string { return "reports.report.withdrawn" }
