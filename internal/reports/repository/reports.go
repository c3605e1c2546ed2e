package repository

import (
	"time"

	"github.com/google/uuid"

	"greenbin_backend/internal/geocode"
)

// IssueType classifies what the citizen is reporting.
type IssueType string

const (
	IssueOverflowing    IssueType = "overflowing"
	IssueDamaged        IssueType = "damaged"
	IssueMissedPickup   IssueType = "missed_pickup"
	IssueIllegalDumping IssueType = "illegal_dumping"
	IssueOther          IssueType = "other"
)

// Valid reports whether the issue type is a known value.
func (t IssueType) Valid() bool {
	switch t {
	case IssueOverflowing, IssueDamaged, IssueMissedPickup, IssueIllegalDumping, IssueOther:
		return true
	}
	return false
}

// Status tracks a report through its lifecycle.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusResolved  Status = "resolved"
	StatusWithdrawn Status = "withdrawn"
)

// Report is a citizen-filed waste-bin report.
type Report struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	BinID        *string
	Address      string
	Coordinate   *geocode.Coordinate
	Municipality string
	IssueType    IssueType
	Description  string
	PhotoKey     *string
	ContactPhone string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
