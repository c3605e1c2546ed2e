// Package transport defines the HTTP DTOs for the reports module.
package transport

import (
	"time"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/reports/repository"
)

type CreateReportRequest struct {
	BinID        *string  `json:"binId"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	IssueType    string   `json:"issueType" validate:"required"`
	Description  string   `json:"description" validate:"max=2000"`
	ContactPhone string   `json:"contactPhone" validate:"max=32"`
}

type ReportResponse struct {
	ID           string              `json:"id"`
	BinID        *string             `json:"binId,omitempty"`
	Address      string              `json:"address"`
	Coordinate   *geocode.Coordinate `json:"coordinate,omitempty"`
	Municipality string              `json:"municipality,omitempty"`
	IssueType    string              `json:"issueType"`
	Description  string              `json:"description,omitempty"`
	HasPhoto     bool                `json:"hasPhoto"`
	ContactPhone string              `json:"contactPhone,omitempty"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// ToReportResponse maps a domain report to its API shape.
func ToReportResponse(r repository.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID.String(),
		BinID:        r.BinID,
		Address:      r.Address,
		Coordinate:   r.Coordinate,
		Municipality: r.Municipality,
		IssueType:    string(r.IssueType),
		Description:  r.Description,
		HasPhoto:     r.PhotoKey != nil,
		ContactPhone: r.ContactPhone,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToReportResponses maps a slice of domain reports.
func ToReportResponses(items []repository.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for _, r := range items {
		out = append(out, ToReportResponse(r))
	}
	return out
}
