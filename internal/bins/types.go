// Package bins holds the waste-bin marker domain model and its storage.
package bins

import "greenbin_backend/internal/geocode"

// Status describes the reported condition of a bin.
type Status string

const (
	StatusEmpty       Status = "empty"
	StatusFull        Status = "full"
	StatusOverflowing Status = "overflowing"
	StatusDamaged     Status = "damaged"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusEmpty, StatusFull, StatusOverflowing, StatusDamaged:
		return true
	}
	return false
}

// Category describes the waste stream a bin serves.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryRecycling Category = "recycling"
	CategoryOrganic   Category = "organic"
)

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryRecycling, CategoryOrganic:
		return true
	}
	return false
}

// Marker is a known waste-bin location shown on the map.
type Marker struct {
	ID         string             `json:"id"`
	Location   string             `json:"location"`
	Coordinate geocode.Coordinate `json:"coordinate"`
	Status     Status             `json:"status"`
	Category   Category           `json:"category"`
}

// fillLevels maps a status to a display fill percentage. These are fixed
// presentation values, not sensor readings.
var fillLevels = map[Status]int{
	StatusEmpty:       10,
	StatusFull:        85,
	StatusOverflowing: 100,
	StatusDamaged:     50,
}

// FillLevel returns the display fill percentage for the marker's status.
// Unknown statuses render as half full.
func (m Marker) FillLevel() int {
	if level, ok := fillLevels[m.Status]; ok {
		return level
	}
	return 50
}
