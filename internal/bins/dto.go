package bins

// MarkerResponse is the API representation of a bin marker.
type MarkerResponse struct {
	ID        string  `json:"id"`
	Location  string  `json:"location"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Status    string  `json:"status"`
	Category  string  `json:"category"`
	FillLevel int     `json:"fillLevel"`
}

// ToMarkerResponse maps a domain marker to its API shape.
func ToMarkerResponse(m Marker) MarkerResponse {
	return MarkerResponse{
		ID:        m.ID,
		Location:  m.Location,
		Lat:       m.Coordinate.Lat,
		Lng:       m.Coordinate.Lng,
		Status:    string(m.Status),
		Category:  string(m.Category),
		FillLevel: m.FillLevel(),
	}
}

// ToMarkerResponses maps a slice of domain markers.
func ToMarkerResponses(markers []Marker) []MarkerResponse {
	out := make([]MarkerResponse, 0, len(markers))
	for _, m := range markers {
		out = append(out, ToMarkerResponse(m))
	}
	return out
}
