package geocode

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// AddressSuggestion is the normalized data returned to the frontend form.
// Suggestions are immutable once built; each search replaces the whole list.
type AddressSuggestion struct {
	PrimaryLine   string     `json:"primaryLine"`
	SecondaryLine string     `json:"secondaryLine"`
	Street        string     `json:"street"`
	HouseNumber   string     `json:"houseNumber"`
	ZipCode       string     `json:"zipCode"`
	City          string     `json:"city"`
	Coordinate    Coordinate `json:"coordinate"`
	Score         float64    `json:"score"`
}

// SearchRequest represents the query parameters from the frontend.
type SearchRequest struct {
	Query string `form:"q" binding:"required,min=2"`
}

// ReverseRequest represents reverse geocoding query parameters.
type ReverseRequest struct {
	Lat float64 `form:"lat" binding:"min=-90,max=90"`
	Lon float64 `form:"lon" binding:"min=-180,max=180"`
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	State        string `json:"state"`
	CountryCode  string `json:"country_code"`
}

// nominatimResult mirrors the relevant parts of the OSM search payload.
type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Type        string           `json:"type"`
	Class       string           `json:"class"`
	Importance  float64          `json:"importance"`
	Address     nominatimAddress `json:"address"`
}
