// Package municipality decides whether an address or coordinate falls within
// a partner municipality. Partners receive and act on bin reports; anything
// outside the partner list is accepted but unclassified.
package municipality

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"greenbin_backend/internal/geocode"
)

// Bounds is a municipality bounding box.
type Bounds struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Contains reports whether the coordinate lies inside the box.
func (b Bounds) Contains(coord geocode.Coordinate) bool {
	return coord.Lat >= b.South && coord.Lat <= b.North &&
		coord.Lng >= b.West && coord.Lng <= b.East
}

// Municipality is static partner reference data, loaded once at startup and
// never mutated.
type Municipality struct {
	Code   string `json:"code" yaml:"code"`
	Label  string `json:"label" yaml:"label"`
	Bounds Bounds `json:"bounds" yaml:"bounds"`
}

//go:embed partners.yaml
var partnersYAML []byte

// Partners is the static partner list. Iteration order is match precedence.
var Partners = mustLoadPartners(partnersYAML)

func mustLoadPartners(raw []byte) []Municipality {
	var doc struct {
		Partners []Municipality `yaml:"partners"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		panic("municipality: invalid partner data: " + err.Error())
	}
	if len(doc.Partners) == 0 {
		panic("municipality: empty partner list")
	}
	return doc.Partners
}

// Matcher classifies addresses and coordinates against the partner list.
type Matcher struct {
	partners []Municipality
}

// NewMatcher creates a matcher over the default partner list.
func NewMatcher() *Matcher {
	return NewMatcherWith(Partners)
}

// NewMatcherWith creates a matcher over a custom partner list.
func NewMatcherWith(partners []Municipality) *Matcher {
	return &Matcher{partners: partners}
}

// Classify returns the partner municipality code for the given address text
// and/or coordinate, or an empty string when neither matches. The address
// strategy (case-insensitive label containment) is tried first, then the
// bounding-box strategy; the first partner in list order wins. Classify
// never fails.
func (m *Matcher) Classify(address string, coord *geocode.Coordinate) string {
	if address != "" {
		lowered := strings.ToLower(address)
		for _, partner := range m.partners {
			if strings.Contains(lowered, strings.ToLower(partner.Label)) {
				return partner.Code
			}
		}
	}

	if coord != nil {
		for _, partner := range m.partners {
			if partner.Bounds.Contains(*coord) {
				return partner.Code
			}
		}
	}

	return ""
}

// Lookup returns the partner record for a code.
func (m *Matcher) Lookup(code string) (Municipality, bool) {
	for _, partner := range m.partners {
		if partner.Code == code {
			return partner, true
		}
	}
	return Municipality{}, false
}

// List returns the partner list for API exposure.
func (m *Matcher) List() []Municipality {
	return m.partners
}
