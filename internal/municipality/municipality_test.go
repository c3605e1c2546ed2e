package municipality

import (
	"testing"

	"greenbin_backend/internal/geocode"
)

func TestClassifyByAddressLabel(t *testing.T) {
	m := NewMatcher()

	cases := []struct {
		address string
		want    string
	}{
		{"Hauptstraße 1, 90403 Nürnberg", "nuernberg"},
		{"Kirchplatz 2, 90762 Fürth", "fuerth"},
		{"hugenottenplatz 1, erlangen", "erlangen"},
		{"Alexanderplatz 1, 10178 Berlin", ""},
	}
	for _, tc := range cases {
		if got := m.Classify(tc.address, nil); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}

func TestClassifyByCoordinate(t *testing.T) {
	m := NewMatcher()

	inside := geocode.Coordinate{Lat: 49.4547, Lng: 11.0771}
	if got := m.Classify("", &inside); got != "nuernberg" {
		t.Fatalf("Classify(inside Nürnberg) = %q, want nuernberg", got)
	}

	berlin := geocode.Coordinate{Lat: 52.52, Lng: 13.40}
	if got := m.Classify("", &berlin); got != "" {
		t.Fatalf("Classify(Berlin coordinate) = %q, want empty", got)
	}
}

func TestClassifyAddressWinsOverCoordinate(t *testing.T) {
	m := NewMatcher()

	nuernberg := geocode.Coordinate{Lat: 49.4547, Lng: 11.0771}
	if got := m.Classify("Kirchplatz 2, Fürth", &nuernberg); got != "fuerth" {
		t.Fatalf("Classify = %q, want address match fuerth", got)
	}
}

func TestLookup(t *testing.T) {
	m := NewMatcher()

	partner, ok := m.Lookup("erlangen")
	if !ok {
		t.Fatal("Lookup(erlangen) not found")
	}
	if partner.Label != "Erlangen" {
		t.Fatalf("label = %q, want Erlangen", partner.Label)
	}

	if _, ok := m.Lookup("berlin"); ok {
		t.Fatal("Lookup(berlin) should not match")
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{North: 50, South: 49, East: 12, West: 11}

	if !b.Contains(geocode.Coordinate{Lat: 49.5, Lng: 11.5}) {
		t.Fatal("interior point not contained")
	}
	if !b.Contains(geocode.Coordinate{Lat: 50, Lng: 12}) {
		t.Fatal("boundary point not contained")
	}
	if b.Contains(geocode.Coordinate{Lat: 48.9, Lng: 11.5}) {
		t.Fatal("point south of box contained")
	}
}

func TestPartnerDataLoads(t *testing.T) {
	if len(Partners) != 4 {
		t.Fatalf("loaded %d partners, want 4", len(Partners))
	}
	if Partners[0].Code != "nuernberg" || Partners[0].Label != "Nürnberg" {
		t.Fatalf("first partner = %+v, want nuernberg", Partners[0])
	}
	for _, p := range Partners {
		if p.Code == "" || p.Label == "" {
			t.Fatalf("partner with missing fields: %+v", p)
		}
		b := p.Bounds
		if b.North <= b.South || b.East <= b.West {
			t.Fatalf("partner %s has a degenerate bounding box: %+v", p.Code, b)
		}
	}
}

func TestLoadPartnersRejectsMalformedData(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("malformed partner data did not panic")
		}
	}()
	mustLoadPartners([]byte("partners: {not: a list}"))
}
