package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/logger"
)

type testGeocodeConfig struct {
	baseURL string
}

func (c testGeocodeConfig) GetNominatimBaseURL() string   { return c.baseURL }
func (c testGeocodeConfig) GetNominatimUserAgent() string { return "greenbin-test/1.0" }
func (c testGeocodeConfig) GetGeocodeCountryCode() string { return "de" }
func (c testGeocodeConfig) GetGeocodeResultLimit() int    { return 10 }

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(testGeocodeConfig{baseURL: srv.URL}, logger.New("development")), srv
}

func searchResponse(results []nominatimResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(results)
	}
}

func TestSearchShortQueryDoesNotHitProvider(t *testing.T) {
	var requests atomic.Int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_ = json.NewEncoder(w).Encode([]nominatimResult{})
	})

	for _, query := range []string{"", "x", " a "} {
		suggestions, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("Search(%q) returned error: %v", query, err)
		}
		if len(suggestions) != 0 {
			t.Fatalf("Search(%q) returned %d suggestions, want 0", query, len(suggestions))
		}
	}

	if got := requests.Load(); got != 0 {
		t.Fatalf("short queries issued %d provider requests, want 0", got)
	}
}

func TestSearchFiltersAndRanksResults(t *testing.T) {
	results := []nominatimResult{
		{
			// Plain street match, high provider importance.
			Lat: "49.4540", Lon: "11.0770", Type: "residential", Class: "highway", Importance: 0.8,
			Address: nominatimAddress{Road: "Hauptstraße", Postcode: "90403", City: "Nürnberg"},
		},
		{
			// House number and full query match should outrank the entry above.
			Lat: "49.4545", Lon: "11.0775", Type: "house", Class: "place", Importance: 0.4,
			Address: nominatimAddress{Road: "Hauptstraße", HouseNumber: "5", Postcode: "90403", City: "Nürnberg"},
		},
		{
			// Wrong type and class, filtered out.
			Lat: "49.0", Lon: "11.0", Type: "administrative", Class: "boundary", Importance: 0.9,
			Address: nominatimAddress{Road: "Hauptstraße"},
		},
		{
			// Below the importance floor, filtered out.
			Lat: "49.1", Lon: "11.1", Type: "house", Class: "place", Importance: 0.05,
			Address: nominatimAddress{Road: "Hauptstraße", HouseNumber: "99"},
		},
	}
	svc, _ := newTestService(t, searchResponse(results))

	suggestions, err := svc.Search(context.Background(), "Hauptstraße")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].PrimaryLine != "Hauptstraße 5" {
		t.Fatalf("top suggestion is %q, want %q", suggestions[0].PrimaryLine, "Hauptstraße 5")
	}
	if suggestions[1].PrimaryLine != "Hauptstraße" {
		t.Fatalf("second suggestion is %q, want %q", suggestions[1].PrimaryLine, "Hauptstraße")
	}
	if suggestions[0].SecondaryLine != "90403 Nürnberg" {
		t.Fatalf("secondary line is %q, want %q", suggestions[0].SecondaryLine, "90403 Nürnberg")
	}
	if suggestions[0].Score <= suggestions[1].Score {
		t.Fatalf("scores not descending: %f <= %f", suggestions[0].Score, suggestions[1].Score)
	}
}

func TestSearchCapsSuggestionList(t *testing.T) {
	results := make([]nominatimResult, 0, 12)
	for i := 0; i < 12; i++ {
		results = append(results, nominatimResult{
			Lat: "49.45", Lon: "11.07", Type: "house", Class: "place", Importance: 0.5,
			Address: nominatimAddress{Road: "Ring", HouseNumber: string(rune('1' + i)), City: "Nürnberg"},
		})
	}
	svc, _ := newTestService(t, searchResponse(results))

	suggestions, err := svc.Search(context.Background(), "Ring")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(suggestions) != 8 {
		t.Fatalf("got %d suggestions, want cap of 8", len(suggestions))
	}
}

func TestSearchCachesRepeatedQueries(t *testing.T) {
	var requests atomic.Int64
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_ = json.NewEncoder(w).Encode([]nominatimResult{{
			Lat: "49.45", Lon: "11.07", Type: "house", Class: "place", Importance: 0.5,
			Address: nominatimAddress{Road: "Hauptmarkt", HouseNumber: "18", City: "Nürnberg"},
		}})
	})

	first, err := svc.Search(context.Background(), "Hauptmarkt 18")
	if err != nil {
		t.Fatalf("first Search returned error: %v", err)
	}
	second, err := svc.Search(context.Background(), "Hauptmarkt 18")
	if err != nil {
		t.Fatalf("second Search returned error: %v", err)
	}

	if got := requests.Load(); got != 1 {
		t.Fatalf("repeated query issued %d provider requests, want 1", got)
	}
	if len(first) != 1 || len(second) != 1 || first[0].PrimaryLine != second[0].PrimaryLine {
		t.Fatalf("cached result differs: first=%+v second=%+v", first, second)
	}
}

func TestSearchMapsProviderFailureToUpstreamError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Search(context.Background(), "Hauptmarkt")
	if err == nil {
		t.Fatal("expected error for provider failure")
	}
	if kind := apperr.GetKind(err); kind != apperr.KindUpstream {
		t.Fatalf("error kind = %v, want KindUpstream", kind)
	}
}

func TestSearchSendsConfiguredUserAgent(t *testing.T) {
	var userAgent atomic.Value
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		_ = json.NewEncoder(w).Encode([]nominatimResult{})
	})

	if _, err := svc.Search(context.Background(), "Hauptmarkt"); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got, _ := userAgent.Load().(string); got != "greenbin-test/1.0" {
		t.Fatalf("User-Agent = %q, want %q", got, "greenbin-test/1.0")
	}
}

func TestReverseBuildsAddressSuggestion(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("zoom") != "18" {
			t.Errorf("reverse zoom = %q, want 18", r.URL.Query().Get("zoom"))
		}
		_ = json.NewEncoder(w).Encode(nominatimResult{
			Lat: "49.454746", Lon: "11.077054", Type: "house", Class: "place", Importance: 0.5,
			Address: nominatimAddress{Road: "Hauptmarkt", HouseNumber: "18", Postcode: "90403", City: "Nürnberg"},
		})
	})

	coord := Coordinate{Lat: 49.4547, Lng: 11.0771}
	suggestion := svc.Reverse(context.Background(), coord)

	if suggestion.PrimaryLine != "Hauptmarkt 18" {
		t.Fatalf("primary line = %q, want %q", suggestion.PrimaryLine, "Hauptmarkt 18")
	}
	// The requested coordinate is kept, not the provider's snapped one.
	if suggestion.Coordinate != coord {
		t.Fatalf("coordinate = %+v, want %+v", suggestion.Coordinate, coord)
	}
}

func TestReverseFallsBackToCoordinateLabel(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	suggestion := svc.Reverse(context.Background(), Coordinate{Lat: 49.45, Lng: 11.07})
	if suggestion.PrimaryLine != "49.450000, 11.070000" {
		t.Fatalf("fallback primary line = %q, want %q", suggestion.PrimaryLine, "49.450000, 11.070000")
	}
}
