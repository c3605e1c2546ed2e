package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"greenbin_backend/internal/autocomplete"
	"greenbin_backend/internal/bins"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/mapbridge"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/platform/logger"
)

const embedOrigin = "https://maps.greenbin.example"

type fakeRegistry struct {
	markers map[string]bins.Marker
}

func (f fakeRegistry) Find(_ context.Context, id string) (bins.Marker, bool) {
	marker, ok := f.markers[id]
	return marker, ok
}

type fakeSearcher struct {
	results map[string][]geocode.AddressSuggestion
	reverse geocode.AddressSuggestion
}

func (f fakeSearcher) Search(_ context.Context, query string) ([]geocode.AddressSuggestion, error) {
	return f.results[query], nil
}

func (f fakeSearcher) Reverse(_ context.Context, _ geocode.Coordinate) geocode.AddressSuggestion {
	return f.reverse
}

type recordingPoster struct {
	mu    sync.Mutex
	posts []map[string]interface{}
}

func (p *recordingPoster) PostMessage(payload map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, payload)
}

func (p *recordingPoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posts)
}

var knownBins = map[string]bins.Marker{
	"bin_3": {
		ID:         "bin_3",
		Location:   "Wöhrder Wiese, Nürnberg",
		Coordinate: geocode.Coordinate{Lat: 49.45167, Lng: 11.09416},
		Status:     bins.StatusOverflowing,
		Category:   bins.CategoryGeneral,
	},
}

type binEvent struct {
	id       string
	location string
}

func newTestCoordinator(searcher autocomplete.Searcher, poster *recordingPoster, cb FormCallbacks, initialBin string) *Coordinator {
	return NewCoordinator(Config{
		Searcher: searcher,
		Matcher:  municipality.NewMatcher(),
		Registry: fakeRegistry{markers: knownBins},
		Poster:   poster,
		BridgeOptions: mapbridge.Options{
			AllowedOrigins: []string{embedOrigin},
			RetrySchedule:  []time.Duration{time.Hour},
		},
		Debounce:     5 * time.Millisecond,
		InitialBinID: initialBin,
		Callbacks:    cb,
		Logger:       logger.New("development"),
	})
}

func TestMapBinClickResolvesKnownMarker(t *testing.T) {
	events := make(chan binEvent, 1)
	c := newTestCoordinator(fakeSearcher{}, &recordingPoster{}, FormCallbacks{
		OnBin: func(binID, binLocation string) { events <- binEvent{binID, binLocation} },
	}, "")
	defer c.Close()

	c.HandleMapMessage(embedOrigin, []byte(`{"type":"wasteBinClick","binId":"bin_3"}`))

	got := <-events
	if got.id != "bin_3" || got.location != "Wöhrder Wiese, Nürnberg" {
		t.Fatalf("bin event = %+v", got)
	}

	snap := c.Snapshot()
	if snap.SelectedBin == nil || snap.SelectedBin.Status != bins.StatusOverflowing {
		t.Fatalf("selected bin = %+v", snap.SelectedBin)
	}
	if snap.BinField != "bin_3" {
		t.Fatalf("bin field = %q, want bin_3", snap.BinField)
	}
}

func TestUnknownBinGetsPlaceholder(t *testing.T) {
	events := make(chan binEvent, 1)
	c := newTestCoordinator(fakeSearcher{}, &recordingPoster{}, FormCallbacks{
		OnBin: func(binID, binLocation string) { events <- binEvent{binID, binLocation} },
	}, "")
	defer c.Close()

	c.HandleMapMessage(embedOrigin, []byte(`{"type":"wasteBinClick","binId":"999"}`))

	got := <-events
	if got.id != "999" || got.location != "Container 999" {
		t.Fatalf("bin event = %+v, want placeholder", got)
	}

	snap := c.Snapshot()
	if snap.SelectedBin == nil {
		t.Fatal("no placeholder selection")
	}
	if snap.SelectedBin.Status != bins.StatusEmpty || snap.SelectedBin.Category != bins.CategoryGeneral {
		t.Fatalf("placeholder marker = %+v", snap.SelectedBin)
	}
}

func TestSetBinIdentifierAcceptsDigitsOnly(t *testing.T) {
	events := make(chan binEvent, 2)
	c := newTestCoordinator(fakeSearcher{}, &recordingPoster{}, FormCallbacks{
		OnBin: func(binID, binLocation string) { events <- binEvent{binID, binLocation} },
	}, "")
	defer c.Close()

	if c.SetBinIdentifier("42a") {
		t.Fatal("letters accepted in identifier field")
	}
	select {
	case got := <-events:
		t.Fatalf("rejected edit emitted %+v", got)
	default:
	}

	if !c.SetBinIdentifier("42") {
		t.Fatal("digit-only identifier rejected")
	}
	got := <-events
	if got.id != "42" || got.location != "" {
		t.Fatalf("bin event = %+v", got)
	}
	if snap := c.Snapshot(); snap.BinField != "42" {
		t.Fatalf("bin field = %q, want 42", snap.BinField)
	}

	// Empty is a valid manual value: it clears the field.
	if !c.SetBinIdentifier("") {
		t.Fatal("empty identifier rejected")
	}
}

func TestDeselectKeepsIdentifierField(t *testing.T) {
	events := make(chan binEvent, 2)
	c := newTestCoordinator(fakeSearcher{}, &recordingPoster{}, FormCallbacks{
		OnBin: func(binID, binLocation string) { events <- binEvent{binID, binLocation} },
	}, "")
	defer c.Close()

	c.HandleMapMessage(embedOrigin, []byte(`{"type":"wasteBinClick","binId":"bin_3"}`))
	<-events

	c.DeselectBin()
	got := <-events
	if got.id != "" || got.location != "" {
		t.Fatalf("deselect event = %+v", got)
	}

	snap := c.Snapshot()
	if snap.SelectedBin != nil {
		t.Fatalf("selection survived deselect: %+v", snap.SelectedBin)
	}
	if snap.BinField != "bin_3" {
		t.Fatalf("bin field = %q, want text preserved", snap.BinField)
	}
}

func TestInitialBinPreselected(t *testing.T) {
	c := newTestCoordinator(fakeSearcher{}, &recordingPoster{}, FormCallbacks{}, "bin_3")
	defer c.Close()

	snap := c.Snapshot()
	if snap.SelectedBin == nil || snap.SelectedBin.ID != "bin_3" {
		t.Fatalf("initial selection = %+v", snap.SelectedBin)
	}
	if snap.BinField != "bin_3" {
		t.Fatalf("bin field = %q, want bin_3", snap.BinField)
	}
}

func TestAddressCommitDrivesMunicipalityAndMap(t *testing.T) {
	coord := geocode.Coordinate{Lat: 49.4547, Lng: 11.0771}
	searcher := fakeSearcher{results: map[string][]geocode.AddressSuggestion{
		"Hauptmarkt 18": {{PrimaryLine: "Hauptmarkt 18", SecondaryLine: "90403 Nürnberg", Coordinate: coord}},
	}}

	suggestions := make(chan []geocode.AddressSuggestion, 2)
	addresses := make(chan string, 1)
	partners := make(chan string, 1)
	poster := &recordingPoster{}

	c := newTestCoordinator(searcher, poster, FormCallbacks{
		OnSuggestions:  func(s []geocode.AddressSuggestion) { suggestions <- s },
		OnAddress:      func(address string, _ geocode.Coordinate) { addresses <- address },
		OnMunicipality: func(code string) { partners <- code },
	}, "")
	defer c.Close()

	// The embed is ready before the commit, so navigation posts directly.
	c.HandleMapMessage(embedOrigin, []byte(`{"type":"mapReady"}`))

	c.SetQuery("Hauptmarkt 18")
	select {
	case got := <-suggestions:
		if len(got) != 1 {
			t.Fatalf("suggestions = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no suggestions delivered")
	}

	if !c.CommitSuggestion(0) {
		t.Fatal("CommitSuggestion(0) rejected")
	}

	if got := <-addresses; got != "Hauptmarkt 18, 90403 Nürnberg" {
		t.Fatalf("committed address = %q", got)
	}
	if got := <-partners; got != "nuernberg" {
		t.Fatalf("municipality = %q, want nuernberg", got)
	}
	if poster.count() != 1 {
		t.Fatalf("navigation posts = %d, want 1", poster.count())
	}

	snap := c.Snapshot()
	if snap.Municipality != "nuernberg" || snap.Coordinate == nil || *snap.Coordinate != coord {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestClearedAddressResetsMunicipality(t *testing.T) {
	coord := geocode.Coordinate{Lat: 49.4547, Lng: 11.0771}
	searcher := fakeSearcher{results: map[string][]geocode.AddressSuggestion{
		"Hauptmarkt 18": {{PrimaryLine: "Hauptmarkt 18", SecondaryLine: "90403 Nürnberg", Coordinate: coord}},
	}}
	suggestions := make(chan []geocode.AddressSuggestion, 2)
	partners := make(chan string, 2)

	c := newTestCoordinator(searcher, &recordingPoster{}, FormCallbacks{
		OnSuggestions:  func(s []geocode.AddressSuggestion) { suggestions <- s },
		OnMunicipality: func(code string) { partners <- code },
	}, "")
	defer c.Close()

	c.SetQuery("Hauptmarkt 18")
	<-suggestions
	if !c.CommitSuggestion(0) {
		t.Fatal("CommitSuggestion(0) rejected")
	}
	if got := <-partners; got != "nuernberg" {
		t.Fatalf("municipality after commit = %q", got)
	}

	c.ClearAddress()
	if got := <-partners; got != "" {
		t.Fatalf("municipality after clear = %q, want empty", got)
	}

	snap := c.Snapshot()
	if snap.Address != "" || snap.Coordinate != nil || snap.Municipality != "" {
		t.Fatalf("snapshot after clear = %+v", snap)
	}
}
