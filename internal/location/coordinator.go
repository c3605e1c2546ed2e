// Package location composes address autocomplete, municipality matching, the
// map-embed bridge, and the bin registry into one consistent unit of
// location-selection state per session.
package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"greenbin_backend/internal/autocomplete"
	"greenbin_backend/internal/bins"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/mapbridge"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/platform/logger"
)

// BinRegistry resolves bin identifiers reported by the embedded map.
type BinRegistry interface {
	Find(ctx context.Context, id string) (bins.Marker, bool)
}

// FormCallbacks deliver coordinator output to the owning form. Any callback
// may be nil.
type FormCallbacks struct {
	// OnAddress delivers the committed address and its coordinate.
	OnAddress func(address string, coord geocode.Coordinate)
	// OnMunicipality delivers the derived partner code, empty when outside
	// all partner municipalities.
	OnMunicipality func(code string)
	// OnBin delivers the identifier and location label of the selected bin.
	OnBin func(binID, binLocation string)
	// OnSuggestions delivers each replacement of the suggestion list.
	OnSuggestions func(suggestions []geocode.AddressSuggestion)
	// OnNotice delivers non-blocking user-facing notices.
	OnNotice func(message string)
}

// Snapshot is the externally visible coordinator state.
type Snapshot struct {
	Address      string              `json:"address"`
	Coordinate   *geocode.Coordinate `json:"coordinate,omitempty"`
	Municipality string              `json:"municipality,omitempty"`
	SelectedBin  *bins.Marker        `json:"selectedBin,omitempty"`
	BinField     string              `json:"binField"`
	MapState     string              `json:"mapState"`
}

// Coordinator owns one session's location-selection state.
type Coordinator struct {
	search   *autocomplete.Session
	bridge   *mapbridge.Bridge
	matcher  *municipality.Matcher
	registry BinRegistry
	cb       FormCallbacks
	log      *logger.Logger

	mu       sync.Mutex
	address  string
	coord    *geocode.Coordinate
	partner  string
	selected *bins.Marker
	binField string
}

// Config carries the coordinator's collaborators and tuning.
type Config struct {
	Searcher      autocomplete.Searcher
	Matcher       *municipality.Matcher
	Registry      BinRegistry
	Poster        mapbridge.MessagePoster
	BridgeOptions mapbridge.Options
	Debounce      time.Duration
	InitialBinID  string
	Callbacks     FormCallbacks
	Logger        *logger.Logger
}

// NewCoordinator wires the collaborators together. The returned coordinator
// must be closed when the session ends.
func NewCoordinator(cfg Config) *Coordinator {
	c := &Coordinator{
		matcher:  cfg.Matcher,
		registry: cfg.Registry,
		cb:       cfg.Callbacks,
		log:      cfg.Logger,
		binField: cfg.InitialBinID,
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 300 * time.Millisecond
	}

	c.search = autocomplete.NewSession(cfg.Searcher, debounce, autocomplete.Callbacks{
		OnSuggestions: cfg.Callbacks.OnSuggestions,
		OnCommit:      c.handleAddressCommit,
		OnCleared:     c.handleAddressCleared,
		OnNotice:      cfg.Callbacks.OnNotice,
	}, cfg.Logger)

	c.bridge = mapbridge.New(cfg.Poster, cfg.BridgeOptions, c.handleBinSelected, cfg.Logger)

	if cfg.InitialBinID != "" {
		if marker, ok := c.registry.Find(context.Background(), cfg.InitialBinID); ok {
			c.selected = &marker
		}
	}

	return c
}

// SetQuery forwards an address input edit to the debounced search session.
func (c *Coordinator) SetQuery(text string) {
	c.search.SetQuery(text)
}

// CommitSuggestion commits the suggestion at the given index.
func (c *Coordinator) CommitSuggestion(index int) bool {
	return c.search.Commit(index)
}

// CommitPosition commits a device geolocation result, resolving it to an
// address first.
func (c *Coordinator) CommitPosition(ctx context.Context, coord geocode.Coordinate) {
	c.search.CommitPosition(ctx, coord)
}

// ClearAddress resets the address input.
func (c *Coordinator) ClearAddress() {
	c.search.Clear()
}

// EmbedLoaded signals that the map embed finished loading.
func (c *Coordinator) EmbedLoaded() {
	c.bridge.EmbedLoaded()
}

// HandleMapMessage forwards one inbound embed message to the bridge.
func (c *Coordinator) HandleMapMessage(origin string, payload []byte) {
	c.bridge.HandleMessage(origin, payload)
}

// SetBinIdentifier applies a manual edit to the identifier field. Only empty
// or all-digit values are accepted; rejected edits are ignored without error.
// Accepted edits are always emitted upstream, whether or not they match a
// known marker: manual entry wins over map-derived state.
func (c *Coordinator) SetBinIdentifier(value string) bool {
	if !validBinIdentifier(value) {
		return false
	}

	c.mu.Lock()
	c.binField = value
	c.mu.Unlock()

	if c.cb.OnBin != nil {
		c.cb.OnBin(value, "")
	}
	return true
}

// DeselectBin clears the selection display. The identifier field keeps its
// text; it stays user-editable independent of the selection.
func (c *Coordinator) DeselectBin() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()

	if c.cb.OnBin != nil {
		c.cb.OnBin("", "")
	}
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Address:      c.address,
		Coordinate:   c.coord,
		Municipality: c.partner,
		SelectedBin:  c.selected,
		BinField:     c.binField,
		MapState:     c.bridge.State().String(),
	}
}

// Close tears down the session's timers and bridge.
func (c *Coordinator) Close() {
	c.search.Close()
	c.bridge.Close()
}

func (c *Coordinator) handleAddressCommit(address string, coord geocode.Coordinate) {
	partner := c.matcher.Classify(address, &coord)

	c.mu.Lock()
	c.address = address
	c.coord = &coord
	c.partner = partner
	c.mu.Unlock()

	if c.cb.OnAddress != nil {
		c.cb.OnAddress(address, coord)
	}
	if c.cb.OnMunicipality != nil {
		c.cb.OnMunicipality(partner)
	}

	// Navigation is idempotent and always re-centers, even for an unchanged
	// coordinate.
	c.bridge.NavigateTo(coord)
}

func (c *Coordinator) handleAddressCleared() {
	c.mu.Lock()
	c.address = ""
	c.coord = nil
	c.partner = ""
	c.mu.Unlock()

	if c.cb.OnMunicipality != nil {
		c.cb.OnMunicipality("")
	}
}

func (c *Coordinator) handleBinSelected(binID string) {
	marker, ok := c.registry.Find(context.Background(), binID)
	if !ok {
		// Unknown ids get a placeholder so the flow never blocks on stale
		// embed data.
		marker = placeholderMarker(binID)
	}

	c.mu.Lock()
	c.selected = &marker
	c.binField = binID
	c.mu.Unlock()

	if c.cb.OnBin != nil {
		c.cb.OnBin(binID, marker.Location)
	}
}

func placeholderMarker(binID string) bins.Marker {
	return bins.Marker{
		ID:       binID,
		Location: fmt.Sprintf("Container %s", binID),
		Status:   bins.StatusEmpty,
		Category: bins.CategoryGeneral,
	}
}

func validBinIdentifier(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
