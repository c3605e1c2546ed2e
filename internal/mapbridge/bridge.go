// Package mapbridge coordinates the cross-origin embedded map. The embed is
// an opaque collaborator reachable only through asynchronous window messages:
// outbound navigation commands are queued and retried until the embed
// acknowledges readiness, and inbound messages are origin-checked and decoded
// tolerantly before anything reacts to them.
package mapbridge

import (
	"sync"
	"time"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/platform/logger"
)

// State is the embed readiness state. It transitions once per embed lifetime.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// defaultRetrySchedule spaces re-delivery attempts for navigation requests
// queued before the embed is ready. The handshake is not fully reliable, so
// attempts re-send blindly; the final attempt clears the pending slot.
var defaultRetrySchedule = []time.Duration{
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2000 * time.Millisecond,
	3000 * time.Millisecond,
}

// MessagePoster delivers outbound messages toward the embed origin. In
// production this is the session event stream that the page relays into the
// iframe.
type MessagePoster interface {
	PostMessage(payload map[string]interface{})
}

// Options tunes a bridge. Zero values fall back to built-in defaults.
type Options struct {
	AllowedOrigins []string
	TrustedSuffix  string
	ReadyTimeout   time.Duration
	NavigationZoom int
	RetrySchedule  []time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadyTimeout == 0 {
		o.ReadyTimeout = 2 * time.Second
	}
	if o.NavigationZoom == 0 {
		o.NavigationZoom = 17
	}
	if len(o.RetrySchedule) == 0 {
		o.RetrySchedule = defaultRetrySchedule
	}
	return o
}

// Bridge owns the embed handle for one session. Only the bridge may post
// messages to the embed.
type Bridge struct {
	poster        MessagePoster
	opts          Options
	log           *logger.Logger
	onBinSelected func(binID string)

	mu          sync.Mutex
	state       State
	pending     *geocode.Coordinate
	retryTimers []*time.Timer
	readyTimer  *time.Timer
	closed      bool
}

// New creates a bridge in the Loading state. onBinSelected receives decoded
// bin-selection identifiers; the bridge itself holds no bin registry.
func New(poster MessagePoster, opts Options, onBinSelected func(binID string), log *logger.Logger) *Bridge {
	return &Bridge{
		poster:        poster,
		opts:          opts.withDefaults(),
		log:           log,
		onBinSelected: onBinSelected,
	}
}

// State returns the current readiness state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// EmbedLoaded marks the embed element as loaded and arms the readiness
// fallback: some embed versions never emit the handshake, so the bridge
// assumes readiness after the timeout.
func (b *Bridge) EmbedLoaded() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.state == StateReady || b.readyTimer != nil {
		return
	}
	b.readyTimer = time.AfterFunc(b.opts.ReadyTimeout, func() {
		b.becomeReady("timeout")
	})
}

// NavigateTo requests that the embed center on the coordinate. When ready the
// command posts immediately; while loading it replaces any pending request
// and schedules bounded re-delivery attempts.
func (b *Bridge) NavigateTo(coord geocode.Coordinate) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	if b.state == StateReady {
		b.mu.Unlock()
		b.postNavigation(coord)
		return
	}

	b.pending = &coord
	b.cancelRetriesLocked()
	for i, delay := range b.opts.RetrySchedule {
		last := i == len(b.opts.RetrySchedule)-1
		b.retryTimers = append(b.retryTimers, time.AfterFunc(delay, func() {
			b.retryPending(last)
		}))
	}
	b.mu.Unlock()
}

func (b *Bridge) retryPending(last bool) {
	b.mu.Lock()
	if b.closed || b.pending == nil {
		b.mu.Unlock()
		return
	}
	coord := *b.pending
	if last {
		// Bounded retry: the final attempt gives up on the pending slot
		// whether or not the embed ever acknowledged.
		b.pending = nil
	}
	b.mu.Unlock()

	b.postNavigation(coord)
}

func (b *Bridge) becomeReady(trigger string) {
	b.mu.Lock()
	if b.closed || b.state == StateReady {
		b.mu.Unlock()
		return
	}
	b.state = StateReady
	b.stopReadyTimerLocked()

	var deliver *geocode.Coordinate
	if b.pending != nil {
		deliver = b.pending
		b.pending = nil
		b.cancelRetriesLocked()
	}
	b.mu.Unlock()

	b.log.Debug("map embed ready", "trigger", trigger)
	if deliver != nil {
		b.postNavigation(*deliver)
	}
}

func (b *Bridge) postNavigation(coord geocode.Coordinate) {
	b.poster.PostMessage(map[string]interface{}{
		"type": "navigateToLocation",
		"coordinates": map[string]float64{
			"lat": coord.Lat,
			"lng": coord.Lng,
		},
		"zoom": b.opts.NavigationZoom,
	})
}

// HandleMessage processes one inbound message from the embed. Messages from
// unknown origins and messages without a recognizable shape are dropped
// silently; nothing here can fail the host application.
func (b *Bridge) HandleMessage(origin string, payload []byte) {
	if !originAllowed(origin, b.opts.AllowedOrigins, b.opts.TrustedSuffix) {
		b.log.MapMessageDropped(origin, "origin not allowed")
		return
	}

	msg, err := decodeMessage(payload)
	if err != nil {
		b.log.MapMessageDropped(origin, "malformed payload")
		return
	}

	if msg.Handshake {
		b.becomeReady("handshake")
		return
	}

	if msg.BinID == "" {
		b.log.MapMessageDropped(origin, "no identifier")
		return
	}

	if b.onBinSelected != nil {
		b.onBinSelected(msg.BinID)
	}
}

// Close tears down the bridge and cancels outstanding timers.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.pending = nil
	b.cancelRetriesLocked()
	b.stopReadyTimerLocked()
}

func (b *Bridge) cancelRetriesLocked() {
	for _, t := range b.retryTimers {
		t.Stop()
	}
	b.retryTimers = nil
}

func (b *Bridge) stopReadyTimerLocked() {
	if b.readyTimer != nil {
		b.readyTimer.Stop()
		b.readyTimer = nil
	}
}
