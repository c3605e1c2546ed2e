// Package autocomplete drives debounced address search for a single input
// session. Rapid edits coalesce into one provider query; responses arriving
// for superseded queries are discarded (last request wins).
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/platform/logger"
)

// minQueryLength mirrors the geocode service threshold: shorter input clears
// the suggestion list instead of searching.
const minQueryLength = 2

// Searcher is the slice of the geocode service the session needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]geocode.AddressSuggestion, error)
	Reverse(ctx context.Context, coord geocode.Coordinate) geocode.AddressSuggestion
}

// Callbacks receive session output. All callbacks are invoked without the
// session lock held and may be nil.
type Callbacks struct {
	// OnSuggestions delivers each replacement of the suggestion list.
	OnSuggestions func(suggestions []geocode.AddressSuggestion)
	// OnCommit delivers a committed address and coordinate.
	OnCommit func(address string, coord geocode.Coordinate)
	// OnCleared signals an explicit input clear.
	OnCleared func()
	// OnNotice delivers a non-blocking user-facing notice (search failures).
	OnNotice func(message string)
}

// Session owns the query text and suggestion list for one address input.
type Session struct {
	searcher Searcher
	debounce time.Duration
	cb       Callbacks
	log      *logger.Logger

	mu          sync.Mutex
	query       string
	seq         uint64
	timer       *time.Timer
	suggestions []geocode.AddressSuggestion
	closed      bool
}

// NewSession creates a session. debounce is the quiet interval after the last
// edit before a search is issued.
func NewSession(searcher Searcher, debounce time.Duration, cb Callbacks, log *logger.Logger) *Session {
	return &Session{
		searcher: searcher,
		debounce: debounce,
		cb:       cb,
		log:      log,
	}
}

// SetQuery records an edit to the input text. Each edit restarts the debounce
// timer and supersedes any in-flight search.
func (s *Session) SetQuery(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.query = text
	s.seq++
	s.stopTimerLocked()

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		s.suggestions = nil
		onSuggestions := s.cb.OnSuggestions
		s.mu.Unlock()
		if onSuggestions != nil {
			onSuggestions([]geocode.AddressSuggestion{})
		}
		return
	}

	seq := s.seq
	s.timer = time.AfterFunc(s.debounce, func() {
		s.runSearch(seq, trimmed)
	})
	s.mu.Unlock()
}

func (s *Session) runSearch(seq uint64, query string) {
	suggestions, err := s.searcher.Search(context.Background(), query)

	s.mu.Lock()
	if s.closed || seq != s.seq {
		// A newer edit superseded this search; drop the response.
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.suggestions = nil
		onSuggestions := s.cb.OnSuggestions
		onNotice := s.cb.OnNotice
		s.mu.Unlock()
		if onSuggestions != nil {
			onSuggestions([]geocode.AddressSuggestion{})
		}
		if onNotice != nil {
			onNotice("address search is temporarily unavailable")
		}
		return
	}

	s.suggestions = suggestions
	onSuggestions := s.cb.OnSuggestions
	s.mu.Unlock()
	if onSuggestions != nil {
		onSuggestions(suggestions)
	}
}

// Commit selects a suggestion by list index, emits it, and closes the
// suggestion list.
func (s *Session) Commit(index int) bool {
	s.mu.Lock()
	if s.closed || index < 0 || index >= len(s.suggestions) {
		s.mu.Unlock()
		return false
	}

	suggestion := s.suggestions[index]
	s.commitLocked(suggestion)
	return true
}

// CommitPosition resolves a device position to an address and commits it
// exactly as a suggestion pick would. Reverse geocoding never fails; at worst
// the committed address is a formatted coordinate pair.
func (s *Session) CommitPosition(ctx context.Context, coord geocode.Coordinate) {
	suggestion := s.searcher.Reverse(ctx, coord)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.commitLocked(suggestion)
}

// commitLocked finalizes a commit. Callers hold s.mu; it is released here.
func (s *Session) commitLocked(suggestion geocode.AddressSuggestion) {
	s.seq++
	s.stopTimerLocked()
	s.query = FormatAddress(suggestion)
	s.suggestions = nil

	address := s.query
	coord := suggestion.Coordinate
	onCommit := s.cb.OnCommit
	s.mu.Unlock()

	if onCommit != nil {
		onCommit(address, coord)
	}
}

// Clear resets the query and suggestions after an explicit clear action.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.query = ""
	s.seq++
	s.stopTimerLocked()
	s.suggestions = nil
	onCleared := s.cb.OnCleared
	s.mu.Unlock()

	if onCleared != nil {
		onCleared()
	}
}

// Close tears down the session and cancels any pending search.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	s.stopTimerLocked()
}

// Query returns the current input text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Suggestions returns the current suggestion list.
func (s *Session) Suggestions() []geocode.AddressSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// FormatAddress renders a suggestion as a single committed address line.
func FormatAddress(suggestion geocode.AddressSuggestion) string {
	if suggestion.SecondaryLine != "" {
		return suggestion.PrimaryLine + ", " + suggestion.SecondaryLine
	}
	return suggestion.PrimaryLine
}
