package location

import (
	"sync"
	"time"

	"greenbin_backend/internal/autocomplete"
	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/mapbridge"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/platform/logger"

	"github.com/google/uuid"
)

// Session pairs a coordinator with its event stream.
type Session struct {
	ID          uuid.UUID
	Coordinator *Coordinator
	Stream      *Stream

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Manager owns the live location sessions and reaps idle ones.
type Manager struct {
	searcher   autocomplete.Searcher
	matcher    *municipality.Matcher
	registry   BinRegistry
	bridgeOpts mapbridge.Options
	debounce   time.Duration
	ttl        time.Duration
	log        *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager and starts its reaper.
func NewManager(searcher autocomplete.Searcher, matcher *municipality.Matcher, registry BinRegistry,
	bridgeOpts mapbridge.Options, debounce, ttl time.Duration, log *logger.Logger) *Manager {

	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	m := &Manager{
		searcher:   searcher,
		matcher:    matcher,
		registry:   registry,
		bridgeOpts: bridgeOpts,
		debounce:   debounce,
		ttl:        ttl,
		log:        log,
		sessions:   make(map[uuid.UUID]*Session),
		stop:       make(chan struct{}),
	}
	go m.reap()
	return m
}

// Create starts a new location session, optionally pre-populated with a bin
// identifier.
func (m *Manager) Create(initialBinID string) *Session {
	session := &Session{
		ID:       uuid.New(),
		Stream:   newStream(),
		lastSeen: time.Now(),
	}

	stream := session.Stream
	session.Coordinator = NewCoordinator(Config{
		Searcher:      m.searcher,
		Matcher:       m.matcher,
		Registry:      m.registry,
		Poster:        stream,
		BridgeOptions: m.bridgeOpts,
		Debounce:      m.debounce,
		InitialBinID:  initialBinID,
		Logger:        m.log,
		Callbacks: FormCallbacks{
			OnSuggestions: func(suggestions []geocode.AddressSuggestion) {
				stream.Publish(Event{Type: EventSuggestions, Data: suggestions})
			},
			OnAddress: func(address string, coord geocode.Coordinate) {
				stream.Publish(Event{Type: EventAddress, Data: map[string]interface{}{
					"address":    address,
					"coordinate": coord,
				}})
			},
			OnMunicipality: func(code string) {
				stream.Publish(Event{Type: EventMunicipality, Data: map[string]string{"code": code}})
			},
			OnBin: func(binID, binLocation string) {
				stream.Publish(Event{Type: EventBin, Data: map[string]string{
					"binId":       binID,
					"binLocation": binLocation,
				}})
			},
			OnNotice: func(message string) {
				stream.Publish(Event{Type: EventNotice, Data: map[string]string{"message": message}})
			},
		},
	})

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		session.touch()
	}
	return session, ok
}

// Remove tears down a session.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		session.Coordinator.Close()
		session.Stream.Close()
	}
}

// Close stops the reaper and tears down all sessions.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Coordinator.Close()
		s.Stream.Close()
	}
}

func (m *Manager) reap() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.ttl)
			m.mu.Lock()
			var expired []uuid.UUID
			for id, session := range m.sessions {
				if session.idleSince(cutoff) {
					expired = append(expired, id)
				}
			}
			m.mu.Unlock()
			for _, id := range expired {
				m.log.Debug("reaping idle location session", "sessionId", id)
				m.Remove(id)
			}
		}
	}
}
