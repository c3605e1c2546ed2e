package location

import (
	"sync"
)

// EventType names the SSE events pushed to the session's client.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventSuggestions  EventType = "suggestions"
	EventAddress      EventType = "address"
	EventMunicipality EventType = "municipality"
	EventBin          EventType = "bin"
	EventNotice       EventType = "notice"
	// EventMapCommand carries an outbound message the page must relay into
	// the embedded map iframe.
	EventMapCommand EventType = "map_command"
)

// Event is an SSE event payload.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Stream fans session events out to connected SSE clients. Slow clients drop
// events rather than block the coordinator.
type Stream struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
}

func newStream() *Stream {
	return &Stream{subscribers: make(map[chan Event]struct{})}
}

// Publish delivers an event to all subscribers without blocking.
func (s *Stream) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// PostMessage implements mapbridge.MessagePoster: outbound map commands
// travel over the same stream, tagged for iframe relay.
func (s *Stream) PostMessage(payload map[string]interface{}) {
	s.Publish(Event{Type: EventMapCommand, Data: payload})
}

func (s *Stream) subscribe() chan Event {
	ch := make(chan Event, 32)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers[ch] = struct{}{}
	return ch
}

func (s *Stream) unsubscribe(ch chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Close terminates all subscriber channels.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, ch)
	}
}
