package geocode

import "sync"

// queryCache is a bounded cache keyed by exact query text. When full, the
// oldest entry is evicted. It is owned exclusively by the geocode service.
type queryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]AddressSuggestion
	order    []string
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{
		capacity: capacity,
		entries:  make(map[string][]AddressSuggestion, capacity),
	}
}

// get returns a copy of the cached suggestions so callers cannot mutate
// the stored entry.
func (c *queryCache) get(query string) ([]AddressSuggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	suggestions, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	out := make([]AddressSuggestion, len(suggestions))
	copy(out, suggestions)
	return out, true
}

func (c *queryCache) put(query string, suggestions []AddressSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[query]; exists {
		c.entries[query] = suggestions
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[query] = suggestions
	c.order = append(c.order, query)
}
