package source

import "sync"

// Map is the ordered collection of top-level data sources with
// thread-safe access. Iteration order is insertion order, which fixes
// the ordering of aggregated popup results.
type Map struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]*DataSource
}

// NewMap creates an empty source collection
func NewMap() *Map {
	return &Map{
		sources: make(map[string]*DataSource),
	}
}

// Add appends a source. Re-adding an existing ID replaces the source
// in place without changing its position.
func (m *Map) Add(s *DataSource) {
	if s == nil || s.ID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sources[s.ID]; !exists {
		m.order = append(m.order, s.ID)
	}
	m.sources[s.ID] = s
}

// Remove deletes a source by ID
func (m *Map) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sources[id]; !exists {
		return false
	}
	delete(m.sources, id)

	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Get retrieves a source by ID
func (m *Map) Get(id string) (*DataSource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sources[id]
	return s, exists
}

// Sources returns all sources in insertion order
func (m *Map) Sources() []*DataSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*DataSource, 0, len(m.order))
	for _, id := range m.order {
		if s, ok := m.sources[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of top-level sources
func (m *Map) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}
