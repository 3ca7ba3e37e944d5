package source

import (
	"context"
	"sync"
	"time"
)

// graphicsStore manages a collection of graphics with thread-safe access.
// Insertion order is preserved so query results stay deterministic.
type graphicsStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*graphicEntry
}

type graphicEntry struct {
	feat     Feature
	lastSeen time.Time
}

// newGraphicsStore creates an empty graphics store
func newGraphicsStore() *graphicsStore {
	return &graphicsStore{
		entries: make(map[string]*graphicEntry),
	}
}

// add inserts or merges a graphic
// If the graphic already exists, it merges the new data (keeping non-zero values)
func (g *graphicsStore) add(f Feature) {
	if f.ID == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	existing, exists := g.entries[f.ID]
	if !exists {
		g.entries[f.ID] = &graphicEntry{feat: f, lastSeen: time.Now()}
		g.order = append(g.order, f.ID)
		return
	}

	existing.lastSeen = time.Now()

	if f.Geometry != nil {
		existing.feat.Geometry = f.Geometry
	}

	existing.feat.Visible = f.Visible

	if f.Template != nil {
		existing.feat.Template = f.Template
	}

	for k, v := range f.Attributes {
		if existing.feat.Attributes == nil {
			existing.feat.Attributes = make(map[string]any)
		}
		existing.feat.Attributes[k] = v
	}
}

// snapshot returns all graphics in insertion order
func (g *graphicsStore) snapshot() []Feature {
	g.mu.RLock()
	defer g.mu.RUnlock()

	feats := make([]Feature, 0, len(g.order))
	for _, id := range g.order {
		if e, ok := g.entries[id]; ok {
			feats = append(feats, e.feat)
		}
	}
	return feats
}

// count returns the number of stored graphics
func (g *graphicsStore) count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// pruneStale removes graphics not refreshed within the timeout.
// Returns the number of graphics removed. Only live feeds prune.
func (g *graphicsStore) pruneStale(timeout time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	kept := g.order[:0]
	for _, id := range g.order {
		e := g.entries[id]
		if e != nil && time.Since(e.lastSeen) >= timeout {
			delete(g.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept

	return removed
}

// startPruning starts a background goroutine that periodically prunes
// stale graphics until the context is cancelled
func (g *graphicsStore) startPruning(ctx context.Context, timeout, interval time.Duration) {
	if interval == 0 {
		interval = 10 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.pruneStale(timeout)
			}
		}
	}()
}
