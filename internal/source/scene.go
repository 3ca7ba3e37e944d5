package source

import (
	"context"
	"sync"

	"github.com/paulmach/orb"

	"popmap/internal/geo"
)

// SceneGraphics serves extent queries over 3D scene graphics whose
// attributes load lazily. Query results carry geometry and ID only;
// HydrateAttributes fills in the rest before display.
type SceneGraphics struct {
	mu         sync.RWMutex
	graphics   []Feature
	attributes map[string]map[string]any
}

// NewSceneGraphics creates a scene graphics collection. attrs holds the
// deferred attribute payload keyed by feature ID.
func NewSceneGraphics(graphics []Feature, attrs map[string]map[string]any) *SceneGraphics {
	bare := make([]Feature, len(graphics))
	for i, g := range graphics {
		g.Attributes = nil // attributes stay deferred until hydration
		bare[i] = g
	}
	return &SceneGraphics{
		graphics:   bare,
		attributes: attrs,
	}
}

// QueryExtent returns the bare graphics intersecting the extent
func (s *SceneGraphics) QueryExtent(ctx context.Context, extent orb.Bound) ([]Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []Feature
	for _, f := range s.graphics {
		if geo.Intersects(f.Geometry, extent) {
			hits = append(hits, f)
		}
	}
	return hits, nil
}

// HydrateAttributes resolves the deferred attributes for a batch of
// features. Features with no stored payload pass through unchanged.
func (s *SceneGraphics) HydrateAttributes(ctx context.Context, feats []Feature) ([]Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Feature, len(feats))
	for i, f := range feats {
		if attrs, ok := s.attributes[f.ID]; ok {
			merged := make(map[string]any, len(attrs))
			for k, v := range attrs {
				merged[k] = v
			}
			f.Attributes = merged
		}
		out[i] = f
	}
	return out, nil
}
