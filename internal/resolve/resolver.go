package resolve

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/source"
)

// Config wires a Resolver to its map and view collaborators. Everything
// is injected; the resolver keeps no ambient state.
type Config struct {
	// Sources enumerates the map's top-level sources in map order
	Sources func() []*source.DataSource

	// Bindings resolves the live view-layer binding for a source
	Bindings source.BindingLookup

	// ViewIs3D restricts eligibility to draped sources
	ViewIs3D bool

	// Baseline is the click-tolerance floor in screen cells,
	// 0 for the default
	Baseline float64

	// ResolutionAt returns the ground resolution (map units per cell)
	// at a map point
	ResolutionAt func(orb.Point) float64

	// ViewSR and TerrainSR are the spatial references of the view and
	// the terrain/elevation source. The tolerance extent is reprojected
	// when they differ.
	ViewSR    geo.SpatialReference
	TerrainSR geo.SpatialReference
}

// Resolution is the in-flight aggregation for one click. Exactly one
// resolution is authoritative per popup instance; starting a newer one
// supersedes it.
type Resolution struct {
	Click      ClickEvent
	generation uint64
	done       chan struct{}

	// written once before done closes
	set       *FeatureSet
	hasResult bool
}

// Done returns a channel closed when every dispatched query has settled
func (r *Resolution) Done() <-chan struct{} {
	return r.done
}

// Generation returns the resolver generation this resolution was
// started under
func (r *Resolution) Generation() uint64 {
	return r.generation
}

// Result returns the aggregated feature set and whether any query
// produced features (or a feature was forced). The set is nil until
// the resolution settles, and nil when there is no result: an empty
// popup is never shown.
func (r *Resolution) Result() (*FeatureSet, bool) {
	select {
	case <-r.done:
		return r.set, r.hasResult
	default:
		return nil, false
	}
}

// Wait blocks until the resolution settles or the context ends
func (r *Resolution) Wait(ctx context.Context) (*FeatureSet, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-r.done:
		return r.set, r.hasResult, nil
	}
}

// Resolver turns clicks into feature sets by fanning out one query per
// eligible source and aggregating the results in source order. Each
// Resolve call bumps a generation counter; callers apply a settled
// resolution only while it is still current, which closes the race
// where a slow superseded click would overwrite a newer one.
type Resolver struct {
	cfg        Config
	generation atomic.Uint64
}

// NewResolver creates a resolver over the given collaborators
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// IsCurrent reports whether a resolution is still the authoritative one
func (rv *Resolver) IsCurrent(r *Resolution) bool {
	return r != nil && r.generation == rv.generation.Load()
}

// Resolve starts the aggregation for one click. A forced feature (one
// the host view already identified via its own hit test) seeds the
// result ahead of all source-driven features. Individual source
// failures contribute zero features and never fail the aggregate.
func (rv *Resolver) Resolve(ctx context.Context, click ClickEvent, forced *source.Feature) *Resolution {
	gen := rv.generation.Add(1)
	res := &Resolution{
		Click:      click,
		generation: gen,
		done:       make(chan struct{}),
	}

	// No map point means the click landed outside the world: nothing
	// to query, only a forced feature can still open the popup.
	var eligible []*source.DataSource
	var extent orb.Bound
	if click.Map != nil {
		eligible = source.Eligible(rv.cfg.Sources(), rv.cfg.Bindings, rv.cfg.ViewIs3D)
		extent = rv.toleranceExtent(*click.Map, eligible)
	}

	// The forced feature is prepended as an already-resolved singleton
	// unless its own graphics source is queried anyway and would return
	// the same graphic.
	includeForced := forced != nil
	if includeForced && forced.Source != nil && forced.Source.Kind == source.KindGraphics {
		for _, s := range eligible {
			if s == forced.Source {
				includeForced = false
				break
			}
		}
	}

	// Slot 0 holds the forced feature; each eligible source owns one
	// slot, so the final order never depends on settle order.
	slots := make([][]source.Feature, len(eligible)+1)
	if includeForced {
		slots[0] = []source.Feature{*forced}
	}

	var wg sync.WaitGroup
	var anyResult atomic.Bool
	for i, s := range eligible {
		wg.Add(1)
		go func(slot int, s *source.DataSource) {
			defer wg.Done()

			feats, err := rv.query(ctx, s, click, extent, forced)
			if err != nil {
				// A failed source contributes zero features, never an
				// aggregate failure
				logging.Debug("source query failed", "source", s.Name, "kind", s.Kind, "err", err)
				return
			}

			for j := range feats {
				if feats[j].Source == nil {
					feats[j].Source = s
				}
			}
			if len(feats) > 0 {
				anyResult.Store(true)
			}
			slots[slot] = feats
		}(i+1, s)
	}

	go func() {
		wg.Wait()

		var all []source.Feature
		for _, feats := range slots {
			all = append(all, feats...)
		}

		res.hasResult = anyResult.Load() || forced != nil
		if res.hasResult {
			res.set = NewFeatureSet(all)
		}
		logging.Debug("resolution settled",
			"generation", gen, "features", len(all), "hasResult", res.hasResult)
		close(res.done)
	}()

	return res
}

// toleranceExtent builds the click-tolerance region around a map point,
// reprojected when the terrain spatial reference differs from the view's
func (rv *Resolver) toleranceExtent(center orb.Point, eligible []*source.DataSource) orb.Bound {
	tolerance := source.ComputeTolerance(rv.cfg.Baseline, eligible)

	resolution := 1.0
	if rv.cfg.ResolutionAt != nil {
		resolution = rv.cfg.ResolutionAt(center)
	}

	extent := geo.ToleranceExtent(center, tolerance, resolution)
	if rv.cfg.TerrainSR != rv.cfg.ViewSR {
		extent = geo.ReprojectBound(extent, rv.cfg.ViewSR, rv.cfg.TerrainSR)
	}
	return extent
}

// query dispatches the query idiom matching the source's kind
func (rv *Resolver) query(ctx context.Context, s *source.DataSource, click ClickEvent, extent orb.Bound, forced *source.Feature) ([]source.Feature, error) {
	switch {
	case s.Kind == source.KindRaster:
		// Rasters sample the exact click location, not the extent
		pq := s.PointQuerier()
		if pq == nil || click.Map == nil {
			return nil, nil
		}
		return pq.QueryPoint(ctx, *click.Map)

	case s.Kind.AlwaysQueryable():
		return filterGraphics(s, extent), nil

	case s.Kind == source.KindMapImage:
		// Rendered services expose popup data through their binding
		binding := rv.binding(s)
		if binding == nil || binding.PopupData == nil {
			return nil, nil
		}
		return binding.PopupData(ctx, extent)

	default:
		return rv.queryExtent(ctx, s, extent, forced)
	}
}

// queryExtent runs a spatial feature query and applies the local
// corrections: forced-feature dedupe and the rendered-graphics filter
func (rv *Resolver) queryExtent(ctx context.Context, s *source.DataSource, extent orb.Bound, forced *source.Feature) ([]source.Feature, error) {
	eq := s.ExtentQuerier()
	if eq == nil {
		return nil, nil
	}

	feats, err := eq.QueryExtent(ctx, extent)
	if err != nil {
		return nil, err
	}

	if forced != nil {
		feats = dropForcedDuplicate(s, feats, forced)
	} else if binding := rv.binding(s); binding != nil && binding.RenderedIDs != nil {
		// Keep results consistent with what the scene actually renders
		kept := feats[:0]
		for _, f := range feats {
			if _, ok := binding.RenderedIDs[f.ID]; ok {
				kept = append(kept, f)
			}
		}
		feats = kept
	}

	if h := s.Hydrator(); h != nil && len(feats) > 0 {
		feats, err = h.HydrateAttributes(ctx, feats)
		if err != nil {
			return nil, err
		}
	}

	return feats, nil
}

func (rv *Resolver) binding(s *source.DataSource) *source.ViewBinding {
	if rv.cfg.Bindings == nil {
		return nil
	}
	return rv.cfg.Bindings(s)
}

// dropForcedDuplicate removes features that duplicate the forced
// feature when both belong to the same source with a unique ID field
func dropForcedDuplicate(s *source.DataSource, feats []source.Feature, forced *source.Feature) []source.Feature {
	if forced.Source != s || s.ObjectIDField == "" {
		return feats
	}
	forcedID := forced.ObjectID()
	if forcedID == "" {
		return feats
	}

	kept := feats[:0]
	for _, f := range feats {
		if f.ObjectID() == forcedID {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// filterGraphics filters a pre-loaded graphics collection locally:
// the graphic must be visible, intersect the tolerance extent, and for
// raw graphics collections carry a popup template
func filterGraphics(s *source.DataSource, extent orb.Bound) []source.Feature {
	var hits []source.Feature
	for _, f := range s.Graphics() {
		if !f.Visible {
			continue
		}
		if s.Kind == source.KindGraphics && s.Template == nil && f.Template == nil {
			continue
		}
		if !geo.Intersects(f.Geometry, extent) {
			continue
		}
		hits = append(hits, f)
	}
	return hits
}
