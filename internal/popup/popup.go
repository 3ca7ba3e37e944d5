package popup

import (
	"context"
	"sync"

	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/placement"
	"popmap/internal/resolve"
	"popmap/internal/source"
)

// Popup is one popup instance: it exclusively owns a FeatureSet and
// PlacementState pair and coordinates the resolver and the dock
// monitor. Concurrent popup instances share only read-only references
// to the map and view.
type Popup struct {
	resolver *resolve.Resolver
	monitor  *placement.Monitor

	mu        sync.Mutex
	open      bool
	resolving bool
	anchor    geo.ScreenPoint
	current   *resolve.Resolution
	set       *resolve.FeatureSet
}

// New creates a popup over a resolver and dock monitor
func New(resolver *resolve.Resolver, monitor *placement.Monitor) *Popup {
	return &Popup{
		resolver: resolver,
		monitor:  monitor,
	}
}

// Open starts resolving features for a click and marks an explicit open
// request. A newer Open supersedes any resolution still in flight: the
// older one may settle quietly but its result is never displayed.
func (p *Popup) Open(ctx context.Context, click resolve.ClickEvent, forced *source.Feature) {
	res := p.resolver.Resolve(ctx, click, forced)

	p.mu.Lock()
	p.open = true
	p.resolving = true
	p.anchor = click.Screen
	p.current = res
	p.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-res.Done():
		}
		p.apply(res)
	}()
}

// apply installs a settled resolution, unless a newer click has
// superseded it in the meantime
func (p *Popup) apply(res *resolve.Resolution) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != res || !p.resolver.IsCurrent(res) {
		logging.Debug("discarding stale resolution", "generation", res.Generation())
		return
	}

	p.resolving = false

	set, hasResult := res.Result()
	if !hasResult || set.Count() == 0 {
		// No result: the popup stays closed rather than showing empty
		p.set = nil
		p.open = false
		return
	}
	p.set = set
}

// Close withdraws the open request; the current feature set is kept
// until the next resolution replaces it
func (p *Popup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

// Clear closes the popup and drops its features
func (p *Popup) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.set = nil
	p.current = nil
	p.resolving = false
}

// Visible reports whether the rendering collaborator should draw the
// popup: features resolved, not still resolving, and an explicit open
// request active
func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open && !p.resolving && p.set.Count() > 0
}

// Resolving reports whether a resolution is still in flight
func (p *Popup) Resolving() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolving
}

// FeatureSet returns the currently displayed feature set, nil when none
func (p *Popup) FeatureSet() *resolve.FeatureSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}

// SelectedFeature returns the selected feature of the current set
func (p *Popup) SelectedFeature() (source.Feature, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set.SelectedFeature()
}

// Count returns the number of resolved features
func (p *Popup) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set.Count()
}

// Next advances the feature selection, wrapping past the end
func (p *Popup) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set.Next()
}

// Previous moves the feature selection back, wrapping past the start
func (p *Popup) Previous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set.Previous()
}

// Select sets the feature selection index, clamped to the valid range
func (p *Popup) Select(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set.Select(i)
}

// Anchor returns the screen point of the click that opened the popup
func (p *Popup) Anchor() geo.ScreenPoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.anchor
}

// Placement computes the current placement and offsets for a measured
// content box
func (p *Popup) Placement(content placement.ContentBox) (placement.PlacementState, placement.Offsets) {
	p.mu.Lock()
	anchor := p.anchor
	p.mu.Unlock()
	return p.monitor.Offsets(anchor, content)
}

// ToggleDock flips the dock state on an explicit request
func (p *Popup) ToggleDock() {
	p.monitor.ToggleDock()
}

// Docked reports whether the popup is currently docked
func (p *Popup) Docked() bool {
	return p.monitor.Docked()
}

// SetViewport forwards a viewport resize to the dock monitor
func (p *Popup) SetViewport(vp geo.Viewport) {
	p.monitor.SetViewport(vp)
}

// SetPolicy forwards a dock policy change to the monitor
func (p *Popup) SetPolicy(policy placement.DockPolicy) {
	p.monitor.SetPolicy(policy)
}
