package placement

import "popmap/internal/geo"

// Breakpoints are viewport size thresholds that auto-toggle docking.
// Sizes at or below a threshold count as "below".
type Breakpoints struct {
	Width   int
	Height  int
	Enabled bool
}

// DefaultBreakpoints matches the common phone-width threshold
var DefaultBreakpoints = Breakpoints{Width: 544, Height: 544, Enabled: true}

// DockPolicy configures docking behavior. Supplied externally and
// read-only to the placement engine.
type DockPolicy struct {
	// ButtonEnabled shows the dock toggle in the rendering collaborator
	ButtonEnabled bool

	// Position is a fixed dock position, or DockAuto to pick one from
	// viewport size and text direction
	Position DockPosition

	// Breakpoints auto-toggle docking on viewport resizes
	Breakpoints Breakpoints

	// AutoDock lets breakpoint crossings engage and disengage the dock
	AutoDock bool

	// RTL picks the mirrored default corner for right-to-left locales
	RTL bool
}

// CrossedBreakpoint reports whether the usable (padding-excluded)
// viewport size crossed a breakpoint threshold between prev and cur in
// either dimension, and whether the current size sits at or below the
// threshold. Crossings are symmetric: shrinking below and growing back
// above both count.
func CrossedBreakpoint(bp Breakpoints, prev, cur geo.Viewport) (crossed, below bool) {
	if !bp.Enabled || cur.IsZero() {
		return false, false
	}

	curBelow := atOrBelow(bp, cur)
	if prev.IsZero() {
		// First measurement: treat a below-threshold start as a crossing
		return curBelow, curBelow
	}

	prevBelow := atOrBelow(bp, prev)
	return prevBelow != curBelow, curBelow
}

func atOrBelow(bp Breakpoints, vp geo.Viewport) bool {
	return vp.UsableWidth() <= bp.Width || vp.UsableHeight() <= bp.Height
}
