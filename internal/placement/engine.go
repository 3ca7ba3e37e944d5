package placement

import "popmap/internal/geo"

// PointerClearance is the fixed gap in cells between the anchor and the
// popup body, where the pointer glyph is drawn
const PointerClearance = 1

// Engine computes popup placement from the anchor point, the measured
// content box, and the viewport. It remembers the last alignment so an
// anchor that scrolls out of frame does not make the popup jump.
type Engine struct {
	last Alignment
}

// NewEngine creates a placement engine
func NewEngine() *Engine {
	return &Engine{last: AlignTopCenter}
}

// Last returns the most recently computed floating alignment
func (e *Engine) Last() Alignment {
	return e.last
}

// Alignment computes which side of the anchor the floating popup should
// occupy. The popup nominally sits directly above the anchor
// (top-center) and flips away from viewport edges its full rendered
// footprint would overflow.
func (e *Engine) Alignment(anchor geo.ScreenPoint, content ContentBox, vp geo.Viewport) Alignment {
	if vp.IsZero() {
		// No attached viewport: neutral default, never an error
		return AlignTopCenter
	}
	if !vp.Contains(anchor) {
		return e.last
	}

	halfWidth := (content.Width + 1) / 2
	footHeight := content.Height + PointerClearance

	overLeft := anchor.X-halfWidth < vp.Pad.Left
	overRight := anchor.X+halfWidth > vp.Width-vp.Pad.Right
	overTop := anchor.Y-footHeight < vp.Pad.Top
	overBottom := anchor.Y+footHeight > vp.Height-vp.Pad.Bottom

	var a Alignment
	switch {
	case overTop && overBottom:
		a = AlignTopCenter
	case overLeft:
		if overTop {
			a = AlignBottomRight
		} else {
			a = AlignTopRight
		}
	case overRight:
		if overTop {
			a = AlignBottomLeft
		} else {
			a = AlignTopLeft
		}
	case overTop:
		a = AlignBottomCenter
	default:
		a = AlignTopCenter
	}

	e.last = a
	return a
}

// DockPosition resolves the policy's dock position for the current
// viewport. Fixed positions pass through; "auto" prefers the top
// trailing corner for the locale's text direction, falling back to
// bottom-center once the usable width reaches the smallest breakpoint.
func (e *Engine) DockPosition(policy DockPolicy, vp geo.Viewport) DockPosition {
	if policy.Position != DockAuto && policy.Position != DockNone {
		return policy.Position
	}

	if !vp.IsZero() && policy.Breakpoints.Enabled && vp.UsableWidth() <= policy.Breakpoints.Width {
		return DockBottomCenter
	}

	if policy.RTL {
		return DockTopLeft
	}
	return DockTopRight
}

// State assembles the placement snapshot for the current dock state
func (e *Engine) State(docked bool, policy DockPolicy, anchor geo.ScreenPoint, content ContentBox, vp geo.Viewport) PlacementState {
	if docked {
		return PlacementState{
			Alignment:    AlignNone,
			DockPosition: e.DockPosition(policy, vp),
			DockEnabled:  true,
		}
	}
	return PlacementState{
		Alignment:    e.Alignment(anchor, content, vp),
		DockPosition: DockNone,
		DockEnabled:  false,
	}
}

// Offsets are concrete cell offsets for the popup's bounding box,
// measured from the matching viewport edge. A nil edge is unconstrained.
type Offsets struct {
	Top    *int
	Left   *int
	Bottom *int
	Right  *int
}

// ComputeOffsets translates a placement into pixel offsets. Floating
// alignments position relative to the anchor plus the pointer
// clearance; docked positions pin to the viewport padding and ignore
// the anchor entirely.
func ComputeOffsets(state PlacementState, anchor geo.ScreenPoint, content ContentBox, vp geo.Viewport) Offsets {
	if state.DockEnabled {
		return dockOffsets(state.DockPosition, content, vp)
	}

	var off Offsets
	switch state.Alignment {
	case AlignTopLeft, AlignBottomLeft:
		off.Right = intp(vp.Width - anchor.X + PointerClearance)
	case AlignTopRight, AlignBottomRight:
		off.Left = intp(anchor.X + PointerClearance)
	default:
		off.Left = intp(anchor.X - content.Width/2)
	}

	switch state.Alignment {
	case AlignBottomLeft, AlignBottomCenter, AlignBottomRight:
		off.Top = intp(anchor.Y + PointerClearance)
	default:
		off.Bottom = intp(vp.Height - anchor.Y + PointerClearance)
	}

	return off
}

// dockOffsets pins the popup to the padded viewport edges
func dockOffsets(pos DockPosition, content ContentBox, vp geo.Viewport) Offsets {
	var off Offsets

	switch pos {
	case DockTopLeft, DockTopCenter, DockTopRight:
		off.Top = intp(vp.Pad.Top)
	default:
		off.Bottom = intp(vp.Pad.Bottom)
	}

	switch pos {
	case DockTopLeft, DockBottomLeft:
		off.Left = intp(vp.Pad.Left)
	case DockTopRight, DockBottomRight:
		off.Right = intp(vp.Pad.Right)
	default:
		off.Left = intp((vp.Width - content.Width) / 2)
	}

	return off
}

// ResolveXY turns offsets into the popup's top-left screen cell
func ResolveXY(off Offsets, content ContentBox, vp geo.Viewport) geo.ScreenPoint {
	var p geo.ScreenPoint

	switch {
	case off.Left != nil:
		p.X = *off.Left
	case off.Right != nil:
		p.X = vp.Width - *off.Right - content.Width
	}

	switch {
	case off.Top != nil:
		p.Y = *off.Top
	case off.Bottom != nil:
		p.Y = vp.Height - *off.Bottom - content.Height
	}

	return p
}

func intp(v int) *int {
	return &v
}
