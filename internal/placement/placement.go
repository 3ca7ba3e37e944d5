package placement

// Alignment is where a floating popup sits relative to its anchor.
// AlignNone means the popup is docked and has no floating alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignTopLeft
	AlignTopCenter
	AlignTopRight
	AlignBottomLeft
	AlignBottomCenter
	AlignBottomRight
)

// String returns a string representation of the alignment
func (a Alignment) String() string {
	switch a {
	case AlignNone:
		return "none"
	case AlignTopLeft:
		return "top-left"
	case AlignTopCenter:
		return "top-center"
	case AlignTopRight:
		return "top-right"
	case AlignBottomLeft:
		return "bottom-left"
	case AlignBottomCenter:
		return "bottom-center"
	case AlignBottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// DockPosition is the viewport corner or edge a docked popup pins to.
// DockNone means the popup is floating and has no dock position.
type DockPosition int

const (
	DockNone DockPosition = iota
	DockTopLeft
	DockTopCenter
	DockTopRight
	DockBottomLeft
	DockBottomCenter
	DockBottomRight
	// DockAuto is a policy value resolved per viewport size and locale
	DockAuto
)

// String returns a string representation of the dock position
func (d DockPosition) String() string {
	switch d {
	case DockNone:
		return "none"
	case DockTopLeft:
		return "top-left"
	case DockTopCenter:
		return "top-center"
	case DockTopRight:
		return "top-right"
	case DockBottomLeft:
		return "bottom-left"
	case DockBottomCenter:
		return "bottom-center"
	case DockBottomRight:
		return "bottom-right"
	case DockAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// PlacementState is an immutable snapshot of where the popup anchors.
// Alignment is meaningful only while floating; DockPosition only while
// docked. The two are mutually exclusive views of the same decision.
type PlacementState struct {
	Alignment    Alignment
	DockPosition DockPosition
	DockEnabled  bool
}

// ContentBox is the measured popup content size in screen cells
type ContentBox struct {
	Width  int
	Height int
}
