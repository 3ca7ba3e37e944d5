package geo

// ScreenPoint represents a screen coordinate
// Coordinates are 0-indexed with (0, 0) at top-left
type ScreenPoint struct {
	X int
	Y int
}

// Padding is per-edge space excluded from the usable viewport area
type Padding struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Viewport describes the drawable screen region and its configured padding
type Viewport struct {
	Width  int
	Height int
	Pad    Padding
}

// IsZero returns true if the viewport has no usable area
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Contains checks if a screen point falls inside the visible rectangle
func (v Viewport) Contains(p ScreenPoint) bool {
	return p.X >= 0 && p.X < v.Width && p.Y >= 0 && p.Y < v.Height
}

// UsableWidth returns the viewport width minus horizontal padding
func (v Viewport) UsableWidth() int {
	w := v.Width - v.Pad.Left - v.Pad.Right
	if w < 0 {
		return 0
	}
	return w
}

// UsableHeight returns the viewport height minus vertical padding
func (v Viewport) UsableHeight() int {
	h := v.Height - v.Pad.Top - v.Pad.Bottom
	if h < 0 {
		return 0
	}
	return h
}
