package resolve

import (
	"github.com/paulmach/orb"

	"popmap/internal/geo"
)

// MouseButton identifies which button produced a click
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// ClickEvent is a single user click, immutable once produced by the
// hosting view
type ClickEvent struct {
	// Screen is the click position in screen cells
	Screen geo.ScreenPoint

	// Map is the click position in map units, nil when the click
	// landed outside world bounds
	Map *orb.Point

	// Button is the mouse button that produced the click
	Button MouseButton
}
