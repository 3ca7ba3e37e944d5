package placement

import (
	"testing"

	"popmap/internal/geo"
)

func TestCrossedBreakpoint(t *testing.T) {
	bp := DefaultBreakpoints
	wide := geo.Viewport{Width: 600, Height: 600}
	narrow := geo.Viewport{Width: 500, Height: 600}
	short := geo.Viewport{Width: 600, Height: 500}

	tests := []struct {
		name        string
		bp          Breakpoints
		prev, cur   geo.Viewport
		wantCrossed bool
		wantBelow   bool
	}{
		{"shrink below width", bp, wide, narrow, true, true},
		{"grow back above", bp, narrow, wide, true, false},
		{"shrink below height", bp, wide, short, true, true},
		{"resize above threshold", bp, wide, geo.Viewport{Width: 560, Height: 600}, false, false},
		{"resize below threshold", bp, narrow, geo.Viewport{Width: 480, Height: 600}, false, true},
		{"first measurement below", bp, geo.Viewport{}, narrow, true, true},
		{"first measurement above", bp, geo.Viewport{}, wide, false, false},
		{"disabled never crosses", Breakpoints{Width: 544, Height: 544}, wide, narrow, false, false},
		{"current zero ignored", bp, wide, geo.Viewport{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crossed, below := CrossedBreakpoint(tt.bp, tt.prev, tt.cur)
			if crossed != tt.wantCrossed || below != tt.wantBelow {
				t.Errorf("CrossedBreakpoint() = (%v, %v), want (%v, %v)",
					crossed, below, tt.wantCrossed, tt.wantBelow)
			}
		})
	}
}

func TestCrossedBreakpointSymmetric(t *testing.T) {
	// Crossing down and crossing back up must both register
	bp := DefaultBreakpoints
	a := geo.Viewport{Width: 600, Height: 600}
	b := geo.Viewport{Width: 500, Height: 600}

	down, _ := CrossedBreakpoint(bp, a, b)
	up, _ := CrossedBreakpoint(bp, b, a)
	if !down || !up {
		t.Errorf("crossing symmetry: down=%v up=%v, want both true", down, up)
	}
}

func TestCrossedBreakpointUsesUsableSize(t *testing.T) {
	bp := DefaultBreakpoints

	// 600 wide but padding leaves only 520 usable
	padded := geo.Viewport{Width: 600, Height: 600, Pad: geo.Padding{Left: 40, Right: 40}}
	_, below := CrossedBreakpoint(bp, geo.Viewport{Width: 600, Height: 600}, padded)
	if !below {
		t.Error("padded viewport below threshold not detected")
	}
}
