package placement

import (
	"testing"

	"popmap/internal/geo"
)

func autoPolicy() DockPolicy {
	return DockPolicy{
		ButtonEnabled: true,
		Position:      DockAuto,
		Breakpoints:   DefaultBreakpoints,
		AutoDock:      true,
	}
}

func TestMonitorShrinkDockGrowUndock(t *testing.T) {
	var changes []PlacementState
	m := NewMonitor(autoPolicy(), func(st PlacementState) {
		changes = append(changes, st)
	})

	wide := geo.Viewport{Width: 600, Height: 600}
	narrow := geo.Viewport{Width: 500, Height: 600}

	m.SetViewport(wide)
	if m.Docked() {
		t.Fatal("docked after initial wide viewport")
	}
	if len(changes) != 0 {
		t.Fatalf("unexpected transitions: %d", len(changes))
	}

	m.SetViewport(narrow)
	if !m.Docked() {
		t.Fatal("not docked after shrinking below the breakpoint")
	}
	if len(changes) != 1 {
		t.Fatalf("transitions after shrink = %d, want 1", len(changes))
	}
	if got := changes[0]; !got.DockEnabled || got.DockPosition != DockBottomCenter || got.Alignment != AlignNone {
		t.Errorf("dock transition state = %+v", got)
	}

	m.SetViewport(wide)
	if m.Docked() {
		t.Fatal("still docked after growing back above the breakpoint")
	}
	if len(changes) != 2 {
		t.Fatalf("transitions after grow = %d, want 2", len(changes))
	}
	if got := changes[1]; got.DockEnabled || got.DockPosition != DockNone || got.Alignment == AlignNone {
		t.Errorf("undock transition state = %+v", got)
	}
}

func TestMonitorResizeWithinRegimeNoTransition(t *testing.T) {
	transitions := 0
	m := NewMonitor(autoPolicy(), func(PlacementState) { transitions++ })

	m.SetViewport(geo.Viewport{Width: 600, Height: 600})
	m.SetViewport(geo.Viewport{Width: 580, Height: 600})
	m.SetViewport(geo.Viewport{Width: 560, Height: 600})

	if transitions != 0 {
		t.Errorf("transitions = %d, want 0", transitions)
	}

	m.SetViewport(geo.Viewport{Width: 500, Height: 600})
	m.SetViewport(geo.Viewport{Width: 480, Height: 600})
	if transitions != 1 {
		t.Errorf("transitions after staying docked = %d, want 1", transitions)
	}
}

func TestMonitorAutoDockDisabled(t *testing.T) {
	policy := autoPolicy()
	policy.AutoDock = false
	m := NewMonitor(policy, nil)

	m.SetViewport(geo.Viewport{Width: 600, Height: 600})
	m.SetViewport(geo.Viewport{Width: 500, Height: 600})

	if m.Docked() {
		t.Error("docked despite AutoDock disabled")
	}
}

func TestMonitorToggleDockOverridesBreakpoints(t *testing.T) {
	m := NewMonitor(autoPolicy(), nil)
	m.SetViewport(geo.Viewport{Width: 600, Height: 600})

	m.ToggleDock()
	if !m.Docked() {
		t.Fatal("explicit toggle did not dock on a wide viewport")
	}

	m.ToggleDock()
	if m.Docked() {
		t.Fatal("explicit toggle did not undock")
	}
}

func TestMonitorSetPolicyReevaluates(t *testing.T) {
	m := NewMonitor(autoPolicy(), nil)
	m.SetViewport(geo.Viewport{Width: 600, Height: 600})
	if m.Docked() {
		t.Fatal("docked on a wide viewport")
	}

	// Raising the breakpoint above the current width must dock
	policy := autoPolicy()
	policy.Breakpoints.Width = 700
	m.SetPolicy(policy)
	if !m.Docked() {
		t.Error("not docked after policy raised the breakpoint")
	}
}

func TestMonitorStateWhileDocked(t *testing.T) {
	m := NewMonitor(autoPolicy(), nil)
	m.SetViewport(geo.Viewport{Width: 500, Height: 600})
	if !m.Docked() {
		t.Fatal("not docked below breakpoint")
	}

	state, off := m.Offsets(geo.ScreenPoint{X: 250, Y: 300}, ContentBox{Width: 20, Height: 8})
	if state.Alignment != AlignNone || state.DockPosition != DockBottomCenter {
		t.Errorf("docked state = %+v", state)
	}
	if off.Bottom == nil {
		t.Error("docked bottom-center offsets missing Bottom")
	}
}
