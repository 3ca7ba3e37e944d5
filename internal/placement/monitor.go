package placement

import (
	"popmap/internal/geo"
	"popmap/internal/logging"
)

// Monitor is the Floating/Docked state machine. It watches viewport
// size and explicit toggles, transitions the dock state, and recomputes
// placement on every transition. The machine runs for the lifetime of
// the popup instance; no state is terminal.
type Monitor struct {
	engine   *Engine
	policy   DockPolicy
	viewport geo.Viewport
	docked   bool

	// onChange notifies the rendering collaborator to reflow
	onChange func(PlacementState)
}

// NewMonitor creates a monitor in the Floating state
func NewMonitor(policy DockPolicy, onChange func(PlacementState)) *Monitor {
	return &Monitor{
		engine:   NewEngine(),
		policy:   policy,
		onChange: onChange,
	}
}

// Docked returns true while in the Docked state
func (m *Monitor) Docked() bool {
	return m.docked
}

// Viewport returns the last observed viewport
func (m *Monitor) Viewport() geo.Viewport {
	return m.viewport
}

// Policy returns the current dock policy
func (m *Monitor) Policy() DockPolicy {
	return m.policy
}

// SetViewport records a resize and re-evaluates the breakpoints. A
// crossing in either dimension, in either direction, flips the dock
// state when auto-docking is enabled.
func (m *Monitor) SetViewport(vp geo.Viewport) {
	prev := m.viewport
	m.viewport = vp

	crossed, below := CrossedBreakpoint(m.policy.Breakpoints, prev, vp)
	if crossed && m.policy.AutoDock && m.docked != below {
		m.transition(below)
	}
}

// SetPolicy replaces the dock policy and re-evaluates the current
// viewport against the new breakpoints
func (m *Monitor) SetPolicy(policy DockPolicy) {
	m.policy = policy

	if m.viewport.IsZero() || !policy.AutoDock || !policy.Breakpoints.Enabled {
		return
	}
	below := atOrBelow(policy.Breakpoints, m.viewport)
	if m.docked != below {
		m.transition(below)
	}
}

// ToggleDock flips the dock state on an explicit user request,
// regardless of breakpoints
func (m *Monitor) ToggleDock() {
	m.transition(!m.docked)
}

// State recomputes the placement snapshot for the current dock state
func (m *Monitor) State(anchor geo.ScreenPoint, content ContentBox) PlacementState {
	return m.engine.State(m.docked, m.policy, anchor, content, m.viewport)
}

// Offsets computes the concrete cell offsets for the current placement
func (m *Monitor) Offsets(anchor geo.ScreenPoint, content ContentBox) (PlacementState, Offsets) {
	state := m.State(anchor, content)
	return state, ComputeOffsets(state, anchor, content, m.viewport)
}

// transition enters the Floating or Docked state and triggers a
// placement recomputation downstream
func (m *Monitor) transition(docked bool) {
	m.docked = docked
	logging.Debug("dock state changed", "docked", docked)

	if m.onChange == nil {
		return
	}

	// Anchor and content are unknown here; report the last computed
	// alignment and let the collaborator ask for fresh offsets with its
	// own measurements on reflow
	state := PlacementState{Alignment: m.engine.Last(), DockPosition: DockNone}
	if docked {
		state = PlacementState{
			Alignment:    AlignNone,
			DockPosition: m.engine.DockPosition(m.policy, m.viewport),
			DockEnabled:  true,
		}
	}
	m.onChange(state)
}
