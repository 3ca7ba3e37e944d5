package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/render"
	"popmap/internal/source"
)

// MapView displays the map layers
type MapView struct {
	renderer    *render.MapRenderer
	projection  *geo.Projection
	canvas      *render.Canvas
	sources     *source.Map
	width       int
	height      int
	radiusMiles float64
	aspectRatio float64
}

// NewMapView creates a new map view centered on the given coordinates
func NewMapView(width, height int, sources *source.Map, centerLat, centerLon, radiusMiles, aspectRatio float64) *MapView {
	projection := geo.NewProjection(centerLat, centerLon, radiusMiles, width, height, aspectRatio)
	canvas := render.NewCanvas(width, height)
	renderer := render.NewMapRenderer(projection, sources, canvas)

	return &MapView{
		renderer:    renderer,
		projection:  projection,
		canvas:      canvas,
		sources:     sources,
		width:       width,
		height:      height,
		radiusMiles: radiusMiles,
		aspectRatio: aspectRatio,
	}
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen, selected *source.Feature) {
	m.canvas.Clear()
	m.renderer.RenderMap(selected)
	m.canvas.Blit(screen, 0, 0)
}

// MapPointAt converts a screen cell to a map coordinate
func (m *MapView) MapPointAt(x, y int) (orb.Point, bool) {
	return m.projection.MapPointAt(x, y)
}

// Resolution returns degrees of longitude per screen cell
func (m *MapView) Resolution() float64 {
	return m.projection.Resolution()
}

// HitTest returns the topmost point graphic rendered at the given cell,
// or nil when the cell holds no graphic
func (m *MapView) HitTest(x, y int) *source.Feature {
	expanded := source.Expand(m.sources.Sources())
	for i := len(expanded) - 1; i >= 0; i-- {
		s := expanded[i]
		if !s.Visible || !s.Kind.AlwaysQueryable() {
			continue
		}
		feats := s.Graphics()
		for j := len(feats) - 1; j >= 0; j-- {
			f := feats[j]
			if !f.Visible {
				continue
			}
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			p := m.projection.Project(pt.Y(), pt.X())
			if p.X == x && p.Y == y {
				return &f
			}
		}
	}
	return nil
}

// Pan shifts the map center by the given fraction of the visible span
func (m *MapView) Pan(dx, dy float64) {
	bounds := m.projection.GetBounds()
	spanLon := bounds.Max.X() - bounds.Min.X()
	spanLat := bounds.Max.Y() - bounds.Min.Y()

	lat, lon := m.projection.GetCenter()
	m.projection.UpdateCenter(lat+dy*spanLat, lon+dx*spanLon)
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.projection.UpdateDimensions(width, height)

	m.canvas = render.NewCanvas(width, height)
	m.renderer.UpdateCanvas(m.canvas)
}

// GetProjection returns the current projection
func (m *MapView) GetProjection() *geo.Projection {
	return m.projection
}

// ZoomIn decreases the radius (zooms in)
func (m *MapView) ZoomIn() {
	newRadius := m.radiusMiles * 0.75
	if newRadius < 10 {
		newRadius = 10
	}
	m.SetRadius(newRadius)
}

// ZoomOut increases the radius (zooms out)
func (m *MapView) ZoomOut() {
	newRadius := m.radiusMiles * 1.33
	if newRadius > 12000 {
		newRadius = 12000
	}
	m.SetRadius(newRadius)
}

// SetRadius updates the map radius and recalculates the projection
func (m *MapView) SetRadius(radiusMiles float64) {
	m.radiusMiles = radiusMiles
	centerLat, centerLon := m.projection.GetCenter()
	m.projection = geo.NewProjection(centerLat, centerLon, radiusMiles, m.width, m.height, m.aspectRatio)
	m.renderer.UpdateProjection(m.projection)
	logging.Debug("map radius changed", "miles", radiusMiles)
}

// GetRadius returns the current map radius
func (m *MapView) GetRadius() float64 {
	return m.radiusMiles
}
