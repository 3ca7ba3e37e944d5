package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/source"
)

// MapRenderer renders data source geometry to a canvas
type MapRenderer struct {
	projection *geo.Projection
	sources    *source.Map
	canvas     *Canvas
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(projection *geo.Projection, sources *source.Map, canvas *Canvas) *MapRenderer {
	return &MapRenderer{
		projection: projection,
		sources:    sources,
		canvas:     canvas,
	}
}

// RenderMap draws every visible source in map order, so later sources
// paint over earlier ones
func (m *MapRenderer) RenderMap(selected *source.Feature) {
	bounds := m.projection.GetBounds()

	for _, s := range source.Expand(m.sources.Sources()) {
		if !s.Visible || s.State != source.Loaded {
			continue
		}
		m.renderSource(s, bounds, selected)
	}
}

// renderSource draws one source's features that touch the visible bounds
func (m *MapRenderer) renderSource(s *source.DataSource, bounds orb.Bound, selected *source.Feature) {
	var feats []source.Feature
	switch {
	case s.Kind.AlwaysQueryable():
		feats = s.Graphics()
	case s.Kind == source.KindFeature:
		if sf, ok := s.ExtentQuerier().(*source.ShapefileSource); ok {
			feats = sf.Features()
		}
	default:
		// Rasters and rendered services have no client-side geometry
		return
	}

	style := StyleForKind(s.Kind)
	char := CharForKind(s.Kind)
	drawn := 0

	for i := range feats {
		f := &feats[i]
		if !f.Visible || f.Geometry == nil || !bounds.Intersects(f.Geometry.Bound()) {
			continue
		}

		st := style
		if selected != nil && selected.ID == f.ID {
			st = SelectedStyle(s.Kind)
		}
		m.renderGeometry(f.Geometry, char, st)

		if label := featureLabel(*f); label != "" {
			if pt, ok := f.Geometry.(orb.Point); ok {
				p := m.projection.Project(pt.Y(), pt.X())
				if p.X < m.canvas.Width()-len(label)-1 {
					m.canvas.DrawText(p.X+1, p.Y, label, StyleLabel)
				}
			}
		}
		drawn++
	}

	if logging.Enabled() && drawn > 0 {
		logging.Debug("rendered source", "source", s.Name, "features", drawn)
	}
}

// renderGeometry draws a single geometry
func (m *MapRenderer) renderGeometry(g orb.Geometry, char rune, style tcell.Style) {
	switch geom := g.(type) {
	case orb.Point:
		p := m.projection.Project(geom.Y(), geom.X())
		m.canvas.Set(p.X, p.Y, '●', style)
	case orb.MultiPoint:
		for _, pt := range geom {
			p := m.projection.Project(pt.Y(), pt.X())
			m.canvas.Set(p.X, p.Y, '●', style)
		}
	case orb.LineString:
		m.renderLine(geom, char, style)
	case orb.MultiLineString:
		for _, ls := range geom {
			m.renderLine(ls, char, style)
		}
	case orb.Ring:
		m.renderLine(orb.LineString(geom), char, style)
	case orb.Polygon:
		for _, ring := range geom {
			m.renderLine(orb.LineString(ring), char, style)
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			m.renderGeometry(poly, char, style)
		}
	}
}

// renderLine draws a polyline segment by segment
func (m *MapRenderer) renderLine(ls orb.LineString, char rune, style tcell.Style) {
	for i := 0; i < len(ls)-1; i++ {
		p1 := m.projection.Project(ls[i].Y(), ls[i].X())
		p2 := m.projection.Project(ls[i+1].Y(), ls[i+1].X())
		m.DrawLine(p1.X, p1.Y, p2.X, p2.Y, char, style)
	}
}

// featureLabel returns the short label for point graphics
func featureLabel(f source.Feature) string {
	if v, ok := f.Attributes["label"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// DrawLine implements Bresenham's line algorithm for drawing lines on the canvas
func (m *MapRenderer) DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		m.canvas.Set(x0, y0, char, style)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// abs returns the absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// UpdateProjection updates the renderer's projection
func (m *MapRenderer) UpdateProjection(projection *geo.Projection) {
	m.projection = projection
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}
