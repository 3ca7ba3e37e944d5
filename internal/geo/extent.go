package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// SpatialReference identifies the coordinate system map geometry is
// expressed in
type SpatialReference int

const (
	// WGS84 is geographic lat/lon in decimal degrees
	WGS84 SpatialReference = iota
	// WebMercator is the spherical mercator projection in meters
	WebMercator
)

// String returns a string representation of the spatial reference
func (sr SpatialReference) String() string {
	switch sr {
	case WGS84:
		return "WGS84"
	case WebMercator:
		return "WebMercator"
	default:
		return "Unknown"
	}
}

// ToleranceExtent builds a square extent centered on a map point. The
// side length is twice the pixel tolerance scaled by the ground
// resolution at that point, so a 6px tolerance at a coarse zoom covers
// more ground than at a fine one.
func ToleranceExtent(center orb.Point, tolerancePx, resolution float64) orb.Bound {
	half := tolerancePx * resolution
	return orb.Bound{
		Min: orb.Point{center.X() - half, center.Y() - half},
		Max: orb.Point{center.X() + half, center.Y() + half},
	}
}

// ReprojectPoint converts a point between spatial references
func ReprojectPoint(p orb.Point, from, to SpatialReference) orb.Point {
	if from == to {
		return p
	}
	if from == WGS84 && to == WebMercator {
		return project.WGS84.ToMercator(p)
	}
	return project.Mercator.ToWGS84(p)
}

// ReprojectBound converts a bound between spatial references
func ReprojectBound(b orb.Bound, from, to SpatialReference) orb.Bound {
	if from == to {
		return b
	}
	return orb.Bound{
		Min: ReprojectPoint(b.Min, from, to),
		Max: ReprojectPoint(b.Max, from, to),
	}
}

// Intersects checks whether a geometry touches an extent. Bound checks
// are exact for points; for lines and polygons a vertex inside the
// extent or the extent center inside the polygon counts as a hit, which
// is enough precision for a click-tolerance region a few cells wide.
func Intersects(g orb.Geometry, b orb.Bound) bool {
	if g == nil {
		return false
	}
	if !b.Intersects(g.Bound()) {
		return false
	}

	switch geom := g.(type) {
	case orb.Point:
		return b.Contains(geom)
	case orb.MultiPoint:
		for _, p := range geom {
			if b.Contains(p) {
				return true
			}
		}
		return false
	case orb.LineString:
		return lineTouches(geom, b)
	case orb.MultiLineString:
		for _, ls := range geom {
			if lineTouches(ls, b) {
				return true
			}
		}
		return false
	case orb.Ring:
		return lineTouches(orb.LineString(geom), b) || planar.RingContains(geom, b.Center())
	case orb.Polygon:
		if planar.PolygonContains(geom, b.Center()) {
			return true
		}
		for _, ring := range geom {
			if lineTouches(orb.LineString(ring), b) {
				return true
			}
		}
		return false
	case orb.MultiPolygon:
		for _, poly := range geom {
			if Intersects(poly, b) {
				return true
			}
		}
		return false
	default:
		// Fall back to the bound check already performed above
		return true
	}
}

// lineTouches checks whether any vertex of a line falls inside the bound
func lineTouches(ls orb.LineString, b orb.Bound) bool {
	for _, p := range ls {
		if b.Contains(p) {
			return true
		}
	}
	return false
}
