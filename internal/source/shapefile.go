package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"popmap/internal/geo"
)

// ShapefileSource serves extent queries from an ESRI shapefile loaded
// into memory. Geometry and attributes are read once at construction;
// queries only filter.
type ShapefileSource struct {
	features []Feature
}

// LoadShapefile reads a shapefile and returns a queryable source over
// its shapes. Attribute columns become feature attributes keyed by the
// trimmed DBF field name.
func LoadShapefile(path, idPrefix string) (*ShapefileSource, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", path, err)
	}
	defer shape.Close()

	// Field names in shapefiles are byte arrays, convert to string and trim nulls
	fields := shape.Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = strings.TrimRight(string(field.Name[:]), "\x00 ")
	}

	s := &ShapefileSource{}

	for shape.Next() {
		n, p := shape.Shape()

		var geometry orb.Geometry
		switch g := p.(type) {
		case *shp.PolyLine:
			line := make(orb.LineString, len(g.Points))
			for i, point := range g.Points {
				line[i] = orb.Point{point.X, point.Y}
			}
			if len(line) > 1 {
				geometry = line
			}
		case *shp.Polygon:
			ring := make(orb.Ring, len(g.Points))
			for i, point := range g.Points {
				ring[i] = orb.Point{point.X, point.Y}
			}
			if len(ring) > 1 {
				geometry = orb.Polygon{ring}
			}
		case *shp.Point:
			geometry = orb.Point{g.X, g.Y}
		}

		if geometry == nil {
			continue
		}

		attrs := make(map[string]any, len(names)+1)
		for i, name := range names {
			if v := strings.TrimSpace(shape.ReadAttribute(n, i)); v != "" {
				attrs[name] = v
			}
		}
		attrs["FID"] = n

		s.features = append(s.features, Feature{
			ID:         fmt.Sprintf("%s-%d", idPrefix, n),
			Geometry:   geometry,
			Attributes: attrs,
			Visible:    true,
		})
	}

	return s, nil
}

// QueryExtent returns the shapes intersecting the extent, in file order
func (s *ShapefileSource) QueryExtent(ctx context.Context, extent orb.Bound) ([]Feature, error) {
	var hits []Feature
	for _, f := range s.features {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if geo.Intersects(f.Geometry, extent) {
			hits = append(hits, f)
		}
	}
	return hits, nil
}

// Count returns the number of shapes loaded
func (s *ShapefileSource) Count() int {
	return len(s.features)
}

// Features returns all loaded shapes in file order
func (s *ShapefileSource) Features() []Feature {
	return s.features
}
