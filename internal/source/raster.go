package source

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// RasterDomain maps raw cell values to display labels, the way a
// legend maps pixel classes to names
type RasterDomain map[int]string

// Label returns the display label for a raw value
func (d RasterDomain) Label(value int) string {
	if label, ok := d[value]; ok {
		return label
	}
	return fmt.Sprintf("%d", value)
}

// GridRaster answers point queries against a regular lat/lon grid of
// integer cell values. Values are resolved through the attribute
// domain before display.
type GridRaster struct {
	Bounds orb.Bound
	Cols   int
	Rows   int
	Cells  []int // row-major, row 0 at Bounds.Max latitude
	Domain RasterDomain
	Field  string // attribute name for the sampled value
}

// QueryPoint samples the raster at the exact click location. Points
// outside the grid yield no features rather than an error.
func (r *GridRaster) QueryPoint(ctx context.Context, pt orb.Point) ([]Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Cols <= 0 || r.Rows <= 0 || !r.Bounds.Contains(pt) {
		return nil, nil
	}

	width := r.Bounds.Max.X() - r.Bounds.Min.X()
	height := r.Bounds.Max.Y() - r.Bounds.Min.Y()
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	col := int((pt.X() - r.Bounds.Min.X()) / width * float64(r.Cols))
	row := int((r.Bounds.Max.Y() - pt.Y()) / height * float64(r.Rows))
	if col >= r.Cols {
		col = r.Cols - 1
	}
	if row >= r.Rows {
		row = r.Rows - 1
	}

	idx := row*r.Cols + col
	if idx < 0 || idx >= len(r.Cells) {
		return nil, nil
	}

	value := r.Cells[idx]
	field := r.Field
	if field == "" {
		field = "value"
	}

	return []Feature{{
		ID:       fmt.Sprintf("raster-%d-%d", row, col),
		Geometry: pt,
		Attributes: map[string]any{
			field:   value,
			"label": r.Domain.Label(value),
		},
		Visible: true,
	}}, nil
}
