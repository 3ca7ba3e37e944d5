package source

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a GeoJSON feature collection and converts it to
// graphics. Property maps become feature attributes; each graphic gets
// a fresh ID.
func LoadGeoJSON(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson %s: %w", path, err)
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON converts raw GeoJSON bytes to graphics
func ParseGeoJSON(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	feats := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		attrs := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = v
		}

		feats = append(feats, Feature{
			ID:         uuid.NewString(),
			Geometry:   f.Geometry,
			Attributes: attrs,
			Visible:    true,
		})
	}

	return feats, nil
}
