package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// PlacesLoader loads populated-place point graphics from the Natural
// Earth populated places shapefile.
type PlacesLoader struct {
	path    string
	maxRank int
}

// NewPlacesLoader creates a loader over a populated places shapefile.
// Places with a scale rank above maxRank are dropped to keep the layer
// density reasonable; rank 0 is a megacity.
func NewPlacesLoader(path string, maxRank int) *PlacesLoader {
	return &PlacesLoader{
		path:    path,
		maxRank: maxRank,
	}
}

// LoadPlaces reads the shapefile and returns the kept places as point
// graphics labeled with the place name.
func (p *PlacesLoader) LoadPlaces() ([]Feature, error) {
	shape, err := shp.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open places shapefile %s: %w", p.path, err)
	}
	defer shape.Close()

	fields := shape.Fields()
	idx := make(map[string]int, len(fields))
	for i, field := range fields {
		idx[strings.TrimRight(string(field.Name[:]), "\x00 ")] = i
	}

	for _, name := range []string{"NAME", "SCALERANK"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required field: %s", name)
		}
	}

	var places []Feature

	for shape.Next() {
		n, s := shape.Shape()
		pt, ok := s.(*shp.Point)
		if !ok {
			continue
		}

		rank, err := strconv.Atoi(strings.TrimSpace(shape.ReadAttribute(n, idx["SCALERANK"])))
		if err != nil || rank > p.maxRank {
			continue
		}

		name := strings.TrimSpace(shape.ReadAttribute(n, idx["NAME"]))
		if name == "" {
			continue
		}

		attrs := map[string]any{
			"label": name,
			"name":  name,
			"rank":  rank,
		}
		if i, ok := idx["ADM0NAME"]; ok {
			if country := strings.TrimSpace(shape.ReadAttribute(n, i)); country != "" {
				attrs["country"] = country
			}
		}
		if i, ok := idx["POP_MAX"]; ok {
			if pop, err := strconv.Atoi(strings.TrimSpace(shape.ReadAttribute(n, i))); err == nil {
				attrs["population"] = pop
			}
		}

		places = append(places, Feature{
			ID:         uuid.NewString(),
			Geometry:   orb.Point{pt.X, pt.Y},
			Attributes: attrs,
			Visible:    true,
		})
	}

	return places, nil
}
