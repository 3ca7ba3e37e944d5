package source

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestParseGeoJSON(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"name": "Somewhere", "kind": "region"},
				"geometry": {"type": "Point", "coordinates": [-98.5, 39.8]}
			},
			{
				"type": "Feature",
				"properties": {"name": "A Line"},
				"geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
			}
		]
	}`)

	feats, err := ParseGeoJSON(data)
	if err != nil {
		t.Fatalf("ParseGeoJSON() error = %v", err)
	}
	if len(feats) != 2 {
		t.Fatalf("feature count = %d, want 2", len(feats))
	}

	pt, ok := feats[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("first geometry type = %T, want orb.Point", feats[0].Geometry)
	}
	if pt.X() != -98.5 || pt.Y() != 39.8 {
		t.Errorf("point = (%v, %v)", pt.X(), pt.Y())
	}

	if got := feats[0].Attributes["name"]; got != "Somewhere" {
		t.Errorf("name attribute = %v", got)
	}
	if feats[0].ID == "" || feats[1].ID == "" {
		t.Error("parsed features missing IDs")
	}
	if feats[0].ID == feats[1].ID {
		t.Error("parsed features share an ID")
	}
	if !feats[0].Visible {
		t.Error("parsed feature not visible")
	}

	if _, ok := feats[1].Geometry.(orb.LineString); !ok {
		t.Errorf("second geometry type = %T, want orb.LineString", feats[1].Geometry)
	}
}

func TestParseGeoJSONInvalid(t *testing.T) {
	if _, err := ParseGeoJSON([]byte("not json")); err == nil {
		t.Error("invalid input did not error")
	}
}
