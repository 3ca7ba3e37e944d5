package resolve

import (
	"testing"

	"popmap/internal/source"
)

func setOf(ids ...string) *FeatureSet {
	fs := make([]source.Feature, len(ids))
	for i, id := range ids {
		fs[i] = source.Feature{ID: id}
	}
	return NewFeatureSet(fs)
}

func TestFeatureSetSelectionStartsAtFirst(t *testing.T) {
	fs := setOf("a", "b", "c")
	if fs.Selected() != 0 {
		t.Errorf("initial selection = %d, want 0", fs.Selected())
	}
	f, ok := fs.SelectedFeature()
	if !ok || f.ID != "a" {
		t.Errorf("SelectedFeature() = %v, %v", f.ID, ok)
	}
}

func TestFeatureSetNextPreviousWrap(t *testing.T) {
	fs := setOf("a", "b", "c")

	fs.Next()
	fs.Next()
	if fs.Selected() != 2 {
		t.Fatalf("selection after two Next = %d, want 2", fs.Selected())
	}

	fs.Next()
	if fs.Selected() != 0 {
		t.Errorf("Next past end = %d, want wrap to 0", fs.Selected())
	}

	fs.Previous()
	if fs.Selected() != 2 {
		t.Errorf("Previous past start = %d, want wrap to 2", fs.Selected())
	}
}

func TestFeatureSetSelectClamps(t *testing.T) {
	fs := setOf("a", "b", "c")

	fs.Select(99)
	if fs.Selected() != 2 {
		t.Errorf("Select(99) = %d, want clamp to 2", fs.Selected())
	}

	fs.Select(-5)
	if fs.Selected() != 0 {
		t.Errorf("Select(-5) = %d, want clamp to 0", fs.Selected())
	}
}

func TestFeatureSetNilSafe(t *testing.T) {
	var fs *FeatureSet

	if fs.Count() != 0 {
		t.Error("nil set Count != 0")
	}
	if fs.Features() != nil {
		t.Error("nil set Features != nil")
	}

	// Must not panic
	fs.Next()
	fs.Previous()
	fs.Select(3)

	if _, ok := fs.SelectedFeature(); ok {
		t.Error("nil set reported a selected feature")
	}
}

func TestFeatureSetEmpty(t *testing.T) {
	fs := NewFeatureSet(nil)
	fs.Next()
	if _, ok := fs.SelectedFeature(); ok {
		t.Error("empty set reported a selected feature")
	}
}
