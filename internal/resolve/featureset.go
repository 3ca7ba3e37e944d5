package resolve

import "popmap/internal/source"

// FeatureSet is the ordered outcome of one resolution: the resolved
// features plus a selection index. A new set replaces any prior one
// atomically; selection always starts at the first feature.
type FeatureSet struct {
	features []source.Feature
	selected int
}

// NewFeatureSet creates a feature set over an ordered feature list
func NewFeatureSet(feats []source.Feature) *FeatureSet {
	return &FeatureSet{features: feats}
}

// Count returns the number of features in the set
func (fs *FeatureSet) Count() int {
	if fs == nil {
		return 0
	}
	return len(fs.features)
}

// Features returns the resolved features in aggregation order
func (fs *FeatureSet) Features() []source.Feature {
	if fs == nil {
		return nil
	}
	return fs.features
}

// Selected returns the index of the selected feature
func (fs *FeatureSet) Selected() int {
	if fs == nil {
		return 0
	}
	return fs.selected
}

// Select sets the selection index, clamped to the valid range
func (fs *FeatureSet) Select(i int) {
	if fs == nil || len(fs.features) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(fs.features) {
		i = len(fs.features) - 1
	}
	fs.selected = i
}

// Next advances the selection, wrapping past the end
func (fs *FeatureSet) Next() {
	if fs == nil || len(fs.features) == 0 {
		return
	}
	fs.selected = (fs.selected + 1) % len(fs.features)
}

// Previous moves the selection back, wrapping past the start
func (fs *FeatureSet) Previous() {
	if fs == nil || len(fs.features) == 0 {
		return
	}
	fs.selected = (fs.selected - 1 + len(fs.features)) % len(fs.features)
}

// SelectedFeature returns the currently selected feature
func (fs *FeatureSet) SelectedFeature() (source.Feature, bool) {
	if fs == nil || len(fs.features) == 0 {
		return source.Feature{}, false
	}
	return fs.features[fs.selected], true
}
