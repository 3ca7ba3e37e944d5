package source

import (
	"context"

	"github.com/paulmach/orb"
)

// Kind classifies a data source by the query idiom it supports.
// The kind is fixed at construction; capability is data, never inferred
// from method probing at query time.
type Kind int

const (
	KindFeature    Kind = iota // vector source answering extent queries
	KindGraphics               // pre-loaded client-side graphics
	KindRaster                 // raster answering exact point queries
	KindScene                  // 3D scene source with deferred attributes
	KindMapImage               // rendered service, popup data via view binding
	KindGroup                  // composite of member sources
	KindStream                 // live geo-feed of graphics
	KindAnnotation             // annotation graphics
	KindKML                    // KML graphics
)

// String returns a string representation of the source kind
func (k Kind) String() string {
	switch k {
	case KindFeature:
		return "Feature"
	case KindGraphics:
		return "Graphics"
	case KindRaster:
		return "Raster"
	case KindScene:
		return "Scene"
	case KindMapImage:
		return "MapImage"
	case KindGroup:
		return "Group"
	case KindStream:
		return "Stream"
	case KindAnnotation:
		return "Annotation"
	case KindKML:
		return "KML"
	default:
		return "Unknown"
	}
}

// AlwaysQueryable returns true for kinds that are popup-eligible even
// without a declared popup template
func (k Kind) AlwaysQueryable() bool {
	switch k {
	case KindGraphics, KindStream, KindAnnotation, KindKML:
		return true
	default:
		return false
	}
}

// LoadState tracks whether a source's metadata has finished loading
type LoadState int

const (
	LoadPending LoadState = iota
	Loaded
	LoadFailed
)

// PopupTemplate declares that a source's features can title and present
// themselves. A source without one is not popup-eligible unless its
// kind is always queryable.
type PopupTemplate struct {
	TitleField string
	Fields     []string
}

// Symbol carries the rendering offsets (in screen cells) a source draws
// its features with. Offsets widen the click hit region.
type Symbol struct {
	XOffset float64
	YOffset float64
}

// Renderer exposes the symbols a source renders with. Simple renderers
// carry a single symbol; class-break renderers carry one per bucket.
type Renderer struct {
	Symbol  *Symbol
	Classes []Symbol
}

// ExtentQuerier answers spatial feature queries against an extent
type ExtentQuerier interface {
	QueryExtent(ctx context.Context, extent orb.Bound) ([]Feature, error)
}

// PointQuerier answers queries at an exact map location
type PointQuerier interface {
	QueryPoint(ctx context.Context, pt orb.Point) ([]Feature, error)
}

// AttributeHydrator loads deferred attributes onto already-resolved
// features before they are shown
type AttributeHydrator interface {
	HydrateAttributes(ctx context.Context, feats []Feature) ([]Feature, error)
}

// DataSource is one queryable layer of the map. The core never creates
// or destroys sources at resolution time, only reads them.
type DataSource struct {
	ID            string
	Name          string
	Kind          Kind
	State         LoadState
	Visible       bool
	Template      *PopupTemplate
	Renderer      *Renderer
	ObjectIDField string

	// Members holds the children of a KindGroup source
	Members []*DataSource

	extent   ExtentQuerier
	point    PointQuerier
	hydrator AttributeHydrator
	graphics *graphicsStore
}

// ExtentQuerier returns the source's extent query behavior, nil when
// the kind does not support it
func (s *DataSource) ExtentQuerier() ExtentQuerier {
	return s.extent
}

// PointQuerier returns the source's point query behavior, nil when the
// kind does not support it
func (s *DataSource) PointQuerier() PointQuerier {
	return s.point
}

// Hydrator returns the attribute hydration step for sources whose
// features defer attribute loading, nil otherwise
func (s *DataSource) Hydrator() AttributeHydrator {
	return s.hydrator
}

// Graphics returns a snapshot of the source's pre-loaded graphics in
// insertion order. Empty for kinds without local graphics.
func (s *DataSource) Graphics() []Feature {
	if s.graphics == nil {
		return nil
	}
	return s.graphics.snapshot()
}

// NewFeatureSource creates a vector source answering extent queries
func NewFeatureSource(id, name string, q ExtentQuerier, tmpl *PopupTemplate, objectIDField string) *DataSource {
	return &DataSource{
		ID:            id,
		Name:          name,
		Kind:          KindFeature,
		State:         Loaded,
		Visible:       true,
		Template:      tmpl,
		ObjectIDField: objectIDField,
		extent:        q,
	}
}

// NewGraphicsSource creates a pre-loaded graphics source. Graphics
// sources are always popup-eligible; individual graphics may still be
// skipped when hidden or untitled.
func NewGraphicsSource(id, name string, feats []Feature, tmpl *PopupTemplate) *DataSource {
	s := &DataSource{
		ID:       id,
		Name:     name,
		Kind:     KindGraphics,
		State:    Loaded,
		Visible:  true,
		Template: tmpl,
		graphics: newGraphicsStore(),
	}
	for i := range feats {
		feats[i].Source = s
		s.graphics.add(feats[i])
	}
	return s
}

// NewRasterSource creates a raster source answering exact point queries
func NewRasterSource(id, name string, q PointQuerier, tmpl *PopupTemplate) *DataSource {
	return &DataSource{
		ID:       id,
		Name:     name,
		Kind:     KindRaster,
		State:    Loaded,
		Visible:  true,
		Template: tmpl,
		point:    q,
	}
}

// NewSceneSource creates a 3D scene source. Scene features defer
// attribute loading; the hydrator runs before results are shown.
func NewSceneSource(id, name string, q ExtentQuerier, h AttributeHydrator, tmpl *PopupTemplate, objectIDField string) *DataSource {
	return &DataSource{
		ID:            id,
		Name:          name,
		Kind:          KindScene,
		State:         Loaded,
		Visible:       true,
		Template:      tmpl,
		ObjectIDField: objectIDField,
		extent:        q,
		hydrator:      h,
	}
}

// NewMapImageSource creates a rendered-service source whose popup data
// comes from its view binding rather than a direct query
func NewMapImageSource(id, name string, tmpl *PopupTemplate) *DataSource {
	return &DataSource{
		ID:       id,
		Name:     name,
		Kind:     KindMapImage,
		State:    Loaded,
		Visible:  true,
		Template: tmpl,
	}
}

// NewGroupSource creates a composite source exposing member sources.
// The group itself is never queried directly.
func NewGroupSource(id, name string, members ...*DataSource) *DataSource {
	return &DataSource{
		ID:      id,
		Name:    name,
		Kind:    KindGroup,
		State:   Loaded,
		Visible: true,
		Members: members,
	}
}
