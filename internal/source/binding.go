package source

import (
	"context"

	"github.com/paulmach/orb"
)

// ViewBinding is the live view-layer state for a source. Bindings are
// owned by the hosting view; the core only reads them.
type ViewBinding struct {
	// Suspended is true while the view has paused drawing the source
	Suspended bool

	// Draped is true when 3D content renders flush on the terrain.
	// Non-draped 3D content cannot be intersected against a flat
	// tolerance extent.
	Draped bool

	// RenderedIDs indexes the feature IDs currently rendered in a 3D
	// scene, nil when the binding exposes no such index
	RenderedIDs map[string]struct{}

	// PopupData returns the binding's already-resolved popup features
	// for an extent. Used for rendered services that cannot be queried
	// directly.
	PopupData func(ctx context.Context, extent orb.Bound) ([]Feature, error)
}

// BindingLookup resolves the view binding for a source. A nil result
// means the source has no live binding in the current view.
type BindingLookup func(*DataSource) *ViewBinding

// NoBindings is a lookup for views that track no per-source state
func NoBindings(*DataSource) *ViewBinding {
	return nil
}
