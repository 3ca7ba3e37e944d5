package source

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Feature is a single resolved map feature with a back-reference to the
// source that produced it
type Feature struct {
	ID         string
	Source     *DataSource
	Geometry   orb.Geometry
	Attributes map[string]any
	Visible    bool
	// Template overrides the source template for individual graphics
	Template *PopupTemplate
}

// Title returns the display title for the feature: the template title
// attribute when present, otherwise the owning source name
func (f Feature) Title() string {
	tmpl := f.Template
	if tmpl == nil && f.Source != nil {
		tmpl = f.Source.Template
	}
	if tmpl != nil && tmpl.TitleField != "" {
		if v, ok := f.Attributes[tmpl.TitleField]; ok {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	if f.Source != nil {
		return f.Source.Name
	}
	return "Feature"
}

// ObjectID returns the feature's value for the owning source's unique
// identifier field, or "" when the source declares none
func (f Feature) ObjectID() string {
	if f.Source == nil || f.Source.ObjectIDField == "" {
		return ""
	}
	v, ok := f.Attributes[f.Source.ObjectIDField]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
