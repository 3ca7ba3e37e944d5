package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"popmap/internal/source"
)

// Style definitions for map layers and popup chrome
var (
	StyleFeature     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleRiver       = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleGraphics    = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	StyleRaster      = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	StyleStream      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	StyleLabel       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StylePopupBorder = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StylePopupTitle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	StylePopupText   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	StyleSelected    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	StylePointer     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// StyleForKind returns the map drawing style for a source kind
func StyleForKind(kind source.Kind) tcell.Style {
	switch kind {
	case source.KindFeature:
		return StyleFeature
	case source.KindGraphics, source.KindAnnotation, source.KindKML:
		return StyleGraphics
	case source.KindRaster:
		return StyleRaster
	case source.KindStream:
		return StyleStream
	default:
		return tcell.StyleDefault
	}
}

// CharForKind returns the drawing character for line features of a kind
func CharForKind(kind source.Kind) rune {
	switch kind {
	case source.KindFeature:
		return '-'
	case source.KindGraphics, source.KindAnnotation, source.KindKML:
		return '·'
	case source.KindStream:
		return '*'
	default:
		return '·'
	}
}

// kindHex returns the base palette color for a source kind. Selection
// highlights are derived from this color, not from a fixed style.
func kindHex(kind source.Kind) string {
	switch kind {
	case source.KindFeature:
		return "#a9a9a9"
	case source.KindGraphics, source.KindAnnotation, source.KindKML:
		return "#ffa500"
	case source.KindRaster:
		return "#006400"
	case source.KindStream:
		return "#00ff00"
	default:
		return "#ffffff"
	}
}

// SelectedStyle returns the highlight style for the feature picked by
// the current popup selection, brightened from the kind's base color
func SelectedStyle(kind source.Kind) tcell.Style {
	return HighlightStyle(kindHex(kind))
}

// HighlightStyle derives a brightened variant of a hex color for
// features picked by the current popup selection
func HighlightStyle(hex string) tcell.Style {
	base, err := colorful.Hex(hex)
	if err != nil {
		return StyleSelected
	}

	lit := base.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.4).Clamped()
	r, g, b := lit.RGB255()
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b))).
		Bold(true)
}
