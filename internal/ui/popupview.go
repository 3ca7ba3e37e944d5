package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"

	"popmap/internal/geo"
	"popmap/internal/placement"
	"popmap/internal/popup"
	"popmap/internal/render"
	"popmap/internal/source"
)

// PopupView displays the popup for the current feature set
type PopupView struct {
	popup    *popup.Popup
	maxWidth int
	maxLines int
}

// NewPopupView creates a new popup view
func NewPopupView(p *popup.Popup) *PopupView {
	return &PopupView{
		popup:    p,
		maxWidth: 44,
		maxLines: 10,
	}
}

// Draw renders the popup to the screen when it has content. The box is
// placed by the placement engine, never by the view itself.
func (v *PopupView) Draw(screen tcell.Screen, vp geo.Viewport) {
	if v.popup.Resolving() {
		v.drawPending(screen, vp)
		return
	}

	if !v.popup.Visible() {
		return
	}

	feat, ok := v.popup.SelectedFeature()
	if !ok {
		return
	}

	title, lines := v.content(feat)
	content := v.measure(title, lines)

	state, off := v.popup.Placement(content)
	origin := placement.ResolveXY(off, content, vp)

	canvas := render.NewCanvas(content.Width, content.Height)
	canvas.FillRect(0, 0, content.Width, content.Height, ' ', tcell.StyleDefault)
	canvas.Box(0, 0, content.Width, content.Height, render.StylePopupBorder)

	canvas.DrawText(2, 0, truncate(title, content.Width-4), render.StylePopupTitle)

	y := 1
	for _, line := range lines {
		if y >= content.Height-1 {
			break
		}
		canvas.DrawText(2, y, truncate(line, content.Width-4), render.StylePopupText)
		y++
	}

	if footer := v.footer(); footer != "" {
		fx := (content.Width - len([]rune(footer))) / 2
		if fx < 1 {
			fx = 1
		}
		canvas.DrawText(fx, content.Height-1, footer, render.StylePopupText)
	}

	canvas.Blit(screen, origin.X, origin.Y)

	if state.Alignment != placement.AlignNone {
		v.drawPointer(screen, state.Alignment, origin, content, vp)
	}
}

// drawPending draws a small in-progress marker next to the anchor
func (v *PopupView) drawPending(screen tcell.Screen, vp geo.Viewport) {
	anchor := v.popup.Anchor()
	if !vp.Contains(anchor) {
		return
	}
	text := "…"
	x := anchor.X + 1
	if x >= vp.Width {
		x = anchor.X - 1
	}
	screen.SetContent(x, anchor.Y, []rune(text)[0], nil, render.StylePopupText)
}

// content builds the title and body lines for a feature
func (v *PopupView) content(feat source.Feature) (string, []string) {
	title := feat.Title()
	if v.popup.Count() > 1 {
		title = fmt.Sprintf("%s (%d of %d)", title, v.popup.FeatureSet().Selected()+1, v.popup.Count())
	}

	fields := templateFields(feat)
	lines := make([]string, 0, len(fields))
	for _, name := range fields {
		val, ok := feat.Attributes[name]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", name, val))
		if len(lines) >= v.maxLines {
			break
		}
	}

	if len(lines) == 0 && feat.Source != nil {
		lines = append(lines, feat.Source.Name)
	}

	return title, lines
}

// templateFields returns the attribute names to display, preferring the
// graphic's own template over the source template
func templateFields(feat source.Feature) []string {
	tmpl := feat.Template
	if tmpl == nil && feat.Source != nil {
		tmpl = feat.Source.Template
	}
	if tmpl != nil && len(tmpl.Fields) > 0 {
		return tmpl.Fields
	}

	names := make([]string, 0, len(feat.Attributes))
	for name := range feat.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// measure computes the box size for the given content
func (v *PopupView) measure(title string, lines []string) placement.ContentBox {
	width := len([]rune(title)) + 4
	for _, line := range lines {
		if w := len([]rune(line)) + 4; w > width {
			width = w
		}
	}
	if footer := v.footer(); footer != "" {
		if w := len([]rune(footer)) + 2; w > width {
			width = w
		}
	}
	if width > v.maxWidth {
		width = v.maxWidth
	}
	if width < 12 {
		width = 12
	}

	height := len(lines) + 2
	if height > v.maxLines+2 {
		height = v.maxLines + 2
	}

	return placement.ContentBox{Width: width, Height: height}
}

// footer returns the paging hint shown on the bottom border
func (v *PopupView) footer() string {
	if v.popup.Count() <= 1 {
		return ""
	}
	return "◀ n/p ▶"
}

// drawPointer draws the glyph between the popup edge and its anchor
func (v *PopupView) drawPointer(screen tcell.Screen, align placement.Alignment, origin geo.ScreenPoint, content placement.ContentBox, vp geo.Viewport) {
	anchor := v.popup.Anchor()

	var x, y int
	var glyph rune
	switch align {
	case placement.AlignTopLeft, placement.AlignTopCenter, placement.AlignTopRight:
		glyph = '▼'
		x = clamp(anchor.X, origin.X+1, origin.X+content.Width-2)
		y = origin.Y + content.Height
	case placement.AlignBottomLeft, placement.AlignBottomCenter, placement.AlignBottomRight:
		glyph = '▲'
		x = clamp(anchor.X, origin.X+1, origin.X+content.Width-2)
		y = origin.Y - 1
	default:
		return
	}

	if x < 0 || y < 0 || x >= vp.Width || y >= vp.Height {
		return
	}
	screen.SetContent(x, y, glyph, nil, render.StylePointer)
}

// truncate cuts a string to fit within width cells
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
