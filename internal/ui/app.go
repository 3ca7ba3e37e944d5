package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/popup"
	"popmap/internal/resolve"
	"popmap/internal/source"
)

// App is the main application controller
type App struct {
	screen      tcell.Screen
	sources     *source.Map
	popup       *popup.Popup
	mapView     *MapView
	popupView   *PopupView
	pad         geo.Padding
	lastButtons tcell.ButtonMask
	quit        chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewApp creates a new application
func NewApp(sources *source.Map, pop *popup.Popup, centerLat, centerLon, radiusMiles, aspectRatio float64, pad geo.Padding) (*App, error) {
	// Initialize tcell screen
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.Clear()

	width, height := screen.Size()

	mapView := NewMapView(width, height, sources, centerLat, centerLon, radiusMiles, aspectRatio)
	popupView := NewPopupView(pop)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		screen:    screen,
		sources:   sources,
		popup:     pop,
		mapView:   mapView,
		popupView: popupView,
		pad:       pad,
		quit:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	pop.SetViewport(app.viewport())

	return app, nil
}

// Run starts the application main loop
func (a *App) Run() error {
	defer a.cleanup()

	ticker := time.NewTicker(100 * time.Millisecond) // 10 FPS
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return nil

		case <-ticker.C:
			a.render()

		default:
			if a.screen.HasPendingEvent() {
				ev := a.screen.PollEvent()
				if !a.handleEvent(ev) {
					return nil // Quit requested
				}
			}
		}
	}
}

// viewport returns the current screen viewport
func (a *App) viewport() geo.Viewport {
	width, height := a.screen.Size()
	return geo.Viewport{Width: width, Height: height, Pad: a.pad}
}

// render renders the map and popup to the screen
func (a *App) render() {
	a.screen.Clear()

	var selected *source.Feature
	if feat, ok := a.popup.SelectedFeature(); ok && a.popup.Visible() {
		selected = &feat
	}

	a.mapView.Draw(a.screen, selected)
	a.popupView.Draw(a.screen, a.viewport())

	a.screen.Show()
}

// handleEvent processes keyboard and mouse events
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventResize:
		a.handleResize()
	}

	return true
}

// handleKey processes a keyboard event
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if a.popup.Visible() || a.popup.Resolving() {
			a.popup.Close()
		} else {
			close(a.quit)
			return false
		}

	case tcell.KeyLeft:
		if a.popup.Visible() {
			a.popup.Previous()
		} else {
			a.mapView.Pan(-0.1, 0)
		}

	case tcell.KeyRight:
		if a.popup.Visible() {
			a.popup.Next()
		} else {
			a.mapView.Pan(0.1, 0)
		}

	case tcell.KeyUp:
		if !a.popup.Visible() {
			a.mapView.Pan(0, 0.1)
		}

	case tcell.KeyDown:
		if !a.popup.Visible() {
			a.mapView.Pan(0, -0.1)
		}

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			close(a.quit)
			return false

		case 'n', 'N':
			a.popup.Next()

		case 'p', 'P':
			a.popup.Previous()

		case 'd', 'D':
			a.popup.ToggleDock()

		case 'r', 'R':
			a.render()

		case '+', '=':
			a.mapView.ZoomIn()

		case '-', '_':
			a.mapView.ZoomOut()
		}
	}

	return true
}

// handleMouse fires a click when the primary button is first pressed
func (a *App) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && a.lastButtons&tcell.Button1 == 0
	a.lastButtons = buttons

	if !pressed {
		return
	}

	x, y := ev.Position()
	a.openAt(x, y)
}

// openAt resolves a click at the given screen cell into a popup
func (a *App) openAt(x, y int) {
	click := resolve.ClickEvent{
		Screen: geo.ScreenPoint{X: x, Y: y},
		Button: resolve.ButtonLeft,
	}

	if pt, ok := a.mapView.MapPointAt(x, y); ok {
		click.Map = &pt
	}

	forced := a.mapView.HitTest(x, y)

	logging.Debug("map click", "x", x, "y", y, "onWorld", click.Map != nil, "hit", forced != nil)

	a.popup.Open(a.ctx, click, forced)
}

// MapResolution returns the current map degrees-per-cell resolution
func (a *App) MapResolution() float64 {
	return a.mapView.Resolution()
}

// handleResize handles terminal resize events
func (a *App) handleResize() {
	a.screen.Sync()
	width, height := a.screen.Size()

	a.mapView.UpdateDimensions(width, height)
	a.popup.SetViewport(geo.Viewport{Width: width, Height: height, Pad: a.pad})
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.screen != nil {
		a.screen.Fini()
	}
}
