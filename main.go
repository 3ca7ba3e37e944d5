package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"popmap/internal/cache"
	"popmap/internal/geo"
	"popmap/internal/logging"
	"popmap/internal/placement"
	"popmap/internal/popup"
	"popmap/internal/resolve"
	"popmap/internal/source"
	"popmap/internal/ui"
)

// regionsGeoJSON is a small built-in graphics layer used when no other
// polygon data is cached yet
const regionsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Great Plains", "kind": "region"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [-104.0, 49.0], [-96.0, 49.0], [-96.0, 34.0], [-104.0, 34.0], [-104.0, 49.0]
      ]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Gulf Coast", "kind": "region"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [-97.5, 31.0], [-88.0, 31.0], [-88.0, 27.0], [-97.5, 27.0], [-97.5, 31.0]
      ]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "Continental Divide", "kind": "route"},
      "geometry": {"type": "LineString", "coordinates": [
        [-114.0, 49.0], [-112.5, 45.5], [-110.0, 43.0], [-107.0, 39.0], [-106.5, 35.0]
      ]}
    }
  ]
}`

func main() {
	// Parse command line flags
	help := flag.Bool("h", false, "Show help message")
	cacheDir := flag.String("cache", "", "Cache directory for map data (default: ~/.popmap/data)")
	debugLog := flag.String("d", "", "Debug log file (e.g., debug.log)")
	radiusMiles := flag.Float64("r", 1500.0, "Map radius in miles (default: 1500)")
	aspectRatio := flag.Float64("a", 2.0, "Character aspect ratio - adjust for font width (1.0-4.0, default: 2.0)")
	centerLat := flag.Float64("lat", 39.8283, "Initial map center latitude")
	centerLon := flag.Float64("lon", -98.5795, "Initial map center longitude")
	tolerance := flag.Float64("tolerance", 0, "Click tolerance in cells (0 uses the default)")
	dockPos := flag.String("dock", "auto", "Dock position: auto, top-left, top-center, top-right, bottom-left, bottom-center, bottom-right")
	autoDock := flag.Bool("autodock", true, "Dock the popup automatically on small terminals")
	bpWidth := flag.Int("bp-width", 0, "Dock breakpoint width in cells (0 uses the default)")
	bpHeight := flag.Int("bp-height", 0, "Dock breakpoint height in cells (0 uses the default)")
	rtl := flag.Bool("rtl", false, "Right-to-left layout")
	view3D := flag.Bool("3d", false, "Query draped scene layers")
	feedAddr := flag.String("feed", "", "Connect to a live position feed (e.g., 192.168.1.100:30003)")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("popmap - Terminal map explorer with click-to-identify popups")
		fmt.Println("\nUsage: popmap [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Validate aspect ratio
	if *aspectRatio < 1.0 || *aspectRatio > 4.0 {
		fmt.Fprintf(os.Stderr, "Error: Aspect ratio must be between 1.0 and 4.0\n")
		os.Exit(1)
	}

	position, err := parseDockPosition(*dockPos)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up debug logging if requested
	if *debugLog != "" {
		logFile, err := os.Create(*debugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			logging.SetOutput(logFile)
			logging.Info("popmap debug log started")
			fmt.Printf("Debug logging enabled: %s\n", *debugLog)
		}
	}

	// Initialize cache manager
	fmt.Println("Initializing map data cache...")
	cacheManager, err := cache.NewManager(*cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize cache: %v\n", err)
		os.Exit(1)
	}

	// Ensure Natural Earth data is available
	fmt.Println("Checking map layer data...")
	if err := cacheManager.EnsureData(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to download map data: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Loading map layers...")
	sources, bindings, err := buildSources(ctx, cacheManager, *feedAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load map layers: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d map layers\n", sources.Count())

	breakpoints := placement.DefaultBreakpoints
	if *bpWidth > 0 {
		breakpoints.Width = *bpWidth
	}
	if *bpHeight > 0 {
		breakpoints.Height = *bpHeight
	}

	policy := placement.DockPolicy{
		ButtonEnabled: true,
		Position:      position,
		Breakpoints:   breakpoints,
		AutoDock:      *autoDock,
		RTL:           *rtl,
	}

	monitor := placement.NewMonitor(policy, func(st placement.PlacementState) {
		logging.Debug("placement changed",
			"alignment", st.Alignment.String(),
			"dock", st.DockPosition.String(),
			"dockEnabled", st.DockEnabled)
	})

	// The resolver reads the live resolution through the app so zoom and
	// resize are picked up per click
	var app *ui.App
	resolver := resolve.NewResolver(resolve.Config{
		Sources: sources.Sources,
		Bindings: func(s *source.DataSource) *source.ViewBinding {
			return bindings[s.ID]
		},
		ViewIs3D: *view3D,
		Baseline: *tolerance,
		ResolutionAt: func(orb.Point) float64 {
			if app == nil {
				return 0
			}
			return app.MapResolution()
		},
		ViewSR:    geo.WGS84,
		TerrainSR: geo.WGS84,
	})

	pop := popup.New(resolver, monitor)

	// Create and run application
	fmt.Printf("Starting popmap (radius: %.0f miles, aspect: %.1f)...\n", *radiusMiles, *aspectRatio)
	app, err = ui.NewApp(sources, pop, *centerLat, *centerLon, *radiusMiles, *aspectRatio, geo.Padding{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create application: %v\n", err)
		os.Exit(1)
	}

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	fmt.Println("\nGoodbye!")
}

// buildSources assembles the map's layer set from cached data and
// built-in demo layers
func buildSources(ctx context.Context, cacheManager *cache.Manager, feedAddr string) (*source.Map, map[string]*source.ViewBinding, error) {
	sources := source.NewMap()
	bindings := make(map[string]*source.ViewBinding)

	// States carry a popup template and answer extent queries
	if sf, err := source.LoadShapefile(cacheManager.GetDataPath("ne_50m_admin_1_states_provinces"), "state"); err == nil {
		tmpl := &source.PopupTemplate{
			TitleField: "name",
			Fields:     []string{"name", "admin", "type_en"},
		}
		sources.Add(source.NewFeatureSource("states", "States/Provinces", sf, tmpl, "FID"))
	} else {
		fmt.Printf("Warning: states layer unavailable: %v\n", err)
	}

	// Hydro group: rivers answer queries, coastlines are draw-only
	var hydro []*source.DataSource
	if sf, err := source.LoadShapefile(cacheManager.GetDataPath("ne_50m_rivers_lake_centerlines"), "river"); err == nil {
		tmpl := &source.PopupTemplate{TitleField: "name", Fields: []string{"name"}}
		hydro = append(hydro, source.NewFeatureSource("rivers", "Rivers", sf, tmpl, "FID"))
	}
	if sf, err := source.LoadShapefile(cacheManager.GetDataPath("ne_50m_coastline"), "coast"); err == nil {
		hydro = append(hydro, source.NewFeatureSource("coastlines", "Coastlines", sf, nil, "FID"))
	}
	if len(hydro) > 0 {
		sources.Add(source.NewGroupSource("hydro", "Hydrography", hydro...))
	}

	// Terrain classes answer exact-point queries
	terrainTmpl := &source.PopupTemplate{TitleField: "label", Fields: []string{"label", "terrain"}}
	sources.Add(source.NewRasterSource("terrain", "Terrain", buildTerrainRaster(), terrainTmpl))

	// Built-in region graphics
	if regions, err := source.ParseGeoJSON([]byte(regionsGeoJSON)); err == nil {
		tmpl := &source.PopupTemplate{TitleField: "name", Fields: []string{"name", "kind"}}
		sources.Add(source.NewGraphicsSource("regions", "Regions", regions, tmpl))
	}

	// Major populated places from Natural Earth
	loader := source.NewPlacesLoader(cacheManager.GetDataPath("ne_50m_populated_places"), 2)
	if places, err := loader.LoadPlaces(); err == nil {
		tmpl := &source.PopupTemplate{
			TitleField: "name",
			Fields:     []string{"name", "country", "population"},
		}
		sources.Add(source.NewGraphicsSource("places", "Populated Places", places, tmpl))
		fmt.Printf("Loaded %d places\n", len(places))
	} else {
		fmt.Printf("Warning: places layer unavailable: %v\n", err)
	}

	// Landmarks are draped scene graphics with deferred attributes
	scene := buildLandmarkScene()
	landmarks := source.NewSceneSource("landmarks", "Landmarks", scene, scene,
		&source.PopupTemplate{TitleField: "name", Fields: []string{"name", "elevation_ft"}}, "")
	sources.Add(landmarks)
	bindings["landmarks"] = &source.ViewBinding{Draped: true}

	// Graticule cells come from the rendered image, not client geometry
	graticule := source.NewMapImageSource("graticule", "Graticule",
		&source.PopupTemplate{TitleField: "cell", Fields: []string{"cell", "lat", "lon"}})
	sources.Add(graticule)
	bindings["graticule"] = &source.ViewBinding{PopupData: graticuleCell}

	// Optional live position feed
	if feedAddr != "" {
		fmt.Printf("Connecting to feed at %s...\n", feedAddr)
		client, err := source.NewFeedClient(feedAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("feed connection failed: %w", err)
		}
		client.Start()
		tmpl := &source.PopupTemplate{TitleField: "label", Fields: []string{"label"}}
		sources.Add(source.NewStreamSource(ctx, "feed", "Live Feed", client, tmpl, 60*time.Second))
	}

	return sources, bindings, nil
}

// buildTerrainRaster returns a coarse worldwide terrain-class grid
func buildTerrainRaster() *source.GridRaster {
	const cols, rows = 72, 36
	domain := source.RasterDomain{
		0: "Water",
		1: "Lowland",
		2: "Highland",
		3: "Mountain",
	}

	cells := make([]int, cols*rows)
	for row := 0; row < rows; row++ {
		lat := 90.0 - (float64(row)+0.5)*180.0/rows
		for col := 0; col < cols; col++ {
			lon := -180.0 + (float64(col)+0.5)*360.0/cols
			cells[row*cols+col] = terrainClass(lat, lon)
		}
	}

	return &source.GridRaster{
		Bounds: orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}},
		Cols:   cols,
		Rows:   rows,
		Cells:  cells,
		Domain: domain,
		Field:  "terrain",
	}
}

// terrainClass is a deterministic stand-in for real elevation data
func terrainClass(lat, lon float64) int {
	// Rough continental landmasses, everything else is water
	onLand := (lat > 10 && lat < 72 && lon > -168 && lon < -52) || // North America
		(lat > -56 && lat < 13 && lon > -82 && lon < -34) || // South America
		(lat > -35 && lat < 37 && lon > -18 && lon < 52) || // Africa
		(lat > 8 && lat < 72 && lon > -11 && lon < 180) || // Eurasia
		(lat > -44 && lat < -10 && lon > 112 && lon < 155) // Australia
	if !onLand {
		return 0
	}

	switch h := int(lat+lon*3) % 7; {
	case h == 0 || h == -1:
		return 3
	case h%2 == 0:
		return 2
	default:
		return 1
	}
}

// buildLandmarkScene returns a few landmark graphics whose attributes
// arrive in a second pass, the way a remote scene layer would
func buildLandmarkScene() *source.SceneGraphics {
	points := []struct {
		id   string
		lon  float64
		lat  float64
		name string
		elev int
	}{
		{"lm-denali", -151.0070, 63.0692, "Denali", 20310},
		{"lm-whitney", -118.2923, 36.5785, "Mount Whitney", 14505},
		{"lm-rainier", -121.7603, 46.8523, "Mount Rainier", 14411},
		{"lm-mitchell", -82.2651, 35.7648, "Mount Mitchell", 6684},
	}

	graphics := make([]source.Feature, 0, len(points))
	attrs := make(map[string]map[string]any, len(points))
	for _, p := range points {
		graphics = append(graphics, source.Feature{
			ID:       p.id,
			Geometry: orb.Point{p.lon, p.lat},
			Visible:  true,
		})
		attrs[p.id] = map[string]any{
			"name":         p.name,
			"elevation_ft": p.elev,
		}
	}

	return source.NewSceneGraphics(graphics, attrs)
}

// graticuleCell answers popup queries for the graticule layer with the
// integer-degree cell containing the query extent's center
func graticuleCell(ctx context.Context, extent orb.Bound) ([]source.Feature, error) {
	center := extent.Center()
	lat := int(center.Y())
	lon := int(center.X())

	return []source.Feature{
		{
			ID:       fmt.Sprintf("cell-%d-%d", lat, lon),
			Geometry: center,
			Visible:  true,
			Attributes: map[string]any{
				"cell": fmt.Sprintf("%d°, %d°", lat, lon),
				"lat":  lat,
				"lon":  lon,
			},
		},
	}, nil
}

// parseDockPosition maps a flag value to a dock position
func parseDockPosition(s string) (placement.DockPosition, error) {
	switch strings.ToLower(s) {
	case "auto":
		return placement.DockAuto, nil
	case "top-left":
		return placement.DockTopLeft, nil
	case "top-center":
		return placement.DockTopCenter, nil
	case "top-right":
		return placement.DockTopRight, nil
	case "bottom-left":
		return placement.DockBottomLeft, nil
	case "bottom-center":
		return placement.DockBottomCenter, nil
	case "bottom-right":
		return placement.DockBottomRight, nil
	default:
		return placement.DockNone, fmt.Errorf("unknown dock position %q", s)
	}
}
