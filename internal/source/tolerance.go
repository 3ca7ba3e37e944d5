package source

import "math"

// BaselineTolerance is the default minimum click hit radius in screen cells
const BaselineTolerance = 6.0

// ComputeTolerance returns the click tolerance for a set of candidate
// sources. Starts from the baseline (the default when baseline <= 0)
// and widens to the largest absolute symbol offset any renderer
// declares, so features drawn away from their anchor stay clickable.
// Pure function of current renderer state; recomputed on every click.
func ComputeTolerance(baseline float64, sources []*DataSource) float64 {
	tolerance := baseline
	if tolerance <= 0 {
		tolerance = BaselineTolerance
	}

	for _, s := range sources {
		if s == nil || s.Renderer == nil {
			continue
		}

		if sym := s.Renderer.Symbol; sym != nil {
			tolerance = math.Max(tolerance, symbolReach(*sym))
		}
		for _, sym := range s.Renderer.Classes {
			tolerance = math.Max(tolerance, symbolReach(sym))
		}
	}

	return tolerance
}

// symbolReach returns the largest absolute x/y offset of a symbol
func symbolReach(sym Symbol) float64 {
	return math.Max(math.Abs(sym.XOffset), math.Abs(sym.YOffset))
}
