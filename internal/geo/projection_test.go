package geo

import (
	"math"
	"testing"
)

func TestProjectCenterMapsToScreenCenter(t *testing.T) {
	p := NewProjection(39.8283, -98.5795, 150, 100, 40, 2.0)

	pt := p.Project(39.8283, -98.5795)
	if pt.X != 50 || pt.Y != 20 {
		t.Errorf("center projected to (%d, %d), want (50, 20)", pt.X, pt.Y)
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	p := NewProjection(40.0, -100.0, 300, 120, 50, 2.0)

	cells := []struct{ x, y int }{
		{60, 25}, {0, 0}, {119, 49}, {30, 10},
	}

	for _, c := range cells {
		lat, lon := p.Unproject(c.x, c.y)
		back := p.Project(lat, lon)
		// Projection truncates to whole cells, so allow one cell of slack
		if absInt(back.X-c.x) > 1 || absInt(back.Y-c.y) > 1 {
			t.Errorf("round trip of (%d, %d) = (%d, %d)", c.x, c.y, back.X, back.Y)
		}
	}
}

func TestMapPointAt(t *testing.T) {
	p := NewProjection(40.0, -100.0, 300, 120, 50, 2.0)

	pt, ok := p.MapPointAt(60, 25)
	if !ok {
		t.Fatal("center cell reported outside world bounds")
	}
	if math.Abs(pt.Y()-40.0) > 0.5 || math.Abs(pt.X()+100.0) > 0.5 {
		t.Errorf("center cell = (%v, %v), want near (-100, 40)", pt.X(), pt.Y())
	}
}

func TestMapPointAtOutsideWorld(t *testing.T) {
	// Zoomed way out near the pole: screen corners fall off the world
	p := NewProjection(89.0, 0, 12000, 40, 200, 2.0)

	if _, ok := p.MapPointAt(20, 0); ok {
		t.Error("cell above the north pole reported as a valid map point")
	}
}

func TestResolutionPositive(t *testing.T) {
	p := NewProjection(40.0, -100.0, 300, 120, 50, 2.0)
	if r := p.Resolution(); r <= 0 {
		t.Errorf("Resolution() = %v, want > 0", r)
	}
}

func TestResolutionGrowsWithRadius(t *testing.T) {
	near := NewProjection(40.0, -100.0, 100, 120, 50, 2.0)
	far := NewProjection(40.0, -100.0, 1000, 120, 50, 2.0)

	if far.Resolution() <= near.Resolution() {
		t.Errorf("resolution at 1000mi (%v) not coarser than at 100mi (%v)",
			far.Resolution(), near.Resolution())
	}
}

func TestGetBoundsContainsCenter(t *testing.T) {
	p := NewProjection(40.0, -100.0, 300, 120, 50, 2.0)
	b := p.GetBounds()

	if b.Min.X() >= -100 || b.Max.X() <= -100 || b.Min.Y() >= 40 || b.Max.Y() <= 40 {
		t.Errorf("bounds %v do not contain the center", b)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
