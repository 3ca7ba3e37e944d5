package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"popmap/internal/geo"
	"popmap/internal/source"
)

// stubQuerier answers extent queries after an optional delay, so tests
// can make sources settle out of order
type stubQuerier struct {
	feats []source.Feature
	err   error
	delay time.Duration
	gate  chan struct{}
}

func (s *stubQuerier) QueryExtent(ctx context.Context, extent orb.Bound) ([]source.Feature, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.feats, s.err
}

type stubPointQuerier struct {
	got   *orb.Point
	feats []source.Feature
}

func (s *stubPointQuerier) QueryPoint(ctx context.Context, pt orb.Point) ([]source.Feature, error) {
	s.got = &pt
	return s.feats, nil
}

type stubHydrator struct {
	attrs map[string]map[string]any
}

func (s *stubHydrator) HydrateAttributes(ctx context.Context, feats []source.Feature) ([]source.Feature, error) {
	for i := range feats {
		if extra, ok := s.attrs[feats[i].ID]; ok {
			if feats[i].Attributes == nil {
				feats[i].Attributes = make(map[string]any)
			}
			for k, v := range extra {
				feats[i].Attributes[k] = v
			}
		}
	}
	return feats, nil
}

func feats(ids ...string) []source.Feature {
	out := make([]source.Feature, len(ids))
	for i, id := range ids {
		out[i] = source.Feature{ID: id, Geometry: orb.Point{0, 0}, Visible: true}
	}
	return out
}

func resolverFor(sources ...*source.DataSource) *Resolver {
	return NewResolver(Config{
		Sources:      func() []*source.DataSource { return sources },
		ResolutionAt: func(orb.Point) float64 { return 1.0 },
	})
}

func clickAt(x, y int) ClickEvent {
	pt := orb.Point{float64(x), float64(y)}
	return ClickEvent{Screen: geo.ScreenPoint{X: x, Y: y}, Map: &pt}
}

func mustResult(t *testing.T, res *Resolution) *FeatureSet {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	set, has, err := res.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !has {
		t.Fatal("resolution settled without a result")
	}
	return set
}

func TestResolveAggregatesInSourceOrder(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	// The slowest source comes first: order must follow the map, not
	// settle time
	a := source.NewFeatureSource("a", "A", &stubQuerier{feats: feats("a1", "a2"), delay: 40 * time.Millisecond}, tmpl, "")
	b := source.NewFeatureSource("b", "B", &stubQuerier{feats: feats("b1"), delay: 20 * time.Millisecond}, tmpl, "")
	c := source.NewFeatureSource("c", "C", &stubQuerier{feats: feats("c1")}, tmpl, "")

	rv := resolverFor(a, b, c)
	set := mustResult(t, rv.Resolve(context.Background(), clickAt(0, 0), nil))

	want := []string{"a1", "a2", "b1", "c1"}
	got := set.Features()
	if len(got) != len(want) {
		t.Fatalf("feature count = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("feature[%d] = %q, want %q", i, got[i].ID, id)
		}
	}

	// Every feature must carry its producing source
	if got[0].Source != a || got[2].Source != b || got[3].Source != c {
		t.Error("features missing source back-references")
	}
}

func TestResolveOrderIndependentOfSettleOrder(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}

	// Run the same three-source click with shuffled delays; the result
	// order must never change
	delays := [][]time.Duration{
		{0, 10 * time.Millisecond, 20 * time.Millisecond},
		{20 * time.Millisecond, 0, 10 * time.Millisecond},
		{10 * time.Millisecond, 20 * time.Millisecond, 0},
	}

	for _, d := range delays {
		a := source.NewFeatureSource("a", "A", &stubQuerier{feats: feats("a1"), delay: d[0]}, tmpl, "")
		b := source.NewFeatureSource("b", "B", &stubQuerier{feats: feats("b1"), delay: d[1]}, tmpl, "")
		c := source.NewFeatureSource("c", "C", &stubQuerier{feats: feats("c1"), delay: d[2]}, tmpl, "")

		set := mustResult(t, resolverFor(a, b, c).Resolve(context.Background(), clickAt(0, 0), nil))
		got := set.Features()
		if got[0].ID != "a1" || got[1].ID != "b1" || got[2].ID != "c1" {
			t.Fatalf("order with delays %v = [%s %s %s]", d, got[0].ID, got[1].ID, got[2].ID)
		}
	}
}

func TestResolveSourceFailureContributesNothing(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	ok := source.NewFeatureSource("ok", "OK", &stubQuerier{feats: feats("ok1")}, tmpl, "")
	bad := source.NewFeatureSource("bad", "Bad", &stubQuerier{err: errors.New("boom")}, tmpl, "")

	set := mustResult(t, resolverFor(bad, ok).Resolve(context.Background(), clickAt(0, 0), nil))
	if set.Count() != 1 || set.Features()[0].ID != "ok1" {
		t.Errorf("features = %v, want just ok1", set.Features())
	}
}

func TestResolveAllFailNoResult(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	bad1 := source.NewFeatureSource("b1", "B1", &stubQuerier{err: errors.New("x")}, tmpl, "")
	bad2 := source.NewFeatureSource("b2", "B2", &stubQuerier{err: errors.New("y")}, tmpl, "")

	res := resolverFor(bad1, bad2).Resolve(context.Background(), clickAt(0, 0), nil)
	<-res.Done()

	set, has := res.Result()
	if has {
		t.Error("all-failed resolution reported a result")
	}
	if set != nil {
		t.Errorf("all-failed resolution produced a set: %v", set.Features())
	}
}

func TestResolveEmptyResultsNoResult(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	empty := source.NewFeatureSource("e", "E", &stubQuerier{}, tmpl, "")

	res := resolverFor(empty).Resolve(context.Background(), clickAt(0, 0), nil)
	<-res.Done()

	if _, has := res.Result(); has {
		t.Error("empty resolution reported a result")
	}
}

func TestResolveForcedFeatureLeads(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	s := source.NewFeatureSource("s", "S", &stubQuerier{feats: feats("s1")}, tmpl, "")
	forced := source.Feature{ID: "hit", Geometry: orb.Point{0, 0}, Visible: true}

	set := mustResult(t, resolverFor(s).Resolve(context.Background(), clickAt(0, 0), &forced))
	got := set.Features()
	if len(got) != 2 || got[0].ID != "hit" || got[1].ID != "s1" {
		t.Errorf("features = %v, want forced first", got)
	}
}

func TestResolveForcedOnlyOffWorldClick(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	s := source.NewFeatureSource("s", "S", &stubQuerier{feats: feats("s1")}, tmpl, "")
	forced := source.Feature{ID: "hit", Visible: true}

	// Click outside world bounds: no sources queried, forced still shown
	click := ClickEvent{Screen: geo.ScreenPoint{X: 1, Y: 1}}
	set := mustResult(t, resolverFor(s).Resolve(context.Background(), click, &forced))
	if set.Count() != 1 || set.Features()[0].ID != "hit" {
		t.Errorf("features = %v, want just the forced feature", set.Features())
	}
}

func TestResolveNothingAtAllNoResult(t *testing.T) {
	rv := resolverFor()
	res := rv.Resolve(context.Background(), ClickEvent{}, nil)
	<-res.Done()
	if _, has := res.Result(); has {
		t.Error("empty click with no forced feature reported a result")
	}
}

func TestResolveForcedDuplicateDropped(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	q := &stubQuerier{}
	s := source.NewFeatureSource("s", "S", q, tmpl, "oid")

	dup := source.Feature{ID: "f7", Source: s, Geometry: orb.Point{0, 0},
		Attributes: map[string]any{"oid": 7}, Visible: true}
	other := source.Feature{ID: "f8", Source: s, Geometry: orb.Point{0, 0},
		Attributes: map[string]any{"oid": 8}, Visible: true}
	q.feats = []source.Feature{dup, other}

	forced := dup
	set := mustResult(t, resolverFor(s).Resolve(context.Background(), clickAt(0, 0), &forced))

	got := set.Features()
	if len(got) != 2 {
		t.Fatalf("feature count = %d, want 2 (forced + non-duplicate)", len(got))
	}
	if got[0].ID != "f7" || got[1].ID != "f8" {
		t.Errorf("features = [%s %s], want [f7 f8]", got[0].ID, got[1].ID)
	}
}

func TestResolveForcedGraphicNotDoubled(t *testing.T) {
	// A forced graphic whose own source is queried anyway must appear
	// exactly once
	tmpl := &source.PopupTemplate{TitleField: "name"}
	g := source.NewGraphicsSource("g", "G", feats("g1"), tmpl)
	hit := g.Graphics()[0]

	set := mustResult(t, resolverFor(g).Resolve(context.Background(), clickAt(0, 0), &hit))
	if set.Count() != 1 || set.Features()[0].ID != "g1" {
		t.Errorf("features = %v, want a single g1", set.Features())
	}
}

func TestResolveGroupMembersQueried(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	a := source.NewFeatureSource("a", "A", &stubQuerier{feats: feats("a1")}, tmpl, "")
	b := source.NewFeatureSource("b", "B", &stubQuerier{feats: feats("b1")}, tmpl, "")
	group := source.NewGroupSource("g", "G", a, b)

	set := mustResult(t, resolverFor(group).Resolve(context.Background(), clickAt(0, 0), nil))
	got := set.Features()
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "b1" {
		t.Errorf("features = %v, want members in group order", got)
	}
}

func TestResolveRasterSamplesExactPoint(t *testing.T) {
	pq := &stubPointQuerier{feats: feats("cell")}
	r := source.NewRasterSource("r", "R", pq, &source.PopupTemplate{TitleField: "label"})

	click := clickAt(12, 34)
	mustResult(t, resolverFor(r).Resolve(context.Background(), click, nil))

	if pq.got == nil {
		t.Fatal("raster was never queried")
	}
	if *pq.got != *click.Map {
		t.Errorf("raster queried at %v, want the exact click point %v", *pq.got, *click.Map)
	}
}

func TestResolveMapImageUsesBindingPopupData(t *testing.T) {
	mi := source.NewMapImageSource("mi", "MI", &source.PopupTemplate{TitleField: "name"})
	bindings := map[string]*source.ViewBinding{
		"mi": {PopupData: func(ctx context.Context, extent orb.Bound) ([]source.Feature, error) {
			return feats("img1"), nil
		}},
	}

	rv := NewResolver(Config{
		Sources:      func() []*source.DataSource { return []*source.DataSource{mi} },
		Bindings:     func(s *source.DataSource) *source.ViewBinding { return bindings[s.ID] },
		ResolutionAt: func(orb.Point) float64 { return 1.0 },
	})

	set := mustResult(t, rv.Resolve(context.Background(), clickAt(0, 0), nil))
	if set.Count() != 1 || set.Features()[0].ID != "img1" {
		t.Errorf("features = %v, want img1 from the binding", set.Features())
	}
}

func TestResolveRenderedIDsFilter(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	hyd := &stubHydrator{}
	scene := source.NewSceneSource("scene", "Scene",
		&stubQuerier{feats: feats("r1", "r2", "r3")}, hyd, tmpl, "")

	bindings := map[string]*source.ViewBinding{
		"scene": {
			Draped:      true,
			RenderedIDs: map[string]struct{}{"r1": {}, "r3": {}},
		},
	}

	rv := NewResolver(Config{
		Sources:      func() []*source.DataSource { return []*source.DataSource{scene} },
		Bindings:     func(s *source.DataSource) *source.ViewBinding { return bindings[s.ID] },
		ResolutionAt: func(orb.Point) float64 { return 1.0 },
	})

	set := mustResult(t, rv.Resolve(context.Background(), clickAt(0, 0), nil))
	got := set.Features()
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r3" {
		t.Errorf("features = %v, want only rendered ones", got)
	}
}

func TestResolveHydratesDeferredAttributes(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	hyd := &stubHydrator{attrs: map[string]map[string]any{
		"s1": {"name": "Denali"},
	}}
	scene := source.NewSceneSource("scene", "Scene",
		&stubQuerier{feats: feats("s1")}, hyd, tmpl, "")

	set := mustResult(t, resolverFor(scene).Resolve(context.Background(), clickAt(0, 0), nil))
	if got := set.Features()[0].Attributes["name"]; got != "Denali" {
		t.Errorf("hydrated name = %v, want Denali", got)
	}
}

func TestResolveSupersededResolutionNotCurrent(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	gate := make(chan struct{})
	slow := source.NewFeatureSource("slow", "Slow", &stubQuerier{feats: feats("old"), gate: gate}, tmpl, "")

	rv := resolverFor(slow)
	first := rv.Resolve(context.Background(), clickAt(0, 0), nil)
	second := rv.Resolve(context.Background(), clickAt(5, 5), nil)

	if rv.IsCurrent(first) {
		t.Error("superseded resolution still reported current")
	}
	if !rv.IsCurrent(second) {
		t.Error("newest resolution not reported current")
	}

	// Let the first settle late; it must still not be current
	close(gate)
	<-first.Done()
	if rv.IsCurrent(first) {
		t.Error("late-settling superseded resolution became current")
	}

	if set, has := first.Result(); !has || set.Count() != 1 {
		t.Error("superseded resolution should still settle with its own result")
	}
}

func TestResolveGraphicsRequireTemplate(t *testing.T) {
	// Untemplated graphics in an untemplated source contribute nothing
	plain := source.NewGraphicsSource("plain", "Plain", feats("p1"), nil)

	res := resolverFor(plain).Resolve(context.Background(), clickAt(0, 0), nil)
	<-res.Done()
	if _, has := res.Result(); has {
		t.Error("untemplated graphic produced a popup result")
	}

	// The same graphic with its own template qualifies
	withOwn := feats("p2")
	withOwn[0].Template = &source.PopupTemplate{TitleField: "label"}
	own := source.NewGraphicsSource("own", "Own", withOwn, nil)

	set := mustResult(t, resolverFor(own).Resolve(context.Background(), clickAt(0, 0), nil))
	if set.Count() != 1 || set.Features()[0].ID != "p2" {
		t.Errorf("features = %v, want p2", set.Features())
	}
}

func TestResolveInvisibleGraphicsSkipped(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	fs := feats("vis", "hidden")
	fs[1].Visible = false
	g := source.NewGraphicsSource("g", "G", fs, tmpl)

	set := mustResult(t, resolverFor(g).Resolve(context.Background(), clickAt(0, 0), nil))
	if set.Count() != 1 || set.Features()[0].ID != "vis" {
		t.Errorf("features = %v, want only the visible graphic", set.Features())
	}
}

func TestResolveGraphicsOutsideToleranceSkipped(t *testing.T) {
	tmpl := &source.PopupTemplate{TitleField: "name"}
	far := []source.Feature{{ID: "far", Geometry: orb.Point{500, 80}, Visible: true}}
	g := source.NewGraphicsSource("g", "G", far, tmpl)

	res := resolverFor(g).Resolve(context.Background(), clickAt(0, 0), nil)
	<-res.Done()
	if _, has := res.Result(); has {
		t.Error("graphic far outside the tolerance region was returned")
	}
}
