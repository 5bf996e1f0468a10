package radar

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

var testPalette = model.Palette{
	Calories:      "#38bdf8",
	Protein:       "#f0abfc",
	Carbohydrates: "#a3e635",
	Fat:           "#facc15",
	Sugar:         "#f87171",
}

func series(p, c, f float64) model.ChartSeries {
	return model.ChartSeries{
		{Axis: model.AxisProtein, Value: p},
		{Axis: model.AxisCarbs, Value: c},
		{Axis: model.AxisFat, Value: f},
	}
}

// fakeSurface records draws and reports a configurable size.
type fakeSurface struct {
	w, h   float64
	clears int
	scenes []Scene
	live   []Scene // frames currently on screen
}

func (f *fakeSurface) Size() (float64, float64) { return f.w, f.h }
func (f *fakeSurface) Clear()                   { f.clears++; f.live = nil }
func (f *fakeSurface) Draw(s Scene) {
	f.scenes = append(f.scenes, s)
	f.live = append(f.live, s)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRadius(t *testing.T) {
	tests := []struct {
		w, h, want float64
	}{
		{400, 250, 85},  // min(300, 170) / 2
		{200, 400, 50},  // min(100, 320) / 2
		{80, 60, 0},     // smaller than margins
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Radius(tt.w, tt.h); got != tt.want {
			t.Errorf("Radius(%g, %g) = %g, want %g", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestScaleMax(t *testing.T) {
	tests := []struct {
		name        string
		data, goals model.ChartSeries
		want        float64
	}{
		{"all zero", series(0, 0, 0), series(0, 0, 0), 1.1},
		{"empty", nil, nil, 1.1},
		{"goal wins", series(50, 100, 20), series(150, 250, 70), 275},
		{"data wins", series(300, 100, 20), series(150, 250, 70), 330},
		{"negative data floored", series(-10, -5, -1), series(0, 0, 0), 1.1},
		{"huge goal clamps", series(0, 0, 0), series(1.7e308, 0, 0), math.MaxFloat64},
		{"infinite data clamps", series(math.Inf(1), 0, 0), series(150, 250, 70), math.MaxFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleMax(tt.data, tt.goals)
			if !approx(got, tt.want) {
				t.Errorf("ScaleMax = %g, want %g", got, tt.want)
			}
			if got <= 0 {
				t.Errorf("ScaleMax = %g, want > 0", got)
			}
		})
	}
}

func TestBuild_Geometry(t *testing.T) {
	s, ok := Build(400, 250, series(150, 0, 0), series(150, 250, 70), testPalette, "")
	if !ok {
		t.Fatal("Build returned !ok")
	}
	if s.Center != (Point{200, 125}) {
		t.Errorf("Center = %+v", s.Center)
	}
	if len(s.Grid) != Levels {
		t.Fatalf("len(Grid) = %d, want %d", len(s.Grid), Levels)
	}
	for i, c := range s.Grid {
		want := s.Radius / Levels * float64(i+1)
		if !approx(c.Radius, want) {
			t.Errorf("Grid[%d].Radius = %g, want %g", i, c.Radius, want)
		}
	}

	// First axis points straight up and its spoke reaches the full radius.
	up := s.Axes[0]
	if !approx(up.End.X, 200) || !approx(up.End.Y, 125-s.Radius) {
		t.Errorf("Protein spoke end = %+v, want (200, %g)", up.End, 125-s.Radius)
	}
	if !approx(up.LabelAt.Y, 125-s.Radius*1.1) {
		t.Errorf("Protein label y = %g, want %g", up.LabelAt.Y, 125-s.Radius*1.1)
	}

	// Second axis is 120 degrees clockwise from the first: right and down.
	if s.Axes[1].End.X <= 200 || s.Axes[1].End.Y <= 125 {
		t.Errorf("Carbs spoke end = %+v, want lower right", s.Axes[1].End)
	}

	if len(s.Areas) != 2 || s.Areas[0].Kind != AreaGoal || s.Areas[1].Kind != AreaData {
		t.Fatalf("Areas = %+v, want goal then data", s.Areas)
	}
	goal, _ := s.Goal()
	if goal.Fill != "" || goal.StrokeWidth != GoalStrokeWidth || goal.StrokeOpacity != GoalStrokeOpacity {
		t.Errorf("goal style = %+v", goal)
	}
	data, _ := s.Data()
	if data.FillOpacity != DataFillOpacity || data.Fill != DefaultAreaColor {
		t.Errorf("data style = %+v", data)
	}

	// Zero carbs and fat collapse onto the center.
	if data.Points[1] != s.Center || data.Points[2] != s.Center {
		t.Errorf("zero values should sit on the center: %+v", data.Points)
	}
	wantR := 150 / s.ScaleMax * s.Radius
	if !approx(125-data.Points[0].Y, wantR) {
		t.Errorf("protein distance = %g, want %g", 125-data.Points[0].Y, wantR)
	}
}

func TestBuild_LabelColorsFollowPalette(t *testing.T) {
	s, _ := Build(400, 250, series(1, 1, 1), series(1, 1, 1), testPalette, "")
	want := []string{"#f0abfc", "#a3e635", "#facc15"}
	for i, a := range s.Axes {
		if a.LabelColor != want[i] {
			t.Errorf("Axes[%d] %s color = %q, want %q", i, a.Axis, a.LabelColor, want[i])
		}
	}

	odd := model.ChartSeries{{Axis: "Fiber", Value: 3}}
	s, _ = Build(400, 250, odd, odd, testPalette, "")
	if s.Axes[0].LabelColor != "#ffffff" {
		t.Errorf("unknown axis color = %q, want #ffffff", s.Axes[0].LabelColor)
	}
}

func TestBuild_EmptySeries(t *testing.T) {
	if _, ok := Build(400, 250, nil, series(1, 1, 1), testPalette, ""); ok {
		t.Error("Build with empty data returned ok")
	}
	if _, ok := Build(400, 250, series(1, 1, 1), nil, testPalette, ""); ok {
		t.Error("Build with empty goals returned ok")
	}
}

func TestRenderer_DefersUntilMeasurable(t *testing.T) {
	surf := &fakeSurface{}
	r := New(surf)

	if r.Update(series(1, 2, 3), series(4, 5, 6), testPalette) {
		t.Fatal("Update drew on an unmeasured surface")
	}
	if r.State() != Uninitialized {
		t.Fatalf("State = %v, want uninitialized", r.State())
	}
	if len(surf.scenes) != 0 || surf.clears != 0 {
		t.Fatal("unmeasured surface was touched")
	}

	surf.w, surf.h = 400, 250
	if !r.Update(series(1, 2, 3), series(4, 5, 6), testPalette) {
		t.Fatal("Update did not draw after surface became measurable")
	}
	if r.State() != Ready {
		t.Fatalf("State = %v, want ready", r.State())
	}
	first := surf.scenes[0]
	if !first.Initial || first.DataScale != EntranceStart {
		t.Errorf("first frame Initial=%v DataScale=%g, want true/%g", first.Initial, first.DataScale, EntranceStart)
	}
}

func TestRenderer_RedrawReplacesFrame(t *testing.T) {
	surf := &fakeSurface{w: 400, h: 250}
	r := New(surf, WithoutAnimation())

	data, goals := series(40, 100, 20), series(150, 250, 70)
	r.Update(data, goals, testPalette)
	r.Update(data, goals, testPalette)

	if len(surf.live) != 1 {
		t.Fatalf("live frames = %d, want 1", len(surf.live))
	}
	if surf.clears != 2 {
		t.Errorf("clears = %d, want 2", surf.clears)
	}
	a, b := surf.scenes[0], surf.scenes[1]
	if len(a.Grid) != len(b.Grid) || len(a.Axes) != len(b.Axes) || len(a.Areas) != len(b.Areas) {
		t.Fatal("identical inputs produced different layer sizes")
	}
	for i := range a.Areas {
		for j := range a.Areas[i].Points {
			if a.Areas[i].Points[j] != b.Areas[i].Points[j] {
				t.Errorf("area %d point %d differs: %+v vs %+v", i, j, a.Areas[i].Points[j], b.Areas[i].Points[j])
			}
		}
	}
	if b.Initial || b.DataScale != 1 {
		t.Errorf("redraw Initial=%v DataScale=%g, want false/1", b.Initial, b.DataScale)
	}

	last, ok := r.Scene()
	if !ok {
		t.Fatal("Scene() reported no frame after a draw")
	}
	if last.ScaleMax != a.ScaleMax || last.Radius != a.Radius || len(last.Axes) != len(a.Axes) {
		t.Errorf("Scene() = scale %g radius %g, want scale %g radius %g", last.ScaleMax, last.Radius, a.ScaleMax, a.Radius)
	}
	for i := range a.Axes {
		if last.Axes[i].End != a.Axes[i].End {
			t.Errorf("axis %d end = %+v, want %+v", i, last.Axes[i].End, a.Axes[i].End)
		}
	}

	r.Close()
	if _, ok := r.Scene(); ok {
		t.Error("Scene() still reports a frame after Close")
	}
}

func finitePoint(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func TestBuild_ExtremeValuesStayFinite(t *testing.T) {
	tests := []struct {
		name        string
		data, goals model.ChartSeries
	}{
		{"huge goal", series(40, 100, 20), series(1.7e308, 250, 70)},
		{"overflowed totals", series(math.Inf(1), 100, 20), series(150, 250, 70)},
		{"huge data", series(1.7e308, 1.7e308, 1.7e308), series(150, 250, 70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Build(400, 250, tt.data, tt.goals, testPalette, "")
			if !ok {
				t.Fatal("Build returned !ok")
			}
			if math.IsInf(s.ScaleMax, 0) || math.IsNaN(s.ScaleMax) {
				t.Fatalf("ScaleMax = %g, want finite", s.ScaleMax)
			}
			for i, a := range s.Axes {
				if !finitePoint(a.End) || !finitePoint(a.LabelAt) {
					t.Errorf("axis %d end %+v label %+v, want finite", i, a.End, a.LabelAt)
				}
			}
			for _, area := range s.Areas {
				for j, p := range area.Points {
					if !finitePoint(p) {
						t.Errorf("area %s point %d = %+v, want finite", area.Kind, j, p)
					}
					if d := math.Hypot(p.X-s.Center.X, p.Y-s.Center.Y); d > s.Radius+1e-9 {
						t.Errorf("area %s point %d is %g from center, beyond radius %g", area.Kind, j, d, s.Radius)
					}
				}
			}

			svg := string(RenderSVG(400, 250, Input{Data: tt.data, Goals: tt.goals, Palette: testPalette}, false))
			if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
				t.Errorf("SVG contains non-finite coordinates:\n%s", svg)
			}

			done := make(chan struct{})
			go func() {
				c := NewCanvas(60, 20, "#0f172a")
				New(c, WithoutAnimation()).Update(tt.data, tt.goals, testPalette)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("canvas Update did not return")
			}
		})
	}
}

func TestRenderer_EmptySeriesKeepsPriorFrame(t *testing.T) {
	surf := &fakeSurface{w: 400, h: 250}
	r := New(surf, WithoutAnimation())
	r.Update(series(1, 2, 3), series(4, 5, 6), testPalette)

	if r.Update(nil, series(4, 5, 6), testPalette) {
		t.Error("Update with empty data reported a draw")
	}
	if len(surf.live) != 1 {
		t.Errorf("live frames = %d, want prior frame kept", len(surf.live))
	}
}

func TestRenderer_AnimationRunsToCompletion(t *testing.T) {
	surf := &fakeSurface{w: 400, h: 250}
	r := New(surf)
	r.Update(series(10, 10, 10), series(20, 20, 20), testPalette)

	// A redraw mid-animation keeps the animation going.
	r.Advance()
	r.Update(series(30, 10, 10), series(20, 20, 20), testPalette)
	if !r.Animating() {
		t.Fatal("redraw cancelled the entrance animation")
	}

	peak := 0.0
	for r.Advance() {
		last := surf.scenes[len(surf.scenes)-1]
		peak = math.Max(peak, last.DataScale)
	}
	if peak <= 1 {
		t.Errorf("peak scale = %g, want overshoot above 1", peak)
	}

	final := surf.scenes[len(surf.scenes)-1]
	if final.DataScale != 1 || final.Initial {
		t.Errorf("final DataScale=%g Initial=%v, want 1/false", final.DataScale, final.Initial)
	}
	if r.Advance() {
		t.Error("Advance after completion returned true")
	}
}

func TestRenderer_Close(t *testing.T) {
	surf := &fakeSurface{w: 400, h: 250}
	r := New(surf)
	r.Close()
	if r.Update(series(1, 1, 1), series(1, 1, 1), testPalette) {
		t.Error("Update after Close drew")
	}
	if len(surf.scenes) != 0 {
		t.Error("closed renderer touched the surface")
	}
}

func TestEntranceTimeline(t *testing.T) {
	tl := EntranceTimeline()
	if len(tl) != EntranceFPS {
		t.Fatalf("len = %d, want %d", len(tl), EntranceFPS)
	}
	if tl[0] != EntranceStart {
		t.Errorf("first = %g, want %g", tl[0], EntranceStart)
	}
	if tl[len(tl)-1] != 1 {
		t.Errorf("last = %g, want 1", tl[len(tl)-1])
	}
}

func TestSVG_IdempotentRedraw(t *testing.T) {
	in := Input{Data: series(40, 100, 20), Goals: series(150, 250, 70), Palette: testPalette}
	a := RenderSVG(400, 250, in, false)
	b := RenderSVG(400, 250, in, false)
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different SVG")
	}

	surf := NewSVGSurface(400, 250)
	r := New(surf, WithoutAnimation())
	r.Update(in.Data, in.Goals, in.Palette)
	r.Update(in.Data, in.Goals, in.Palette)
	doc := string(surf.Bytes())

	if n := strings.Count(doc, `class="grid"`); n != 1 {
		t.Errorf("grid groups = %d, want 1", n)
	}
	if n := strings.Count(doc, `class="grid-circle"`); n != Levels {
		t.Errorf("grid circles = %d, want %d", n, Levels)
	}
	if n := strings.Count(doc, "<svg"); n != 1 {
		t.Errorf("svg roots = %d, want 1", n)
	}
	for _, want := range []string{`class="area-goal"`, `fill="none"`, `class="area-data"`, `fill-opacity="0.4"`, `>Protein</text>`, `fill="#f0abfc"`} {
		if !strings.Contains(doc, want) {
			t.Errorf("SVG missing %s", want)
		}
	}
	if strings.Contains(doc, "animateTransform") {
		t.Error("non-animated SVG contains an animation")
	}
}

func TestSVG_Animated(t *testing.T) {
	in := Input{Data: series(40, 100, 20), Goals: series(150, 250, 70), Palette: testPalette}
	doc := string(RenderSVG(400, 250, in, true))
	if !strings.Contains(doc, `<animateTransform attributeName="transform" type="scale" dur="1000ms"`) {
		t.Errorf("animated SVG missing entrance animation:\n%s", doc)
	}
	if !strings.Contains(doc, `values="0.1;`) {
		t.Error("animation should start at 0.1")
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		1:        "1",
		0.4:      "0.4",
		-0.0001:  "0",
		12.34567: "12.346",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%g) = %q, want %q", in, got, want)
		}
	}
}
