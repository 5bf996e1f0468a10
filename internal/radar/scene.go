package radar

import (
	"github.com/theirongolddev/mealradar/internal/model"
)

// Default stroke and fill styling.
const (
	DefaultAreaColor = "#38bdf8"
	GridColor        = "#ffffff"

	GridFillOpacity   = 0.05
	GridStrokeOpacity = 0.1
	GoalStrokeOpacity = 0.8
	GoalStrokeWidth   = 2
	DataFillOpacity   = 0.4
	LabelFontSize     = 12
)

// AreaKind tells the two polygons apart.
type AreaKind int

const (
	AreaGoal AreaKind = iota
	AreaData
)

func (k AreaKind) String() string {
	if k == AreaGoal {
		return "goal"
	}
	return "data"
}

// Circle is one grid ring.
type Circle struct {
	Level  int
	Radius float64
}

// Spoke is one axis line with its label.
type Spoke struct {
	Axis       string
	End        Point
	LabelAt    Point
	LabelColor string
}

// Polygon is a closed radar area. Points are absolute surface positions at
// full scale; backends apply the scene's DataScale to the data polygon.
type Polygon struct {
	Kind          AreaKind
	Points        []Point
	Stroke        string
	StrokeOpacity float64
	StrokeWidth   float64
	Fill          string
	FillOpacity   float64
}

// Scene is one complete frame: three layers drawn in order.
type Scene struct {
	Width, Height float64
	Center        Point
	Radius        float64
	ScaleMax      float64

	Grid  []Circle
	Axes  []Spoke
	Areas []Polygon // goal outline, then data area

	// DataScale is the entrance animation factor for the data polygon,
	// 1 when no animation is running.
	DataScale float64
	// Initial is set for frames of the first draw.
	Initial bool
}

// ScaledPoint returns p scaled towards the center by DataScale.
func (s Scene) ScaledPoint(p Point) Point {
	k := s.DataScale
	return Point{
		X: s.Center.X + (p.X-s.Center.X)*k,
		Y: s.Center.Y + (p.Y-s.Center.Y)*k,
	}
}

// Data returns the data polygon.
func (s Scene) Data() (Polygon, bool) {
	for _, a := range s.Areas {
		if a.Kind == AreaData {
			return a, true
		}
	}
	return Polygon{}, false
}

// Goal returns the goal outline.
func (s Scene) Goal() (Polygon, bool) {
	for _, a := range s.Areas {
		if a.Kind == AreaGoal {
			return a, true
		}
	}
	return Polygon{}, false
}

// Build lays out a full frame for a surface of the given size. It reports
// false, and builds nothing, when either series is empty.
func Build(width, height float64, data, goals model.ChartSeries, palette model.Palette, areaColor string) (Scene, bool) {
	if len(data) == 0 || len(goals) == 0 {
		return Scene{}, false
	}
	if areaColor == "" {
		areaColor = DefaultAreaColor
	}

	radius := Radius(width, height)
	center := Point{X: width / 2, Y: height / 2}
	scaleMax := ScaleMax(data, goals)
	scale := Scale{Domain: scaleMax, Range: radius}
	n := len(data)

	s := Scene{
		Width:     width,
		Height:    height,
		Center:    center,
		Radius:    radius,
		ScaleMax:  scaleMax,
		DataScale: 1,
	}

	for k := 1; k <= Levels; k++ {
		s.Grid = append(s.Grid, Circle{Level: k, Radius: radius / Levels * float64(k)})
	}

	for i, p := range data {
		angle := AxisAngle(i, n)
		s.Axes = append(s.Axes, Spoke{
			Axis:       p.Axis,
			End:        Polar(center, scale.Map(scaleMax), angle),
			LabelAt:    Polar(center, scale.Map(scaleMax)*labelOffset, angle),
			LabelColor: palette.ForAxis(p.Axis),
		})
	}

	s.Areas = []Polygon{
		{
			Kind:          AreaGoal,
			Points:        outline(center, scale, goals),
			Stroke:        areaColor,
			StrokeOpacity: GoalStrokeOpacity,
			StrokeWidth:   GoalStrokeWidth,
		},
		{
			Kind:        AreaData,
			Points:      outline(center, scale, data),
			Fill:        areaColor,
			FillOpacity: DataFillOpacity,
		},
	}

	return s, true
}

// outline places each series value on its own axis. The goal series has
// the same axis order as the data series, so index i is axis i for both.
func outline(center Point, scale Scale, series model.ChartSeries) []Point {
	pts := make([]Point, len(series))
	for i, p := range series {
		v := p.Value
		if v < 0 {
			v = 0
		}
		pts[i] = Polar(center, scale.Map(v), AxisAngle(i, len(series)))
	}
	return pts
}
