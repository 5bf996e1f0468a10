// Package radar renders macro-nutrient series as a polar chart: grid rings,
// labelled spokes, a goal outline and a filled data polygon.
package radar

import (
	"math"

	"github.com/theirongolddev/mealradar/internal/model"
)

// Layout constants, in surface units.
const (
	MarginTop    = 40
	MarginRight  = 50
	MarginBottom = 40
	MarginLeft   = 50

	// Levels is the number of concentric grid rings.
	Levels = 3

	// headroom is the factor between the largest value and the outer ring.
	headroom = 1.1
	// labelOffset places axis labels just beyond the spoke ends.
	labelOffset = 1.1
)

// Point is a position on the surface.
type Point struct {
	X, Y float64
}

// Radius returns the chart radius for a surface of the given size, floored
// at zero for surfaces smaller than the margins.
func Radius(width, height float64) float64 {
	r := math.Min(width-MarginLeft-MarginRight, height-MarginTop-MarginBottom) / 2
	if r < 0 {
		return 0
	}
	return r
}

// ScaleMax returns the value mapped to the outer edge of the chart. Data is
// floored at 0 and goals at 1, so the result is always strictly positive.
// Values too large for the headroom clamp to math.MaxFloat64.
func ScaleMax(data, goals model.ChartSeries) float64 {
	maxData := 0.0
	for _, p := range data {
		maxData = math.Max(maxData, p.Value)
	}
	maxGoal := 1.0
	for _, p := range goals {
		maxGoal = math.Max(maxGoal, p.Value)
	}
	m := math.Max(maxData, maxGoal)
	switch {
	case m == 0 || math.IsNaN(m):
		return 1
	case m > math.MaxFloat64/headroom:
		return math.MaxFloat64
	}
	return m * headroom
}

// Scale is a linear map from [0, Domain] to [0, Range].
type Scale struct {
	Domain float64
	Range  float64
}

// Map converts a value into a distance from the center. Values beyond the
// domain, infinities included, land on the outer edge.
func (s Scale) Map(v float64) float64 {
	if s.Domain == 0 || math.IsNaN(v) {
		return 0
	}
	if v > s.Domain {
		v = s.Domain
	}
	return v / s.Domain * s.Range
}

// AngleSlice returns the angle between adjacent axes.
func AngleSlice(axes int) float64 {
	if axes <= 0 {
		return 0
	}
	return 2 * math.Pi / float64(axes)
}

// AxisAngle returns the angle of axis i. Axis 0 points straight up and the
// rest follow clockwise.
func AxisAngle(i, axes int) float64 {
	return AngleSlice(axes)*float64(i) - math.Pi/2
}

// Polar converts a distance and angle around center into a surface point.
func Polar(center Point, r, angle float64) Point {
	return Point{
		X: center.X + r*math.Cos(angle),
		Y: center.Y + r*math.Sin(angle),
	}
}
