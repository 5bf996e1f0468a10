package model

// Radar axis labels, in plotting order.
const (
	AxisProtein = "Protein"
	AxisCarbs   = "Carbs"
	AxisFat     = "Fat"
)

// Axes is the fixed axis order shared by every chart series.
var Axes = []string{AxisProtein, AxisCarbs, AxisFat}

// MacroTotals is the field-wise sum of a food log.
type MacroTotals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Sugar         float64 `json:"sugar"`
}

// AxisPoint is one value on a radar axis.
type AxisPoint struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
}

// ChartSeries is an ordered set of axis points, one per entry in Axes.
type ChartSeries []AxisPoint

// Max returns the largest value in the series, or 0 for an empty series.
func (s ChartSeries) Max() float64 {
	var m float64
	for i, p := range s {
		if i == 0 || p.Value > m {
			m = p.Value
		}
	}
	return m
}

// MacroProgress holds per-macro progress percentages, each in [0, 100].
type MacroProgress struct {
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

// Dashboard is everything the views need to render the current day.
type Dashboard struct {
	Totals           MacroTotals   `json:"totals"`
	Goals            DailyGoals    `json:"goals"`
	CaloriesProgress float64       `json:"caloriesProgress"`
	MacroProgress    MacroProgress `json:"macroProgress"`
	MacroSeries      ChartSeries   `json:"macroSeries"`
	GoalSeries       ChartSeries   `json:"goalSeries"`
	Entries          int           `json:"entries"`
}

// SourceStats holds totals for the entries logged through one source.
type SourceStats struct {
	Source       string  `json:"source"`
	Entries      int     `json:"entries"`
	Calories     float64 `json:"calories"`
	SharePercent float64 `json:"sharePercent"`
}

// Palette maps each nutrient to a display color (hex string).
type Palette struct {
	Calories      string
	Protein       string
	Carbohydrates string
	Fat           string
	Sugar         string
}

// ForAxis resolves the color for a radar axis label. Unknown axes are white.
func (p Palette) ForAxis(axis string) string {
	switch axis {
	case AxisProtein:
		return p.Protein
	case AxisCarbs:
		return p.Carbohydrates
	case AxisFat:
		return p.Fat
	}
	return "#ffffff"
}
