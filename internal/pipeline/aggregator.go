// Package pipeline folds the food log into dashboard data and runs batch
// meal-image analysis.
package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/mealradar/internal/model"
)

// kcal per gram, used for the calorie share breakdown.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// Aggregate recomputes totals, progress, and both radar series from the
// full log. It keeps no state between calls.
func Aggregate(log []model.FoodEntry, goals model.DailyGoals) model.Dashboard {
	totals := Totals(log)

	return model.Dashboard{
		Totals:           totals,
		Goals:            goals,
		CaloriesProgress: Progress(totals.Calories, goals.Calories),
		MacroProgress: model.MacroProgress{
			Protein:       Progress(totals.Protein, goals.Protein),
			Carbohydrates: Progress(totals.Carbohydrates, goals.Carbohydrates),
			Fat:           Progress(totals.Fat, goals.Fat),
		},
		MacroSeries: MacroSeries(totals),
		GoalSeries:  GoalSeries(goals),
		Entries:     len(log),
	}
}

// Totals sums every numeric field over the log.
func Totals(log []model.FoodEntry) model.MacroTotals {
	var t model.MacroTotals
	for _, e := range log {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbohydrates += e.Carbohydrates
		t.Fat += e.Fat
		t.Sugar += e.Sugar
	}
	return t
}

// Progress returns current as a percentage of goal, capped to [0, 100].
// A zero goal yields 0.
func Progress(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	pct := current / goal * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// MacroSeries builds the data series in axis order.
func MacroSeries(t model.MacroTotals) model.ChartSeries {
	return model.ChartSeries{
		{Axis: model.AxisProtein, Value: t.Protein},
		{Axis: model.AxisCarbs, Value: t.Carbohydrates},
		{Axis: model.AxisFat, Value: t.Fat},
	}
}

// GoalSeries builds the goal series in axis order.
func GoalSeries(g model.DailyGoals) model.ChartSeries {
	return model.ChartSeries{
		{Axis: model.AxisProtein, Value: g.Protein},
		{Axis: model.AxisCarbs, Value: g.Carbohydrates},
		{Axis: model.AxisFat, Value: g.Fat},
	}
}

// Remaining returns how much of each goal is left, floored at zero.
func Remaining(t model.MacroTotals, g model.DailyGoals) model.DailyGoals {
	return model.DailyGoals{
		Calories:      floorZero(g.Calories - t.Calories),
		Protein:       floorZero(g.Protein - t.Protein),
		Carbohydrates: floorZero(g.Carbohydrates - t.Carbohydrates),
		Fat:           floorZero(g.Fat - t.Fat),
	}
}

// CalorieShare splits macro energy into protein/carbs/fat percentages.
// All three are zero when no macros were logged.
func CalorieShare(t model.MacroTotals) model.MacroProgress {
	p := t.Protein * kcalPerGramProtein
	c := t.Carbohydrates * kcalPerGramCarbs
	f := t.Fat * kcalPerGramFat
	total := p + c + f
	if total <= 0 {
		return model.MacroProgress{}
	}
	return model.MacroProgress{
		Protein:       p / total * 100,
		Carbohydrates: c / total * 100,
		Fat:           f / total * 100,
	}
}

// AggregateSources groups the log by entry source, sorted by calories
// descending.
func AggregateSources(log []model.FoodEntry) []model.SourceStats {
	bySource := make(map[string]*model.SourceStats)
	var totalKcal float64

	for _, e := range log {
		src := e.Source
		if src == "" {
			src = model.SourceManual
		}
		ss, ok := bySource[src]
		if !ok {
			ss = &model.SourceStats{Source: src}
			bySource[src] = ss
		}
		ss.Entries++
		ss.Calories += e.Calories
		totalKcal += e.Calories
	}

	out := make([]model.SourceStats, 0, len(bySource))
	for _, ss := range bySource {
		if totalKcal > 0 {
			ss.SharePercent = ss.Calories / totalKcal * 100
		}
		out = append(out, *ss)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calories != out[j].Calories {
			return out[i].Calories > out[j].Calories
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// FilterByName returns entries whose meal name contains the substring
// (case-insensitive).
func FilterByName(log []model.FoodEntry, name string) []model.FoodEntry {
	var out []model.FoodEntry
	for _, e := range log {
		if strings.Contains(strings.ToLower(e.MealName), strings.ToLower(name)) {
			out = append(out, e)
		}
	}
	return out
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
