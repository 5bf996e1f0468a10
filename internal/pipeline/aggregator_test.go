package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

func entry(id string, kcal, p, c, f, s float64) model.FoodEntry {
	return model.FoodEntry{ID: id, MealName: id, Calories: kcal, Protein: p, Carbohydrates: c, Fat: f, Sugar: s}
}

func TestAggregate_EmptyLog(t *testing.T) {
	d := Aggregate(nil, model.DefaultGoals())

	if d.Totals != (model.MacroTotals{}) {
		t.Errorf("Totals = %+v, want zero", d.Totals)
	}
	if d.CaloriesProgress != 0 {
		t.Errorf("CaloriesProgress = %g, want 0", d.CaloriesProgress)
	}
	want := model.ChartSeries{{Axis: "Protein"}, {Axis: "Carbs"}, {Axis: "Fat"}}
	if len(d.MacroSeries) != len(want) {
		t.Fatalf("len(MacroSeries) = %d, want %d", len(d.MacroSeries), len(want))
	}
	for i := range want {
		if d.MacroSeries[i] != want[i] {
			t.Errorf("MacroSeries[%d] = %+v, want %+v", i, d.MacroSeries[i], want[i])
		}
	}
}

func TestAggregate_TotalsAreFieldwiseSums(t *testing.T) {
	log := []model.FoodEntry{
		entry("a", 500, 30, 40, 20, 5),
		entry("b", 300, 10, 50, 5, 20),
		entry("c", 0, 0, 0, 0, 0),
	}
	d := Aggregate(log, model.DefaultGoals())

	want := model.MacroTotals{Calories: 800, Protein: 40, Carbohydrates: 90, Fat: 25, Sugar: 25}
	if d.Totals != want {
		t.Errorf("Totals = %+v, want %+v", d.Totals, want)
	}
	if d.Entries != 3 {
		t.Errorf("Entries = %d, want 3", d.Entries)
	}
}

func TestAggregate_ProgressCapped(t *testing.T) {
	log := []model.FoodEntry{entry("a", 500, 0, 0, 0, 0), entry("b", 300, 0, 0, 0, 0)}
	d := Aggregate(log, model.DailyGoals{Calories: 800})

	if d.Totals.Calories != 800 {
		t.Errorf("Totals.Calories = %g, want 800", d.Totals.Calories)
	}
	if d.CaloriesProgress != 100 {
		t.Errorf("CaloriesProgress = %g, want 100", d.CaloriesProgress)
	}

	d = Aggregate(append(log, entry("c", 900, 0, 0, 0, 0)), model.DailyGoals{Calories: 800})
	if d.CaloriesProgress != 100 {
		t.Errorf("over-goal CaloriesProgress = %g, want 100", d.CaloriesProgress)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		cur, goal, want float64
	}{
		{0, 0, 0},
		{500, 0, 0},
		{1100, 2200, 50},
		{3000, 2200, 100},
		{-10, 100, 0},
		{10, -5, 0},
	}
	for _, tt := range tests {
		got := Progress(tt.cur, tt.goal)
		if got != tt.want {
			t.Errorf("Progress(%g, %g) = %g, want %g", tt.cur, tt.goal, got, tt.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("Progress(%g, %g) = %g out of range", tt.cur, tt.goal, got)
		}
	}
}

func TestAggregate_SeriesAxisOrderMatches(t *testing.T) {
	d := Aggregate([]model.FoodEntry{entry("a", 100, 1, 2, 3, 4)}, model.DailyGoals{Protein: 10, Carbohydrates: 20, Fat: 30})

	if len(d.MacroSeries) != len(d.GoalSeries) {
		t.Fatalf("series lengths differ: %d vs %d", len(d.MacroSeries), len(d.GoalSeries))
	}
	for i := range d.MacroSeries {
		if d.MacroSeries[i].Axis != d.GoalSeries[i].Axis {
			t.Errorf("axis %d: %q vs %q", i, d.MacroSeries[i].Axis, d.GoalSeries[i].Axis)
		}
		if d.MacroSeries[i].Axis != model.Axes[i] {
			t.Errorf("axis %d = %q, want %q", i, d.MacroSeries[i].Axis, model.Axes[i])
		}
	}
	if d.MacroSeries[1].Value != 2 || d.GoalSeries[2].Value != 30 {
		t.Errorf("series values = %+v / %+v", d.MacroSeries, d.GoalSeries)
	}
	if d.MacroProgress.Fat != 10 {
		t.Errorf("MacroProgress.Fat = %g, want 10", d.MacroProgress.Fat)
	}
}

func TestAggregate_IsPure(t *testing.T) {
	log := []model.FoodEntry{entry("a", 100, 1, 2, 3, 4)}
	goals := model.DefaultGoals()
	a := Aggregate(log, goals)
	b := Aggregate(log, goals)
	if a.Totals != b.Totals || a.CaloriesProgress != b.CaloriesProgress {
		t.Error("repeated Aggregate calls differ")
	}
}

func TestRemaining(t *testing.T) {
	got := Remaining(model.MacroTotals{Calories: 2500, Protein: 50}, model.DefaultGoals())
	want := model.DailyGoals{Calories: 0, Protein: 100, Carbohydrates: 250, Fat: 70}
	if got != want {
		t.Errorf("Remaining = %+v, want %+v", got, want)
	}
}

func TestCalorieShare(t *testing.T) {
	if got := CalorieShare(model.MacroTotals{}); got != (model.MacroProgress{}) {
		t.Errorf("CalorieShare(zero) = %+v", got)
	}
	// 25g protein = 100 kcal, 25g carbs = 100 kcal, 0g fat.
	got := CalorieShare(model.MacroTotals{Protein: 25, Carbohydrates: 25})
	if got.Protein != 50 || got.Carbohydrates != 50 || got.Fat != 0 {
		t.Errorf("CalorieShare = %+v", got)
	}
}

func TestAggregateSources(t *testing.T) {
	log := []model.FoodEntry{
		{ID: "1", Calories: 300, Source: model.SourceVision},
		{ID: "2", Calories: 100, Source: model.SourceBarcode},
		{ID: "3", Calories: 100},
	}
	got := AggregateSources(log)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Source != model.SourceVision || got[0].SharePercent != 60 {
		t.Errorf("got[0] = %+v", got[0])
	}
	// Ties break by name.
	if got[1].Source != model.SourceBarcode || got[2].Source != model.SourceManual {
		t.Errorf("order = %s, %s", got[1].Source, got[2].Source)
	}
}

func TestFilterByName(t *testing.T) {
	log := []model.FoodEntry{{MealName: "Greek Salad"}, {MealName: "Pizza"}}
	if got := FilterByName(log, "salad"); len(got) != 1 || got[0].MealName != "Greek Salad" {
		t.Errorf("FilterByName = %+v", got)
	}
}

func TestScaleEstimate(t *testing.T) {
	base := model.Estimate{MealName: "Bowl", Calories: 200, Protein: 10, Carbohydrates: 30, Fat: 5, Sugar: 3}

	if got := ScaleEstimate(base, 100); got != base {
		t.Errorf("ScaleEstimate(100) = %+v, want identity", got)
	}

	half := ScaleEstimate(base, 50)
	if half.Calories != 100 || half.Protein != 5 || half.Carbohydrates != 15 || half.Fat != 2.5 || half.Sugar != 1.5 {
		t.Errorf("ScaleEstimate(50) = %+v", half)
	}
	if half.MealName != "Bowl" {
		t.Errorf("MealName = %q", half.MealName)
	}

	if got := ScaleEstimate(base, -20); got.Calories != 0 {
		t.Errorf("negative percent Calories = %g, want 0", got.Calories)
	}

	// No rounding.
	third := ScaleEstimate(model.Estimate{Calories: 100}, 33)
	if math.Abs(third.Calories-33) > 1e-9 {
		t.Errorf("ScaleEstimate(33).Calories = %g", third.Calories)
	}
}

func TestPortionDraft_DoesNotCompound(t *testing.T) {
	d := NewPortionDraft(model.Estimate{MealName: "Soup", Calories: 200})
	if d.Percent != DefaultPortion {
		t.Fatalf("Percent = %g, want %d", d.Percent, DefaultPortion)
	}

	d.Adjust(50)
	d.Adjust(50)
	d.Step(10)
	d.Step(-10)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := d.Commit("id-1", at, model.SourceVision)
	if e.Calories != 100 {
		t.Errorf("committed Calories = %g, want 100", e.Calories)
	}
	if e.ID != "id-1" || !e.LoggedAt.Equal(at) || e.Source != model.SourceVision {
		t.Errorf("entry identity = %+v", e)
	}
	if d.Base.Calories != 200 {
		t.Errorf("base changed to %g", d.Base.Calories)
	}
}

func TestPortionDraft_Clamps(t *testing.T) {
	d := NewPortionDraft(model.Estimate{Calories: 100})
	d.Adjust(1000)
	if d.Percent != MaxPortion {
		t.Errorf("Percent = %g, want %d", d.Percent, MaxPortion)
	}
	d.Step(-5000)
	if d.Percent != MinPortion {
		t.Errorf("Percent = %g, want %d", d.Percent, MinPortion)
	}
}
