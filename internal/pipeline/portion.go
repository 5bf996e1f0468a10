package pipeline

import (
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

// Portion slider bounds, in percent.
const (
	MinPortion     = 0
	MaxPortion     = 300
	DefaultPortion = 100
)

// ScaleEstimate multiplies every numeric field by percent/100. Negative
// percentages are treated as zero. Values are not rounded.
func ScaleEstimate(e model.Estimate, percent float64) model.Estimate {
	if percent < 0 {
		percent = 0
	}
	f := percent / 100
	return model.Estimate{
		MealName:      e.MealName,
		Calories:      e.Calories * f,
		Protein:       e.Protein * f,
		Carbohydrates: e.Carbohydrates * f,
		Fat:           e.Fat * f,
		Sugar:         e.Sugar * f,
	}
}

// PortionDraft is an analysis result waiting to be logged. The base estimate
// never changes; adjusting the portion only replaces the percentage, so
// repeated adjustments never compound.
type PortionDraft struct {
	Base    model.Estimate
	Percent float64
}

// NewPortionDraft starts a draft at the default 100% portion.
func NewPortionDraft(base model.Estimate) PortionDraft {
	return PortionDraft{Base: base, Percent: DefaultPortion}
}

// Adjust sets the portion percentage, clamped to the slider range.
func (d *PortionDraft) Adjust(percent float64) {
	if percent < MinPortion {
		percent = MinPortion
	}
	if percent > MaxPortion {
		percent = MaxPortion
	}
	d.Percent = percent
}

// Step moves the portion by delta percentage points.
func (d *PortionDraft) Step(delta float64) {
	d.Adjust(d.Percent + delta)
}

// Scaled returns the base estimate scaled to the current portion.
func (d PortionDraft) Scaled() model.Estimate {
	return ScaleEstimate(d.Base, d.Percent)
}

// Commit builds the log entry for the current portion.
func (d PortionDraft) Commit(id string, at time.Time, source string) model.FoodEntry {
	return d.Scaled().Entry(id, at, source)
}
