package model

import (
	"errors"
	"fmt"
	"math"
)

// MaxAmount bounds any single nutrient value or goal. Larger values are
// typos, and values near the float64 limit break the chart scale.
const MaxAmount = 1e6

// CheckAmount rejects values that are not finite, negative or above
// MaxAmount.
func CheckAmount(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return errors.New("must be a finite number")
	case v < 0:
		return errors.New("must not be negative")
	case v > MaxAmount:
		return fmt.Errorf("must not exceed %g", MaxAmount)
	}
	return nil
}

// DailyGoals holds the user's daily targets. A zero goal disables progress
// tracking for that value.
type DailyGoals struct {
	Calories      float64 `json:"calories" toml:"calories"`
	Protein       float64 `json:"protein" toml:"protein"`
	Carbohydrates float64 `json:"carbohydrates" toml:"carbohydrates"`
	Fat           float64 `json:"fat" toml:"fat"`
}

// DefaultGoals returns the goals used until the user saves their own.
func DefaultGoals() DailyGoals {
	return DailyGoals{
		Calories:      2200,
		Protein:       150,
		Carbohydrates: 250,
		Fat:           70,
	}
}

// Validate rejects goals that fail CheckAmount.
func (g DailyGoals) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"calories", g.Calories},
		{"protein", g.Protein},
		{"carbohydrates", g.Carbohydrates},
		{"fat", g.Fat},
	}
	for _, f := range fields {
		if err := CheckAmount(f.v); err != nil {
			return fmt.Errorf("goal %s %w (got %g)", f.name, err, f.v)
		}
	}
	return nil
}
