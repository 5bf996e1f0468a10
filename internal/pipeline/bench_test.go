package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/mealradar/internal/model"
)

func BenchmarkAggregate(b *testing.B) {
	log := make([]model.FoodEntry, 500)
	for i := range log {
		log[i] = model.FoodEntry{
			ID:            fmt.Sprintf("e%d", i),
			MealName:      "meal",
			Calories:      float64(i % 900),
			Protein:       float64(i % 40),
			Carbohydrates: float64(i % 80),
			Fat:           float64(i % 30),
		}
	}
	goals := model.DefaultGoals()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(log, goals)
	}
}
