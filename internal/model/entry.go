package model

import (
	"time"

	"github.com/google/uuid"
)

// Entry sources.
const (
	SourceVision  = "vision"
	SourceBarcode = "barcode"
	SourceManual  = "manual"
	SourceImport  = "import"
)

// Estimate is a nutrition estimate for one serving, as returned by image
// analysis or a barcode lookup. Values are per 100% portion.
type Estimate struct {
	MealName      string  `json:"mealName"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Sugar         float64 `json:"sugar"`
}

// Entry turns the estimate into a log entry with the given identity.
func (e Estimate) Entry(id string, at time.Time, source string) FoodEntry {
	return FoodEntry{
		ID:            id,
		MealName:      e.MealName,
		Calories:      e.Calories,
		Protein:       e.Protein,
		Carbohydrates: e.Carbohydrates,
		Fat:           e.Fat,
		Sugar:         e.Sugar,
		LoggedAt:      at,
		Source:        source,
	}
}

// FoodEntry is one logged meal. Entries are immutable once logged.
type FoodEntry struct {
	ID            string    `json:"id"`
	MealName      string    `json:"mealName"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbohydrates float64   `json:"carbohydrates"`
	Fat           float64   `json:"fat"`
	Sugar         float64   `json:"sugar"`
	LoggedAt      time.Time `json:"loggedAt"`
	Source        string    `json:"source,omitempty"`
}

// Estimate returns the nutrition values of the entry without its identity.
func (f FoodEntry) Estimate() Estimate {
	return Estimate{
		MealName:      f.MealName,
		Calories:      f.Calories,
		Protein:       f.Protein,
		Carbohydrates: f.Carbohydrates,
		Fat:           f.Fat,
		Sugar:         f.Sugar,
	}
}

// NewID returns a random identifier for a log entry.
func NewID() string {
	return uuid.NewString()
}
