package source

import "time"

// DiscoveredImage is a meal photo found during directory scanning.
type DiscoveredImage struct {
	Path     string
	Name     string // file name without directory
	MimeType string
	Size     int64
	ModTime  time.Time
}

// RawEntry is one line of a JSONL log export. Numeric fields are pointers so
// that a missing field can be told apart from an explicit zero.
type RawEntry struct {
	ID            string   `json:"id"`
	MealName      string   `json:"mealName"`
	Calories      *float64 `json:"calories"`
	Protein       *float64 `json:"protein"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Fat           *float64 `json:"fat"`
	Sugar         *float64 `json:"sugar"`
	LoggedAt      string   `json:"loggedAt,omitempty"`
	Source        string   `json:"source,omitempty"`
}
