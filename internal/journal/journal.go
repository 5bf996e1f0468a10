// Package journal ties the food log store to the saved preferences. Every
// mutation goes through it, and callers re-aggregate afterwards.
package journal

import (
	"fmt"
	"time"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/tui/theme"
)

// Journal is the food log plus the user's goals and theme.
type Journal struct {
	store *store.Store
	prefs config.Prefs
	now   func() time.Time
}

// New returns a journal over st and prefs.
func New(st *store.Store, prefs config.Prefs) *Journal {
	return &Journal{store: st, prefs: prefs, now: time.Now}
}

// Store returns the underlying log store.
func (j *Journal) Store() *store.Store {
	return j.store
}

// Entries returns the log in insertion order.
func (j *Journal) Entries() ([]model.FoodEntry, error) {
	entries, err := j.store.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return entries, nil
}

// Goals returns the saved goals or the defaults.
func (j *Journal) Goals() model.DailyGoals {
	return config.GoalsOrDefault(j.prefs)
}

// SetGoals validates and saves goals.
func (j *Journal) SetGoals(g model.DailyGoals) error {
	if err := j.prefs.SaveGoals(g); err != nil {
		return fmt.Errorf("saving goals: %w", err)
	}
	return nil
}

// Theme returns the saved theme. Unknown or missing keys resolve to the
// default theme.
func (j *Journal) Theme() theme.Theme {
	key, _ := j.prefs.LoadThemeKey()
	return theme.ByName(key)
}

// SetTheme activates and saves the theme with the given key. Unknown keys
// are ignored: nothing is saved and ok is false.
func (j *Journal) SetTheme(key string) (t theme.Theme, ok bool, err error) {
	t, ok = theme.Lookup(key)
	if !ok {
		return theme.Active, false, nil
	}
	theme.SetActive(key)
	if err := j.prefs.SaveThemeKey(key); err != nil {
		return t, true, fmt.Errorf("saving theme: %w", err)
	}
	return t, true, nil
}

// Log scales est to portion percent and appends it with a fresh ID.
func (j *Journal) Log(est model.Estimate, portion float64, source string) (model.FoodEntry, error) {
	draft := pipeline.NewPortionDraft(est)
	draft.Adjust(portion)
	entry := draft.Commit(model.NewID(), j.now(), source)
	if err := j.store.Append(entry); err != nil {
		return model.FoodEntry{}, fmt.Errorf("logging %q: %w", entry.MealName, err)
	}
	return entry, nil
}

// Append adds already-built entries, e.g. from an import.
func (j *Journal) Append(entries ...model.FoodEntry) error {
	if err := j.store.Append(entries...); err != nil {
		return fmt.Errorf("appending entries: %w", err)
	}
	return nil
}

// Reset discards the whole log.
func (j *Journal) Reset() error {
	if err := j.store.Reset(); err != nil {
		return fmt.Errorf("resetting log: %w", err)
	}
	return nil
}

// Dashboard aggregates the current log against the current goals.
func (j *Journal) Dashboard() (model.Dashboard, error) {
	entries, err := j.Entries()
	if err != nil {
		return model.Dashboard{}, err
	}
	return pipeline.Aggregate(entries, j.Goals()), nil
}
