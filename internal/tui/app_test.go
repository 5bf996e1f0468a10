package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	t.Cleanup(func() { theme.SetActive(theme.DefaultName) })

	a := NewApp(Options{
		Journal:     journal.New(st, &config.MemoryPrefs{}),
		ConfigPath:  filepath.Join(t.TempDir(), "config.toml"),
		PortionStep: 10,
		Animate:     false,
	})
	next, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	next, _ = next.(App).Update(LogLoadedMsg{})
	return next.(App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		next, _ := a.Update(key(k))
		a = next.(App)
	}
	return a
}

func TestApp_LoadedLogFeedsDashboard(t *testing.T) {
	a := newTestApp(t)
	next, _ := a.Update(LogLoadedMsg{Entries: []model.FoodEntry{
		{ID: "a", MealName: "Oats", Calories: 300, Protein: 10, Carbohydrates: 50, Fat: 5},
		{ID: "b", MealName: "Eggs", Calories: 200, Protein: 12, Fat: 14},
	}})
	a = next.(App)

	if a.dash.Totals.Calories != 500 {
		t.Fatalf("Totals.Calories = %v, want 500", a.dash.Totals.Calories)
	}
	if a.dash.Entries != 2 {
		t.Fatalf("Entries = %d, want 2", a.dash.Entries)
	}
	if !a.radar.Ready() {
		t.Fatal("radar not ready after size and data")
	}
	if !strings.Contains(a.View(), "Macros vs Goals") {
		t.Fatal("dashboard view missing radar card")
	}
}

func TestApp_PortionKeysAdjustDraft(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabAnalysis

	next, _ := a.Update(EstimateMsg{
		Estimate: model.Estimate{MealName: "Burrito", Calories: 800, Protein: 40},
		Source:   model.SourceVision,
		Query:    "burrito.jpg",
	})
	a = next.(App)
	if a.analysis.draft == nil {
		t.Fatal("draft not set after estimate")
	}

	a = press(t, a, "left", "left")
	if got := a.analysis.draft.Percent; got != 80 {
		t.Fatalf("Percent after two steps down = %v, want 80", got)
	}
	a = press(t, a, "L")
	if got := a.analysis.draft.Percent; got != 105 {
		t.Fatalf("Percent after coarse step up = %v, want 105", got)
	}
	a = press(t, a, "0")
	if got := a.analysis.draft.Percent; got != pipeline.DefaultPortion {
		t.Fatalf("Percent after reset = %v, want %v", got, pipeline.DefaultPortion)
	}

	for i := 0; i < 20; i++ {
		a = press(t, a, "H")
	}
	if got := a.analysis.draft.Percent; got != pipeline.MinPortion {
		t.Fatalf("Percent after many steps down = %v, want %v", got, pipeline.MinPortion)
	}

	a = press(t, a, "esc")
	if a.analysis.draft != nil {
		t.Fatal("draft survived esc")
	}
}

func TestApp_LoggedEntryReturnsToDashboard(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabAnalysis

	entry := model.FoodEntry{ID: "x", MealName: "Salad", Calories: 250, Source: model.SourceVision}
	next, _ := a.Update(LoggedMsg{Entry: entry})
	a = next.(App)

	if a.activeTab != tabDashboard {
		t.Fatalf("activeTab = %d, want dashboard", a.activeTab)
	}
	if a.dash.Totals.Calories != 250 {
		t.Fatalf("Totals.Calories = %v, want 250", a.dash.Totals.Calories)
	}
	if a.analysis.lastLogged != "Salad" {
		t.Fatalf("lastLogged = %q, want Salad", a.analysis.lastLogged)
	}
}

func TestApp_InvalidBarcodeSetsBanner(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabAnalysis

	a = press(t, a, "i", "1", "2", "3", "enter")
	if a.analysis.busy {
		t.Fatal("lookup started for an invalid barcode")
	}
	if a.banner == "" {
		t.Fatal("no banner for an invalid barcode")
	}
}

func TestApp_CycleThemeSavesAndRedraws(t *testing.T) {
	a := newTestApp(t)

	before := theme.Active.Name
	a = press(t, a, "t")
	if theme.Active.Name == before {
		t.Fatalf("theme still %q after cycling", before)
	}
	if got := a.journal.Theme().Name; got != theme.Active.Name {
		t.Fatalf("saved theme = %q, want %q", got, theme.Active.Name)
	}
}

func TestNextThemeKey_WrapsAround(t *testing.T) {
	last := theme.All[len(theme.All)-1].Name
	if got := nextThemeKey(last); got != theme.All[0].Name {
		t.Fatalf("nextThemeKey(%q) = %q, want %q", last, got, theme.All[0].Name)
	}
	if got := nextThemeKey("unknown"); got != theme.DefaultName {
		t.Fatalf("nextThemeKey(unknown) = %q, want %q", got, theme.DefaultName)
	}
}

func TestApp_SettingsEditsGoal(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabSettings

	a = press(t, a, "enter")
	if !a.settings.editing {
		t.Fatal("enter did not start editing")
	}
	a.settings.input.SetValue("1800")
	a = press(t, a, "enter")

	if a.settings.saveErr != nil {
		t.Fatalf("saveErr = %v", a.settings.saveErr)
	}
	if a.goals.Calories != 1800 {
		t.Fatalf("goals.Calories = %v, want 1800", a.goals.Calories)
	}
	if got := a.journal.Goals().Calories; got != 1800 {
		t.Fatalf("saved calories = %v, want 1800", got)
	}
}

func TestApp_SettingsRejectsNegativeGoal(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = tabSettings

	a = press(t, a, "enter")
	a.settings.input.SetValue("-5")
	a = press(t, a, "enter")

	if a.settings.saveErr == nil {
		t.Fatal("negative goal accepted")
	}
	if a.goals.Calories != model.DefaultGoals().Calories {
		t.Fatalf("goals.Calories = %v, want default", a.goals.Calories)
	}
}

func TestApp_LogSearchFiltersEntries(t *testing.T) {
	a := newTestApp(t)
	next, _ := a.Update(LogLoadedMsg{Entries: []model.FoodEntry{
		{ID: "a", MealName: "Greek yogurt"},
		{ID: "b", MealName: "Chicken salad"},
		{ID: "c", MealName: "Yogurt parfait"},
	}})
	a = next.(App)
	a.activeTab = tabLog

	a = press(t, a, "/")
	a.logState.searchInput.SetValue("yogurt")
	a = press(t, a, "enter")

	got := a.visibleEntries()
	if len(got) != 2 {
		t.Fatalf("visibleEntries = %d, want 2", len(got))
	}
	if got[0].ID != "c" {
		t.Fatalf("first visible = %q, want newest match c", got[0].ID)
	}
}
