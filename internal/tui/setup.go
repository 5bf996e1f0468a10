package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run setup form.
type SetupValues struct {
	Calories string
	Protein  string
	Carbs    string
	Fat      string
	Theme    string
	APIKey   string
}

// NewSetupValues pre-fills the form from cfg.
func NewSetupValues(cfg config.Config) SetupValues {
	g := model.DefaultGoals()
	if cfg.Goals != nil {
		g = *cfg.Goals
	}
	themeKey := cfg.Appearance.Theme
	if _, ok := theme.Lookup(themeKey); !ok {
		themeKey = theme.DefaultName
	}
	return SetupValues{
		Calories: formatGoal(g.Calories),
		Protein:  formatGoal(g.Protein),
		Carbs:    formatGoal(g.Carbohydrates),
		Fat:      formatGoal(g.Fat),
		Theme:    themeKey,
		APIKey:   cfg.Vision.APIKey,
	}
}

// NewSetupForm builds the goals and theme wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.DisplayName, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to mealradar").
				Description("Set your daily targets. You can change them later\nin the Settings tab or with `mealradar goals set`."),
			huh.NewInput().
				Title("Calories (kcal)").
				Value(&vals.Calories).
				Validate(validateGoal),
			huh.NewInput().
				Title("Protein (g)").
				Value(&vals.Protein).
				Validate(validateGoal),
			huh.NewInput().
				Title("Carbohydrates (g)").
				Value(&vals.Carbs).
				Validate(validateGoal),
			huh.NewInput().
				Title("Fat (g)").
				Value(&vals.Fat).
				Validate(validateGoal),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Gemini API key").
				Description("Used for meal photo analysis. Leave blank to use GEMINI_API_KEY.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.APIKey),
		),
	).WithShowHelp(true)
}

// Goals parses the goal answers.
func (v SetupValues) Goals() (model.DailyGoals, error) {
	var g model.DailyGoals
	var err error
	if g.Calories, err = parseGoal(v.Calories); err != nil {
		return g, fmt.Errorf("calories: %w", err)
	}
	if g.Protein, err = parseGoal(v.Protein); err != nil {
		return g, fmt.Errorf("protein: %w", err)
	}
	if g.Carbohydrates, err = parseGoal(v.Carbs); err != nil {
		return g, fmt.Errorf("carbohydrates: %w", err)
	}
	if g.Fat, err = parseGoal(v.Fat); err != nil {
		return g, fmt.Errorf("fat: %w", err)
	}
	return g, nil
}

// Apply writes the answers into cfg and activates the chosen theme.
func (v SetupValues) Apply(cfg *config.Config) error {
	g, err := v.Goals()
	if err != nil {
		return err
	}
	cfg.Goals = &g
	if theme.SetActive(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}
	if key := strings.TrimSpace(v.APIKey); key != "" {
		cfg.Vision.APIKey = key
	}
	return nil
}

var errNegativeGoal = errors.New("must be zero or more")

func parseGoal(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if f < 0 {
		return 0, errNegativeGoal
	}
	if err := model.CheckAmount(f); err != nil {
		return 0, err
	}
	return f, nil
}

func validateGoal(s string) error {
	_, err := parseGoal(s)
	return err
}

func formatGoal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
