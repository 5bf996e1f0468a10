package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/tui/components"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldCalories = iota
	settingsFieldProtein
	settingsFieldCarbs
	settingsFieldFat
	settingsFieldTheme
	settingsFieldPortionStep
	settingsFieldAnimate
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message until the next edit
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20
	return ti
}

// updateSettingsKey handles settings tab keys. It reports whether the key
// was used.
func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter":
		switch a.settings.cursor {
		case settingsFieldTheme:
			a.settings.saved = false
			return a.cycleThemeResult()
		case settingsFieldAnimate:
			a.animate = !a.animate
			a.settings.saveErr = a.updateConfig(func(cfg *config.Config) {
				cfg.TUI.Animate = a.animate
			})
			a.settings.saved = a.settings.saveErr == nil
			return a, nil, true
		}
		next, cmd := a.settingsStartEdit()
		return next, cmd, true
	}
	return a, nil, false
}

func (a App) cycleThemeResult() (tea.Model, tea.Cmd, bool) {
	next, cmd := a.cycleTheme()
	if app, ok := next.(App); ok {
		app.settings.saved = app.banner == ""
		return app, cmd, true
	}
	return next, cmd, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	g := a.goals
	switch a.settings.cursor {
	case settingsFieldCalories:
		ti.Placeholder = "2200"
		ti.SetValue(formatGoal(g.Calories))
	case settingsFieldProtein:
		ti.Placeholder = "150"
		ti.SetValue(formatGoal(g.Protein))
	case settingsFieldCarbs:
		ti.Placeholder = "250"
		ti.SetValue(formatGoal(g.Carbohydrates))
	case settingsFieldFat:
		ti.Placeholder = "70"
		ti.SetValue(formatGoal(g.Fat))
	case settingsFieldPortionStep:
		ti.Placeholder = "5 (percent, 1-50)"
		ti.SetValue(strconv.Itoa(int(a.portionStep)))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

// updateSettingsInput handles key events while a settings field is edited.
func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldCalories, settingsFieldProtein, settingsFieldCarbs, settingsFieldFat:
		v, err := parseGoal(val)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		g := a.goals
		switch a.settings.cursor {
		case settingsFieldCalories:
			g.Calories = v
		case settingsFieldProtein:
			g.Protein = v
		case settingsFieldCarbs:
			g.Carbohydrates = v
		case settingsFieldFat:
			g.Fat = v
		}
		a.settings.saveErr = a.journal.SetGoals(g)
		a.recompute()
	case settingsFieldPortionStep:
		step, err := strconv.Atoi(val)
		if err != nil || step < 1 || step > 50 {
			a.settings.saveErr = fmt.Errorf("portion step must be a whole number from 1 to 50")
			return
		}
		a.portionStep = float64(step)
		a.settings.saveErr = a.updateConfig(func(cfg *config.Config) {
			cfg.TUI.PortionStep = step
		})
	}
}

// updateConfig applies fn to the config file on disk.
func (a App) updateConfig(fn func(*config.Config)) error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}
	fn(&cfg)
	return config.SaveTo(a.configPath, cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover)

	g := a.goals
	animate := "off"
	if a.animate {
		animate = "on (next launch)"
	}
	fields := []struct{ label, value string }{
		{"Calories goal", cli.FormatKcal(g.Calories)},
		{"Protein goal", cli.FormatGrams(g.Protein)},
		{"Carbs goal", cli.FormatGrams(g.Carbohydrates)},
		{"Fat goal", cli.FormatGrams(g.Fat)},
		{"Theme", t.DisplayName},
		{"Portion step", fmt.Sprintf("%.0f%%", a.portionStep)},
		{"Entrance animation", animate},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit / toggle  [Esc] cancel"))

	var infoBody strings.Builder
	entries, analyses := "?", "?"
	if n, err := a.journal.Store().EntryCount(); err == nil {
		entries = cli.FormatNumber(int64(n))
	}
	if n, err := a.journal.Store().AnalysisCount(); err == nil {
		analyses = cli.FormatNumber(int64(n))
	}
	vision := "not configured"
	if a.analyzer != nil {
		vision = "Gemini"
	}
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(a.configPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(a.dbPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Logged meals:    ") + valueStyle.Render(entries) + "\n")
	infoBody.WriteString(labelStyle.Render("Cached analyses: ") + valueStyle.Render(analyses) + "\n")
	infoBody.WriteString(labelStyle.Render("Photo analysis:  ") + valueStyle.Render(vision))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
