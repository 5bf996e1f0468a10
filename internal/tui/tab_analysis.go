package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/source"
	"github.com/theirongolddev/mealradar/internal/tui/components"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// coarsePortionStep is the H/L slider jump.
const coarsePortionStep = 25

// analysisState holds the analysis tab state: the query input, the
// in-flight request, and the estimate waiting to be logged.
type analysisState struct {
	editing bool
	input   textinput.Model

	busy    bool
	logging bool
	query   string

	draft  *pipeline.PortionDraft
	source string

	lastLogged string
}

func newAnalysisState() analysisState {
	return analysisState{input: newQueryInput()}
}

func newQueryInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "~/Pictures/lunch.jpg or 3017620422003"
	ti.CharLimit = 512
	ti.Width = 50
	return ti
}

// updateAnalysisKey handles analysis tab keys. It reports whether the key
// was used.
func (a App) updateAnalysisKey(key string) (tea.Model, tea.Cmd, bool) {
	if a.analysis.draft != nil && !a.analysis.logging {
		switch key {
		case "left", "h":
			return a.stepPortion(-a.portionStep), nil, true
		case "right", "l":
			return a.stepPortion(a.portionStep), nil, true
		case "H":
			return a.stepPortion(-coarsePortionStep), nil, true
		case "L":
			return a.stepPortion(coarsePortionStep), nil, true
		case "0":
			d := *a.analysis.draft
			d.Adjust(pipeline.DefaultPortion)
			a.analysis.draft = &d
			return a, nil, true
		case "enter":
			a.analysis.logging = true
			return a, logEntryCmd(a.journal, *a.analysis.draft, a.analysis.source), true
		case "esc":
			a.analysis.draft = nil
			return a, nil, true
		}
		return a, nil, false
	}

	if a.analysis.busy {
		return a, nil, false
	}

	switch key {
	case "i", "/", "enter":
		a.analysis.editing = true
		a.analysis.input = newQueryInput()
		a.analysis.input.Focus()
		return a, a.analysis.input.Cursor.BlinkCmd(), true
	}
	return a, nil, false
}

func (a App) stepPortion(delta float64) App {
	d := *a.analysis.draft
	d.Step(delta)
	a.analysis.draft = &d
	return a
}

// updateAnalysisInput handles key events while the query input is focused.
func (a App) updateAnalysisInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.analysis.editing = false
		return a.submitQuery(strings.TrimSpace(a.analysis.input.Value()))
	case "esc":
		a.analysis.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.analysis.input, cmd = a.analysis.input.Update(msg)
	return a, cmd
}

// submitQuery starts a barcode lookup for digit strings and a photo
// analysis for anything else.
func (a App) submitQuery(q string) (tea.Model, tea.Cmd) {
	if q == "" {
		return a, nil
	}

	if isDigits(q) {
		if err := foodfacts.ValidateBarcode(q); err != nil {
			a.banner = foodfacts.UserMessage(q, err)
			return a, nil
		}
		if a.foodfacts == nil {
			a.banner = "Barcode lookup is not configured."
			return a, nil
		}
		a.analysis.busy = true
		a.analysis.query = q
		return a, tea.Batch(a.spinner.Tick, lookupBarcodeCmd(a.foodfacts, q))
	}

	path := expandHome(q)
	if !source.IsImage(path) {
		a.banner = fmt.Sprintf("%s is not a supported image (jpg, png, webp, heic)", filepath.Base(path))
		return a, nil
	}
	a.analysis.busy = true
	a.analysis.query = filepath.Base(path)
	return a, tea.Batch(a.spinner.Tick, analyzeImageCmd(a.analyzer, path))
}

func (a App) renderAnalysisTab(cw int) string {
	t := theme.Active
	as := a.analysis

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent)

	var q strings.Builder
	q.WriteString(labelStyle.Render("Analyze a meal photo with Gemini, or look up a packaged food by barcode."))
	q.WriteString("\n\n")
	switch {
	case as.editing:
		q.WriteString(accentStyle.Render("▸ "))
		q.WriteString(as.input.View())
		q.WriteString("\n\n")
		q.WriteString(hintStyle.Render("[enter] analyze  [esc] cancel"))
	case as.busy:
		q.WriteString(a.spinner.View())
		q.WriteString(labelStyle.Render(" Analyzing " + as.query + "..."))
	default:
		q.WriteString(hintStyle.Render("[i] enter a photo path or barcode"))
		if a.analyzer == nil {
			q.WriteString("\n")
			q.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Render("No Gemini key configured: only barcodes are available."))
		}
	}

	out := components.ContentCard("Analyze", q.String(), cw)
	if as.draft == nil {
		return out
	}
	return out + "\n" + components.ContentCard("Estimate · "+as.source, a.renderDraft(components.CardInnerWidth(cw)), cw)
}

func (a App) renderDraft(innerW int) string {
	t := theme.Active
	d := *a.analysis.draft
	scaled := d.Scaled()

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(nameStyle.Render(cli.TruncateName(d.Base.MealName, innerW)))
	b.WriteString("\n\n")
	b.WriteString(components.PortionSlider(d.Percent, pipeline.MaxPortion, innerW-16))
	b.WriteString("\n\n")

	rows := []struct {
		label       string
		base, value float64
		grams       bool
		color       lipgloss.Color
	}{
		{"Calories", d.Base.Calories, scaled.Calories, false, t.Calories},
		{"Protein", d.Base.Protein, scaled.Protein, true, t.Protein},
		{"Carbs", d.Base.Carbohydrates, scaled.Carbohydrates, true, t.Carbohydrates},
		{"Fat", d.Base.Fat, scaled.Fat, true, t.Fat},
		{"Sugar", d.Base.Sugar, scaled.Sugar, true, t.Sugar},
	}
	for _, r := range rows {
		format := cli.FormatKcal
		if r.grams {
			format = cli.FormatGrams
		}
		b.WriteString(lipgloss.NewStyle().Foreground(r.color).Render(fmt.Sprintf("%-9s", r.label)))
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true).Render(fmt.Sprintf("%10s", format(r.value))))
		b.WriteString(labelStyle.Render(fmt.Sprintf("   base %s", format(r.base))))
		b.WriteString("\n")
	}

	// Preview the dashboard as it would be after logging
	after := pipeline.Aggregate(append(append([]model.FoodEntry(nil), a.entries...), scaled.Entry("", time.Now(), "")), a.goals)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("After logging: "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Render(
		cli.FormatProgress(after.Totals.Calories, after.Goals.Calories, false) + " · " + cli.FormatPercent(after.CaloriesProgress)))
	b.WriteString("\n\n")

	if a.analysis.logging {
		b.WriteString(hintStyle.Render("Logging..."))
	} else {
		b.WriteString(hintStyle.Render(fmt.Sprintf("[←/→] portion ±%.0f%%  [H/L] ±%d%%  [0] reset  [enter] log  [esc] discard",
			a.portionStep, coarsePortionStep)))
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
