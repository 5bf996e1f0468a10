package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/tui/components"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// dashboardWidths returns the radar card and goals card widths.
func (a App) dashboardWidths(cw int) (left, right int) {
	if a.isCompactLayout() {
		return cw, cw
	}
	w := components.SplitWidth(cw, 2)
	return w[0], w[1]
}

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	d := a.dash
	g := d.Goals
	var b strings.Builder

	// Row 1: one card per nutrient
	cards := []components.Nutrient{
		{Label: "Calories", Current: d.Totals.Calories, Goal: g.Calories, Color: t.Calories},
		{Label: "Protein", Current: d.Totals.Protein, Goal: g.Protein, Grams: true, Color: t.Protein},
		{Label: "Carbs", Current: d.Totals.Carbohydrates, Goal: g.Carbohydrates, Grams: true, Color: t.Carbohydrates},
		{Label: "Fat", Current: d.Totals.Fat, Goal: g.Fat, Grams: true, Color: t.Fat},
		{Label: "Sugar", Current: d.Totals.Sugar, Grams: true, Color: t.Sugar},
	}
	b.WriteString(components.NutrientCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: radar + goal progress
	leftW, rightW := a.dashboardWidths(cw)

	chart := a.radar.View()
	if chart == "" {
		chart = lipgloss.NewStyle().Foreground(t.TextDim).Render("Measuring...")
	}
	radarCard := components.ContentCard("Macros vs Goals", chart, leftW)
	goalsCard := components.ContentCard("Today's Goals", a.renderGoalsBody(components.CardInnerWidth(rightW)), rightW)

	if a.isCompactLayout() {
		b.WriteString(radarCard)
		b.WriteString("\n")
		b.WriteString(goalsCard)
	} else {
		b.WriteString(components.CardRow([]string{radarCard, goalsCard}))
	}

	return b.String()
}

func (a App) renderGoalsBody(innerW int) string {
	t := theme.Active
	d := a.dash
	g := d.Goals

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	labelW := 9
	// label + spaces + pct + value text
	barW := innerW - labelW - 1 - 1 - 4 - 2 - 18
	if barW < 6 {
		barW = 6
	}

	rows := []struct {
		label    string
		current  float64
		goal     float64
		progress float64
		grams    bool
		color    lipgloss.Color
	}{
		{"Calories", d.Totals.Calories, g.Calories, d.CaloriesProgress, false, t.Calories},
		{"Protein", d.Totals.Protein, g.Protein, d.MacroProgress.Protein, true, t.Protein},
		{"Carbs", d.Totals.Carbohydrates, g.Carbohydrates, d.MacroProgress.Carbohydrates, true, t.Carbohydrates},
		{"Fat", d.Totals.Fat, g.Fat, d.MacroProgress.Fat, true, t.Fat},
	}

	var body strings.Builder
	for _, r := range rows {
		body.WriteString(components.MacroBar(r.label, r.current, r.goal, r.progress, r.grams, r.color, labelW, barW))
		body.WriteString("\n")
	}

	rem := pipeline.Remaining(d.Totals, g)
	body.WriteString("\n")
	body.WriteString(labelStyle.Render("Remaining  "))
	body.WriteString(valueStyle.Render(fmt.Sprintf("%s · P %s · C %s · F %s",
		cli.FormatKcal(rem.Calories),
		cli.FormatGrams(rem.Protein),
		cli.FormatGrams(rem.Carbohydrates),
		cli.FormatGrams(rem.Fat))))
	body.WriteString("\n")

	share := pipeline.CalorieShare(d.Totals)
	body.WriteString(labelStyle.Render("Energy     "))
	body.WriteString(lipgloss.NewStyle().Foreground(t.Protein).Render("P " + cli.FormatPercent(share.Protein)))
	body.WriteString(labelStyle.Render(" · "))
	body.WriteString(lipgloss.NewStyle().Foreground(t.Carbohydrates).Render("C " + cli.FormatPercent(share.Carbohydrates)))
	body.WriteString(labelStyle.Render(" · "))
	body.WriteString(lipgloss.NewStyle().Foreground(t.Fat).Render("F " + cli.FormatPercent(share.Fat)))

	if d.Entries == 0 {
		body.WriteString("\n\n")
		body.WriteString(hintStyle.Render("No meals logged yet. Press [a] to analyze a photo or barcode."))
	} else if a.analysis.lastLogged != "" {
		body.WriteString("\n\n")
		body.WriteString(lipgloss.NewStyle().Foreground(t.Green).Render("✓ Logged " + cli.TruncateName(a.analysis.lastLogged, innerW-10)))
	}

	return body.String()
}
