package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns a status color for progress toward a goal: muted
// while far off, yellow when close, green once reached.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 1:
		return string(t.Green)
	case pct >= 0.7:
		return string(t.Yellow)
	case pct >= 0.3:
		return string(t.Accent)
	default:
		return string(t.TextMuted)
	}
}

// MacroBar renders one labeled goal row: label, bar in the nutrient color,
// "cur / goal" and percentage. progressPct is 0-100.
func MacroBar(label string, current, goal, progressPct float64, grams bool, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active
	pct := clampUnit(progressPct / 100)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		valueStyle.Render(cli.FormatProgress(current, goal, grams))
}

// CompactGoalBar renders a tiny status-bar-sized goal indicator.
func CompactGoalBar(label string, progressPct float64, width int) string {
	t := theme.Active
	pct := clampUnit(progressPct / 100)

	barW := width - lipgloss.Width(label) - 6
	if barW < 4 {
		barW = 4
	}

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%2.0f%%", pct*100))
}

// PortionSlider renders the portion adjustment control for a 0-max percent
// range.
func PortionSlider(percent, maxPercent float64, width int) string {
	t := theme.Active
	if width < 10 {
		width = 10
	}
	if maxPercent <= 0 {
		maxPercent = 100
	}
	frac := clampUnit(percent / maxPercent)
	knob := int(frac * float64(width-1))

	track := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	fill := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	knobStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return fill.Render(strings.Repeat("━", knob)) +
		knobStyle.Render("●") +
		track.Render(strings.Repeat("─", width-1-knob)) +
		spaceStyle.Render(" ") +
		valueStyle.Render(cli.FormatPortion(percent))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
