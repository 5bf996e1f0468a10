// Package components provides reusable TUI widgets for the mealradar dashboard.
package components

import (
	"math"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// minCardContent is the narrowest content area a card is drawn with.
const minCardContent = 10

// SplitWidth divides total columns between n cards. The sum is always
// total; leftover columns go to the leftmost cards.
func SplitWidth(total, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		// ceil of what remains over the cards still to size
		widths[i] = (total + n - i - 1) / (n - i)
		total -= widths[i]
	}
	return widths
}

// frame is the rounded border every card is drawn in.
func frame(outerWidth int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(max(minCardContent, outerWidth-2)).
		Padding(0, 1)
}

// Nutrient is today's total for one nutrient against its daily goal. A
// zero Goal means the nutrient is tracked without a target.
type Nutrient struct {
	Label   string
	Current float64
	Goal    float64
	Grams   bool           // grams rather than kcal
	Color   lipgloss.Color // label color
}

func (n Nutrient) format(v float64) string {
	if n.Grams {
		return cli.FormatGrams(v)
	}
	return cli.FormatKcal(v)
}

// Fraction is Current over Goal, uncapped; 0 without a goal.
func (n Nutrient) Fraction() float64 {
	if n.Goal <= 0 {
		return 0
	}
	return n.Current / n.Goal
}

// Remaining says how far today's total is from the goal: "950 kcal left",
// "12g over", or "no goal".
func (n Nutrient) Remaining() string {
	switch {
	case n.Goal <= 0:
		return "no goal"
	case n.Current > n.Goal:
		return n.format(n.Current-n.Goal) + " over"
	case n.Current == n.Goal:
		return "goal reached"
	}
	return n.format(n.Goal-n.Current) + " left"
}

// NutrientCard renders one nutrient: its name, today's total colored by
// progress toward the goal, and what is left of the goal.
func NutrientCard(n Nutrient, outerWidth int) string {
	t := theme.Active

	labelColor := t.TextMuted
	if n.Color != "" {
		labelColor = n.Color
	}
	valueColor := t.TextPrimary
	remainingColor := t.TextDim
	if n.Goal > 0 {
		valueColor = lipgloss.Color(ColorForPct(n.Fraction()))
		if n.Current > n.Goal {
			remainingColor = t.Orange
		}
	}

	value := lipgloss.NewStyle().Foreground(valueColor).Bold(true).Render(n.format(n.Current))
	if n.Goal > 0 {
		goal := cli.FormatNumber(int64(math.Round(n.Goal)))
		if n.Grams {
			goal = n.format(n.Goal)
		}
		value += lipgloss.NewStyle().Foreground(t.TextDim).Render(" / " + goal)
	}

	return frame(outerWidth).Render(
		lipgloss.NewStyle().Foreground(labelColor).Render(n.Label) + "\n" +
			value + "\n" +
			lipgloss.NewStyle().Foreground(remainingColor).Render(n.Remaining()))
}

// NutrientCardRow renders one card per nutrient across totalWidth columns.
func NutrientCardRow(nutrients []Nutrient, totalWidth int) string {
	if len(nutrients) == 0 {
		return ""
	}
	widths := SplitWidth(totalWidth, len(nutrients))
	cards := make([]string, len(nutrients))
	for i, n := range nutrients {
		cards[i] = NutrientCard(n, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// ContentCard renders body in a card with an optional bold title.
func ContentCard(title, body string, outerWidth int) string {
	if title != "" {
		body = lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return frame(outerWidth).Render(body)
}

// CardRow places cards side by side. Shorter cards are padded to the
// tallest one over the surface color.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	h := 0
	for _, c := range cards {
		h = max(h, lipgloss.Height(c))
	}
	padded := make([]string, len(cards))
	for i, c := range cards {
		padded[i] = lipgloss.PlaceVertical(h, lipgloss.Top, c,
			lipgloss.WithWhitespaceBackground(theme.Active.Surface))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}

// CardInnerWidth is the text width inside a card of the given outer width.
func CardInnerWidth(outerWidth int) int {
	return max(minCardContent, outerWidth-frame(outerWidth).GetHorizontalFrameSize())
}
