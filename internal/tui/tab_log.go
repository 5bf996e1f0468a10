package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/tui/components"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// logState holds the log tab state.
type logState struct {
	cursor int
	offset int // scroll offset for the list

	searching   bool
	searchInput textinput.Model
	searchQuery string

	confirmReset bool
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "meal name"
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

// visibleEntries returns the log newest first, filtered by the search query.
func (a App) visibleEntries() []model.FoodEntry {
	src := a.entries
	if a.logState.searchQuery != "" {
		src = pipeline.FilterByName(src, a.logState.searchQuery)
	}
	out := make([]model.FoodEntry, len(src))
	for i, e := range src {
		out[len(src)-1-i] = e
	}
	return out
}

// updateLogKey handles log tab keys. It reports whether the key was used.
func (a App) updateLogKey(key string) (tea.Model, tea.Cmd, bool) {
	if a.logState.confirmReset {
		if key == "y" || key == "Y" {
			return a, resetLogCmd(a.journal), true
		}
		a.logState.confirmReset = false
		return a, nil, true
	}

	visible := a.visibleEntries()
	switch key {
	case "/":
		a.logState.searching = true
		a.logState.searchInput = newSearchInput()
		a.logState.searchInput.Focus()
		return a, a.logState.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.logState.searchQuery == "" {
			return a, nil, false
		}
		a.logState.searchQuery = ""
		a.logState.cursor = 0
		a.logState.offset = 0
		return a, nil, true
	case "j", "down":
		if a.logState.cursor < len(visible)-1 {
			a.logState.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.logState.cursor > 0 {
			a.logState.cursor--
		}
		return a, nil, true
	case "g":
		a.logState.cursor = 0
		a.logState.offset = 0
		return a, nil, true
	case "G":
		a.logState.cursor = len(visible) - 1
		if a.logState.cursor < 0 {
			a.logState.cursor = 0
		}
		return a, nil, true
	case "R":
		if len(a.entries) > 0 {
			a.logState.confirmReset = true
		}
		return a, nil, true
	}
	return a, nil, false
}

// updateLogSearch handles key events while in search mode.
func (a App) updateLogSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.logState.searchQuery = strings.TrimSpace(a.logState.searchInput.Value())
		a.logState.searching = false
		a.logState.cursor = 0
		a.logState.offset = 0
		return a, nil
	case "esc":
		a.logState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.logState.searchInput, cmd = a.logState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderLogTab(cw, h int) string {
	visible := a.visibleEntries()

	leftW, rightW := cw, cw
	if !a.isCompactLayout() {
		w := components.SplitWidth(cw, 2)
		leftW = w[0] + w[0]/3
		rightW = cw - leftW
	}

	title := fmt.Sprintf("Meals (%d)", len(visible))
	if a.logState.searchQuery != "" {
		title = fmt.Sprintf("Meals matching %q (%d)", a.logState.searchQuery, len(visible))
	}
	listCard := components.ContentCard(title, a.renderLogList(visible, components.CardInnerWidth(leftW), h), leftW)

	chartCard := components.ContentCard("Running Calories",
		a.renderRunningChart(components.CardInnerWidth(rightW)), rightW)
	sourcesCard := components.ContentCard("Sources", a.renderSources(components.CardInnerWidth(rightW)), rightW)

	if a.isCompactLayout() {
		return listCard + "\n" + chartCard + "\n" + sourcesCard
	}
	right := lipgloss.JoinVertical(lipgloss.Left, chartCard, sourcesCard)
	return components.CardRow([]string{listCard, right})
}

func (a App) renderLogList(visible []model.FoodEntry, innerW, h int) string {
	t := theme.Active
	ls := a.logState

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Bold(true)

	var body strings.Builder

	if ls.searching {
		body.WriteString(mutedStyle.Render("Search: "))
		body.WriteString(ls.searchInput.View())
		body.WriteString("\n\n")
	}

	if len(visible) == 0 {
		body.WriteString(mutedStyle.Render("No meals logged"))
		return body.String()
	}

	// time + kcal + three macros, the name takes the rest
	const timeW, kcalW, macroW = 11, 9, 6
	nameW := innerW - timeW - kcalW - 3*macroW - 1
	if nameW < 8 {
		nameW = 8
	}

	fmt.Fprintf(&body, "%s\n", headerStyle.Render(fmt.Sprintf("%-*s%-*s%*s%*s%*s%*s",
		timeW, "Time", nameW, "Meal", kcalW, "kcal", macroW, "P", macroW, "C", macroW, "F")))

	rowsVisible := h - 8 // card border, title, header, footer hint
	if rowsVisible < 3 {
		rowsVisible = 3
	}
	offset := ls.offset
	if ls.cursor < offset {
		offset = ls.cursor
	}
	if ls.cursor >= offset+rowsVisible {
		offset = ls.cursor - rowsVisible + 1
	}
	end := offset + rowsVisible
	if end > len(visible) {
		end = len(visible)
	}

	now := time.Now()
	for i := offset; i < end; i++ {
		e := visible[i]
		line := fmt.Sprintf("%-*s%-*s%*s%*s%*s%*s",
			timeW, cli.FormatLoggedAt(e.LoggedAt, now),
			nameW, cli.TruncateName(e.MealName, nameW-1),
			kcalW, cli.FormatNumber(int64(e.Calories+0.5)),
			macroW, cli.FormatGrams(e.Protein),
			macroW, cli.FormatGrams(e.Carbohydrates),
			macroW, cli.FormatGrams(e.Fat))
		if i == ls.cursor {
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	if ls.confirmReset {
		body.WriteString(warnStyle.Render("Discard the whole log? [y] yes  [any] cancel"))
	} else {
		body.WriteString(mutedStyle.Render("[j/k] move  [/] search  [R] discard log"))
	}
	return body.String()
}

// renderRunningChart plots cumulative calories entry by entry against the
// calorie goal.
func (a App) renderRunningChart(innerW int) string {
	t := theme.Active
	if len(a.entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("Nothing to chart yet")
	}

	vals := make([]float64, len(a.entries))
	labels := make([]string, len(a.entries))
	var sum float64
	for i, e := range a.entries {
		sum += e.Calories
		vals[i] = sum
		labels[i] = e.LoggedAt.Local().Format("15:04")
	}
	return components.BarChart(vals, labels, t.Calories, a.goals.Calories, innerW, 8)
}

func (a App) renderSources(innerW int) string {
	t := theme.Active
	stats := pipeline.AggregateSources(a.entries)
	if len(stats) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No entries")
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	const nameW, numW = 9, 16
	barMax := innerW - nameW - numW - 2
	if barMax < 1 {
		barMax = 1
	}

	var body strings.Builder
	for _, s := range stats {
		barLen := int(s.SharePercent / 100 * float64(barMax))
		fmt.Fprintf(&body, "%s %s %s\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, s.Source)),
			numStyle.Render(fmt.Sprintf("%*s", numW, fmt.Sprintf("%d · %s", s.Entries, cli.FormatKcal(s.Calories)))),
			barStyle.Render(strings.Repeat("█", barLen)))
	}
	return strings.TrimRight(body.String(), "\n")
}
