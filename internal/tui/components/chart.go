package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// chartScale maps values onto chart rows with round tick labels.
type chartScale struct {
	ceiling     float64
	step        float64
	intervals   int
	rowsPerTick int
}

func newChartScale(peak float64, height int) chartScale {
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	for int(math.Ceil(peak/step)) > max(2, height/2) {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	return chartScale{
		ceiling:     ceiling,
		step:        step,
		intervals:   intervals,
		rowsPerTick: max(2, height/intervals),
	}
}

func (s chartScale) rows() int { return s.rowsPerTick * s.intervals }

// row returns the value range covered by chart row r (1 is the bottom).
func (s chartScale) row(r int) (bottom, top float64) {
	h := float64(s.rows())
	return s.ceiling * float64(r-1) / h, s.ceiling * float64(r) / h
}

// tick returns the axis label for row r, or "" between ticks.
func (s chartScale) tick(r int) string {
	if r%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(r/s.rowsPerTick))
}

// fitBars picks a bar width for n bars and, when they do not fit, samples
// the series down to as many bars as the width allows.
func fitBars(values []float64, labels []string, width int) ([]float64, []string, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(width, 6)
	}
	barW := (width - (n - 1)) / n
	if barW >= 2 {
		return values, labels, min(barW, 6)
	}

	keep := max(2, (width+1)/3)
	sampled := make([]float64, keep)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, keep)
	}
	for i := range sampled {
		src := i * (n - 1) / (keep - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels, 2
}

// BarChart renders a vertical bar chart of running values, typically
// calories after each meal. When goalLine is positive the row holding the
// goal is marked on the axis and bar cells above it turn orange.
func BarChart(values []float64, labels []string, color lipgloss.Color, goalLine float64, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := goalLine
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	scale := newChartScale(peak, height)

	yLabelW := max(4, len(formatChartLabel(scale.ceiling))+1)
	values, labels, barW := fitBars(values, labels, max(5, width-yLabelW-1))
	n := len(values)
	gap := 0
	if n > 1 {
		gap = 1
	}
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	goalStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	under := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	over := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	for r := scale.rows(); r >= 1; r-- {
		bottom, top := scale.row(r)
		goalRow := goalLine > 0 && goalLine > bottom && goalLine <= top

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, scale.tick(r))))
		if goalRow {
			b.WriteString(goalStyle.Render("┤"))
		} else {
			b.WriteString(axisStyle.Render("│"))
		}

		style := under
		if goalLine > 0 && bottom >= goalLine {
			style = over
		}
		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * float64(len(sparkBlocks)))
				idx = max(0, min(idx, len(sparkBlocks)-1))
				b.WriteString(style.Render(strings.Repeat(string(sparkBlocks[idx]), barW)))
			case goalRow:
				b.WriteString(goalStyle.Render(strings.Repeat("┈", barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// xAxisLabels spreads labels under their bars, skipping any that would
// collide.
func xAxisLabels(labels []string, pitch, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	place := func(i int) {
		lbl := labels[i]
		pos := min(i*pitch, axisLen-len(lbl))
		if pos < 0 || pos <= lastEnd {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}

	step := max(1, (len(labels)*8)/(axisLen+1))
	for i := 0; i < len(labels)-1; i += step {
		place(i)
	}
	place(len(labels) - 1)
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a round tick interval targeting about five ticks.
func chartTickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel writes kcal axis values: 850, 1.5k, 2k.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1000:
		if v == math.Trunc(v/1000)*1000 {
			return fmt.Sprintf("%.0fk", v/1000)
		}
		return fmt.Sprintf("%.1fk", v/1000)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
