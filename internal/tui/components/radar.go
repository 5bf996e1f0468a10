package components

import (
	"strings"

	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/radar"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RadarView is the dashboard radar chart. It owns a braille canvas that
// stays unmeasured until the first SetSize, so the entrance animation only
// starts once the terminal size is known.
type RadarView struct {
	canvas   *radar.Canvas
	renderer *radar.Renderer

	in    radar.Input
	hasIn bool
}

// NewRadarView returns an unsized radar view.
func NewRadarView(animate bool) *RadarView {
	canvas := radar.NewCanvas(0, 0, string(theme.Active.Surface))
	var opts []radar.Option
	if !animate {
		opts = append(opts, radar.WithoutAnimation())
	}
	return &RadarView{
		canvas:   canvas,
		renderer: radar.New(canvas, opts...),
	}
}

// SetSize resizes the canvas in character cells and redraws.
func (v *RadarView) SetSize(cols, rows int) {
	if cols == v.canvas.Cols() && rows == v.canvas.Rows() {
		return
	}
	v.canvas.Resize(cols, rows)
	v.redraw()
}

// SetData replaces the chart inputs and redraws.
func (v *RadarView) SetData(data, goals model.ChartSeries, palette model.Palette) {
	v.in = radar.Input{Data: data, Goals: goals, Palette: palette}
	v.hasIn = true
	v.redraw()
}

// SetBackground changes the blend background after a theme switch.
func (v *RadarView) SetBackground(bg lipgloss.Color) {
	v.canvas.SetBackground(string(bg))
	v.redraw()
}

// Animating reports whether the entrance animation still has frames.
func (v *RadarView) Animating() bool {
	return v.renderer.Animating()
}

// Tick advances the entrance animation one frame.
func (v *RadarView) Tick() bool {
	return v.renderer.Advance()
}

// SkipAnimation jumps the entrance animation to its final frame.
func (v *RadarView) SkipAnimation() {
	v.renderer.SkipAnimation()
}

// Ready reports whether the first frame has been drawn.
func (v *RadarView) Ready() bool {
	return v.renderer.State() == radar.Ready
}

// Close stops drawing.
func (v *RadarView) Close() {
	v.renderer.Close()
}

func (v *RadarView) redraw() {
	if !v.hasIn {
		return
	}
	v.renderer.Update(v.in.Data, v.in.Goals, v.in.Palette)
}

// View renders the canvas on the surface background.
func (v *RadarView) View() string {
	t := theme.Active
	if v.canvas.Cols() == 0 || v.canvas.Rows() == 0 {
		return ""
	}
	lines := v.canvas.Lines(func(color, text string) string {
		s := lipgloss.NewStyle().Background(t.Surface)
		if color != "" {
			s = s.Foreground(lipgloss.Color(color))
		}
		return s.Render(text)
	})
	return strings.Join(lines, "\n")
}
