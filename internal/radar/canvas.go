package radar

import (
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DotPixels is the number of surface units per braille dot. It lets a
// terminal canvas report a pixel-like size so the chart margins keep their
// proportions.
const DotPixels = 4

// Opacities used on the canvas, where grid lines must stay visible.
const (
	canvasGridOpacity = 0.3
)

// braille dot bits, indexed by [y%4][x%2].
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type cell struct {
	dots  rune
	color string
	label rune // overrides the dots when set
}

// Canvas is a terminal surface that draws with braille dots, two columns
// by four rows per character cell. Translucent colors are blended onto the
// background.
type Canvas struct {
	cols, rows int
	background string
	cells      []cell
}

// NewCanvas returns a canvas of the given size in character cells. A zero
// size is allowed and reports an unmeasurable surface.
func NewCanvas(cols, rows int, background string) *Canvas {
	c := &Canvas{background: background}
	c.Resize(cols, rows)
	return c
}

// Resize changes the canvas size and clears it.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols, c.rows = cols, rows
	c.cells = make([]cell, cols*rows)
}

// SetBackground changes the color translucent layers are blended onto.
func (c *Canvas) SetBackground(bg string) {
	c.background = bg
}

// Cols returns the width in character cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in character cells.
func (c *Canvas) Rows() int { return c.rows }

// Size implements Surface.
func (c *Canvas) Size() (float64, float64) {
	return float64(c.cols * 2 * DotPixels), float64(c.rows * 4 * DotPixels)
}

// Clear implements Surface.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

// Draw implements Surface.
func (c *Canvas) Draw(s Scene) {
	gridColor := Blend(GridColor, c.background, canvasGridOpacity)

	for _, g := range s.Grid {
		c.circle(s.Center, g.Radius, gridColor)
	}
	for _, a := range s.Axes {
		c.line(s.Center, a.End, gridColor)
		c.label(a.LabelAt, a.Axis, a.LabelColor)
	}

	for _, p := range s.Areas {
		pts := p.Points
		if p.Kind == AreaData && s.DataScale != 1 {
			pts = make([]Point, len(p.Points))
			for i, pt := range p.Points {
				pts[i] = s.ScaledPoint(pt)
			}
		}
		if p.Fill != "" {
			c.fill(pts, Blend(p.Fill, c.background, p.FillOpacity))
		}
		if p.Stroke != "" {
			c.outline(pts, Blend(p.Stroke, c.background, p.StrokeOpacity))
		}
	}
}

// Lines renders the canvas row by row. paint styles a run of text in one
// foreground color; an empty color means unstyled blank space.
func (c *Canvas) Lines(paint func(color, text string) string) []string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var b strings.Builder
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if paint != nil {
				b.WriteString(paint(runColor, run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			ce := c.cells[row*c.cols+col]
			r, color := ' ', ""
			switch {
			case ce.label != 0:
				r, color = ce.label, ce.color
			case ce.dots != 0:
				r, color = 0x2800+ce.dots, ce.color
			}
			if color != runColor {
				flush()
				runColor = color
			}
			run.WriteRune(r)
		}
		flush()
		lines[row] = b.String()
	}
	return lines
}

// String renders the canvas without colors.
func (c *Canvas) String() string {
	return strings.Join(c.Lines(nil), "\n")
}

// set turns on the dot at surface position (x, y) in dot units. A label
// already in the cell keeps its color.
func (c *Canvas) set(x, y int, color string) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	ce := &c.cells[(y/4)*c.cols+x/2]
	ce.dots |= brailleBits[y%4][x%2]
	if ce.label == 0 {
		ce.color = color
	}
}

func toDots(p Point) (int, int) {
	return int(math.Round(p.X / DotPixels)), int(math.Round(p.Y / DotPixels))
}

// drawable reports whether p is finite and near enough to the canvas for
// its dot coordinates to fit in an int.
func (c *Canvas) drawable(p Point) bool {
	limit := float64(c.cols*2+c.rows*4+1) * DotPixels * 4
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && math.Abs(p.X) <= limit && math.Abs(p.Y) <= limit
}

func (c *Canvas) line(a, b Point, color string) {
	if !c.drawable(a) || !c.drawable(b) {
		return
	}
	x0, y0 := toDots(a)
	x1, y1 := toDots(b)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) circle(center Point, r float64, color string) {
	rd := r / DotPixels
	if rd <= 0 || !c.drawable(center) || !c.drawable(Point{X: r}) {
		return
	}
	steps := int(2*math.Pi*rd) * 2
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x, y := toDots(Polar(center, r, a))
		c.set(x, y, color)
	}
}

func (c *Canvas) outline(pts []Point, color string) {
	for i := range pts {
		c.line(pts[i], pts[(i+1)%len(pts)], color)
	}
}

// fill paints the polygon interior with an even-odd scanline fill.
func (c *Canvas) fill(pts []Point, color string) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if !c.drawable(p) {
			return
		}
		minY = math.Min(minY, p.Y/DotPixels)
		maxY = math.Max(maxY, p.Y/DotPixels)
	}
	maxX := c.cols*2 - 1

	for y := max(0, int(math.Floor(minY))); y <= min(c.rows*4-1, int(math.Ceil(maxY))); y++ {
		sy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			ay, by := a.Y/DotPixels, b.Y/DotPixels
			if (ay <= sy && by > sy) || (by <= sy && ay > sy) {
				t := (sy - ay) / (by - ay)
				xs = append(xs, (a.X+t*(b.X-a.X))/DotPixels)
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, int(math.Ceil(xs[i]-0.5))); x <= min(maxX, int(math.Floor(xs[i+1]-0.5))); x++ {
				c.set(x, y, color)
			}
		}
	}
}

// label writes text centered on the cell containing p.
func (c *Canvas) label(p Point, text, color string) {
	x, y := toDots(p)
	row := y / 4
	if row < 0 {
		row = 0
	}
	if row >= c.rows {
		row = c.rows - 1
	}
	runes := []rune(text)
	col := x/2 - len(runes)/2
	if col+len(runes) > c.cols {
		col = c.cols - len(runes)
	}
	if col < 0 {
		col = 0
	}
	for i, r := range runes {
		if col+i >= c.cols || row < 0 {
			break
		}
		ce := &c.cells[row*c.cols+col+i]
		ce.label = r
		ce.color = color
	}
}

// Blend mixes fg over bg at the given opacity and returns a hex color.
// Unparseable colors fall back to fg.
func Blend(fg, bg string, opacity float64) string {
	f, err := colorful.Hex(fg)
	if err != nil {
		return fg
	}
	b, err := colorful.Hex(bg)
	if err != nil {
		return fg
	}
	return b.BlendRgb(f, opacity).Clamped().Hex()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
