package radar

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// SVGSurface renders scenes as a standalone SVG document of fixed size.
type SVGSurface struct {
	width, height float64
	buf           bytes.Buffer
}

// NewSVGSurface returns an SVG surface of the given size in pixels.
func NewSVGSurface(width, height float64) *SVGSurface {
	return &SVGSurface{width: width, height: height}
}

// Size implements Surface.
func (s *SVGSurface) Size() (float64, float64) {
	return s.width, s.height
}

// Clear implements Surface.
func (s *SVGSurface) Clear() {
	s.buf.Reset()
}

// Draw implements Surface.
func (s *SVGSurface) Draw(sc Scene) {
	b := &s.buf
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(sc.Width), num(sc.Height), num(sc.Width), num(sc.Height))

	fmt.Fprintf(b, `<g transform="translate(%s,%s)">`+"\n", num(sc.Center.X), num(sc.Center.Y))

	b.WriteString(`<g class="grid">` + "\n")
	for _, c := range sc.Grid {
		fmt.Fprintf(b, `<circle class="grid-circle" r="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-opacity="%s"/>`+"\n",
			num(c.Radius), GridColor, num(GridFillOpacity), GridColor, num(GridStrokeOpacity))
	}
	b.WriteString("</g>\n")

	b.WriteString(`<g class="axes">` + "\n")
	for _, a := range sc.Axes {
		end := rel(sc, a.End)
		label := rel(sc, a.LabelAt)
		fmt.Fprintf(b, `<g class="axis"><line x1="0" y1="0" x2="%s" y2="%s" stroke="%s" stroke-opacity="%s"/>`,
			num(end.X), num(end.Y), GridColor, num(GridStrokeOpacity))
		fmt.Fprintf(b, `<text x="%s" y="%s" dy="0.35em" text-anchor="middle" font-size="%dpx" fill="%s">%s</text></g>`+"\n",
			num(label.X), num(label.Y), LabelFontSize, html.EscapeString(a.LabelColor), html.EscapeString(a.Axis))
	}
	b.WriteString("</g>\n")

	b.WriteString(`<g class="areas">` + "\n")
	for _, p := range sc.Areas {
		fmt.Fprintf(b, `<path class="area-%s" d="%s"`, p.Kind, pathData(sc, p.Points))
		if p.Fill != "" {
			fmt.Fprintf(b, ` fill="%s" fill-opacity="%s"`, html.EscapeString(p.Fill), num(p.FillOpacity))
		} else {
			b.WriteString(` fill="none"`)
		}
		if p.Stroke != "" {
			fmt.Fprintf(b, ` stroke="%s" stroke-opacity="%s" stroke-width="%s"`,
				html.EscapeString(p.Stroke), num(p.StrokeOpacity), num(p.StrokeWidth))
		}
		if p.Kind == AreaData && sc.Initial {
			b.WriteString(">")
			writeEntrance(b)
			b.WriteString("</path>\n")
			continue
		}
		if p.Kind == AreaData && sc.DataScale != 1 {
			fmt.Fprintf(b, ` transform="scale(%s)"`, num(sc.DataScale))
		}
		b.WriteString("/>\n")
	}
	b.WriteString("</g>\n</g>\n</svg>\n")
}

// Bytes returns the current document.
func (s *SVGSurface) Bytes() []byte {
	return s.buf.Bytes()
}

// writeEntrance emits the spring timeline as a SMIL scale animation so the
// data area grows from the center when the document is first shown.
func writeEntrance(b *bytes.Buffer) {
	frames := EntranceTimeline()
	last := len(frames) - 1

	var values, times []string
	for i, f := range frames {
		// Every fourth frame keeps the document small; the endpoints are kept.
		if i%4 != 0 && i != last {
			continue
		}
		values = append(values, num(f))
		times = append(times, num(float64(i)/float64(last)))
	}
	fmt.Fprintf(b, `<animateTransform attributeName="transform" type="scale" dur="%sms" fill="freeze" values="%s" keyTimes="%s"/>`,
		strconv.FormatInt(EntranceDuration.Milliseconds(), 10),
		strings.Join(values, ";"), strings.Join(times, ";"))
}

// rel converts an absolute surface point into the centered group's
// coordinates.
func rel(sc Scene, p Point) Point {
	return Point{X: p.X - sc.Center.X, Y: p.Y - sc.Center.Y}
}

func pathData(sc Scene, pts []Point) string {
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range pts {
		r := rel(sc, p)
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString("L")
		}
		sb.WriteString(num(r.X))
		sb.WriteString(",")
		sb.WriteString(num(r.Y))
	}
	sb.WriteString("Z")
	return sb.String()
}

// num formats a coordinate with at most three decimals and no trailing
// zeros, so identical geometry always yields identical bytes.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// RenderSVG draws one chart into a new SVG document.
func RenderSVG(width, height float64, in Input, animate bool) []byte {
	surf := NewSVGSurface(width, height)
	var opts []Option
	if !animate {
		opts = append(opts, WithoutAnimation())
	}
	if in.AreaColor != "" {
		opts = append(opts, WithAreaColor(in.AreaColor))
	}
	r := New(surf, opts...)
	r.Update(in.Data, in.Goals, in.Palette)
	return surf.Bytes()
}
