package radar

import (
	"github.com/theirongolddev/mealradar/internal/model"
)

// Surface is a drawing target. Size reports zero until the surface is
// attached and can be measured.
type Surface interface {
	Size() (width, height float64)
	Clear()
	Draw(Scene)
}

// State is the renderer lifecycle state.
type State int

const (
	Uninitialized State = iota
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Renderer keeps a surface in sync with the latest chart inputs. The first
// successful Update plays the entrance animation; later ones redraw in place.
type Renderer struct {
	surface   Surface
	state     State
	anim      *Animation
	animate   bool
	areaColor string

	last    Scene
	hasLast bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithoutAnimation disables the entrance animation.
func WithoutAnimation() Option {
	return func(r *Renderer) { r.animate = false }
}

// WithAreaColor overrides the goal and data area color.
func WithAreaColor(c string) Option {
	return func(r *Renderer) { r.areaColor = c }
}

// New returns an uninitialized renderer for the surface.
func New(s Surface, opts ...Option) *Renderer {
	r := &Renderer{
		surface:   s,
		animate:   true,
		areaColor: DefaultAreaColor,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// State returns the lifecycle state.
func (r *Renderer) State() State {
	return r.state
}

// Update is called whenever data, goals or palette change. Before the
// surface can be measured it draws nothing and stays uninitialized. It
// reports whether a frame was drawn.
func (r *Renderer) Update(data, goals model.ChartSeries, palette model.Palette) bool {
	switch r.state {
	case Closed:
		return false
	case Uninitialized:
		w, h := r.surface.Size()
		if w <= 0 || h <= 0 {
			return false
		}
		r.state = Ready
		if r.animate {
			r.anim = NewAnimation()
		}
	}

	w, h := r.surface.Size()
	scene, ok := Build(w, h, data, goals, palette, r.areaColor)
	if !ok {
		return false
	}
	r.last = scene
	r.hasLast = true
	r.paint()
	return true
}

// Animating reports whether the entrance animation is still running.
func (r *Renderer) Animating() bool {
	return r.state == Ready && r.anim != nil && !r.anim.Done()
}

// Advance steps the entrance animation one frame and repaints the last
// scene. It reports whether more frames remain.
func (r *Renderer) Advance() bool {
	if !r.Animating() {
		return false
	}
	r.anim.Step()
	if r.hasLast {
		r.paint()
	}
	return !r.anim.Done()
}

// SkipAnimation jumps the entrance animation to its final frame.
func (r *Renderer) SkipAnimation() {
	if r.anim == nil {
		return
	}
	r.anim.Finish()
	if r.hasLast && r.state == Ready {
		r.paint()
	}
}

// Scene returns the last built frame.
func (r *Renderer) Scene() (Scene, bool) {
	return r.last, r.hasLast
}

// Close detaches the surface. Later updates are ignored.
func (r *Renderer) Close() {
	r.state = Closed
	r.surface = nil
	r.anim = nil
	r.hasLast = false
}

// paint replaces the whole previous frame with the last scene.
func (r *Renderer) paint() {
	s := r.last
	s.DataScale = 1
	if r.anim != nil {
		s.DataScale = r.anim.Scale()
		s.Initial = !r.anim.Done()
	}
	r.surface.Clear()
	r.surface.Draw(s)
}

// Input bundles everything one draw reads.
type Input struct {
	Data      model.ChartSeries
	Goals     model.ChartSeries
	Palette   model.Palette
	AreaColor string
}
