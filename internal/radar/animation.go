package radar

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// Entrance animation parameters. An under-damped spring gives the elastic
// overshoot; the last frame is pinned to exactly 1.
const (
	EntranceFPS      = 60
	EntranceDuration = time.Second
	EntranceStart    = 0.1

	springFrequency = 12.0
	springDamping   = 0.35
)

// FrameInterval is the time between entrance animation frames.
var FrameInterval = time.Second / EntranceFPS

// EntranceTimeline samples the data polygon scale for each frame of the
// entrance animation.
func EntranceTimeline() []float64 {
	frames := int(EntranceDuration / FrameInterval)
	if frames < 2 {
		frames = 2
	}

	spring := harmonica.NewSpring(harmonica.FPS(EntranceFPS), springFrequency, springDamping)
	pos, vel := EntranceStart, 0.0

	out := make([]float64, frames)
	out[0] = EntranceStart
	for i := 1; i < frames; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		out[i] = pos
	}
	out[frames-1] = 1
	return out
}

// Animation steps through an entrance timeline.
type Animation struct {
	frames []float64
	pos    int
}

// NewAnimation starts an entrance animation at its first frame.
func NewAnimation() *Animation {
	return &Animation{frames: EntranceTimeline()}
}

// Scale returns the scale factor of the current frame.
func (a *Animation) Scale() float64 {
	if a == nil || len(a.frames) == 0 {
		return 1
	}
	return a.frames[a.pos]
}

// Done reports whether the final frame has been reached.
func (a *Animation) Done() bool {
	return a == nil || a.pos >= len(a.frames)-1
}

// Step advances one frame. It reports false once the animation is done.
func (a *Animation) Step() bool {
	if a.Done() {
		return false
	}
	a.pos++
	return true
}

// Finish jumps to the final frame.
func (a *Animation) Finish() {
	if a != nil && len(a.frames) > 0 {
		a.pos = len(a.frames) - 1
	}
}
