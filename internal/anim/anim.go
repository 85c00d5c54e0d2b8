// Package anim runs frame-sliced animation tasks. Tasks advance once per
// Tick; nothing here runs on another goroutine.
package anim

import "math"

// Task is a unit of work stepped once per frame. Step receives the scaled
// frame delta and returns true when the task is finished.
type Task interface {
	Step(dt float64) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(dt float64) bool

// Step calls f.
func (f TaskFunc) Step(dt float64) bool {
	return f(dt)
}

// Runner steps tasks on a frame clock with a time scale and hit-stop.
type Runner struct {
	tasks   []Task
	scale   float64
	hitStop int
	frame   uint64
}

// NewRunner creates an idle runner with time scale 1.
func NewRunner() *Runner {
	return &Runner{scale: 1}
}

// Start schedules t. It first steps on the next Tick.
func (r *Runner) Start(t Task) {
	if t == nil {
		return
	}
	r.tasks = append(r.tasks, t)
}

// SetTimeScale sets the frame delta multiplier. Negative values clamp to 0.
func (r *Runner) SetTimeScale(s float64) {
	r.scale = math.Max(0, s)
}

// TimeScale returns the effective time scale, 0 during hit-stop.
func (r *Runner) TimeScale() float64 {
	if r.hitStop > 0 {
		return 0
	}
	return r.scale
}

// HitStop freezes task time for the given number of frames. Overlapping
// requests do not stack; the longer one wins.
func (r *Runner) HitStop(frames int) {
	if frames > r.hitStop {
		r.hitStop = frames
	}
}

// Frozen reports whether a hit-stop is active.
func (r *Runner) Frozen() bool {
	return r.hitStop > 0
}

// Tick advances one frame. Tasks finished this frame are removed.
func (r *Runner) Tick() {
	r.frame++
	if r.hitStop > 0 {
		r.hitStop--
		return
	}
	if len(r.tasks) == 0 {
		return
	}

	// Tasks started during this frame (from callbacks) run next frame.
	current := r.tasks
	r.tasks = nil
	kept := current[:0]
	for _, t := range current {
		if !t.Step(r.scale) {
			kept = append(kept, t)
		}
	}
	r.tasks = append(kept, r.tasks...)
}

// Busy reports whether any task is pending.
func (r *Runner) Busy() bool {
	return len(r.tasks) > 0 || r.hitStop > 0
}

// Frame returns the number of ticks so far.
func (r *Runner) Frame() uint64 {
	return r.frame
}

// Tasks returns the pending tasks.
func (r *Runner) Tasks() []Task {
	return r.tasks
}

// Settle ticks until idle or limit frames have run. Returns frames ticked.
func (r *Runner) Settle(limit int) int {
	n := 0
	for r.Busy() && n < limit {
		r.Tick()
		n++
	}
	return n
}

// Wait returns a task that finishes after the given number of frames.
func Wait(frames float64) Task {
	elapsed := 0.0
	return TaskFunc(func(dt float64) bool {
		elapsed += dt
		return elapsed >= frames
	})
}

// EaseOutQuad provides smooth deceleration for animation.
func EaseOutQuad(t float64) float64 {
	return t * (2 - t)
}
