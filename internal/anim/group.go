package anim

// Group runs tasks concurrently and calls a completion callback exactly
// once after every task has finished and the group is sealed.
type Group struct {
	runner     *Runner
	pending    int
	sealed     bool
	fired      bool
	onComplete func()
}

// NewGroup creates a group whose tasks run on r.
func NewGroup(r *Runner, onComplete func()) *Group {
	return &Group{runner: r, onComplete: onComplete}
}

// Add starts t as part of the group. Tasks cannot be added after Seal.
func (g *Group) Add(t Task) bool {
	if g.sealed || t == nil {
		return false
	}
	g.pending++
	g.runner.Start(TaskFunc(func(dt float64) bool {
		if !t.Step(dt) {
			return false
		}
		g.pending--
		g.maybeFire()
		return true
	}))
	return true
}

// Seal marks the group complete. An empty sealed group fires immediately.
func (g *Group) Seal() {
	if g.sealed {
		return
	}
	g.sealed = true
	g.maybeFire()
}

// Pending returns how many tasks have not finished.
func (g *Group) Pending() int {
	return g.pending
}

// Fired reports whether the completion callback has run.
func (g *Group) Fired() bool {
	return g.fired
}

func (g *Group) maybeFire() {
	if !g.sealed || g.pending > 0 || g.fired {
		return
	}
	g.fired = true
	if g.onComplete != nil {
		g.onComplete()
	}
}
