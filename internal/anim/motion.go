package anim

import (
	"math"

	"github.com/vovakirdan/mergecrawl/internal/board"
)

// Motion moves something from one cell to another along an eased arc.
type Motion struct {
	Ref      board.ID // entity being moved
	Glyph    string
	Color    string
	From     board.Coord
	To       board.Coord
	Delay    float64 // frames before moving
	Duration float64 // frames spent moving
	Arc      float64 // peak offset in cells, perpendicular to travel

	OnDone func()

	elapsed  float64
	progress float64
	done     bool
}

// Step advances the motion.
func (m *Motion) Step(dt float64) bool {
	if m.done {
		return true
	}
	m.elapsed += dt
	moving := m.elapsed - m.Delay
	if moving < 0 {
		return false
	}
	if m.Duration <= 0 {
		m.progress = 1
	} else {
		m.progress = math.Min(1, moving/m.Duration)
	}
	if m.progress >= 1 {
		m.done = true
		if m.OnDone != nil {
			m.OnDone()
		}
		return true
	}
	return false
}

// Progress returns 0..1.
func (m *Motion) Progress() float64 {
	return m.progress
}

// Done reports whether the motion reached its destination.
func (m *Motion) Done() bool {
	return m.done
}

// Position returns the current interpolated position in cells.
func (m *Motion) Position() (x, y float64) {
	t := EaseOutQuad(m.progress)
	x = float64(m.From.X) + float64(m.To.X-m.From.X)*t
	y = float64(m.From.Y) + float64(m.To.Y-m.From.Y)*t

	// Lift perpendicular to travel; straight up for purely horizontal moves.
	lift := math.Sin(math.Pi*m.progress) * m.Arc
	if m.From.X == m.To.X {
		x += lift
	} else {
		y += lift
	}
	return x, y
}
