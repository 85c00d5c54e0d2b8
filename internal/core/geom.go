// Package core provides runtime primitives shared by the simulation host and
// the terminal front-end: input frames, the screen buffer, colors and screen
// regions. It contains no external dependencies (especially no Bubble Tea).
package core

// Rect is a screen region in character cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by n on every side. The result never has a
// negative size.
func (r Rect) Inset(n int) Rect {
	return Rect{
		X: r.X + n,
		Y: r.Y + n,
		W: max(r.W-2*n, 0),
		H: max(r.H-2*n, 0),
	}
}

// CenteredIn returns a w×h rectangle centered horizontally in a screen of the
// given width, with its top edge at y.
func CenteredIn(screenW, y, w, h int) Rect {
	return Rect{X: (screenW - w) / 2, Y: y, W: w, H: h}
}
