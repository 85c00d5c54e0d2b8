package board

import "fmt"

// Coord addresses a cell on the board.
// X increases to the right, Y increases upward away from the hero row.
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Down returns the coordinate one row closer to the hero row.
func (c Coord) Down() Coord {
	return c.Add(0, -1)
}

// Manhattan returns the Manhattan distance to another coordinate.
func (c Coord) Manhattan(other Coord) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// directions lists 4-neighbour offsets in discovery order.
var directions = [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
