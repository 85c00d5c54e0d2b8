// Package board provides the fixed-size cell grid that tiles, enemies and
// heroes occupy. It owns the occupancy invariant: a cell holds at most one
// occupant kind at any time.
package board

// ID identifies an entity bound to a cell. Zero means absent.
type ID uint64

// Cell is a single board square. Cells are allocated once and never move;
// occupants refer back to them by coordinate only.
type Cell struct {
	Pos   Coord
	Tile  ID
	Enemy ID
	Hero  ID
}

// IsEmpty reports whether the cell is free for a tile.
func (c *Cell) IsEmpty() bool {
	return c.Tile == 0 && c.Enemy == 0 && c.Hero == 0
}

// Occupants returns how many occupant slots are filled.
func (c *Cell) Occupants() int {
	n := 0
	if c.Tile != 0 {
		n++
	}
	if c.Enemy != 0 {
		n++
	}
	if c.Hero != 0 {
		n++
	}
	return n
}

// Clear empties all occupant slots.
func (c *Cell) Clear() {
	c.Tile, c.Enemy, c.Hero = 0, 0, 0
}

// Grid is the board. Cells are stored in row-major order: index = y*W + x,
// with row 0 at the bottom.
type Grid struct {
	W     int
	H     int
	cells []Cell
}

// Build allocates a width*height grid with coordinates assigned row-major.
func Build(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		W:     width,
		H:     height,
		cells: make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x].Pos = C(x, y)
		}
	}
	return g
}

// InBounds returns true if the coordinate is within the grid boundaries.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// Cell returns the cell at (x, y). The second result is false when the
// coordinate is out of range; callers must check it.
func (g *Grid) Cell(x, y int) (*Cell, bool) {
	return g.At(C(x, y))
}

// At is Cell addressed by Coord.
func (g *Grid) At(c Coord) (*Cell, bool) {
	if !g.InBounds(c) {
		return nil, false
	}
	return &g.cells[c.Y*g.W+c.X], true
}

// Clamp restricts a coordinate to the board bounds.
func (g *Grid) Clamp(c Coord) Coord {
	return Coord{X: clamp(c.X, 0, g.W-1), Y: clamp(c.Y, 0, g.H-1)}
}

// CollectEmptyCells returns every cell with no occupant, in scan order
// (y ascending, then x ascending). Callers pick from it with their own RNG, so
// the order must stay stable.
func (g *Grid) CollectEmptyCells() []*Cell {
	out := make([]*Cell, 0, len(g.cells))
	for i := range g.cells {
		if g.cells[i].IsEmpty() {
			out = append(out, &g.cells[i])
		}
	}
	return out
}

// Row returns the cells of row y from left to right, or nil when out of range.
func (g *Grid) Row(y int) []*Cell {
	if y < 0 || y >= g.H {
		return nil
	}
	out := make([]*Cell, g.W)
	for x := 0; x < g.W; x++ {
		out[x] = &g.cells[y*g.W+x]
	}
	return out
}

// TopRows returns the cells of the n highest rows, highest row first.
func (g *Grid) TopRows(n int) []*Cell {
	var out []*Cell
	for i := 0; i < n; i++ {
		out = append(out, g.Row(g.H-1-i)...)
	}
	return out
}

// Neighbors4 returns the in-bounds orthogonal neighbours of c.
func (g *Grid) Neighbors4(c Coord) []*Cell {
	out := make([]*Cell, 0, 4)
	for _, d := range directions {
		if cell, ok := g.At(c.Add(d.X, d.Y)); ok {
			out = append(out, cell)
		}
	}
	return out
}

// Cells returns all cells in scan order.
func (g *Grid) Cells() []*Cell {
	out := make([]*Cell, len(g.cells))
	for i := range g.cells {
		out[i] = &g.cells[i]
	}
	return out
}

// CountTiles returns the number of cells holding a tile.
func (g *Grid) CountTiles() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Tile != 0 {
			n++
		}
	}
	return n
}

// CheckOccupancy returns the coordinates of cells holding more than one
// occupant kind. An empty result means the invariant holds.
func (g *Grid) CheckOccupancy() []Coord {
	var bad []Coord
	for i := range g.cells {
		if g.cells[i].Occupants() > 1 {
			bad = append(bad, g.cells[i].Pos)
		}
	}
	return bad
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
