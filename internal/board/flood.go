package board

import "github.com/zyedidia/generic/mapset"

// FloodFill collects the 4-connected region of cells reachable from start
// whose cells satisfy match. The start cell is included only if it matches.
// Results are in BFS discovery order, which callers use as a tie-break.
func (g *Grid) FloodFill(start Coord, match func(*Cell) bool) []*Cell {
	first, ok := g.At(start)
	if !ok || !match(first) {
		return nil
	}

	visited := mapset.New[Coord]()
	visited.Put(start)
	queue := []*Cell{first}
	var region []*Cell

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)

		for _, n := range g.Neighbors4(current.Pos) {
			if visited.Has(n.Pos) {
				continue
			}
			visited.Put(n.Pos)
			if match(n) {
				queue = append(queue, n)
			}
		}
	}

	return region
}
