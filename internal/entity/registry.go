package entity

import (
	"sort"

	"github.com/vovakirdan/mergecrawl/internal/board"
)

// Registry owns entity lifetimes. Cell bindings are kept in sync with the
// grid so that a cell never holds more than one occupant kind.
type Registry struct {
	grid    *board.Grid
	heroRow int
	next    board.ID

	tiles   map[board.ID]*Tile
	enemies map[board.ID]*Enemy
	heroes  map[board.ID]*Hero
}

// NewRegistry creates an empty registry over grid. Heroes may only be placed
// on heroRow.
func NewRegistry(grid *board.Grid, heroRow int) *Registry {
	return &Registry{
		grid:    grid,
		heroRow: heroRow,
		tiles:   make(map[board.ID]*Tile),
		enemies: make(map[board.ID]*Enemy),
		heroes:  make(map[board.ID]*Hero),
	}
}

// Grid returns the board the registry binds to.
func (r *Registry) Grid() *board.Grid {
	return r.grid
}

// HeroRow returns the row heroes are restricted to.
func (r *Registry) HeroRow() int {
	return r.heroRow
}

func (r *Registry) nextID() board.ID {
	r.next++
	return r.next
}

// LastID returns the most recently issued id.
func (r *Registry) LastID() board.ID {
	return r.next
}

// --- Tiles ---

func (r *Registry) addTile(t *Tile) {
	t.ID = r.nextID()
	r.tiles[t.ID] = t
}

// Tile returns a live tile by id.
func (r *Registry) Tile(id board.ID) (*Tile, bool) {
	t, ok := r.tiles[id]
	return t, ok
}

// TileAt returns the tile bound to the cell at c.
func (r *Registry) TileAt(c board.Coord) (*Tile, bool) {
	cell, ok := r.grid.At(c)
	if !ok || cell.Tile == 0 {
		return nil, false
	}
	return r.Tile(cell.Tile)
}

// PlaceTile binds an unplaced tile to an empty cell.
func (r *Registry) PlaceTile(t *Tile, at board.Coord) bool {
	if t == nil || t.Placed {
		return false
	}
	if _, live := r.tiles[t.ID]; !live {
		return false
	}
	cell, ok := r.grid.At(at)
	if !ok || !cell.IsEmpty() {
		return false
	}
	cell.Tile = t.ID
	t.Pos = at
	t.Placed = true
	return true
}

// DetachTile severs the cell binding. The tile stays live and in flight.
func (r *Registry) DetachTile(t *Tile) {
	if t == nil || !t.Placed {
		return
	}
	if cell, ok := r.grid.At(t.Pos); ok && cell.Tile == t.ID {
		cell.Tile = 0
	}
	t.Placed = false
}

// MoveTile moves a placed tile into an empty cell.
func (r *Registry) MoveTile(t *Tile, to board.Coord) bool {
	if t == nil || !t.Placed {
		return false
	}
	cell, ok := r.grid.At(to)
	if !ok || !cell.IsEmpty() {
		return false
	}
	r.DetachTile(t)
	return r.PlaceTile(t, to)
}

// DestroyTile detaches and forgets the tile.
func (r *Registry) DestroyTile(t *Tile) bool {
	if t == nil {
		return false
	}
	if _, live := r.tiles[t.ID]; !live {
		return false
	}
	r.DetachTile(t)
	delete(r.tiles, t.ID)
	return true
}

// Tiles returns live tiles ordered by id.
func (r *Registry) Tiles() []*Tile {
	out := make([]*Tile, 0, len(r.tiles))
	for _, t := range r.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TileCount returns the number of live tiles, placed or in flight.
func (r *Registry) TileCount() int {
	return len(r.tiles)
}

// --- Enemies ---

func (r *Registry) addEnemy(e *Enemy) {
	e.ID = r.nextID()
	r.enemies[e.ID] = e
}

// Enemy returns a live enemy by id.
func (r *Registry) Enemy(id board.ID) (*Enemy, bool) {
	e, ok := r.enemies[id]
	return e, ok
}

// EnemyAt returns the enemy bound to the cell at c.
func (r *Registry) EnemyAt(c board.Coord) (*Enemy, bool) {
	cell, ok := r.grid.At(c)
	if !ok || cell.Enemy == 0 {
		return nil, false
	}
	return r.Enemy(cell.Enemy)
}

// PlaceEnemy binds an unplaced enemy to an empty cell.
func (r *Registry) PlaceEnemy(e *Enemy, at board.Coord) bool {
	if e == nil || e.Placed {
		return false
	}
	if _, live := r.enemies[e.ID]; !live {
		return false
	}
	cell, ok := r.grid.At(at)
	if !ok || !cell.IsEmpty() {
		return false
	}
	cell.Enemy = e.ID
	e.Pos = at
	e.Placed = true
	return true
}

// MoveEnemy moves a placed enemy into an empty cell.
func (r *Registry) MoveEnemy(e *Enemy, to board.Coord) bool {
	if e == nil || !e.Placed {
		return false
	}
	cell, ok := r.grid.At(to)
	if !ok || !cell.IsEmpty() {
		return false
	}
	if from, ok := r.grid.At(e.Pos); ok && from.Enemy == e.ID {
		from.Enemy = 0
	}
	cell.Enemy = e.ID
	e.Pos = to
	return true
}

// RemoveEnemy unbinds and forgets the enemy.
func (r *Registry) RemoveEnemy(e *Enemy) bool {
	if e == nil {
		return false
	}
	if _, live := r.enemies[e.ID]; !live {
		return false
	}
	if e.Placed {
		if cell, ok := r.grid.At(e.Pos); ok && cell.Enemy == e.ID {
			cell.Enemy = 0
		}
		e.Placed = false
	}
	delete(r.enemies, e.ID)
	return true
}

// Enemies returns live enemies ordered by id.
func (r *Registry) Enemies() []*Enemy {
	out := make([]*Enemy, 0, len(r.enemies))
	for _, e := range r.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- Heroes ---

func (r *Registry) addHero(h *Hero) {
	h.ID = r.nextID()
	r.heroes[h.ID] = h
}

// Hero returns a hero by id.
func (r *Registry) Hero(id board.ID) (*Hero, bool) {
	h, ok := r.heroes[id]
	return h, ok
}

// HeroAt returns the hero bound to the cell at c.
func (r *Registry) HeroAt(c board.Coord) (*Hero, bool) {
	cell, ok := r.grid.At(c)
	if !ok || cell.Hero == 0 {
		return nil, false
	}
	return r.Hero(cell.Hero)
}

// PlaceHero binds a hero to an empty cell on the hero row.
func (r *Registry) PlaceHero(h *Hero, at board.Coord) bool {
	if h == nil || h.Placed || at.Y != r.heroRow {
		return false
	}
	if _, live := r.heroes[h.ID]; !live {
		return false
	}
	cell, ok := r.grid.At(at)
	if !ok || !cell.IsEmpty() {
		return false
	}
	cell.Hero = h.ID
	h.Pos = at
	h.Placed = true
	return true
}

// Heroes returns heroes ordered by column.
func (r *Registry) Heroes() []*Hero {
	out := make([]*Hero, 0, len(r.heroes))
	for _, h := range r.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.X != out[j].Pos.X {
			return out[i].Pos.X < out[j].Pos.X
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CheckBindings verifies that every placed entity is referenced by its
// cell and every cell reference points at a live, placed entity. Returns
// the offending coordinates.
func (r *Registry) CheckBindings() []board.Coord {
	bad := r.grid.CheckOccupancy()
	for _, cell := range r.grid.Cells() {
		if cell.Tile != 0 {
			if t, ok := r.tiles[cell.Tile]; !ok || !t.Placed || t.Pos != cell.Pos {
				bad = append(bad, cell.Pos)
			}
		}
		if cell.Enemy != 0 {
			if e, ok := r.enemies[cell.Enemy]; !ok || !e.Placed || e.Pos != cell.Pos {
				bad = append(bad, cell.Pos)
			}
		}
		if cell.Hero != 0 {
			if h, ok := r.heroes[cell.Hero]; !ok || !h.Placed || h.Pos != cell.Pos {
				bad = append(bad, cell.Pos)
			}
		}
	}
	return bad
}
