// Package entity tracks live tiles, enemies and heroes and binds them to
// board cells. Entities live in arena maps keyed by board.ID; a cell refers
// to its occupant by id and an entity refers to its cell by coordinate.
package entity

import (
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
)

// Tile is a tile instance on the board or in flight.
type Tile struct {
	ID     board.ID
	Def    *defs.TileDef
	Pos    board.Coord
	Placed bool // false while detached (in flight)

	// Remaining is the number of items a loot bag still holds.
	Remaining int
	// Table is the loot table a bag rolls from.
	Table *defs.LootTable
	// Stored counts tiles deposited into a station, by tile id.
	Stored map[string]int
}

// Enemy is a live enemy.
type Enemy struct {
	ID     board.ID
	Def    *defs.EnemyDef
	HP     int
	MaxHP  int
	Boss   bool
	Pos    board.Coord
	Placed bool
	Slot   int // bench slot index, -1 when unbound

	dead bool
}

// Alive reports whether the enemy has not died yet.
func (e *Enemy) Alive() bool {
	return !e.dead
}

// Damage lowers HP, clamped at 0. died is true only on the call that
// brought HP to 0.
func (e *Enemy) Damage(amount int) (dealt int, died bool) {
	if e.dead || amount <= 0 {
		return 0, false
	}
	dealt = min(amount, e.HP)
	e.HP -= dealt
	if e.HP <= 0 {
		e.HP = 0
		e.dead = true
		return dealt, true
	}
	return dealt, false
}

// Kill sets HP to 0. It returns false if the enemy was already dead.
func (e *Enemy) Kill() bool {
	if e.dead {
		return false
	}
	e.HP = 0
	e.dead = true
	return true
}

// Hero is a player character bound to the hero row.
type Hero struct {
	ID         board.ID
	Def        *defs.HeroDef
	HP         int
	MaxHP      int
	Level      int
	Exp        int
	Stamina    int
	MaxStamina int
	Pos        board.Coord
	Placed     bool

	downed bool
}

// Downed reports whether the hero has been knocked out.
func (h *Hero) Downed() bool {
	return h.downed
}

// Damage lowers HP, clamped at 0. downed is true only on the transition.
func (h *Hero) Damage(amount int) (dealt int, downed bool) {
	if h.downed || amount <= 0 {
		return 0, false
	}
	dealt = min(amount, h.HP)
	h.HP -= dealt
	if h.HP <= 0 {
		h.HP = 0
		h.downed = true
		return dealt, true
	}
	return dealt, false
}

// Feed applies food stats: heal up to MaxHP, add stamina up to MaxStamina,
// and gain experience. Returns the number of levels gained.
// Downed heroes cannot be fed.
func (h *Hero) Feed(stats defs.FeedStats) (levels int, ok bool) {
	if h.downed {
		return 0, false
	}
	h.HP = min(h.HP+max(stats.HP, 0), h.MaxHP)
	h.Stamina = min(h.Stamina+max(stats.Stamina, 0), h.MaxStamina)
	h.Exp += max(stats.Exp, 0)

	per := 0
	if h.Def != nil {
		per = h.Def.ExpPerLevel
	}
	if per <= 0 {
		return 0, true
	}
	for h.Exp >= per {
		h.Exp -= per
		h.Level++
		levels++
	}
	return levels, true
}

// SpendStamina uses one stamina point if available.
func (h *Hero) SpendStamina() bool {
	if h.Stamina <= 0 {
		return false
	}
	h.Stamina--
	return true
}

// SetHP sets HP clamped to [0, MaxHP]. A hero set to 0 is downed.
func (h *Hero) SetHP(hp int) {
	h.HP = max(0, min(hp, h.MaxHP))
	h.downed = h.HP == 0
}
