// Package loot rolls loot tables and runs loot bags: placeholder tiles that
// release one rolled item per activation until empty.
package loot

import (
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
)

// Roll picks one tile id from the table by weight. Entries with weight <= 0
// never roll.
func Roll(table *defs.LootTable, rng *rand.Rand) (string, bool) {
	if table == nil {
		return "", false
	}
	total := table.TotalWeight()
	if total <= 0 {
		return "", false
	}
	n := rng.Intn(total)
	for _, e := range table.Entries {
		if e.Weight <= 0 {
			continue
		}
		if n < e.Weight {
			return e.Tile, true
		}
		n -= e.Weight
	}
	return "", false
}

// RollCount picks how many items a bag holds, in [MinRolls, MaxRolls] and
// never below 1.
func RollCount(table *defs.LootTable, rng *rand.Rand) int {
	lo := max(table.MinRolls, 1)
	hi := max(table.MaxRolls, lo)
	if hi == lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// SingleItem builds a one-entry table that always yields tileID once.
func SingleItem(tileID string) *defs.LootTable {
	return &defs.LootTable{
		ID:       "single:" + tileID,
		Entries:  []defs.LootEntry{{Tile: tileID, Weight: 1}},
		MinRolls: 1,
		MaxRolls: 1,
	}
}

// Opener creates and activates loot bags.
type Opener struct {
	reg     *entity.Registry
	factory *entity.Factory
	db      *defs.Database
	bus     *events.Bus
	rng     *rand.Rand
	logger  *log.Logger
}

// NewOpener creates an opener. A nil logger discards output.
func NewOpener(reg *entity.Registry, factory *entity.Factory, db *defs.Database, bus *events.Bus, rng *rand.Rand, logger *log.Logger) *Opener {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Opener{
		reg:     reg,
		factory: factory,
		db:      db,
		bus:     bus,
		rng:     rng,
		logger:  logger.With("component", "loot"),
	}
}

// NewBag creates an unplaced bag tile of def that holds uses items from
// table. uses <= 0 rolls the count from the table.
func (o *Opener) NewBag(def *defs.TileDef, table *defs.LootTable, uses int) (*entity.Tile, bool) {
	if table == nil {
		o.logger.Warn("loot bag without table", "tile", tileID(def))
		return nil, false
	}
	t, ok := o.factory.NewTile(def)
	if !ok {
		return nil, false
	}
	t.Table = table
	if uses > 0 {
		t.Remaining = uses
	} else {
		t.Remaining = RollCount(table, o.rng)
	}
	return t, true
}

// Prepare fills in bag state for a loot-bag tile created from its
// definition alone, such as a drop-spawned chest.
func (o *Opener) Prepare(t *entity.Tile) {
	if t == nil || t.Def.Category != defs.CategoryLootBag || t.Table != nil {
		return
	}
	table, ok := o.db.LootTable(t.Def.LootTable)
	if !ok {
		o.logger.Warn("loot table not found", "tile", t.Def.ID, "table", t.Def.LootTable)
		return
	}
	t.Table = table
	if t.Def.Uses > 0 {
		t.Remaining = t.Def.Uses
	} else {
		t.Remaining = RollCount(table, o.rng)
	}
}

// Activate releases one item from bag into a random empty cell. The bag is
// destroyed when it runs out. Returns false without changes when bag is not
// an active loot bag or the board has no empty cell.
func (o *Opener) Activate(bag *entity.Tile) bool {
	if bag == nil || !bag.Placed || bag.Def.Category != defs.CategoryLootBag {
		return false
	}
	if bag.Table == nil || bag.Remaining <= 0 {
		return false
	}

	empty := o.reg.Grid().CollectEmptyCells()
	if len(empty) == 0 {
		return false
	}

	id, ok := Roll(bag.Table, o.rng)
	if !ok {
		o.logger.Warn("loot table rolled nothing", "table", bag.Table.ID)
		return false
	}
	def, ok := o.db.Tile(id)
	if !ok {
		o.logger.Warn("loot item not found", "table", bag.Table.ID, "tile", id)
		return false
	}
	item, ok := o.factory.NewTile(def)
	if !ok {
		return false
	}
	o.Prepare(item)
	cell := empty[o.rng.Intn(len(empty))]
	if !o.reg.PlaceTile(item, cell.Pos) {
		o.reg.DestroyTile(item)
		return false
	}

	bag.Remaining--
	if bag.Remaining == 0 {
		pos := bag.Pos
		o.reg.DestroyTile(bag)
		o.bus.TileDestroyed.Publish(events.TileDestroyed{
			ID:     bag.ID,
			Def:    bag.Def.ID,
			Pos:    pos,
			Reason: "exhausted",
		})
	}
	return true
}

func tileID(def *defs.TileDef) string {
	if def == nil {
		return ""
	}
	return def.ID
}
