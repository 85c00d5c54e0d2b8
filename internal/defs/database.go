package defs

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
)

// Database indexes definitions by id. It is rebuilt whenever packs are
// added; lookups never mutate it.
type Database struct {
	tiles      map[string]*TileDef
	enemies    map[string]*EnemyDef
	heroes     map[string]*HeroDef
	tables     map[string]*LootTable
	containers map[string]*LootContainer
	recipes    map[string]*Recipe

	// byTile maps a disruption tile id to the enemy that links it.
	byTile map[string]*EnemyDef

	// FallbackHP is used when an enemy definition has no base HP.
	FallbackHP int

	logger *log.Logger
}

// NewDatabase creates an empty database. A nil logger discards output.
func NewDatabase(logger *log.Logger) *Database {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Database{
		tiles:      make(map[string]*TileDef),
		enemies:    make(map[string]*EnemyDef),
		heroes:     make(map[string]*HeroDef),
		tables:     make(map[string]*LootTable),
		containers: make(map[string]*LootContainer),
		recipes:    make(map[string]*Recipe),
		byTile:     make(map[string]*EnemyDef),
		logger:     logger.With("component", "defs"),
	}
}

// Add merges a pack into the database and rebuilds references.
// Later packs override earlier definitions with the same id.
func (db *Database) Add(p Pack) {
	for i := range p.Tiles {
		d := p.Tiles[i]
		db.tiles[d.ID] = &d
	}
	for i := range p.Enemies {
		d := p.Enemies[i]
		db.enemies[d.ID] = &d
	}
	for i := range p.Heroes {
		d := p.Heroes[i]
		db.heroes[d.ID] = &d
	}
	for i := range p.LootTables {
		d := p.LootTables[i]
		db.tables[d.ID] = &d
	}
	for i := range p.Containers {
		d := p.Containers[i]
		db.containers[d.ID] = &d
	}
	for i := range p.Recipes {
		d := p.Recipes[i]
		db.recipes[d.ID] = &d
	}
	db.Rebuild()
}

// Rebuild resolves string references into pointers and re-indexes
// enemies by their linked tile. Dangling references are logged and left nil.
func (db *Database) Rebuild() {
	for _, t := range db.tiles {
		t.MergesWith = nil
		if t.MergesWithID != "" {
			if other, ok := db.tiles[t.MergesWithID]; ok {
				t.MergesWith = other
			} else {
				db.logger.Warn("merges_with points at unknown tile", "tile", t.ID, "ref", t.MergesWithID)
			}
		}
		db.resolveRule(t, t.Three)
		db.resolveRule(t, t.Five)
	}

	db.byTile = make(map[string]*EnemyDef)
	for _, e := range db.enemies {
		e.DisruptionTile = nil
		if e.DisruptionTileID == "" {
			continue
		}
		tile, ok := db.tiles[e.DisruptionTileID]
		if !ok {
			db.logger.Warn("disruption tile not found", "enemy", e.ID, "ref", e.DisruptionTileID)
			continue
		}
		e.DisruptionTile = tile
		if _, taken := db.byTile[tile.ID]; !taken {
			db.byTile[tile.ID] = e
		}
	}
}

func (db *Database) resolveRule(owner *TileDef, r *MergeRule) {
	if r == nil {
		return
	}
	r.OutputDef = nil
	if r.Output == "" {
		return
	}
	out, ok := db.tiles[r.Output]
	if !ok {
		db.logger.Warn("merge output not found", "tile", owner.ID, "output", r.Output)
		return
	}
	r.OutputDef = out
}

// Tile returns the tile definition with the given id.
func (db *Database) Tile(id string) (*TileDef, bool) {
	d, ok := db.tiles[id]
	return d, ok
}

// Enemy returns the enemy definition with the given id.
func (db *Database) Enemy(id string) (*EnemyDef, bool) {
	d, ok := db.enemies[id]
	return d, ok
}

// EnemyByTile returns the enemy whose disruption tile is def.
func (db *Database) EnemyByTile(def *TileDef) (*EnemyDef, bool) {
	if def == nil {
		return nil, false
	}
	d, ok := db.byTile[def.ID]
	return d, ok
}

// Hero returns the hero definition with the given id.
func (db *Database) Hero(id string) (*HeroDef, bool) {
	d, ok := db.heroes[id]
	return d, ok
}

// LootTable returns the loot table with the given id.
func (db *Database) LootTable(id string) (*LootTable, bool) {
	d, ok := db.tables[id]
	return d, ok
}

// Container returns the loot container with the given id.
func (db *Database) Container(id string) (*LootContainer, bool) {
	d, ok := db.containers[id]
	return d, ok
}

// Recipe returns the recipe with the given id.
func (db *Database) Recipe(id string) (*Recipe, bool) {
	d, ok := db.recipes[id]
	return d, ok
}

// Tiles returns all tile definitions sorted by id.
func (db *Database) Tiles() []*TileDef {
	out := make([]*TileDef, 0, len(db.tiles))
	for _, d := range db.tiles {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Enemies returns all enemy definitions sorted by id.
func (db *Database) Enemies() []*EnemyDef {
	out := make([]*EnemyDef, 0, len(db.enemies))
	for _, d := range db.enemies {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Heroes returns all hero definitions sorted by column, then id.
func (db *Database) Heroes() []*HeroDef {
	out := make([]*HeroDef, 0, len(db.heroes))
	for _, d := range db.heroes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Validate reports dangling references. It does not modify the database.
func (db *Database) Validate() []error {
	var errs []error
	for _, t := range db.Tiles() {
		if t.MergesWithID != "" && t.MergesWith == nil {
			errs = append(errs, fmt.Errorf("tile %s: unknown merges_with %q", t.ID, t.MergesWithID))
		}
		for name, r := range map[string]*MergeRule{"three_of_a_kind": t.Three, "five_of_a_kind": t.Five} {
			if r != nil && r.Output != "" && r.OutputDef == nil {
				errs = append(errs, fmt.Errorf("tile %s: %s output %q not found", t.ID, name, r.Output))
			}
		}
		if t.LootTable != "" {
			if _, ok := db.tables[t.LootTable]; !ok {
				errs = append(errs, fmt.Errorf("tile %s: unknown loot table %q", t.ID, t.LootTable))
			}
		}
		if t.Recipe != "" {
			if _, ok := db.recipes[t.Recipe]; !ok {
				errs = append(errs, fmt.Errorf("tile %s: unknown recipe %q", t.ID, t.Recipe))
			}
		}
	}
	for _, e := range db.Enemies() {
		if e.DisruptionTileID != "" && e.DisruptionTile == nil {
			errs = append(errs, fmt.Errorf("enemy %s: unknown disruption tile %q", e.ID, e.DisruptionTileID))
		}
		if e.LootContainer != "" {
			if _, ok := db.containers[e.LootContainer]; !ok {
				errs = append(errs, fmt.Errorf("enemy %s: unknown loot container %q", e.ID, e.LootContainer))
			}
		}
		if e.LootTable != "" {
			if _, ok := db.tables[e.LootTable]; !ok {
				errs = append(errs, fmt.Errorf("enemy %s: unknown loot table %q", e.ID, e.LootTable))
			}
		}
	}
	for id, t := range db.tables {
		for _, entry := range t.Entries {
			if _, ok := db.tiles[entry.Tile]; !ok {
				errs = append(errs, fmt.Errorf("loot table %s: unknown tile %q", id, entry.Tile))
			}
		}
	}
	for id, c := range db.containers {
		if _, ok := db.tiles[c.Tile]; !ok {
			errs = append(errs, fmt.Errorf("container %s: unknown tile %q", id, c.Tile))
		}
	}
	for id, r := range db.recipes {
		if _, ok := db.tiles[r.Output]; !ok {
			errs = append(errs, fmt.Errorf("recipe %s: unknown output %q", id, r.Output))
		}
	}
	return errs
}
