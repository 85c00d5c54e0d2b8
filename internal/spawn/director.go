// Package spawn places enemies, tracks the live set and bench slots, paces
// waves against advances and resolves loot when enemies die.
package spawn

import (
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/loot"
)

// SpawnRows is how many rows from the top enemies may appear in.
const SpawnRows = 2

// WaveEntry is one enemy kind in a wave. HP > 0 overrides the definition.
type WaveEntry struct {
	Enemy string
	Count int
	HP    int
}

// Wave is a group of enemies spawned together.
type Wave struct {
	Entries []WaveEntry
}

// Settings configures pacing and loot.
type Settings struct {
	Every          int // advances per wave; 0 disables
	IntervalFrames int // frames per wave; 0 disables
	Waves          []Wave
	RoomsPerFloor  int
	BagTile        string // generic loot bag tile id
	DefaultItem    string // item for the synthesized loot table
	HPScale        float64 // multiplier on definition HP; 0 means 1
}

// Director owns the live-enemy set.
type Director struct {
	reg      *entity.Registry
	factory  *entity.Factory
	db       *defs.Database
	opener   *loot.Opener
	bench    *Bench
	bus      *events.Bus
	rng      *rand.Rand
	logger   *log.Logger
	settings Settings

	live     map[board.ID]*entity.Enemy
	floor    int
	room     int
	wave     int
	advances int
	timer    int
}

// NewDirector creates a director at floor 0, room 1.
func NewDirector(reg *entity.Registry, factory *entity.Factory, db *defs.Database, opener *loot.Opener, bench *Bench, bus *events.Bus, rng *rand.Rand, logger *log.Logger, settings Settings) *Director {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if bench == nil {
		bench = NewBench(nil)
	}
	if settings.RoomsPerFloor < 1 {
		settings.RoomsPerFloor = 1
	}
	return &Director{
		reg:      reg,
		factory:  factory,
		db:       db,
		opener:   opener,
		bench:    bench,
		bus:      bus,
		rng:      rng,
		logger:   logger.With("component", "spawn"),
		settings: settings,
		live:     make(map[board.ID]*entity.Enemy),
		room:     1,
	}
}

// Bench returns the slot table.
func (d *Director) Bench() *Bench {
	return d.bench
}

// Floor returns the current floor index, starting at 0.
func (d *Director) Floor() int { return d.floor }

// Room returns the current room number within the floor, starting at 1.
func (d *Director) Room() int { return d.room }

// Wave returns the index of the next wave to spawn.
func (d *Director) Wave() int { return d.wave }

// Advances returns how many advances the director has seen.
func (d *Director) Advances() int { return d.advances }

// SetProgress restores floor, room and wave position.
func (d *Director) SetProgress(floor, room, wave, advances int) {
	d.floor = max(floor, 0)
	d.room = max(room, 1)
	d.wave = max(wave, 0)
	d.advances = max(advances, 0)
}

// Live returns live enemies ordered by id.
func (d *Director) Live() []*entity.Enemy {
	out := make([]*entity.Enemy, 0, len(d.live))
	for _, e := range d.live {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Candidates returns the free cells def may spawn into: the top rows,
// narrowed by the spawn profile. When the profile leaves nothing, the
// unrefined top rows are used.
func (d *Director) Candidates(def *defs.EnemyDef) []*board.Cell {
	grid := d.reg.Grid()
	var base []*board.Cell
	for _, c := range grid.TopRows(SpawnRows) {
		if c.IsEmpty() {
			base = append(base, c)
		}
	}
	if def == nil || len(base) == 0 {
		return base
	}

	p := def.Spawn
	if p.Cell == nil && p.Columns == nil && p.RowFromTop == nil {
		return base
	}
	var refined []*board.Cell
	for _, c := range base {
		if p.Cell != nil && c.Pos != *p.Cell {
			continue
		}
		if p.Columns != nil && !p.Columns.Contains(c.Pos.X) {
			continue
		}
		if p.RowFromTop != nil && c.Pos.Y != grid.H-1-*p.RowFromTop {
			continue
		}
		refined = append(refined, c)
	}
	if len(refined) == 0 {
		return base
	}
	return refined
}

// ResolveHP picks max HP: the override, then the definition scaled by
// floor, then the database fallback, then 1.
func (d *Director) ResolveHP(def *defs.EnemyDef, override int) int {
	if override > 0 {
		return override
	}
	if def != nil {
		if hp := def.ScaledHP(d.floor); hp > 0 {
			if d.settings.HPScale > 0 {
				hp = max(int(math.Round(float64(hp)*d.settings.HPScale)), 1)
			}
			return hp
		}
	}
	if d.db != nil && d.db.FallbackHP > 0 {
		return d.db.FallbackHP
	}
	return 1
}

// SpawnByID spawns the enemy definition with the given id.
func (d *Director) SpawnByID(id string, hpOverride int) (*entity.Enemy, bool) {
	def, ok := d.db.Enemy(id)
	if !ok {
		d.logger.Warn("enemy definition not found", "enemy", id)
		return nil, false
	}
	return d.Spawn(def, hpOverride)
}

// Spawn places a new enemy in a random candidate cell. It returns false
// without touching the board when there is no room.
func (d *Director) Spawn(def *defs.EnemyDef, hpOverride int) (*entity.Enemy, bool) {
	if def == nil {
		d.logger.Warn("spawn without definition")
		return nil, false
	}
	cells := d.Candidates(def)
	if len(cells) == 0 {
		d.logger.Debug("no spawn cell", "enemy", def.ID)
		return nil, false
	}
	cell := cells[d.rng.Intn(len(cells))]

	e, ok := d.factory.NewEnemy(def, d.ResolveHP(def, hpOverride))
	if !ok {
		return nil, false
	}
	if !d.reg.PlaceEnemy(e, cell.Pos) {
		d.reg.RemoveEnemy(e)
		return nil, false
	}
	d.live[e.ID] = e
	d.bench.Reserve(e)

	d.bus.EnemySpawned.Publish(events.EnemySpawned{
		ID:   e.ID,
		Def:  def.ID,
		Pos:  e.Pos,
		HP:   e.HP,
		Boss: e.Boss,
	})
	return e, true
}

// Adopt adds an already placed enemy to the live set, binding it to slot
// when slot >= 0. Used when restoring a run.
func (d *Director) Adopt(e *entity.Enemy, slot int) {
	d.live[e.ID] = e
	if slot >= 0 && d.bench.Assign(e, slot) {
		return
	}
	d.bench.Reserve(e)
}

// SpawnWave spawns the next configured wave. Returns how many enemies were
// placed.
func (d *Director) SpawnWave() int {
	if d.wave >= len(d.settings.Waves) {
		return 0
	}
	w := d.settings.Waves[d.wave]
	d.wave++

	spawned := 0
	for _, entry := range w.Entries {
		for range max(entry.Count, 1) {
			if _, ok := d.SpawnByID(entry.Enemy, entry.HP); ok {
				spawned++
			}
		}
	}
	d.logger.Debug("wave", "index", d.wave-1, "spawned", spawned, "floor", d.floor, "room", d.room)
	return spawned
}

// OnAdvance counts an advance and spawns a wave on cadence.
func (d *Director) OnAdvance() {
	d.advances++
	if d.settings.Every > 0 && d.advances%d.settings.Every == 0 {
		d.SpawnWave()
	}
	d.checkRoomCleared()
}

// Tick runs the frame interval timer.
func (d *Director) Tick() {
	if d.settings.IntervalFrames <= 0 {
		return
	}
	d.timer++
	if d.timer >= d.settings.IntervalFrames {
		d.timer = 0
		d.SpawnWave()
	}
}

// HandleDeath removes a dead enemy, frees its slot and drops its loot.
func (d *Director) HandleDeath(e *entity.Enemy) {
	if _, ok := d.live[e.ID]; !ok {
		return
	}
	delete(d.live, e.ID)
	d.bench.Release(e)

	pos := e.Pos
	d.reg.RemoveEnemy(e)
	d.bus.EnemyDied.Publish(events.EnemyDied{ID: e.ID, Def: e.Def.ID, Pos: pos, Boss: e.Boss})

	d.dropLoot(e.Def, pos)
	d.checkRoomCleared()
}

func (d *Director) dropLoot(def *defs.EnemyDef, pos board.Coord) {
	if def.LootContainer != "" {
		if d.dropContainer(def, pos) {
			return
		}
	}

	table, ok := d.db.LootTable(def.LootTable)
	if !ok {
		table = loot.SingleItem(d.settings.DefaultItem)
	}
	bagDef, ok := d.db.Tile(d.settings.BagTile)
	if !ok {
		d.logger.Warn("loot bag tile not found", "tile", d.settings.BagTile)
		return
	}
	bag, ok := d.opener.NewBag(bagDef, table, 0)
	if !ok {
		return
	}
	if !d.reg.PlaceTile(bag, pos) {
		d.reg.DestroyTile(bag)
	}
}

func (d *Director) dropContainer(def *defs.EnemyDef, pos board.Coord) bool {
	c, ok := d.db.Container(def.LootContainer)
	if !ok {
		d.logger.Warn("loot container not found", "enemy", def.ID, "container", def.LootContainer)
		return false
	}
	tileDef, ok := d.db.Tile(c.Tile)
	if !ok {
		d.logger.Warn("container tile not found", "container", c.ID, "tile", c.Tile)
		return false
	}
	table, ok := d.db.LootTable(c.LootTable)
	if !ok {
		d.logger.Warn("container table not found", "container", c.ID, "table", c.LootTable)
		return false
	}
	bag, ok := d.opener.NewBag(tileDef, table, c.Uses)
	if !ok {
		return false
	}
	if !d.reg.PlaceTile(bag, pos) {
		d.reg.DestroyTile(bag)
		return false
	}
	return true
}

func (d *Director) checkRoomCleared() {
	if len(d.live) > 0 || len(d.settings.Waves) == 0 || d.wave < len(d.settings.Waves) {
		return
	}
	d.logger.Info("room cleared", "floor", d.floor, "room", d.room)
	d.bus.RoomCleared.Publish(events.RoomCleared{Floor: d.floor, Room: d.room})

	d.wave = 0
	d.room++
	if d.room > d.settings.RoomsPerFloor {
		d.room = 1
		d.floor++
	}
}
