package spawn

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/loot"
)

type fixture struct {
	reg      *entity.Registry
	factory  *entity.Factory
	db       *defs.Database
	bus      *events.Bus
	director *Director
}

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T, settings Settings, slots []Slot) *fixture {
	t.Helper()
	db := defs.NewDatabase(nil)
	db.Add(defs.Pack{
		Tiles: []defs.TileDef{
			{ID: "coin", Category: defs.CategoryLoot},
			{ID: "gem", Category: defs.CategoryLoot},
			{ID: "bag", Category: defs.CategoryLootBag},
			{ID: "chest", Category: defs.CategoryLootBag},
			{ID: "wall"},
		},
		Enemies: []defs.EnemyDef{
			{ID: "grunt", BaseHP: 4, LootTable: "gems"},
			{ID: "boss", BaseHP: 10, Boss: true, LootContainer: "big"},
			{ID: "blank"},
			{ID: "left", BaseHP: 1, Spawn: defs.SpawnProfile{Columns: &defs.ColumnRange{Min: 0, Max: 0}}},
			{ID: "top", BaseHP: 1, Spawn: defs.SpawnProfile{RowFromTop: intPtr(0), Columns: &defs.ColumnRange{Min: 2, Max: 2}}},
			{ID: "nowhere", BaseHP: 1, Spawn: defs.SpawnProfile{Cell: &board.Coord{X: 0, Y: 0}}},
		},
		LootTables: []defs.LootTable{
			{ID: "gems", Entries: []defs.LootEntry{{Tile: "gem", Weight: 1}}, MinRolls: 2, MaxRolls: 3},
			{ID: "hoard", Entries: []defs.LootEntry{{Tile: "gem", Weight: 1}}, MinRolls: 1, MaxRolls: 1},
		},
		Containers: []defs.LootContainer{
			{ID: "big", Tile: "chest", LootTable: "hoard", Uses: 4},
		},
	})

	if settings.BagTile == "" {
		settings.BagTile = "bag"
	}
	if settings.DefaultItem == "" {
		settings.DefaultItem = "coin"
	}

	reg := entity.NewRegistry(board.Build(3, 5), 0)
	factory := entity.NewFactory(reg, nil)
	bus := events.NewBus()
	rng := rand.New(rand.NewSource(3))
	opener := loot.NewOpener(reg, factory, db, bus, rng, nil)
	return &fixture{
		reg:      reg,
		factory:  factory,
		db:       db,
		bus:      bus,
		director: NewDirector(reg, factory, db, opener, NewBench(slots), bus, rng, nil, settings),
	}
}

func (f *fixture) fillTopRows(t *testing.T) {
	t.Helper()
	wall, _ := f.db.Tile("wall")
	for _, c := range f.reg.Grid().TopRows(SpawnRows) {
		tile, _ := f.factory.NewTile(wall)
		f.reg.PlaceTile(tile, c.Pos)
	}
}

func TestSpawnFallbackWithNoRoom(t *testing.T) {
	f := newFixture(t, Settings{}, nil)
	f.fillTopRows(t)

	spawned := 0
	f.bus.EnemySpawned.Subscribe(func(events.EnemySpawned) { spawned++ })
	before := f.reg.LastID()

	e, ok := f.director.SpawnByID("grunt", 0)
	if ok || e != nil {
		t.Fatalf("SpawnByID() = (%v, %v), expected absent", e, ok)
	}
	if spawned != 0 {
		t.Error("EnemySpawned should not fire")
	}
	if len(f.reg.Enemies()) != 0 || f.reg.LastID() != before {
		t.Error("failed spawn should not create an enemy")
	}
	if len(f.director.Live()) != 0 {
		t.Error("live set should be empty")
	}
}

func TestSpawnPlacesInTopRows(t *testing.T) {
	f := newFixture(t, Settings{}, nil)
	for range 6 {
		e, ok := f.director.SpawnByID("grunt", 0)
		if !ok {
			t.Fatal("SpawnByID() failed with free top rows")
		}
		if e.Pos.Y < f.reg.Grid().H-SpawnRows {
			t.Errorf("enemy spawned at %v, outside the top rows", e.Pos)
		}
	}
	if _, ok := f.director.SpawnByID("grunt", 0); ok {
		t.Error("seventh spawn should fail on a 3-wide board")
	}
	if bad := f.reg.CheckBindings(); len(bad) != 0 {
		t.Errorf("CheckBindings() = %v", bad)
	}
}

func TestSpawnProfileRefines(t *testing.T) {
	tests := []struct {
		enemy    string
		expected []board.Coord
	}{
		{"left", []board.Coord{{0, 4}, {0, 3}}},
		{"top", []board.Coord{{2, 4}}},
		// Unsatisfiable profile falls back to the whole top band.
		{"nowhere", []board.Coord{{0, 4}, {1, 4}, {2, 4}, {0, 3}, {1, 3}, {2, 3}}},
	}

	for _, tc := range tests {
		t.Run(tc.enemy, func(t *testing.T) {
			f := newFixture(t, Settings{}, nil)
			def, _ := f.db.Enemy(tc.enemy)
			cells := f.director.Candidates(def)
			if len(cells) != len(tc.expected) {
				t.Fatalf("Candidates() = %d cells, expected %d", len(cells), len(tc.expected))
			}
			for i, c := range cells {
				if c.Pos != tc.expected[i] {
					t.Errorf("cell %d = %v, expected %v", i, c.Pos, tc.expected[i])
				}
			}
		})
	}
}

func TestResolveHPChain(t *testing.T) {
	f := newFixture(t, Settings{}, nil)
	grunt, _ := f.db.Enemy("grunt")
	blank, _ := f.db.Enemy("blank")

	if hp := f.director.ResolveHP(grunt, 7); hp != 7 {
		t.Errorf("override: hp = %d, expected 7", hp)
	}
	if hp := f.director.ResolveHP(grunt, 0); hp != 4 {
		t.Errorf("definition: hp = %d, expected 4", hp)
	}
	if hp := f.director.ResolveHP(blank, 0); hp != 1 {
		t.Errorf("hard default: hp = %d, expected 1", hp)
	}
	f.db.FallbackHP = 5
	if hp := f.director.ResolveHP(blank, 0); hp != 5 {
		t.Errorf("database fallback: hp = %d, expected 5", hp)
	}
}

func TestResolveHPScale(t *testing.T) {
	f := newFixture(t, Settings{HPScale: 1.5}, nil)
	grunt, _ := f.db.Enemy("grunt")
	if hp := f.director.ResolveHP(grunt, 0); hp != 6 {
		t.Errorf("scaled: hp = %d, expected 6", hp)
	}
	if hp := f.director.ResolveHP(grunt, 2); hp != 2 {
		t.Errorf("override ignores scale: hp = %d, expected 2", hp)
	}
}

func TestDeathReleasesSlotAndDropsLoot(t *testing.T) {
	slots := []Slot{{Column: 0}, {Column: 1}, {Column: 2}}
	f := newFixture(t, Settings{}, slots)

	e, ok := f.director.SpawnByID("grunt", 0)
	if !ok {
		t.Fatal("SpawnByID() failed")
	}
	if e.Slot != e.Pos.X {
		t.Errorf("slot = %d, expected the one matching column %d", e.Slot, e.Pos.X)
	}

	died := 0
	f.bus.EnemyDied.Subscribe(func(events.EnemyDied) { died++ })

	pos := e.Pos
	e.Kill()
	f.director.HandleDeath(e)
	f.director.HandleDeath(e)

	if died != 1 {
		t.Errorf("EnemyDied fired %d times, expected 1", died)
	}
	if f.director.Bench().Occupied() != 0 || e.Slot != -1 {
		t.Error("slot should be released")
	}
	bag, ok := f.reg.TileAt(pos)
	if !ok || bag.Def.ID != "bag" {
		t.Fatalf("expected generic bag at %v", pos)
	}
	if bag.Table == nil || bag.Table.ID != "gems" {
		t.Errorf("bag table = %v, expected gems", bag.Table)
	}
	if bag.Remaining < 2 || bag.Remaining > 3 {
		t.Errorf("Remaining = %d, expected pre-rolled in [2,3]", bag.Remaining)
	}
}

func TestDeathLootPriority(t *testing.T) {
	tests := []struct {
		enemy     string
		tile      string
		table     string
		remaining int
	}{
		{"boss", "chest", "hoard", 4},
		{"blank", "bag", "single:coin", 1},
	}

	for _, tc := range tests {
		t.Run(tc.enemy, func(t *testing.T) {
			f := newFixture(t, Settings{}, nil)
			e, ok := f.director.SpawnByID(tc.enemy, 0)
			if !ok {
				t.Fatal("SpawnByID() failed")
			}
			pos := e.Pos
			e.Kill()
			f.director.HandleDeath(e)

			bag, ok := f.reg.TileAt(pos)
			if !ok {
				t.Fatalf("no loot at %v", pos)
			}
			if bag.Def.ID != tc.tile || bag.Table.ID != tc.table || bag.Remaining != tc.remaining {
				t.Errorf("loot = %s/%s/%d, expected %s/%s/%d",
					bag.Def.ID, bag.Table.ID, bag.Remaining, tc.tile, tc.table, tc.remaining)
			}
		})
	}
}

func TestWaveCadenceAndRoomClear(t *testing.T) {
	settings := Settings{
		Every: 2,
		Waves: []Wave{
			{Entries: []WaveEntry{{Enemy: "grunt", Count: 2}}},
			{Entries: []WaveEntry{{Enemy: "blank", HP: 3}}},
		},
		RoomsPerFloor: 2,
	}
	f := newFixture(t, settings, nil)

	var cleared []events.RoomCleared
	f.bus.RoomCleared.Subscribe(func(ev events.RoomCleared) { cleared = append(cleared, ev) })

	f.director.OnAdvance()
	if len(f.director.Live()) != 0 {
		t.Fatal("wave spawned before cadence")
	}
	f.director.OnAdvance()
	if len(f.director.Live()) != 2 {
		t.Fatalf("Live() = %d after first wave, expected 2", len(f.director.Live()))
	}
	f.director.OnAdvance()
	f.director.OnAdvance()
	live := f.director.Live()
	if len(live) != 3 {
		t.Fatalf("Live() = %d after second wave, expected 3", len(live))
	}
	if live[2].MaxHP != 3 {
		t.Errorf("override HP = %d, expected 3", live[2].MaxHP)
	}

	for _, e := range live {
		e.Kill()
		f.director.HandleDeath(e)
	}
	if len(cleared) != 1 || cleared[0].Room != 1 || cleared[0].Floor != 0 {
		t.Fatalf("cleared = %+v, expected room 1 of floor 0", cleared)
	}
	if f.director.Room() != 2 || f.director.Wave() != 0 {
		t.Errorf("room=%d wave=%d, expected room 2 wave 0", f.director.Room(), f.director.Wave())
	}

	f.director.SetProgress(0, 2, 2, 0)
	f.director.OnAdvance()
	if f.director.Floor() != 1 || f.director.Room() != 1 {
		t.Errorf("floor=%d room=%d, expected floor 1 room 1", f.director.Floor(), f.director.Room())
	}
}

func TestIntervalTimer(t *testing.T) {
	settings := Settings{
		IntervalFrames: 3,
		Waves:          []Wave{{Entries: []WaveEntry{{Enemy: "grunt"}}}},
	}
	f := newFixture(t, settings, nil)

	f.director.Tick()
	f.director.Tick()
	if len(f.director.Live()) != 0 {
		t.Fatal("spawned before interval elapsed")
	}
	f.director.Tick()
	if len(f.director.Live()) != 1 {
		t.Errorf("Live() = %d, expected 1", len(f.director.Live()))
	}
}

func TestBenchLocking(t *testing.T) {
	b := NewBench([]Slot{{Column: 0, Locked: true}, {Column: 1}})
	reg := entity.NewRegistry(board.Build(2, 2), 0)
	factory := entity.NewFactory(reg, nil)
	e1, _ := factory.NewEnemy(&defs.EnemyDef{ID: "e"}, 1)
	e2, _ := factory.NewEnemy(&defs.EnemyDef{ID: "e"}, 1)

	if i := b.Reserve(e1); i != 1 {
		t.Errorf("Reserve() = %d, expected 1 (slot 0 locked)", i)
	}
	if i := b.Reserve(e2); i != -1 {
		t.Errorf("Reserve() = %d, expected -1 with no free slot", i)
	}
	b.Release(e1)
	b.SetLocked(0, false)
	if i := b.Reserve(e2); i != 0 {
		t.Errorf("Reserve() = %d, expected 0 after unlock", i)
	}
	info, ok := b.SlotOf(e2)
	if !ok || info.Column != 0 {
		t.Errorf("SlotOf() = %+v, %v", info, ok)
	}
}
