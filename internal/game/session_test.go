package game

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/config"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/persist"
)

func testConfig() config.GameConfig {
	cfg := config.DefaultGameConfig()
	cfg.Heroes = []string{"knight"}
	cfg.Starting = nil
	cfg.Spawn.Every = 1000
	cfg.Spawn.Slots = nil
	return cfg
}

func newTestSession(t *testing.T, mutate func(*config.GameConfig)) *Session {
	t.Helper()
	db := defs.NewDatabase(nil)
	if err := defs.Open(db, ""); err != nil {
		t.Fatalf("defs.Open() failed: %v", err)
	}
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(Options{Config: cfg, DB: db, Seed: 7})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s
}

func placeTile(t *testing.T, s *Session, id string, x, y int) *entity.Tile {
	t.Helper()
	def, ok := s.DB.Tile(id)
	if !ok {
		t.Fatalf("unknown tile %q", id)
	}
	tile, ok := s.placeNewTile(def, board.C(x, y))
	if !ok {
		t.Fatalf("placing %s at %d,%d failed", id, x, y)
	}
	return tile
}

func placeEnemy(t *testing.T, s *Session, id string, hp, x, y int) *entity.Enemy {
	t.Helper()
	def, ok := s.DB.Enemy(id)
	if !ok {
		t.Fatalf("unknown enemy %q", id)
	}
	e, _ := s.Factory.NewEnemy(def, hp)
	if !s.Registry.PlaceEnemy(e, board.C(x, y)) {
		t.Fatalf("placing %s at %d,%d failed", id, x, y)
	}
	s.Director.Adopt(e, -1)
	return e
}

// placeHeroes puts the configured heroes on the board without spawning a wave.
func placeHeroes(t *testing.T, s *Session) {
	t.Helper()
	for _, id := range s.Config().Heroes {
		if _, ok := s.placeHero(id); !ok {
			t.Fatalf("placing hero %s failed", id)
		}
	}
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()
	if bad := s.Registry.CheckBindings(); len(bad) > 0 {
		t.Errorf("binding violations at %v", bad)
	}
}

func TestNewSessionRequiresDatabase(t *testing.T) {
	if _, err := NewSession(Options{}); err == nil {
		t.Error("expected error without a database")
	}
}

func TestStartPopulatesBoard(t *testing.T) {
	s := newTestSession(t, func(cfg *config.GameConfig) {
		cfg.Heroes = []string{"knight", "ranger"}
		cfg.Starting = []string{"spark", "twig", "berry"}
	})
	s.Start()

	heroes := s.Registry.Heroes()
	if len(heroes) != 2 {
		t.Fatalf("expected 2 heroes, got %d", len(heroes))
	}
	if heroes[0].Pos != board.C(1, 0) || heroes[1].Pos != board.C(3, 0) {
		t.Errorf("heroes at %v and %v, expected their preferred columns", heroes[0].Pos, heroes[1].Pos)
	}
	if n := s.Registry.TileCount(); n != 3 {
		t.Errorf("expected 3 starting tiles, got %d", n)
	}
	if len(s.Director.Live()) == 0 {
		t.Error("expected the first wave to spawn")
	}
	for _, e := range s.Director.Live() {
		if e.Pos.Y < s.Grid.H-2 {
			t.Errorf("enemy spawned at %v, outside the top rows", e.Pos)
		}
	}
	checkInvariants(t, s)
}

func TestDropMoveAndReject(t *testing.T) {
	s := newTestSession(t, nil)
	placeTile(t, s, "twig", 0, 2)
	placeTile(t, s, "berry", 2, 2)
	placeEnemy(t, s, "goblin", 2, 4, 4)

	tests := []struct {
		name     string
		from, to board.Coord
		want     DropResult
	}{
		{"empty source", board.C(1, 1), board.C(1, 2), DropRejected},
		{"same cell", board.C(0, 2), board.C(0, 2), DropRejected},
		{"onto enemy", board.C(0, 2), board.C(4, 4), DropRejected},
		{"off board", board.C(0, 2), board.C(9, 9), DropRejected},
		{"different kind", board.C(0, 2), board.C(2, 2), DropRejected},
		{"to empty cell", board.C(0, 2), board.C(0, 3), DropMoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Drop(tt.from, tt.to); got != tt.want {
				t.Errorf("Drop(%v, %v) = %v, expected %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
	if tile, ok := s.Registry.TileAt(board.C(0, 3)); !ok || tile.Def.ID != "twig" {
		t.Error("expected twig to have moved to (0,3)")
	}
	checkInvariants(t, s)
}

func TestDropMergesAndScores(t *testing.T) {
	s := newTestSession(t, nil)
	placeTile(t, s, "twig", 0, 2)
	placeTile(t, s, "dry_twig", 1, 2)
	placeTile(t, s, "twig", 4, 5)

	var completed []events.MergeCompleted
	s.Bus.MergeCompleted.Subscribe(func(ev events.MergeCompleted) { completed = append(completed, ev) })

	if got := s.Drop(board.C(4, 5), board.C(0, 2)); got != DropMerged {
		t.Fatalf("Drop() = %v, expected merged", got)
	}
	if !s.Busy() {
		t.Error("expected merge animation to be running")
	}
	s.Settle()

	if len(completed) != 1 || completed[0].Output != "plank" {
		t.Fatalf("expected one plank merge, got %+v", completed)
	}
	if tile, ok := s.Registry.TileAt(board.C(0, 2)); !ok || tile.Def.ID != "plank" {
		t.Error("expected plank at the anchor")
	}
	if n := s.Registry.TileCount(); n != 1 {
		t.Errorf("expected 1 tile after merge, got %d", n)
	}
	st := s.Stats()
	if st.Merges != 1 || st.Score != 3*scorePerMerged {
		t.Errorf("stats = %+v", st)
	}
	checkInvariants(t, s)
}

func TestUseAbilityKillsAndDropsLoot(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	bolt := placeTile(t, s, "bolt", 0, 2)
	goblin := placeEnemy(t, s, "goblin", 2, 2, 5)
	knight := s.Registry.Heroes()[0]
	stamina := knight.Stamina

	var damage []events.DamageDealt
	s.Bus.DamageDealt.Subscribe(func(ev events.DamageDealt) { damage = append(damage, ev) })

	if !s.UseAbility(bolt.Pos, goblin.Pos) {
		t.Fatal("UseAbility() failed")
	}
	if goblin.Alive() {
		t.Error("expected goblin to die")
	}
	if len(damage) != 1 || damage[0].Amount != 2 || damage[0].Source != "bolt" {
		t.Errorf("damage events = %+v", damage)
	}
	if _, ok := s.Registry.Tile(bolt.ID); ok {
		t.Error("ability tile should be consumed")
	}
	bag, ok := s.Registry.TileAt(board.C(2, 5))
	if !ok || bag.Def.Category != defs.CategoryLootBag || bag.Remaining < 1 {
		t.Errorf("expected a loot bag at the vacated cell, got %+v", bag)
	}
	if knight.Stamina != stamina-1 {
		t.Errorf("stamina = %d, expected %d", knight.Stamina, stamina-1)
	}
	if s.Meter.Value() != 1 {
		t.Errorf("meter = %d, expected 1", s.Meter.Value())
	}
	if !s.Runner.Frozen() {
		t.Error("expected a hit-stop after a kill")
	}
	if s.Stats().Kills != 1 {
		t.Errorf("kills = %d, expected 1", s.Stats().Kills)
	}
	checkInvariants(t, s)
}

func TestUseAbilityRejections(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	twig := placeTile(t, s, "twig", 0, 2)
	spark := placeTile(t, s, "spark", 1, 2)
	goblin := placeEnemy(t, s, "goblin", 2, 4, 4)

	if s.UseAbility(twig.Pos, goblin.Pos) {
		t.Error("non-ability tile should be rejected")
	}
	if s.UseAbility(spark.Pos, board.C(0, 4)) {
		t.Error("empty target should be rejected")
	}

	knight := s.Registry.Heroes()[0]
	knight.Stamina = 0
	if s.UseAbility(spark.Pos, goblin.Pos) {
		t.Error("a hero without stamina cannot act")
	}
	if s.Meter.Value() != 0 {
		t.Errorf("meter moved on rejected actions: %d", s.Meter.Value())
	}
}

func TestUseAbilityCrossArea(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	storm := placeTile(t, s, "storm", 0, 1)
	center := placeEnemy(t, s, "brute", 9, 2, 4)
	left := placeEnemy(t, s, "brute", 9, 1, 4)
	above := placeEnemy(t, s, "brute", 9, 2, 5)
	far := placeEnemy(t, s, "brute", 9, 4, 4)

	if !s.UseAbility(storm.Pos, center.Pos) {
		t.Fatal("UseAbility() failed")
	}
	for _, e := range []*entity.Enemy{center, left, above} {
		if e.HP != 5 {
			t.Errorf("enemy at %v hp = %d, expected 5", e.Pos, e.HP)
		}
	}
	if far.HP != 9 {
		t.Errorf("enemy outside the cross was hit: hp = %d", far.HP)
	}
}

func TestUseAbilityCleave(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	cleaver := placeTile(t, s, "cleaver", 0, 1)
	ogre := placeEnemy(t, s, "ogre", 30, 3, 5)

	if !s.UseAbility(cleaver.Pos, ogre.Pos) {
		t.Fatal("UseAbility() failed")
	}
	if ogre.Alive() {
		t.Error("cleave should kill outright")
	}
	chest, ok := s.Registry.TileAt(board.C(3, 5))
	if !ok || chest.Def.ID != "chest" || chest.Remaining != 3 {
		t.Errorf("expected a 3-use chest, got %+v", chest)
	}
	if s.Stats().Score < scoreBossKill {
		t.Errorf("score = %d, expected boss bonus", s.Stats().Score)
	}
}

func TestAdvancePipeline(t *testing.T) {
	s := newTestSession(t, func(cfg *config.GameConfig) {
		cfg.Turn.Threshold = 2
	})
	placeHeroes(t, s)
	goblin := placeEnemy(t, s, "goblin", 50, 0, 6)
	placeTile(t, s, "spark", 0, 1)
	placeTile(t, s, "spark", 4, 1)
	target := placeEnemy(t, s, "brute", 50, 4, 6)

	var advances []int
	s.Bus.AdvanceFired.Subscribe(func(ev events.AdvanceFired) { advances = append(advances, ev.Count) })

	s.UseAbility(board.C(0, 1), target.Pos)
	s.Settle()
	if goblin.Pos != board.C(0, 6) {
		t.Errorf("enemy moved before the meter filled: %v", goblin.Pos)
	}
	s.UseAbility(board.C(4, 1), target.Pos)
	s.Settle()

	if len(advances) != 1 {
		t.Fatalf("expected one advance, got %v", advances)
	}
	if goblin.Pos != board.C(0, 5) {
		t.Errorf("goblin at %v, expected one step down", goblin.Pos)
	}
	if s.Meter.Value() != 0 || s.Meter.IsFull() {
		t.Errorf("meter = %d after advance, expected reset", s.Meter.Value())
	}
	if s.Director.Advances() != 1 {
		t.Errorf("director saw %d advances, expected 1", s.Director.Advances())
	}
	checkInvariants(t, s)
}

func TestFeed(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	knight := s.Registry.Heroes()[0]
	knight.SetHP(3)
	pie := placeTile(t, s, "pie", 0, 2)
	twig := placeTile(t, s, "twig", 1, 2)

	if s.Feed(twig.Pos, knight.Pos) {
		t.Error("non-food should be rejected")
	}
	if s.Feed(pie.Pos, board.C(4, 4)) {
		t.Error("feeding an empty cell should be rejected")
	}
	if !s.Feed(pie.Pos, knight.Pos) {
		t.Fatal("Feed() failed")
	}
	if knight.HP != 7 {
		t.Errorf("hp = %d, expected 7", knight.HP)
	}
	if _, ok := s.Registry.Tile(pie.ID); ok {
		t.Error("food should be consumed")
	}
}

func TestMergeAnchorLockedForOtherActions(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	knight := s.Registry.Heroes()[0]
	knight.SetHP(3)
	exp := knight.Exp
	placeTile(t, s, "berry", 2, 3)
	placeTile(t, s, "berry", 3, 3)
	placeTile(t, s, "berry", 2, 4)
	placeTile(t, s, "berry", 0, 4)
	twig := placeTile(t, s, "twig", 4, 4)
	anchor := board.C(2, 3)

	if got := s.Drop(board.C(0, 4), anchor); got != DropMerged {
		t.Fatalf("Drop() = %v, expected merged", got)
	}
	if !s.Busy() {
		t.Fatal("merge should still be animating")
	}

	if s.Feed(anchor, knight.Pos) {
		t.Error("Feed() accepted the anchor of a running merge")
	}
	if got := s.Drop(anchor, board.C(4, 1)); got != DropRejected {
		t.Errorf("moving the anchor = %v, expected rejected", got)
	}
	if got := s.Drop(twig.Pos, anchor); got != DropRejected {
		t.Errorf("dropping onto the anchor = %v, expected rejected", got)
	}
	if s.Tap(anchor) {
		t.Error("Tap() accepted the anchor of a running merge")
	}
	if knight.Exp != exp || knight.HP != 3 {
		t.Errorf("knight exp/hp = %d/%d, expected %d/3", knight.Exp, knight.HP, exp)
	}

	s.Settle()
	if tile, ok := s.Registry.TileAt(anchor); !ok || tile.Def.ID != "pie" {
		t.Fatalf("anchor cell after merge = %v, expected pie", tile)
	}
	// Four berries, three consumed: pie, the leftover berry and the twig.
	if n := s.Registry.TileCount(); n != 3 {
		t.Errorf("TileCount() = %d, expected 3", n)
	}

	// The output is a free tile again.
	if !s.Feed(anchor, knight.Pos) {
		t.Error("Feed() should accept the merge output")
	}
	checkInvariants(t, s)
}

func TestAbilityAnchorLocked(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	placeTile(t, s, "spark", 0, 2)
	placeTile(t, s, "spark", 1, 2)
	placeTile(t, s, "spark", 4, 1)
	goblin := placeEnemy(t, s, "goblin", 2, 4, 5)
	anchor := board.C(0, 2)

	if got := s.Drop(board.C(4, 1), anchor); got != DropMerged {
		t.Fatalf("Drop() = %v, expected merged", got)
	}
	if s.UseAbility(anchor, goblin.Pos) {
		t.Error("UseAbility() accepted the anchor of a running merge")
	}
	if goblin.HP != 2 || s.Meter.Value() != 0 {
		t.Errorf("goblin hp %d, meter %d; expected 2, 0", goblin.HP, s.Meter.Value())
	}

	s.Settle()
	if tile, ok := s.Registry.TileAt(anchor); !ok || tile.Def.ID != "bolt" {
		t.Fatalf("anchor cell after merge = %v, expected bolt", tile)
	}
	if !s.UseAbility(anchor, goblin.Pos) {
		t.Error("UseAbility() should accept the merge output")
	}
}

func TestStationCrafting(t *testing.T) {
	s := newTestSession(t, nil)
	forge := placeTile(t, s, "forge", 2, 3)
	placeTile(t, s, "plank", 0, 2)
	placeTile(t, s, "plank", 4, 2)
	placeTile(t, s, "twig", 0, 4)

	if got := s.Drop(board.C(0, 4), forge.Pos); got != DropRejected {
		t.Errorf("non-input deposit = %v, expected rejected", got)
	}
	if got := s.Drop(board.C(0, 2), forge.Pos); got != DropDeposited {
		t.Fatalf("first plank = %v, expected deposited", got)
	}
	if forge.Stored["plank"] != 1 {
		t.Errorf("stored = %v", forge.Stored)
	}
	if got := s.Drop(board.C(4, 2), forge.Pos); got != DropCrafted {
		t.Fatalf("second plank = %v, expected crafted", got)
	}
	if len(forge.Stored) != 0 {
		t.Errorf("station should be emptied after crafting, got %v", forge.Stored)
	}
	if bolt, ok := s.Registry.TileAt(board.C(4, 2)); !ok || bolt.Def.ID != "bolt" {
		t.Error("expected the bolt where the last input came from")
	}
	checkInvariants(t, s)
}

func TestTapAndSpawnTile(t *testing.T) {
	s := newTestSession(t, nil)
	chest, ok := s.SpawnTile("chest")
	if !ok {
		t.Fatal("SpawnTile(chest) failed")
	}
	if chest.Table == nil || chest.Remaining != 3 {
		t.Fatalf("spawned chest not prepared: %+v", chest)
	}
	before := s.Registry.TileCount()
	if !s.Tap(chest.Pos) {
		t.Fatal("Tap() failed")
	}
	if s.Registry.TileCount() != before+1 || chest.Remaining != 2 {
		t.Errorf("expected one item out, count=%d remaining=%d", s.Registry.TileCount(), chest.Remaining)
	}
	if _, ok := s.SpawnTile("nope"); ok {
		t.Error("unknown tile should fail")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newTestSession(t, func(cfg *config.GameConfig) {
		cfg.Spawn.Slots = []config.SlotConfig{{Column: 2}}
	})
	s.Start()
	placeTile(t, s, "plank", 0, 2)
	forge := placeTile(t, s, "forge", 1, 2)
	s.Drop(board.C(0, 2), forge.Pos)
	chest, _ := s.SpawnTile("chest")
	s.Tap(chest.Pos)
	s.Settle()

	st := s.Snapshot()
	store, err := persist.NewFileStore(filepath.Join(t.TempDir(), "run.yaml"), nil)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	loaded, ok := store.Load(context.Background())
	if !ok {
		t.Fatal("Load() failed")
	}

	r, err := RestoreSession(Options{Config: s.Config(), DB: s.DB}, loaded)
	if err != nil {
		t.Fatalf("RestoreSession() failed: %v", err)
	}
	if r.RunID != s.RunID || r.Seed != s.Seed {
		t.Errorf("identity mismatch: %s/%d vs %s/%d", r.RunID, r.Seed, s.RunID, s.Seed)
	}
	if r.Registry.TileCount() != s.Registry.TileCount() {
		t.Errorf("tiles = %d, expected %d", r.Registry.TileCount(), s.Registry.TileCount())
	}
	if len(r.Director.Live()) != len(s.Director.Live()) {
		t.Errorf("enemies = %d, expected %d", len(r.Director.Live()), len(s.Director.Live()))
	}
	if r.Director.Bench().Occupied() != s.Director.Bench().Occupied() {
		t.Errorf("bench occupancy = %d, expected %d", r.Director.Bench().Occupied(), s.Director.Bench().Occupied())
	}
	rf, ok := r.Registry.TileAt(forge.Pos)
	if !ok || rf.Stored["plank"] != 1 {
		t.Errorf("station contents lost: %+v", rf)
	}
	rc, ok := r.Registry.TileAt(chest.Pos)
	if !ok || rc.Remaining != chest.Remaining || rc.Table == nil {
		t.Errorf("chest state lost: %+v", rc)
	}

	again := r.Snapshot()
	if len(again.Tiles) != len(st.Tiles) || len(again.Heroes) != len(st.Heroes) {
		t.Errorf("second snapshot differs: %d/%d tiles, %d/%d heroes",
			len(again.Tiles), len(st.Tiles), len(again.Heroes), len(st.Heroes))
	}
	checkInvariants(t, r)
}

func TestRestoreRejectsVersion(t *testing.T) {
	s := newTestSession(t, nil)
	st := s.Snapshot()
	st.Version = 0
	if _, err := RestoreSession(Options{Config: s.Config(), DB: s.DB}, st); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestHeroesDownedEndsRun(t *testing.T) {
	s := newTestSession(t, nil)
	placeHeroes(t, s)
	knight := s.Registry.Heroes()[0]
	knight.SetHP(1)
	placeEnemy(t, s, "goblin", 5, knight.Pos.X, 1)

	s.Meter.SetThreshold(1)
	spark := placeTile(t, s, "spark", 4, 3)
	other := placeEnemy(t, s, "goblin", 5, 4, 6)
	s.UseAbility(spark.Pos, other.Pos)

	if !s.Over() {
		t.Fatal("expected the run to end when the last hero is downed")
	}
	if s.UseAbility(board.C(0, 0), other.Pos) || s.Tap(board.C(0, 0)) {
		t.Error("entry points should refuse input after the run ends")
	}
}
