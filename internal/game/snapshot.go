package game

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/loot"
	"github.com/vovakirdan/mergecrawl/internal/persist"
)

// Snapshot captures the resumable state of the run. Tiles still in flight
// are not included; settle first when a complete board matters.
func (s *Session) Snapshot() persist.State {
	st := persist.State{
		Version:  persist.Version,
		RunID:    s.RunID,
		Seed:     s.Seed,
		Floor:    s.Director.Floor(),
		Room:     s.Director.Room(),
		Wave:     s.Director.Wave(),
		Meter:    s.Meter.Value(),
		Advances: s.Meter.Advances(),
		Score:    s.stats.Score,
		Kills:    s.stats.Kills,
		Merges:   s.stats.Merges,
	}

	for _, t := range s.Registry.Tiles() {
		if !t.Placed {
			continue
		}
		ts := persist.TileState{Def: t.Def.ID, X: t.Pos.X, Y: t.Pos.Y, Remaining: t.Remaining}
		if t.Table != nil {
			ts.Table = t.Table.ID
		}
		if len(t.Stored) > 0 {
			ts.Stored = make(map[string]int, len(t.Stored))
			for k, v := range t.Stored {
				ts.Stored[k] = v
			}
		}
		st.Tiles = append(st.Tiles, ts)
	}
	for _, e := range s.Director.Live() {
		if !e.Placed || !e.Alive() {
			continue
		}
		st.Enemies = append(st.Enemies, persist.EnemyState{
			Def: e.Def.ID, X: e.Pos.X, Y: e.Pos.Y, HP: e.HP, MaxHP: e.MaxHP, Slot: e.Slot,
		})
	}
	for _, h := range s.Registry.Heroes() {
		st.Heroes = append(st.Heroes, persist.HeroState{
			Def: h.Def.ID, X: h.Pos.X, HP: h.HP, Level: h.Level, Exp: h.Exp, Stamina: h.Stamina,
		})
	}
	return st
}

// RestoreSession rebuilds a run from saved state. Entries whose definition
// no longer exists or whose cell is taken are dropped with a warning.
func RestoreSession(opts Options, st persist.State) (*Session, error) {
	if st.Version != persist.Version {
		return nil, fmt.Errorf("game: cannot restore save version %d", st.Version)
	}
	opts.Seed = st.Seed
	opts.RunID = st.RunID
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	// The RNG position is not saved; advance the stream by progress so a
	// resumed run does not replay the opening rolls.
	s.rng.Seed(st.Seed + int64(st.Advances)*7919)

	for _, hs := range st.Heroes {
		s.restoreHero(hs)
	}
	for _, ts := range st.Tiles {
		s.restoreTile(ts)
	}
	for _, es := range st.Enemies {
		s.restoreEnemy(es)
	}

	s.Meter.Restore(st.Meter, st.Advances)
	if s.Meter.IsFull() {
		// A save taken mid-advance; the advance already ran.
		s.Meter.Reset()
	}
	s.Director.SetProgress(st.Floor, st.Room, st.Wave, st.Advances)
	s.stats = Stats{Score: st.Score, Kills: st.Kills, Merges: st.Merges}
	s.over = s.allDowned()

	s.logger.Info("run restored",
		"floor", st.Floor,
		"room", st.Room,
		"tiles", len(st.Tiles),
		"enemies", len(st.Enemies),
	)
	return s, nil
}

func (s *Session) restoreHero(hs persist.HeroState) {
	def, ok := s.DB.Hero(hs.Def)
	if !ok {
		s.logger.Warn("saved hero no longer defined", "hero", hs.Def)
		return
	}
	h, ok := s.Factory.NewHero(def)
	if !ok {
		return
	}
	if !s.Registry.PlaceHero(h, board.C(hs.X, s.Registry.HeroRow())) {
		s.logger.Warn("saved hero cell unavailable", "hero", hs.Def, "x", hs.X)
		return
	}
	h.Level = max(hs.Level, 1)
	h.Exp = max(hs.Exp, 0)
	h.Stamina = max(0, min(hs.Stamina, h.MaxStamina))
	h.SetHP(hs.HP)
}

func (s *Session) restoreTile(ts persist.TileState) {
	def, ok := s.DB.Tile(ts.Def)
	if !ok {
		s.logger.Warn("saved tile no longer defined", "tile", ts.Def)
		return
	}
	t, ok := s.Factory.NewTile(def)
	if !ok {
		return
	}
	if ts.Table != "" {
		t.Table = s.lootTable(ts.Table)
		t.Remaining = ts.Remaining
	}
	for k, v := range ts.Stored {
		if t.Stored == nil {
			t.Stored = make(map[string]int)
		}
		t.Stored[k] = v
	}
	if !s.Registry.PlaceTile(t, board.C(ts.X, ts.Y)) {
		s.Registry.DestroyTile(t)
		s.logger.Warn("saved tile cell unavailable", "tile", ts.Def, "x", ts.X, "y", ts.Y)
	}
}

func (s *Session) lootTable(id string) *defs.LootTable {
	if item, ok := strings.CutPrefix(id, "single:"); ok {
		return loot.SingleItem(item)
	}
	table, ok := s.DB.LootTable(id)
	if !ok {
		s.logger.Warn("saved loot table no longer defined", "table", id)
		return nil
	}
	return table
}

func (s *Session) restoreEnemy(es persist.EnemyState) {
	def, ok := s.DB.Enemy(es.Def)
	if !ok {
		s.logger.Warn("saved enemy no longer defined", "enemy", es.Def)
		return
	}
	e, ok := s.Factory.NewEnemy(def, es.MaxHP)
	if !ok {
		return
	}
	e.HP = max(1, min(es.HP, e.MaxHP))
	if !s.Registry.PlaceEnemy(e, board.C(es.X, es.Y)) {
		s.Registry.RemoveEnemy(e)
		s.logger.Warn("saved enemy cell unavailable", "enemy", es.Def, "x", es.X, "y", es.Y)
		return
	}
	s.Director.Adopt(e, es.Slot)
}
