package game

import (
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
)

// DropResult says what a drop did. DropRejected leaves the board unchanged
// and the caller puts the tile back.
type DropResult int

const (
	DropRejected DropResult = iota
	DropMoved
	DropMerged
	DropDeposited
	DropCrafted
)

func (r DropResult) String() string {
	switch r {
	case DropMoved:
		return "moved"
	case DropMerged:
		return "merged"
	case DropDeposited:
		return "deposited"
	case DropCrafted:
		return "crafted"
	default:
		return "rejected"
	}
}

// Drop moves the tile at from onto to. An empty cell takes the tile; a
// station accepts recipe inputs; any other tile is a merge attempt.
func (s *Session) Drop(from, to board.Coord) DropResult {
	if s.over || from == to {
		return DropRejected
	}
	src, ok := s.freeTileAt(from)
	if !ok {
		return DropRejected
	}
	cell, ok := s.Grid.At(to)
	if !ok {
		return DropRejected
	}
	if cell.IsEmpty() {
		if s.Registry.MoveTile(src, to) {
			return DropMoved
		}
		return DropRejected
	}
	if cell.Tile == 0 {
		return DropRejected
	}
	target, ok := s.Registry.Tile(cell.Tile)
	if !ok || s.Merge.Locked(target.ID) {
		return DropRejected
	}
	if target.Def.Category == defs.CategoryStation && target.Def != src.Def {
		return s.deposit(src, target)
	}
	if _, ok := s.Merge.Resolve(src, target); ok {
		return DropMerged
	}
	return DropRejected
}

// deposit stores src in station when its recipe still needs it, and crafts
// once every input is stored.
func (s *Session) deposit(src, station *entity.Tile) DropResult {
	if s.Merge.Locked(src.ID) || s.Merge.Locked(station.ID) {
		return DropRejected
	}
	recipe, ok := s.DB.Recipe(station.Def.Recipe)
	if !ok {
		s.logger.Warn("station without recipe", "tile", station.Def.ID, "recipe", station.Def.Recipe)
		return DropRejected
	}
	need := recipe.Inputs[src.Def.ID]
	if need <= 0 || station.Stored[src.Def.ID] >= need {
		return DropRejected
	}

	origin := src.Pos
	s.destroyTile(src, "crafted")
	station.Stored[src.Def.ID]++

	for id, n := range recipe.Inputs {
		if station.Stored[id] < n {
			return DropDeposited
		}
	}
	for id, n := range recipe.Inputs {
		station.Stored[id] -= n
		if station.Stored[id] <= 0 {
			delete(station.Stored, id)
		}
	}
	s.craft(recipe, origin)
	return DropCrafted
}

func (s *Session) craft(recipe *defs.Recipe, origin board.Coord) {
	def, ok := s.DB.Tile(recipe.Output)
	if !ok {
		s.logger.Warn("recipe output not found", "recipe", recipe.ID, "tile", recipe.Output)
		return
	}
	for i := range max(recipe.OutputCount, 1) {
		at := origin
		if cell, ok := s.Grid.At(at); i > 0 || !ok || !cell.IsEmpty() {
			empty := s.Grid.CollectEmptyCells()
			if len(empty) == 0 {
				s.logger.Debug("no room for crafted tile", "tile", def.ID)
				return
			}
			at = empty[s.rng.Intn(len(empty))].Pos
		}
		s.placeNewTile(def, at)
	}
}

// UseAbility uses the ability tile at tileAt on the enemy at enemyAt. A
// standing hero spends one stamina; the tile is consumed and the advance
// meter ticks.
func (s *Session) UseAbility(tileAt, enemyAt board.Coord) bool {
	if s.over {
		return false
	}
	tile, ok := s.freeTileAt(tileAt)
	if !ok || tile.Def.Category != defs.CategoryAbility {
		return false
	}
	ability := tile.Def.Ability
	if !ability.CanAttack && !ability.Cleave {
		return false
	}
	target, ok := s.Registry.EnemyAt(enemyAt)
	if !ok || !target.Alive() {
		return false
	}
	hero, ok := s.actingHero(enemyAt.X)
	if !ok {
		return false
	}
	if hero.MaxStamina > 0 && !hero.SpendStamina() {
		return false
	}

	targets := []*entity.Enemy{target}
	if ability.Area == defs.AreaCross {
		for _, c := range s.Grid.Neighbors4(enemyAt) {
			if e, ok := s.Registry.EnemyAt(c.Pos); ok && e.Alive() {
				targets = append(targets, e)
			}
		}
	}

	var died []*entity.Enemy
	for _, e := range targets {
		pos := e.Pos
		var dealt int
		var dead bool
		if ability.Cleave {
			dealt = e.HP
			dead = e.Kill()
		} else {
			dealt, dead = e.Damage(ability.Damage)
		}
		s.Bus.DamageDealt.Publish(events.DamageDealt{
			Target: e.ID,
			Kind:   events.TargetEnemy,
			Pos:    pos,
			Amount: dealt,
			Source: tile.Def.ID,
		})
		if dead {
			died = append(died, e)
		}
	}
	if len(died) > 0 && s.cfg.Anim.HitStopFrames > 0 {
		s.Bus.HitStop.Publish(events.HitStop{Frames: s.cfg.Anim.HitStopFrames})
	}

	s.destroyTile(tile, "ability")
	for _, e := range died {
		s.Director.HandleDeath(e)
	}
	s.Meter.Increment()
	return true
}

// actingHero picks the standing hero in column x, else the first standing
// hero with stamina left.
func (s *Session) actingHero(x int) (*entity.Hero, bool) {
	var fallback *entity.Hero
	for _, h := range s.Registry.Heroes() {
		if h.Downed() {
			continue
		}
		if h.Pos.X == x && (h.MaxStamina == 0 || h.Stamina > 0) {
			return h, true
		}
		if fallback == nil && (h.MaxStamina == 0 || h.Stamina > 0) {
			fallback = h
		}
	}
	return fallback, fallback != nil
}

// Feed gives the food tile at tileAt to the hero at heroAt.
func (s *Session) Feed(tileAt, heroAt board.Coord) bool {
	if s.over {
		return false
	}
	tile, ok := s.freeTileAt(tileAt)
	if !ok || tile.Def.Category != defs.CategoryFood {
		return false
	}
	hero, ok := s.Registry.HeroAt(heroAt)
	if !ok {
		return false
	}
	levels, ok := hero.Feed(tile.Def.Feed)
	if !ok {
		return false
	}
	if levels > 0 {
		s.logger.Info("hero levelled", "hero", hero.Def.ID, "level", hero.Level)
	}
	s.destroyTile(tile, "fed")
	return true
}

// Tap opens the loot bag at at.
func (s *Session) Tap(at board.Coord) bool {
	if s.over {
		return false
	}
	bag, ok := s.freeTileAt(at)
	if !ok {
		return false
	}
	return s.Loot.Activate(bag)
}

// SpawnTile drops a new tile of the given definition into a random empty
// cell.
func (s *Session) SpawnTile(id string) (*entity.Tile, bool) {
	def, ok := s.DB.Tile(id)
	if !ok {
		s.logger.Warn("tile definition not found", "tile", id)
		return nil, false
	}
	empty := s.Grid.CollectEmptyCells()
	if len(empty) == 0 {
		return nil, false
	}
	return s.placeNewTile(def, empty[s.rng.Intn(len(empty))].Pos)
}

// freeTileAt returns the tile at c unless it anchors a merge still in flight.
func (s *Session) freeTileAt(c board.Coord) (*entity.Tile, bool) {
	t, ok := s.Registry.TileAt(c)
	if !ok || s.Merge.Locked(t.ID) {
		return nil, false
	}
	return t, true
}

func (s *Session) placeNewTile(def *defs.TileDef, at board.Coord) (*entity.Tile, bool) {
	t, ok := s.Factory.NewTile(def)
	if !ok {
		return nil, false
	}
	s.Loot.Prepare(t)
	if !s.Registry.PlaceTile(t, at) {
		s.Registry.DestroyTile(t)
		return nil, false
	}
	return t, true
}

func (s *Session) destroyTile(t *entity.Tile, reason string) {
	pos := t.Pos
	if !s.Registry.DestroyTile(t) {
		return
	}
	s.Bus.TileDestroyed.Publish(events.TileDestroyed{
		ID:     t.ID,
		Def:    t.Def.ID,
		Pos:    pos,
		Reason: reason,
	})
}
