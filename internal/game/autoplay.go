package game

import (
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/merge"
)

// AutoStep plays one greedy action and settles the board. It returns a short
// label for the action, or false when nothing is playable.
//
// Priority: heal a hero under half HP, merge, attack the lowest enemy, then
// open a loot bag.
func (s *Session) AutoStep() (string, bool) {
	if s.over {
		return "", false
	}
	defer s.Settle()

	tiles := s.placedTiles()

	if food, hero := s.autoFeedTarget(tiles); food != nil {
		if s.Feed(food.Pos, hero.Pos) {
			return "feed " + food.Def.ID, true
		}
	}
	for _, src := range tiles {
		for _, dst := range tiles {
			if src == dst || !merge.SameBucket(src.Def, dst.Def) {
				continue
			}
			if _, ok := s.Merge.Plan(src, dst); !ok {
				continue
			}
			if s.Drop(src.Pos, dst.Pos) == DropMerged {
				return "merge " + dst.Def.ID, true
			}
		}
	}
	if ability, target := s.autoAttack(tiles); ability != nil {
		if s.UseAbility(ability.Pos, target.Pos) {
			return "attack " + target.Def.ID, true
		}
	}
	for _, t := range tiles {
		if t.Def.Category == defs.CategoryLootBag && t.Remaining > 0 && s.Tap(t.Pos) {
			return "open " + t.Def.ID, true
		}
	}
	return "", false
}

func (s *Session) placedTiles() []*entity.Tile {
	all := s.Registry.Tiles()
	out := all[:0]
	for _, t := range all {
		if t.Placed {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) autoFeedTarget(tiles []*entity.Tile) (*entity.Tile, *entity.Hero) {
	var hurt *entity.Hero
	for _, h := range s.Registry.Heroes() {
		if h.Downed() || h.HP*2 >= h.MaxHP {
			continue
		}
		if hurt == nil || h.HP < hurt.HP {
			hurt = h
		}
	}
	if hurt == nil {
		return nil, nil
	}
	for _, t := range tiles {
		if t.Def.Category == defs.CategoryFood {
			return t, hurt
		}
	}
	return nil, nil
}

// autoAttack pairs the strongest ability tile with the enemy closest to the
// hero row.
func (s *Session) autoAttack(tiles []*entity.Tile) (*entity.Tile, *entity.Enemy) {
	var best *entity.Tile
	for _, t := range tiles {
		a := t.Def.Ability
		if t.Def.Category != defs.CategoryAbility || (!a.CanAttack && !a.Cleave) {
			continue
		}
		if best == nil || abilityPower(t.Def) > abilityPower(best.Def) {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	var target *entity.Enemy
	for _, e := range s.Director.Live() {
		if !e.Placed || !e.Alive() {
			continue
		}
		if target == nil || e.Pos.Y < target.Pos.Y || (e.Pos.Y == target.Pos.Y && e.HP < target.HP) {
			target = e
		}
	}
	if target == nil {
		return nil, nil
	}
	return best, target
}

func abilityPower(def *defs.TileDef) int {
	a := def.Ability
	if a.Cleave {
		return 1000
	}
	p := a.Damage
	if a.Area == defs.AreaCross {
		p *= 2
	}
	return p
}
