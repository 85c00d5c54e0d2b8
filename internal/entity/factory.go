package entity

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/defs"
)

// Factory creates entities from definitions and registers them, unplaced.
type Factory struct {
	reg    *Registry
	logger *log.Logger
}

// NewFactory creates a factory that registers into reg.
func NewFactory(reg *Registry, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Factory{reg: reg, logger: logger.With("component", "factory")}
}

// NewTile creates a tile. Returns false when def is nil.
func (f *Factory) NewTile(def *defs.TileDef) (*Tile, bool) {
	if def == nil {
		f.logger.Warn("tile definition missing")
		return nil, false
	}
	t := &Tile{Def: def}
	if def.Category == defs.CategoryStation {
		t.Stored = make(map[string]int)
	}
	f.reg.addTile(t)
	return t, true
}

// NewEnemy creates an enemy with the given max HP, at least 1.
func (f *Factory) NewEnemy(def *defs.EnemyDef, hp int) (*Enemy, bool) {
	if def == nil {
		f.logger.Warn("enemy definition missing")
		return nil, false
	}
	if hp < 1 {
		hp = 1
	}
	e := &Enemy{
		Def:   def,
		HP:    hp,
		MaxHP: hp,
		Boss:  def.Boss,
		Slot:  -1,
	}
	f.reg.addEnemy(e)
	return e, true
}

// NewHero creates a hero at level 1 with full HP and stamina.
func (f *Factory) NewHero(def *defs.HeroDef) (*Hero, bool) {
	if def == nil {
		f.logger.Warn("hero definition missing")
		return nil, false
	}
	hp := max(def.HP, 1)
	h := &Hero{
		Def:        def,
		HP:         hp,
		MaxHP:      hp,
		Level:      1,
		Stamina:    max(def.Stamina, 0),
		MaxStamina: max(def.Stamina, 0),
	}
	f.reg.addHero(h)
	return h, true
}
