// Package enemy resolves enemy turns during an advance: top rows first,
// one pass, each enemy either stepping toward the hero row or running its
// registered behaviour.
package enemy

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/registry"
)

// DefaultBehaviour is used when a definition names none.
const DefaultBehaviour = "march"

// Outcome is what one enemy did during an advance.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeMoved
	OutcomeBlocked
	OutcomeAttacked
	OutcomeTrampled // destroyed a tile and moved in
	OutcomeBehaviour
	OutcomeSkipped // died before its turn
)

// Step records one enemy's resolution, in order.
type Step struct {
	Enemy   board.ID
	From    board.Coord
	Outcome Outcome
}

// SlotSource looks up an enemy's bench slot.
type SlotSource interface {
	SlotOf(e *entity.Enemy) (registry.SlotInfo, bool)
}

// Engine resolves advances.
type Engine struct {
	reg     *entity.Registry
	factory *entity.Factory
	bus     *events.Bus
	slots   SlotSource
	logger  *log.Logger

	// HitStopFrames is requested whenever a hero takes damage.
	HitStopFrames int

	behaviours map[string]registry.Behaviour
	last       []Step
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(reg *entity.Registry, factory *entity.Factory, bus *events.Bus, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		reg:           reg,
		factory:       factory,
		bus:           bus,
		logger:        logger.With("component", "enemy"),
		HitStopFrames: 4,
		behaviours:    make(map[string]registry.Behaviour),
	}
}

// SetSlots sets the bench-slot lookup used to build turn contexts.
func (en *Engine) SetSlots(s SlotSource) {
	en.slots = s
}

// LastAdvance returns the steps of the most recent advance.
func (en *Engine) LastAdvance() []Step {
	return en.last
}

// Advance resolves one advance for every live enemy. Enemies are
// snapshotted first and ordered by row, highest first; ties keep id order.
func (en *Engine) Advance() []Step {
	snapshot := en.reg.Enemies()
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Pos.Y > snapshot[j].Pos.Y
	})

	heroes := en.reg.Heroes()
	steps := make([]Step, 0, len(snapshot))
	for _, e := range snapshot {
		step := Step{Enemy: e.ID, From: e.Pos}
		if _, live := en.reg.Enemy(e.ID); !live || !e.Alive() || !e.Placed {
			step.Outcome = OutcomeSkipped
			steps = append(steps, step)
			continue
		}
		step.Outcome = en.resolve(e, heroes)
		steps = append(steps, step)
	}

	en.last = steps
	return steps
}

func (en *Engine) resolve(e *entity.Enemy, heroes []*entity.Hero) Outcome {
	if b := en.behaviour(e.Def); b != nil {
		ctx := registry.TurnContext{
			Registry: en.reg,
			Heroes:   heroes,
			Act:      en,
		}
		if en.slots != nil {
			ctx.Slot, ctx.HasSlot = en.slots.SlotOf(e)
		}
		if b.ExecuteTurn(e, ctx) {
			return OutcomeBehaviour
		}
	}
	return en.StepDown(e)
}

func (en *Engine) behaviour(def *defs.EnemyDef) registry.Behaviour {
	name := def.Behaviour
	if name == "" {
		name = DefaultBehaviour
	}
	if b, ok := en.behaviours[name]; ok {
		return b
	}
	b, err := registry.Create(name)
	if err != nil {
		en.logger.Warn("unknown behaviour, using default step", "enemy", def.ID, "behaviour", name)
		en.behaviours[name] = nil
		return nil
	}
	en.behaviours[name] = b
	return b
}

// StepDown is the default turn: attack a hero in reach, otherwise move one
// row toward the hero row, trampling any tile in the way.
func (en *Engine) StepDown(e *entity.Enemy) Outcome {
	if h, ok := en.reg.HeroAt(e.Pos); ok {
		en.AttackHero(e, h)
		return OutcomeAttacked
	}

	next := e.Pos.Down()
	cell, ok := en.reg.Grid().At(next)
	if !ok {
		return OutcomeIdle
	}

	switch {
	case cell.Enemy != 0:
		return OutcomeBlocked
	case cell.Hero != 0:
		if h, ok := en.reg.Hero(cell.Hero); ok {
			en.AttackHero(e, h)
		}
		return OutcomeAttacked
	case cell.Tile != 0:
		if t, ok := en.reg.Tile(cell.Tile); ok {
			en.destroyTile(t, "trampled")
		}
		en.reg.MoveEnemy(e, next)
		return OutcomeTrampled
	default:
		en.reg.MoveEnemy(e, next)
		return OutcomeMoved
	}
}

// AttackHero deals the enemy's damage to h.
func (en *Engine) AttackHero(e *entity.Enemy, h *entity.Hero) {
	dealt, downed := h.Damage(e.Def.Damage())
	if dealt == 0 {
		return
	}
	en.bus.DamageDealt.Publish(events.DamageDealt{
		Target: h.ID,
		Kind:   events.TargetHero,
		Pos:    h.Pos,
		Amount: dealt,
		Source: e.Def.ID,
	})
	if en.HitStopFrames > 0 {
		en.bus.HitStop.Publish(events.HitStop{Frames: en.HitStopFrames})
	}
	if downed {
		en.logger.Info("hero downed", "hero", h.Def.ID, "by", e.Def.ID)
		en.bus.HeroDowned.Publish(events.HeroDowned{ID: h.ID, Def: h.Def.ID, Pos: h.Pos})
	}
}

// SpawnDisruption forces a tile of def onto at, destroying a tile already
// there. Cells holding an enemy or hero are left alone.
func (en *Engine) SpawnDisruption(e *entity.Enemy, def *defs.TileDef, at board.Coord) bool {
	if def == nil {
		en.logger.Warn("no disruption tile", "enemy", e.Def.ID)
		return false
	}
	cell, ok := en.reg.Grid().At(at)
	if !ok || cell.Enemy != 0 || cell.Hero != 0 {
		return false
	}
	if t, ok := en.reg.TileAt(at); ok {
		en.destroyTile(t, "disrupted")
	}
	tile, ok := en.factory.NewTile(def)
	if !ok {
		return false
	}
	if !en.reg.PlaceTile(tile, at) {
		en.reg.DestroyTile(tile)
		return false
	}
	en.logger.Debug("disruption", "enemy", e.Def.ID, "tile", def.ID, "at", at)
	return true
}

func (en *Engine) destroyTile(t *entity.Tile, reason string) {
	pos := t.Pos
	if !en.reg.DestroyTile(t) {
		return
	}
	en.bus.TileDestroyed.Publish(events.TileDestroyed{ID: t.ID, Def: t.Def.ID, Pos: pos, Reason: reason})
}
