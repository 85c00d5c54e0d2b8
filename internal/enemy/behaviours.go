package enemy

import (
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/registry"
)

func init() {
	registry.Register("march", func() registry.Behaviour { return march{} })
	registry.Register("bench_striker", func() registry.Behaviour { return benchStriker{} })
	registry.Register("sentinel", func() registry.Behaviour { return sentinel{} })
}

// march always takes the default step.
type march struct{}

func (march) Name() string { return "march" }

func (march) ExecuteTurn(*entity.Enemy, registry.TurnContext) bool {
	return false
}

// benchStriker hits a hero from range without moving. It prefers the hero
// in its slot's column, then any standing hero. With nobody to hit it drops
// its disruption tile at the slot's column and row.
type benchStriker struct{}

func (benchStriker) Name() string { return "bench_striker" }

func (benchStriker) ExecuteTurn(e *entity.Enemy, ctx registry.TurnContext) bool {
	if !ctx.HasSlot {
		return false
	}
	if h := pickHero(ctx.Heroes, ctx.Slot.Column); h != nil {
		ctx.Act.AttackHero(e, h)
		return true
	}
	grid := ctx.Registry.Grid()
	at := grid.Clamp(board.C(ctx.Slot.Column, grid.H-1-ctx.Slot.RowFromTop))
	ctx.Act.SpawnDisruption(e, e.Def.DisruptionTile, at)
	return true
}

func pickHero(heroes []*entity.Hero, column int) *entity.Hero {
	var fallback *entity.Hero
	for _, h := range heroes {
		if h.Downed() || !h.Placed {
			continue
		}
		if h.Pos.X == column {
			return h
		}
		if fallback == nil {
			fallback = h
		}
	}
	return fallback
}

// sentinel holds its cell and only strikes a hero directly below it.
type sentinel struct{}

func (sentinel) Name() string { return "sentinel" }

func (sentinel) ExecuteTurn(e *entity.Enemy, ctx registry.TurnContext) bool {
	if h, ok := ctx.Registry.HeroAt(e.Pos.Down()); ok {
		ctx.Act.AttackHero(e, h)
	}
	return true
}
