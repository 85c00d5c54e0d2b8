// Package merge resolves tile drops onto same-kind tiles: it groups the
// connected cluster, picks a rule, consumes the nearest tiles and places the
// output once the consume animation has finished.
package merge

import (
	"io"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/anim"
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
)

// Animation defaults, in frames.
const (
	DefaultDuration = 10
	DefaultStagger  = 4
	DefaultArc      = 0.6
)

// SameBucket reports whether two definitions merge together: identical, or
// linked by merges_with in either direction.
func SameBucket(a, b *defs.TileDef) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b || a.ID == b.ID {
		return true
	}
	if a.MergesWith != nil && a.MergesWith.ID == b.ID {
		return true
	}
	return b.MergesWith != nil && b.MergesWith.ID == a.ID
}

// Plan describes a merge that will fire.
type Plan struct {
	Rule   *defs.MergeRule
	Anchor board.Coord
	Origin board.Coord // source tile's cell before the drop
	Total  int         // group size plus the source

	// Consumed lists the cells of consumed board tiles, anchor first, then
	// by Manhattan distance with discovery order breaking ties.
	Consumed []board.Coord

	source *entity.Tile
	target *entity.Tile
	tiles  []*entity.Tile // consumed board tiles, aligned with Consumed
}

// Count returns how many tiles the merge removes, source included.
func (p *Plan) Count() int {
	return len(p.tiles) + 1
}

// Resolver executes merges against a registry.
type Resolver struct {
	reg     *entity.Registry
	factory *entity.Factory
	runner  *anim.Runner
	bus     *events.Bus
	rng     *rand.Rand
	logger  *log.Logger

	Duration float64
	Stagger  float64
	Arc      float64

	// OnOutput, when set, sees every output tile after it is placed.
	OnOutput func(*entity.Tile)

	// busy holds anchors of merges still animating.
	busy   map[board.ID]bool
	flying map[board.ID]*anim.Motion
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(reg *entity.Registry, factory *entity.Factory, runner *anim.Runner, bus *events.Bus, rng *rand.Rand, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		reg:      reg,
		factory:  factory,
		runner:   runner,
		bus:      bus,
		rng:      rng,
		logger:   logger.With("component", "merge"),
		Duration: DefaultDuration,
		Stagger:  DefaultStagger,
		Arc:      DefaultArc,
		busy:     make(map[board.ID]bool),
		flying:   make(map[board.ID]*anim.Motion),
	}
}

// InFlight returns the number of merges still animating.
func (r *Resolver) InFlight() int {
	return len(r.busy)
}

// Locked reports whether tile id anchors a merge still animating. A locked
// tile must not be moved, spent or merged until the merge completes.
func (r *Resolver) Locked(id board.ID) bool {
	return r.busy[id]
}

// Motions returns the consumed tiles still in flight, ordered by tile id.
func (r *Resolver) Motions() []*anim.Motion {
	out := make([]*anim.Motion, 0, len(r.flying))
	for _, m := range r.flying {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Plan decides whether dropping source onto target fires a merge. It never
// mutates the board.
func (r *Resolver) Plan(source, target *entity.Tile) (*Plan, bool) {
	if source == nil || target == nil || source == target {
		return nil, false
	}
	if !target.Placed || r.busy[target.ID] || r.busy[source.ID] {
		return nil, false
	}
	if !SameBucket(source.Def, target.Def) {
		return nil, false
	}

	grid := r.reg.Grid()
	origin := source.Pos
	hasOrigin := source.Placed
	if hasOrigin && origin == target.Pos {
		return nil, false
	}

	group := grid.FloodFill(target.Pos, func(c *board.Cell) bool {
		if c.Tile == 0 || r.busy[c.Tile] {
			return false
		}
		t, ok := r.reg.Tile(c.Tile)
		if !ok {
			return false
		}
		return SameBucket(t.Def, source.Def) || SameBucket(t.Def, target.Def)
	})
	if hasOrigin {
		group = removeCell(group, origin)
	}

	total := len(group) + 1
	rule := selectRule(source.Def, target.Def, total)
	if rule == nil || total < rule.CountToConsume() {
		return nil, false
	}

	// Stable sort keeps BFS discovery order for equal distances; the anchor
	// has distance 0 and stays first.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Pos.Manhattan(target.Pos) < group[j].Pos.Manhattan(target.Pos)
	})

	take := rule.CountToConsume() - 1
	plan := &Plan{
		Rule:   rule,
		Anchor: target.Pos,
		Origin: origin,
		Total:  total,
		source: source,
		target: target,
	}
	for _, c := range group[:take] {
		t, _ := r.reg.Tile(c.Tile)
		plan.Consumed = append(plan.Consumed, c.Pos)
		plan.tiles = append(plan.tiles, t)
	}
	return plan, true
}

// selectRule prefers five-of-a-kind over three-of-a-kind and the target's
// rule over the source's. The chosen rule may still ask for more tiles than
// the group holds; the caller rejects the merge then.
func selectRule(source, target *defs.TileDef, total int) *defs.MergeRule {
	pick := func(get func(*defs.TileDef) *defs.MergeRule) *defs.MergeRule {
		for _, d := range []*defs.TileDef{target, source} {
			if rule := get(d); rule.Usable() {
				return rule
			}
		}
		return nil
	}
	if total >= 5 {
		if rule := pick(func(d *defs.TileDef) *defs.MergeRule { return d.Five }); rule != nil {
			return rule
		}
	}
	if total >= 3 {
		return pick(func(d *defs.TileDef) *defs.MergeRule { return d.Three })
	}
	return nil
}

func removeCell(cells []*board.Cell, pos board.Coord) []*board.Cell {
	out := cells[:0]
	for _, c := range cells {
		if c.Pos != pos {
			out = append(out, c)
		}
	}
	return out
}

// Resolve plans and starts a merge. On false the board is untouched and the
// caller reverts the drag.
func (r *Resolver) Resolve(source, target *entity.Tile) (*Plan, bool) {
	plan, ok := r.Plan(source, target)
	if !ok {
		return nil, false
	}
	r.execute(plan)
	return plan, true
}

func (r *Resolver) execute(p *Plan) {
	anchor := p.target
	r.busy[anchor.ID] = true

	r.logger.Debug("merge",
		"anchor", p.Anchor,
		"rule", p.Rule.Output,
		"total", p.Total,
		"consume", p.Count(),
	)

	group := anim.NewGroup(r.runner, func() { r.finalize(p) })

	movers := make([]*entity.Tile, 0, len(p.tiles))
	for _, t := range p.tiles {
		if t != anchor {
			movers = append(movers, t)
		}
	}
	movers = append(movers, p.source)

	// Detach first so no other drop can reach these tiles mid-flight.
	froms := make([]board.Coord, len(movers))
	for i, t := range movers {
		froms[i] = t.Pos
		r.reg.DetachTile(t)
	}

	for i, t := range movers {
		tile := t
		from := froms[i]
		arc := r.Arc
		if r.rng.Intn(2) == 0 {
			arc = -arc
		}
		m := &anim.Motion{
			Ref:      tile.ID,
			Glyph:    tile.Def.Glyph,
			Color:    tile.Def.Color,
			From:     from,
			To:       p.Anchor,
			Delay:    r.rng.Float64() * r.Stagger,
			Duration: r.Duration,
			Arc:      arc,
			OnDone: func() {
				delete(r.flying, tile.ID)
				r.destroy(tile, from, "merge")
			},
		}
		r.flying[tile.ID] = m
		group.Add(m)
	}
	group.Seal()
}

func (r *Resolver) destroy(t *entity.Tile, pos board.Coord, reason string) {
	if !r.reg.DestroyTile(t) {
		return
	}
	r.bus.TileDestroyed.Publish(events.TileDestroyed{
		ID:     t.ID,
		Def:    t.Def.ID,
		Pos:    pos,
		Reason: reason,
	})
}

func (r *Resolver) finalize(p *Plan) {
	anchor := p.target
	delete(r.busy, anchor.ID)
	at := p.Anchor
	if anchor.Placed {
		at = anchor.Pos
	}
	r.destroy(anchor, at, "merge")

	out := p.Rule.OutputDef
	produced := 0
	for i := 0; i < p.Rule.Outputs(); i++ {
		pos, ok := r.outputCell(p, i)
		if !ok {
			r.logger.Warn("no room for merge output", "output", out.ID, "index", i, "anchor", p.Anchor)
			continue
		}
		tile, ok := r.factory.NewTile(out)
		if !ok {
			continue
		}
		if !r.reg.PlaceTile(tile, pos) {
			r.reg.DestroyTile(tile)
			continue
		}
		if r.OnOutput != nil {
			r.OnOutput(tile)
		}
		produced++
	}

	r.bus.MergeCompleted.Publish(events.MergeCompleted{
		Anchor:   p.Anchor,
		Output:   out.ID,
		Consumed: p.Count(),
		Produced: produced,
	})
}

// outputCell picks where output i goes: the anchor for the first one, then
// the consumed cells after it in consumption order, then a random empty cell.
// The first output falls through too when something took the anchor cell.
func (r *Resolver) outputCell(p *Plan, i int) (board.Coord, bool) {
	grid := r.reg.Grid()
	free := func(c board.Coord) bool {
		cell, ok := grid.At(c)
		return ok && cell.IsEmpty()
	}
	if i == 0 && free(p.Anchor) {
		return p.Anchor, true
	}
	for _, c := range p.Consumed[1:] {
		if free(c) {
			return c, true
		}
	}
	empty := grid.CollectEmptyCells()
	if len(empty) == 0 {
		return board.Coord{}, false
	}
	return empty[r.rng.Intn(len(empty))].Pos, true
}
