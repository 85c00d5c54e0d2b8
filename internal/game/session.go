// Package game wires the simulation components into a run and exposes the
// player entry points. Session is headless; Game adds a cursor, rendering
// and persistence on top.
package game

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/mergecrawl/internal/anim"
	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/config"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/enemy"
	"github.com/vovakirdan/mergecrawl/internal/entity"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/loot"
	"github.com/vovakirdan/mergecrawl/internal/merge"
	"github.com/vovakirdan/mergecrawl/internal/spawn"
	"github.com/vovakirdan/mergecrawl/internal/turn"
)

// settleLimit bounds Settle so a stuck task cannot hang a headless run.
const settleLimit = 10000

// Scoring.
const (
	scoreKill      = 10
	scoreBossKill  = 50
	scorePerMerged = 5
	scoreRoom      = 25
)

// Options configures a session.
type Options struct {
	Config config.GameConfig
	DB     *defs.Database
	Seed   int64
	RunID  string // generated when empty
	Logger *log.Logger
}

// Stats are the run counters that feed the score.
type Stats struct {
	Score  int
	Kills  int
	Merges int
}

// Session is the services context of one run. Components are exported so
// front-ends and tests can observe them; mutations go through the entry
// points.
type Session struct {
	RunID string
	Seed  int64

	DB       *defs.Database
	Grid     *board.Grid
	Registry *entity.Registry
	Factory  *entity.Factory
	Bus      *events.Bus
	Runner   *anim.Runner
	Merge    *merge.Resolver
	Meter    *turn.Meter
	Enemies  *enemy.Engine
	Director *spawn.Director
	Loot     *loot.Opener

	cfg    config.GameConfig
	rng    *rand.Rand
	logger *log.Logger
	stats  Stats
	over   bool
}

// NewSession builds an empty board with every component wired. Call Start
// to populate a fresh run or Restore to load a saved one.
func NewSession(opts Options) (*Session, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("game: definition database is required")
	}
	cfg := opts.Config
	cfg.Normalize()

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if cfg.Spawn.FallbackHP > 0 {
		opts.DB.FallbackHP = cfg.Spawn.FallbackHP
	}

	s := &Session{
		RunID:  runID,
		Seed:   opts.Seed,
		DB:     opts.DB,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger.With("component", "session", "run", runID),
	}

	s.Grid = board.Build(cfg.Board.Width, cfg.Board.Height)
	s.Registry = entity.NewRegistry(s.Grid, cfg.Board.HeroRow)
	s.Factory = entity.NewFactory(s.Registry, logger)
	s.Bus = events.NewBus()
	s.Runner = anim.NewRunner()
	s.Loot = loot.NewOpener(s.Registry, s.Factory, s.DB, s.Bus, s.rng, logger)

	s.Merge = merge.NewResolver(s.Registry, s.Factory, s.Runner, s.Bus, s.rng, logger)
	s.Merge.Duration = float64(cfg.Anim.MergeFrames)
	s.Merge.Stagger = float64(cfg.Anim.Stagger)
	s.Merge.Arc = cfg.Anim.Arc
	s.Merge.OnOutput = s.Loot.Prepare

	s.Meter = turn.NewMeter(cfg.Turn.Threshold, s.Bus)

	s.Enemies = enemy.NewEngine(s.Registry, s.Factory, s.Bus, logger)
	s.Enemies.HitStopFrames = cfg.Anim.HitStopFrames

	s.Director = spawn.NewDirector(s.Registry, s.Factory, s.DB, s.Loot, spawn.NewBench(benchSlots(cfg)), s.Bus, s.rng, logger, spawnSettings(cfg))
	s.Enemies.SetSlots(s.Director.Bench())

	s.subscribe()
	return s, nil
}

func benchSlots(cfg config.GameConfig) []spawn.Slot {
	slots := make([]spawn.Slot, 0, len(cfg.Spawn.Slots))
	for _, sc := range cfg.Spawn.Slots {
		slots = append(slots, spawn.Slot{Column: sc.Column, RowFromTop: sc.RowFromTop, Locked: sc.Locked})
	}
	return slots
}

func spawnSettings(cfg config.GameConfig) spawn.Settings {
	waves := make([]spawn.Wave, 0, len(cfg.Spawn.Waves))
	for _, wc := range cfg.Spawn.Waves {
		var w spawn.Wave
		for _, e := range wc.Entries {
			w.Entries = append(w.Entries, spawn.WaveEntry{Enemy: e.Enemy, Count: e.Count, HP: e.HP})
		}
		waves = append(waves, w)
	}
	return spawn.Settings{
		Every:          cfg.Spawn.Every,
		IntervalFrames: cfg.Spawn.IntervalFrames,
		Waves:          waves,
		RoomsPerFloor:  cfg.Spawn.RoomsPerFloor,
		BagTile:        cfg.Loot.BagTile,
		DefaultItem:    cfg.Loot.DefaultItem,
		HPScale:        cfg.Spawn.HPScale,
	}
}

// subscribe wires the advance pipeline. Order matters: enemies move, then
// the director paces waves, then the meter re-arms.
func (s *Session) subscribe() {
	s.Bus.AdvanceFired.Subscribe(func(events.AdvanceFired) {
		s.Enemies.Advance()
	})
	s.Bus.AdvanceFired.Subscribe(func(events.AdvanceFired) {
		s.Director.OnAdvance()
	})
	s.Bus.AdvanceFired.Subscribe(func(ev events.AdvanceFired) {
		s.Meter.Reset()
		s.logger.Debug("advance", "count", ev.Count, "enemies", len(s.Director.Live()))
	})

	s.Bus.HitStop.Subscribe(func(ev events.HitStop) {
		s.Runner.HitStop(ev.Frames)
	})
	s.Bus.EnemyDied.Subscribe(func(ev events.EnemyDied) {
		s.stats.Kills++
		if ev.Boss {
			s.stats.Score += scoreBossKill
		} else {
			s.stats.Score += scoreKill
		}
	})
	s.Bus.MergeCompleted.Subscribe(func(ev events.MergeCompleted) {
		s.stats.Merges++
		s.stats.Score += ev.Consumed * scorePerMerged
	})
	s.Bus.RoomCleared.Subscribe(func(ev events.RoomCleared) {
		s.stats.Score += scoreRoom
		s.logger.Info("room cleared", "floor", ev.Floor, "room", ev.Room)
	})
	s.Bus.HeroDowned.Subscribe(func(ev events.HeroDowned) {
		s.logger.Info("hero downed", "hero", ev.Def)
		s.over = s.allDowned()
	})
}

// Config returns the normalized configuration.
func (s *Session) Config() config.GameConfig {
	return s.cfg
}

// Stats returns the run counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// Over reports whether every hero is downed.
func (s *Session) Over() bool {
	return s.over
}

func (s *Session) allDowned() bool {
	heroes := s.Registry.Heroes()
	if len(heroes) == 0 {
		return false
	}
	for _, h := range heroes {
		if !h.Downed() {
			return false
		}
	}
	return true
}

// Start populates a fresh run: heroes on the hero row, the starting tiles
// and the first wave.
func (s *Session) Start() {
	for _, id := range s.cfg.Heroes {
		s.placeHero(id)
	}
	for _, id := range s.cfg.Starting {
		s.SpawnTile(id)
	}
	s.Director.SpawnWave()
	s.logger.Info("run started", "seed", s.Seed, "heroes", len(s.Registry.Heroes()))
}

func (s *Session) placeHero(id string) (*entity.Hero, bool) {
	def, ok := s.DB.Hero(id)
	if !ok {
		s.logger.Warn("hero definition not found", "hero", id)
		return nil, false
	}
	h, ok := s.Factory.NewHero(def)
	if !ok {
		return nil, false
	}
	row := s.Registry.HeroRow()
	col := s.Grid.Clamp(board.C(def.Column, row)).X
	// Slide along the row when the preferred column is taken.
	for i := range s.Grid.W {
		at := board.C((col+i)%s.Grid.W, row)
		if s.Registry.PlaceHero(h, at) {
			return h, true
		}
	}
	s.logger.Warn("no room for hero", "hero", id)
	return h, false
}

// Tick advances one frame: animations (frozen during hit-stop) and the
// spawn interval timer.
func (s *Session) Tick() {
	s.Runner.Tick()
	if !s.Runner.Frozen() && !s.over {
		s.Director.Tick()
	}
}

// Settle runs animations to completion. Returns frames ticked.
func (s *Session) Settle() int {
	return s.Runner.Settle(settleLimit)
}

// Busy reports whether animations are still running.
func (s *Session) Busy() bool {
	return s.Runner.Busy()
}

// Floor and Room report dungeon progress.
func (s *Session) Floor() int { return s.Director.Floor() }
func (s *Session) Room() int  { return s.Director.Room() }
