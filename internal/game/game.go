package game

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/core"
	"github.com/vovakirdan/mergecrawl/internal/events"
	"github.com/vovakirdan/mergecrawl/internal/persist"
	"github.com/vovakirdan/mergecrawl/internal/storage"
)

// RunRecorder stores finished runs.
type RunRecorder interface {
	SaveRun(r storage.RunRecord) (int64, error)
}

// messageTicks is how long a status message stays up.
const messageTicks = 90

// Game drives a Session from cursor input and draws it to a screen buffer.
type Game struct {
	opts   Options
	store  persist.Service
	runs   RunRecorder
	logger *log.Logger

	session *Session
	tick    uint64
	started time.Time

	cursor board.Coord
	held   *board.Coord

	message      string
	messageUntil uint64
	lastDamage   map[board.Coord]uint64

	savedAdvances int
	pendingSave   <-chan error
	recorded      bool
	resumeTried   bool

	screenW  int
	screenH  int
	paused   bool
	tooSmall bool
}

// NewGame creates a game. store and runs may be nil.
func NewGame(opts Options, store persist.Service, runs RunRecorder) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Game{
		opts:       opts,
		store:      store,
		runs:       runs,
		logger:     logger.With("component", "game"),
		lastDamage: make(map[board.Coord]uint64),
	}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return "mergecrawl"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Merge Crawl"
}

// Session returns the running session.
func (g *Game) Session() *Session {
	return g.session
}

// Reset starts a run. The first call resumes a saved run when one exists;
// later calls (restarts) always start fresh.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tick = 0
	g.held = nil
	g.paused = false
	g.recorded = false
	g.message = ""
	g.started = time.Now()
	clear(g.lastDamage)

	if !g.resumeTried {
		g.resumeTried = true
		if g.resume() {
			g.afterStart()
			return
		}
	}

	opts := g.opts
	opts.Seed = cfg.Seed
	opts.RunID = ""
	s, err := NewSession(opts)
	if err != nil {
		g.logger.Error("cannot start run", "err", err)
		g.session = nil
		return
	}
	s.Start()
	g.session = s
	if g.store != nil {
		//nolint:errcheck // Best-effort clear, a stale save is replaced on the next advance
		g.store.Clear(context.Background())
	}
	g.afterStart()
}

func (g *Game) resume() bool {
	if g.store == nil {
		return false
	}
	st, ok := g.store.Load(context.Background())
	if !ok {
		return false
	}
	s, err := RestoreSession(g.opts, st)
	if err != nil {
		g.logger.Warn("cannot resume run", "err", err)
		return false
	}
	if s.Over() {
		return false
	}
	g.session = s
	g.flash("Run resumed")
	return true
}

func (g *Game) afterStart() {
	s := g.session
	g.savedAdvances = s.Meter.Advances()
	g.cursor = board.C(s.Grid.W/2, s.Grid.H-1)
	g.checkScreenSize()

	s.Bus.DamageDealt.Subscribe(func(ev events.DamageDealt) {
		g.lastDamage[ev.Pos] = g.tick
	})
	s.Bus.RoomCleared.Subscribe(func(ev events.RoomCleared) {
		g.flash(fmt.Sprintf("Room %d-%d cleared!", ev.Floor+1, ev.Room))
	})
	s.Bus.HeroDowned.Subscribe(func(ev events.HeroDowned) {
		g.flash(fmt.Sprintf("%s is down", ev.Def))
	})
	s.Bus.EnemySpawned.Subscribe(func(ev events.EnemySpawned) {
		if ev.Boss {
			g.flash("A boss appears!")
		}
	})
}

func (g *Game) flash(msg string) {
	g.message = msg
	g.messageUntil = g.tick + messageTicks
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	if g.session == nil {
		return
	}
	minW, minH := g.layoutSize()
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Resize updates the screen dimensions without restarting the run.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.pollSave()

	s := g.session
	if s == nil {
		return core.StepResult{State: g.State()}
	}
	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	s.Tick()

	if s.Over() {
		g.finish(storage.OutcomeDowned)
		return core.StepResult{State: g.State()}
	}

	g.handleInput(in)
	g.maybeSave()
	return core.StepResult{State: g.State()}
}

func (g *Game) handleInput(in core.InputFrame) {
	s := g.session
	switch {
	case in.Has(core.ActionUp):
		g.moveCursor(0, 1)
	case in.Has(core.ActionDown):
		g.moveCursor(0, -1)
	case in.Has(core.ActionLeft):
		g.moveCursor(-1, 0)
	case in.Has(core.ActionRight):
		g.moveCursor(1, 0)
	}

	switch {
	case in.Has(core.ActionBack):
		g.held = nil
	case in.Has(core.ActionSelect):
		g.selectOrDrop()
	case in.Has(core.ActionAbility):
		if g.held == nil {
			g.flash("Pick up an ability tile first")
			return
		}
		if s.UseAbility(*g.held, g.cursor) {
			g.held = nil
		} else {
			g.flash("Cannot attack there")
		}
	case in.Has(core.ActionFeed):
		if g.held == nil {
			g.flash("Pick up a food tile first")
			return
		}
		if s.Feed(*g.held, g.cursor) {
			g.held = nil
		} else {
			g.flash("Cannot feed that")
		}
	case in.Has(core.ActionTap):
		if !s.Tap(g.cursor) {
			g.flash("Nothing to open")
		}
	}
}

func (g *Game) moveCursor(dx, dy int) {
	g.cursor = g.session.Grid.Clamp(g.cursor.Add(dx, dy))
}

func (g *Game) selectOrDrop() {
	s := g.session
	if g.held == nil {
		if _, ok := s.freeTileAt(g.cursor); ok {
			at := g.cursor
			g.held = &at
		}
		return
	}
	from := *g.held
	g.held = nil
	if from == g.cursor {
		return
	}
	switch s.Drop(from, g.cursor) {
	case DropRejected:
		g.flash("Cannot drop there")
	case DropCrafted:
		g.flash("Crafted!")
	}
}

// maybeSave writes the run after each advance once animations are at rest.
func (g *Game) maybeSave() {
	s := g.session
	if g.store == nil || g.pendingSave != nil || s.Busy() {
		return
	}
	if s.Meter.Advances() == g.savedAdvances {
		return
	}
	g.savedAdvances = s.Meter.Advances()
	g.pendingSave = g.store.SaveAsync(context.Background(), s.Snapshot())
}

func (g *Game) pollSave() {
	if g.pendingSave == nil {
		return
	}
	select {
	case err := <-g.pendingSave:
		if err != nil {
			g.logger.Warn("save failed", "err", err)
		}
		g.pendingSave = nil
	default:
	}
}

// finish records the run once and removes its save.
func (g *Game) finish(outcome string) {
	if g.recorded || g.session == nil {
		return
	}
	g.recorded = true
	s := g.session
	st := s.Stats()

	if g.runs != nil {
		hero := ""
		if heroes := s.Registry.Heroes(); len(heroes) > 0 {
			hero = heroes[0].Def.ID
		}
		_, err := g.runs.SaveRun(storage.RunRecord{
			RunID:    s.RunID,
			Seed:     s.Seed,
			Hero:     hero,
			Floor:    s.Floor(),
			Room:     s.Room(),
			Score:    st.Score,
			Kills:    st.Kills,
			Merges:   st.Merges,
			Advances: s.Meter.Advances(),
			Outcome:  outcome,
			Duration: int(time.Since(g.started).Seconds()),
		})
		if err != nil {
			g.logger.Warn("cannot record run", "err", err)
		}
	}
	if g.store != nil && outcome == storage.OutcomeDowned {
		//nolint:errcheck // Best-effort clear
		g.store.Clear(context.Background())
	}
}

// Close settles the board and saves an unfinished run so it can resume.
func (g *Game) Close(ctx context.Context) error {
	if g.session == nil {
		return nil
	}
	if g.pendingSave != nil {
		<-g.pendingSave
		g.pendingSave = nil
	}
	s := g.session
	if s.Over() {
		g.finish(storage.OutcomeDowned)
		return nil
	}
	s.Settle()
	if g.store == nil {
		g.finish(storage.OutcomeQuit)
		return nil
	}
	if err := g.store.Save(ctx, s.Snapshot()); err != nil {
		return err
	}
	return nil
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{GameOver: true}
	}
	return core.GameState{
		Score:    g.session.Stats().Score,
		GameOver: g.session.Over(),
		Paused:   g.paused || g.tooSmall,
		Floor:    g.session.Floor(),
		Room:     g.session.Room(),
	}
}
