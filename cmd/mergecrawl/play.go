package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mergecrawl/internal/config"
	"github.com/vovakirdan/mergecrawl/internal/core"
	"github.com/vovakirdan/mergecrawl/internal/game"
	"github.com/vovakirdan/mergecrawl/internal/persist"
	"github.com/vovakirdan/mergecrawl/internal/platform/tui"
	"github.com/vovakirdan/mergecrawl/internal/storage"
)

var (
	flagSavePath string
	flagNoSave   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Merge Crawl",
	Long: `Start a run in the terminal. An unfinished run is resumed.

Controls:
  Arrows/WASD  - Move cursor
  Space/Enter  - Pick up / drop a tile (drop on a match to merge)
  F            - Use the held ability tile on the enemy under the cursor
  E            - Feed the held food tile to the hero under the cursor
  T            - Open the loot bag under the cursor
  Esc/B        - Put the held tile back
  P            - Pause
  R            - Restart (after game over)
  Q/Ctrl+C     - Save and quit

Examples:
  mergecrawl play
  mergecrawl play --difficulty easy
  mergecrawl play --seed 42 --no-save
  mergecrawl play --save ./run.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagSavePath, "save", "", "Save file (default: per-user data dir)")
	playCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not save or resume runs")
}

func runPlay(cmd *cobra.Command, args []string) error {
	opts, err := gameOptions()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; log to a file instead.
	closeLog := redirectLog()
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     opts.Seed,
	}

	save, err := saveStore()
	if err != nil {
		return err
	}

	var runs game.RunRecorder
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open run database", "err", err)
		// Continue without run history
		store = nil
	} else {
		runs = store
		defer store.Close()
	}

	g := game.NewGame(opts, save, runs)
	if err := tui.Run(g, cfg); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

func saveStore() (persist.Service, error) {
	switch {
	case flagNoSave:
		return nil, nil
	case flagSavePath != "":
		return persist.NewFileStore(flagSavePath, logger)
	default:
		return persist.OpenGdata(config.AppName, logger), nil
	}
}

// redirectLog sends log output to ~/.mergecrawl/mergecrawl.log for the
// lifetime of the TUI.
func redirectLog() func() {
	path := config.UserPath("mergecrawl.log")
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		f.Close()
	}
}
