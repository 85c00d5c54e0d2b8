package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergecrawl/internal/game"
	"github.com/vovakirdan/mergecrawl/internal/persist"
	"github.com/vovakirdan/mergecrawl/internal/storage"
)

var (
	flagSteps   int
	flagRecord  bool
	flagOut     string
	flagVerbose bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a seeded run headlessly",
	Long: `Play a run with a greedy bot and print a summary. The same seed, config
and content always produce the same run.

Examples:
  mergecrawl simulate --seed 42
  mergecrawl simulate --seed 42 --steps 2000 --verbose
  mergecrawl simulate --seed 7 --difficulty hard --record
  mergecrawl simulate --seed 7 --out ./run.yaml`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSteps, "steps", 1000, "Maximum number of actions")
	simulateCmd.Flags().BoolVar(&flagRecord, "record", false, "Record the run in the run history")
	simulateCmd.Flags().StringVar(&flagOut, "out", "", "Write the final state to this save file")
	simulateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print every action")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts, err := gameOptions()
	if err != nil {
		return err
	}
	s, err := game.NewSession(opts)
	if err != nil {
		return err
	}
	s.Start()

	started := time.Now()
	actions := 0
	stop := "step limit"
	for actions < flagSteps {
		action, ok := s.AutoStep()
		if !ok {
			stop = "no playable action"
			if s.Over() {
				stop = "all heroes downed"
			}
			break
		}
		actions++
		if flagVerbose {
			fmt.Printf("%5d  %-20s floor %d room %d  score %d\n", actions, action, s.Floor()+1, s.Room(), s.Stats().Score)
		}
	}
	if s.Over() {
		stop = "all heroes downed"
	}

	st := s.Stats()
	fmt.Printf("Run %s (seed %d)\n", s.RunID, s.Seed)
	fmt.Println()
	fmt.Printf("  Stopped:   %s\n", stop)
	fmt.Printf("  Actions:   %d\n", actions)
	fmt.Printf("  Advances:  %d\n", s.Meter.Advances())
	fmt.Printf("  Depth:     floor %d, room %d\n", s.Floor()+1, s.Room())
	fmt.Printf("  Score:     %d\n", st.Score)
	fmt.Printf("  Kills:     %d\n", st.Kills)
	fmt.Printf("  Merges:    %d\n", st.Merges)
	fmt.Printf("  Tiles:     %d on board\n", s.Registry.TileCount())
	fmt.Printf("  Enemies:   %d alive\n", len(s.Director.Live()))
	for _, h := range s.Registry.Heroes() {
		state := fmt.Sprintf("%d/%d hp", h.HP, h.MaxHP)
		if h.Downed() {
			state = "downed"
		}
		fmt.Printf("  Hero:      %-8s lvl %d, %s\n", h.Def.ID, h.Level, state)
	}

	if flagOut != "" {
		store, err := persist.NewFileStore(flagOut, logger)
		if err != nil {
			return err
		}
		if err := store.Save(context.Background(), s.Snapshot()); err != nil {
			return fmt.Errorf("writing %s: %w", flagOut, err)
		}
		fmt.Printf("\nState written to %s\n", store.Path())
	}

	if flagRecord {
		if err := recordSimulation(s, started); err != nil {
			return err
		}
	}
	return nil
}

func recordSimulation(s *game.Session, started time.Time) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	defer store.Close()

	outcome := storage.OutcomeAbandoned
	if s.Over() {
		outcome = storage.OutcomeDowned
	}
	hero := ""
	if heroes := s.Registry.Heroes(); len(heroes) > 0 {
		hero = heroes[0].Def.ID
	}
	st := s.Stats()
	id, err := store.SaveRun(storage.RunRecord{
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
		Duration: int(time.Since(started).Seconds()),
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	fmt.Printf("Recorded as run #%d\n", id)
	return nil
}
