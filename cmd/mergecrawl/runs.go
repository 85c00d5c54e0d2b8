package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mergecrawl/internal/platform/tui"
	"github.com/vovakirdan/mergecrawl/internal/storage"
)

var (
	flagRecent bool
	flagLimit  int
	flagTable  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show run history",
	Long: `Display the best (or most recent) recorded runs and overall totals.

Examples:
  mergecrawl runs
  mergecrawl runs --recent --limit 20
  mergecrawl runs --tui
  mergecrawl runs clear`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return fmt.Errorf("opening run database: %w", err)
		}
		defer store.Close()
		if err := store.ClearRuns(); err != nil {
			return err
		}
		fmt.Println("Run history cleared.")
		return nil
	},
}

func init() {
	runsCmd.Flags().BoolVar(&flagRecent, "recent", false, "Order by date instead of score")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagTable, "tui", false, "Browse runs in an interactive table")
	runsCmd.AddCommand(runsClearCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	defer store.Close()

	if flagTable {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		_, err := tui.RunScoreboard(store, width, height)
		return err
	}

	var runs []storage.RunRecord
	title := "Best Runs"
	if flagRecent {
		title = "Recent Runs"
		runs, err = store.RecentRuns(flagLimit)
	} else {
		runs, err = store.TopRuns(flagLimit)
	}
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}

	fmt.Println(title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'mergecrawl play' to record the first one!")
		return nil
	}

	fmt.Printf("  %-4s  %-7s  %-6s  %-5s  %-8s  %-9s  %s\n", "Rank", "Score", "Depth", "Kills", "Hero", "Outcome", "Date")
	fmt.Printf("  %-4s  %-7s  %-6s  %-5s  %-8s  %-9s  %s\n", "----", "-----", "-----", "-----", "----", "-------", "----")
	for i, r := range runs {
		fmt.Printf("  %-4d  %-7d  %-6s  %-5d  %-8s  %-9s  %s\n",
			i+1, r.Score, fmt.Sprintf("%d-%d", r.Floor+1, r.Room), r.Kills, r.Hero, r.Outcome,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d  Best: %d  Avg: %.0f  Kills: %d\n", stats.Runs, stats.BestScore, stats.AvgScore, stats.TotalKills)
	}
	return nil
}
