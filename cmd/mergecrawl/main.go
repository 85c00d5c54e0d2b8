// mergecrawl is a terminal merge-and-crawl game: merge tiles on a grid,
// spend ability tiles on the enemies marching toward your heroes, and
// descend room by room.
//
// Usage:
//
//	mergecrawl play            - Play in the terminal (resumes a saved run)
//	mergecrawl simulate        - Run a seeded headless game and print a summary
//	mergecrawl runs            - Show run history
//	mergecrawl defs list       - List tile, enemy and hero definitions
//	mergecrawl defs validate   - Check content packs for dangling references
//	mergecrawl serve           - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible runs
//	--db <path>           - Set run history path (default: ~/.mergecrawl/runs.db)
//	--config <path>       - Custom game config YAML
//	--content <dir>       - Extra content packs overlaid on the built-in one
//	--difficulty <preset> - easy, normal or hard
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagContent    string
	flagDifficulty string
	flagLogLevel   string
)

// logger writes to stderr. Interactive commands that take over the terminal
// raise its level so log lines do not tear the screen.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "mergecrawl",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mergecrawl",
	Short: "Merge Crawl - merge tiles, fight the descent",
	Long: `Merge Crawl is a terminal grid game. Drag matching tiles together to
merge them into stronger ones, spend ability tiles on the enemies marching
toward your heroes, and clear room after room.

Available commands:
  play      - Play in the terminal
  simulate  - Headless seeded run
  runs      - Run history
  defs      - Inspect content packs
  serve     - Start SSH server for remote play

Examples:
  mergecrawl play
  mergecrawl play --difficulty hard
  mergecrawl simulate --seed 42 --steps 500
  mergecrawl runs --recent
  mergecrawl serve --ssh :2222`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.mergecrawl/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagContent, "content", "", "Directory of extra content packs")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(defsCmd)
	rootCmd.AddCommand(serveCmd)
}
