package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergecrawl/internal/defs"
)

var defsCmd = &cobra.Command{
	Use:   "defs",
	Short: "Inspect content packs",
	Long: `Inspect the tile, enemy and hero definitions the game loads: the
built-in pack plus any packs under --content.

Examples:
  mergecrawl defs list
  mergecrawl defs validate --content ./packs
  mergecrawl defs dump > my-pack.yaml`,
}

var defsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded definitions",
	Args:  cobra.NoArgs,
	RunE:  runDefsList,
}

var defsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check packs for dangling references",
	Args:  cobra.NoArgs,
	RunE:  runDefsValidate,
}

var defsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the built-in pack as a starting point for custom packs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		//nolint:errcheck // Best-effort write to stdout
		os.Stdout.Write(defs.DefaultYAML())
	},
}

func init() {
	defsCmd.AddCommand(defsListCmd)
	defsCmd.AddCommand(defsValidateCmd)
	defsCmd.AddCommand(defsDumpCmd)
}

func runDefsList(cmd *cobra.Command, args []string) error {
	db, err := loadDefs()
	if err != nil {
		return err
	}

	fmt.Println("Tiles:")
	fmt.Printf("  %-10s  %-5s  %-9s  %s\n", "ID", "Glyph", "Category", "Merges into")
	for _, t := range db.Tiles() {
		into := "-"
		if t.Three != nil && t.Three.Output != "" {
			into = t.Three.Output
		}
		if t.MergesWith != nil {
			into = "(as " + t.MergesWith.ID + ")"
		}
		fmt.Printf("  %-10s  %-5s  %-9s  %s\n", t.ID, t.Glyph, t.Category, into)
	}

	fmt.Println()
	fmt.Println("Enemies:")
	fmt.Printf("  %-10s  %-5s  %-4s  %-6s  %s\n", "ID", "Glyph", "HP", "Damage", "Behaviour")
	for _, e := range db.Enemies() {
		behaviour := e.Behaviour
		if e.Boss {
			behaviour += " (boss)"
		}
		fmt.Printf("  %-10s  %-5s  %-4d  %-6d  %s\n", e.ID, e.Glyph, e.ScaledHP(0), e.Damage(), behaviour)
	}

	fmt.Println()
	fmt.Println("Heroes:")
	fmt.Printf("  %-10s  %-5s  %-4s  %-7s  %s\n", "ID", "Glyph", "HP", "Stamina", "Column")
	for _, h := range db.Heroes() {
		fmt.Printf("  %-10s  %-5s  %-4d  %-7d  %d\n", h.ID, h.Glyph, h.HP, h.Stamina, h.Column)
	}
	return nil
}

func runDefsValidate(cmd *cobra.Command, args []string) error {
	db := defs.NewDatabase(logger)
	if err := defs.Open(db, flagContent); err != nil {
		return err
	}
	errs := db.Validate()
	if len(errs) == 0 {
		fmt.Printf("OK: %d tiles, %d enemies, %d heroes\n", len(db.Tiles()), len(db.Enemies()), len(db.Heroes()))
		return nil
	}
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	return fmt.Errorf("%d content errors", len(errs))
}
