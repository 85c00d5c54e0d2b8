package defs

import (
	"os"
	"path/filepath"
	"testing"
)

func loadDefault(t *testing.T) *Database {
	t.Helper()
	db := NewDatabase(nil)
	if err := Open(db, ""); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return db
}

func TestDefaultPackValidates(t *testing.T) {
	db := loadDefault(t)

	if errs := db.Validate(); len(errs) != 0 {
		for _, err := range errs {
			t.Errorf("validate: %v", err)
		}
	}
	if len(db.Tiles()) == 0 {
		t.Fatal("Expected tiles in default pack")
	}
	if len(db.Heroes()) == 0 {
		t.Fatal("Expected heroes in default pack")
	}
}

func TestReferencesResolved(t *testing.T) {
	db := loadDefault(t)

	dry, ok := db.Tile("dry_twig")
	if !ok {
		t.Fatal("dry_twig not found")
	}
	if dry.MergesWith == nil || dry.MergesWith.ID != "twig" {
		t.Errorf("dry_twig.MergesWith = %v, expected twig", dry.MergesWith)
	}

	spark, _ := db.Tile("spark")
	if !spark.Three.Usable() || spark.Three.OutputDef.ID != "bolt" {
		t.Errorf("spark three_of_a_kind not resolved to bolt")
	}
	if spark.Five.Outputs() != 2 {
		t.Errorf("spark five_of_a_kind outputs = %d, expected 2", spark.Five.Outputs())
	}

	rubble, _ := db.Tile("rubble")
	enemy, ok := db.EnemyByTile(rubble)
	if !ok {
		t.Fatal("EnemyByTile(rubble) not found")
	}
	if enemy.DisruptionTile != rubble {
		t.Errorf("EnemyByTile returned %s with different disruption tile", enemy.ID)
	}

	if _, ok := db.EnemyByTile(nil); ok {
		t.Error("EnemyByTile(nil) should be absent")
	}
}

func TestMergeRuleClamps(t *testing.T) {
	tests := []struct {
		name    string
		rule    MergeRule
		consume int
		outputs int
	}{
		{"zero values", MergeRule{}, 2, 1},
		{"one consume", MergeRule{Consume: 1, OutputCount: -3}, 2, 1},
		{"normal", MergeRule{Consume: 3, OutputCount: 1}, 3, 1},
		{"five with two outputs", MergeRule{Consume: 5, OutputCount: 2}, 5, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.CountToConsume(); got != tc.consume {
				t.Errorf("CountToConsume() = %d, expected %d", got, tc.consume)
			}
			if got := tc.rule.Outputs(); got != tc.outputs {
				t.Errorf("Outputs() = %d, expected %d", got, tc.outputs)
			}
		})
	}
}

func TestScaledHP(t *testing.T) {
	def := EnemyDef{
		BaseHP:    4,
		HPScaling: map[int]float64{0: 1.0, 3: 1.5, 6: 2.0},
	}

	tests := []struct {
		floor    int
		expected int
	}{
		{0, 4},
		{2, 4},
		{3, 6},
		{5, 6},
		{6, 8},
		{20, 8},
	}

	for _, tc := range tests {
		if got := def.ScaledHP(tc.floor); got != tc.expected {
			t.Errorf("ScaledHP(%d) = %d, expected %d", tc.floor, got, tc.expected)
		}
	}

	empty := EnemyDef{}
	if got := empty.ScaledHP(3); got != 0 {
		t.Errorf("ScaledHP without base hp = %d, expected 0", got)
	}
}

func TestLoaderOverrides(t *testing.T) {
	dir := t.TempDir()
	override := `
tiles:
  - id: spark
    name: Big Spark
    category: ability
    three_of_a_kind: {consume: 4, output: storm, output_count: 1}
enemies:
  - id: goblin
    base_hp: 9
`
	if err := os.WriteFile(filepath.Join(dir, "10-override.yaml"), []byte(override), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	db := NewDatabase(nil)
	if err := Open(db, dir); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	spark, _ := db.Tile("spark")
	if spark.Name != "Big Spark" {
		t.Errorf("spark.Name = %q, expected override", spark.Name)
	}
	if spark.Three.CountToConsume() != 4 || spark.Three.OutputDef == nil || spark.Three.OutputDef.ID != "storm" {
		t.Errorf("spark rule not overridden: %+v", spark.Three)
	}
	goblin, _ := db.Enemy("goblin")
	if goblin.BaseHP != 9 {
		t.Errorf("goblin.BaseHP = %d, expected 9", goblin.BaseHP)
	}
}

func TestValidateReportsDangling(t *testing.T) {
	db := NewDatabase(nil)
	db.Add(Pack{
		Tiles: []TileDef{
			{ID: "a", MergesWithID: "ghost", Three: &MergeRule{Consume: 3, Output: "nothing"}},
		},
		Enemies: []EnemyDef{
			{ID: "e", DisruptionTileID: "missing", LootTable: "none"},
		},
	})

	errs := db.Validate()
	if len(errs) != 4 {
		t.Errorf("Validate() returned %d errors, expected 4: %v", len(errs), errs)
	}
	a, _ := db.Tile("a")
	if a.Three.Usable() {
		t.Error("rule with unknown output should not be usable")
	}
}

func TestParsePackRejectsDuplicates(t *testing.T) {
	data := []byte(`
tiles:
  - id: a
  - id: a
`)
	if _, err := ParsePack(data); err == nil {
		t.Error("Expected error for duplicate tile id")
	}
	if _, err := ParsePack([]byte("tiles: [")); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}
