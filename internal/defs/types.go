// Package defs holds the static definitions of tiles, enemies, heroes and
// loot, and the in-memory databases that index them by stable string id.
package defs

import (
	"math"
	"sort"

	"github.com/vovakirdan/mergecrawl/internal/board"
)

// Category groups tile definitions by how the player uses them.
type Category string

const (
	CategoryAbility  Category = "ability"
	CategoryResource Category = "resource"
	CategoryFood     Category = "food"
	CategoryLoot     Category = "loot"
	CategoryLootBag  Category = "loot_bag"
	CategoryStation  Category = "station"
	CategoryOther    Category = "other"
)

// Area is the footprint of an ability hit.
type Area string

const (
	AreaSingle Area = "single"
	AreaCross  Area = "cross"
)

// AbilityStats describes what a tile does when used on an enemy.
type AbilityStats struct {
	CanAttack bool `yaml:"can_attack"`
	Damage    int  `yaml:"damage"`
	Area      Area `yaml:"area"`
	Cleave    bool `yaml:"cleave"` // instant kill, ignores damage
}

// FeedStats describes what a tile restores when fed to a hero.
type FeedStats struct {
	HP      int `yaml:"hp"`
	Exp     int `yaml:"exp"`
	Stamina int `yaml:"stamina"`
}

// MergeRule maps a consumed group to its output.
type MergeRule struct {
	Consume     int    `yaml:"consume"`
	Output      string `yaml:"output"`
	OutputCount int    `yaml:"output_count"`

	OutputDef *TileDef `yaml:"-"`
}

// CountToConsume returns the number of tiles a merge removes, never below 2.
func (r *MergeRule) CountToConsume() int {
	if r.Consume < 2 {
		return 2
	}
	return r.Consume
}

// Outputs returns the number of tiles the rule produces, at least 1.
func (r *MergeRule) Outputs() int {
	if r.OutputCount < 1 {
		return 1
	}
	return r.OutputCount
}

// Usable reports whether the rule has a resolved output.
func (r *MergeRule) Usable() bool {
	return r != nil && r.OutputDef != nil
}

// TileDef is the static description of a tile kind.
type TileDef struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Category Category     `yaml:"category"`
	Glyph    string       `yaml:"glyph"`
	Color    string       `yaml:"color"`
	Ability  AbilityStats `yaml:"ability"`
	Feed     FeedStats    `yaml:"feed"`

	MergesWithID string     `yaml:"merges_with"`
	Three        *MergeRule `yaml:"three_of_a_kind"`
	Five         *MergeRule `yaml:"five_of_a_kind"`

	// Loot bag and station data.
	LootTable string `yaml:"loot_table"`
	Uses      int    `yaml:"uses"`
	Recipe    string `yaml:"recipe"`

	MergesWith *TileDef `yaml:"-"`
}

// DisplayName returns Name, or ID when no name is set.
func (d *TileDef) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// ColumnRange bounds spawn columns, inclusive.
type ColumnRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether x lies inside the range.
func (r ColumnRange) Contains(x int) bool {
	return x >= r.Min && x <= r.Max
}

// SpawnProfile narrows where an enemy may appear. Unset fields do not
// constrain; set fields refine each other.
type SpawnProfile struct {
	Cell       *board.Coord `yaml:"cell"`
	Columns    *ColumnRange `yaml:"columns"`
	RowFromTop *int         `yaml:"row_from_top"`
}

// EnemyDef is the static description of an enemy kind.
type EnemyDef struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Glyph      string          `yaml:"glyph"`
	Color      string          `yaml:"color"`
	BaseHP     int             `yaml:"base_hp"`
	BaseDamage int             `yaml:"base_damage"`
	HPScaling  map[int]float64 `yaml:"hp_scaling"` // floor index -> multiplier
	Behaviour  string          `yaml:"behaviour"`
	Boss       bool            `yaml:"boss"`
	Spawn      SpawnProfile    `yaml:"spawn"`

	DisruptionTileID string `yaml:"disruption_tile"`
	LootContainer    string `yaml:"loot_container"`
	LootTable        string `yaml:"loot_table"`

	DisruptionTile *TileDef `yaml:"-"`
}

// Damage returns the enemy's attack damage, at least 1.
func (d *EnemyDef) Damage() int {
	if d.BaseDamage < 1 {
		return 1
	}
	return d.BaseDamage
}

// ScaledHP returns BaseHP multiplied by the scaling curve entry with the
// greatest floor key not above floor. Returns 0 when BaseHP is unset.
func (d *EnemyDef) ScaledHP(floor int) int {
	if d.BaseHP <= 0 {
		return 0
	}
	mult := 1.0
	if len(d.HPScaling) > 0 {
		keys := make([]int, 0, len(d.HPScaling))
		for k := range d.HPScaling {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			if k > floor {
				break
			}
			mult = d.HPScaling[k]
		}
	}
	hp := int(math.Ceil(float64(d.BaseHP) * mult))
	if hp < 1 {
		hp = 1
	}
	return hp
}

// HeroDef is the static description of a hero.
type HeroDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Glyph       string `yaml:"glyph"`
	Color       string `yaml:"color"`
	HP          int    `yaml:"hp"`
	Stamina     int    `yaml:"stamina"`
	ExpPerLevel int    `yaml:"exp_per_level"`
	Column      int    `yaml:"column"`
}

// LootEntry is one weighted outcome of a loot table.
type LootEntry struct {
	Tile   string `yaml:"tile"`
	Weight int    `yaml:"weight"`
}

// LootTable lists what a bag can yield and how many items it holds.
type LootTable struct {
	ID       string      `yaml:"id"`
	Entries  []LootEntry `yaml:"entries"`
	MinRolls int         `yaml:"min_rolls"`
	MaxRolls int         `yaml:"max_rolls"`
}

// TotalWeight returns the sum of positive entry weights.
func (t *LootTable) TotalWeight() int {
	total := 0
	for _, e := range t.Entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// LootContainer links a loot-bag tile to the table it rolls from.
type LootContainer struct {
	ID        string `yaml:"id"`
	Tile      string `yaml:"tile"`
	LootTable string `yaml:"loot_table"`
	Uses      int    `yaml:"uses"`
}

// Recipe is what a station tile crafts from deposited tiles.
type Recipe struct {
	ID          string         `yaml:"id"`
	Inputs      map[string]int `yaml:"inputs"`
	Output      string         `yaml:"output"`
	OutputCount int            `yaml:"output_count"`
}
