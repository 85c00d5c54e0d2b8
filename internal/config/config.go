// Package config provides YAML-based game configuration loading and
// difficulty presets.
package config

// GameConfig contains all tunables of a run.
type GameConfig struct {
	Board      BoardConfig      `yaml:"board"`
	Turn       TurnConfig       `yaml:"turn"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Loot       LootConfig       `yaml:"loot"`
	Anim       AnimConfig       `yaml:"anim"`
	Heroes     []string         `yaml:"heroes"`
	Starting   []string         `yaml:"starting_tiles"`
	Difficulty DifficultyPreset `yaml:"difficulty"`
}

// BoardConfig defines the grid.
type BoardConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	HeroRow int `yaml:"hero_row"` // row heroes stand on, 0 is the bottom
}

// TurnConfig defines the advance meter.
type TurnConfig struct {
	Threshold int `yaml:"threshold"`
}

// SpawnConfig defines enemy pacing.
type SpawnConfig struct {
	Every          int          `yaml:"every"`           // advances between waves
	IntervalFrames int          `yaml:"interval_frames"` // 0 disables the timer
	RoomsPerFloor  int          `yaml:"rooms_per_floor"`
	FallbackHP     int          `yaml:"fallback_hp"`
	HPScale        float64      `yaml:"hp_scale"` // multiplier on resolved enemy HP
	Slots          []SlotConfig `yaml:"slots"`
	Waves          []WaveConfig `yaml:"waves"`
}

// SlotConfig is one bench slot.
type SlotConfig struct {
	Column     int  `yaml:"column"`
	RowFromTop int  `yaml:"row_from_top"`
	Locked     bool `yaml:"locked"`
}

// WaveConfig is one wave of a room.
type WaveConfig struct {
	Entries []WaveEntryConfig `yaml:"entries"`
}

// WaveEntryConfig spawns Count enemies of one kind.
type WaveEntryConfig struct {
	Enemy string `yaml:"enemy"`
	Count int    `yaml:"count"`
	HP    int    `yaml:"hp"`
}

// LootConfig defines loot defaults.
type LootConfig struct {
	BagTile     string `yaml:"bag_tile"`
	DefaultItem string `yaml:"default_item"`
}

// AnimConfig defines merge animation timing, in frames.
type AnimConfig struct {
	MergeFrames   int     `yaml:"merge_frames"`
	Stagger       int     `yaml:"stagger"`
	Arc           float64 `yaml:"arc"`
	HitStopFrames int     `yaml:"hit_stop_frames"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the known difficulty presets.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

// ParsePreset returns the preset named s, or false.
func ParsePreset(s string) (DifficultyPreset, bool) {
	for _, p := range Presets() {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// ApplyPreset adjusts pacing for a difficulty preset. A slower meter means
// more player actions per advance.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	cfg.Difficulty = preset
	switch preset {
	case DifficultyEasy:
		cfg.Turn.Threshold = 4
		cfg.Spawn.HPScale = 0.75
	case DifficultyNormal:
		cfg.Turn.Threshold = 3
		cfg.Spawn.HPScale = 1.0
	case DifficultyHard:
		cfg.Turn.Threshold = 2
		cfg.Spawn.HPScale = 1.5
		if cfg.Spawn.Every > 1 {
			cfg.Spawn.Every--
		}
	}
}

// Normalize fills zero values with defaults and clamps out-of-range fields.
func (c *GameConfig) Normalize() {
	def := DefaultGameConfig()
	if c.Board.Width <= 0 {
		c.Board.Width = def.Board.Width
	}
	if c.Board.Height < 3 {
		c.Board.Height = def.Board.Height
	}
	if c.Board.HeroRow < 0 || c.Board.HeroRow >= c.Board.Height {
		c.Board.HeroRow = 0
	}
	if c.Turn.Threshold <= 0 {
		c.Turn.Threshold = def.Turn.Threshold
	}
	if c.Spawn.Every <= 0 {
		c.Spawn.Every = def.Spawn.Every
	}
	if c.Spawn.IntervalFrames < 0 {
		c.Spawn.IntervalFrames = 0
	}
	if c.Spawn.RoomsPerFloor <= 0 {
		c.Spawn.RoomsPerFloor = def.Spawn.RoomsPerFloor
	}
	if c.Spawn.FallbackHP <= 0 {
		c.Spawn.FallbackHP = def.Spawn.FallbackHP
	}
	if c.Spawn.HPScale <= 0 {
		c.Spawn.HPScale = 1.0
	}
	if len(c.Spawn.Waves) == 0 {
		c.Spawn.Waves = def.Spawn.Waves
	}
	if c.Loot.BagTile == "" {
		c.Loot.BagTile = def.Loot.BagTile
	}
	if c.Loot.DefaultItem == "" {
		c.Loot.DefaultItem = def.Loot.DefaultItem
	}
	if c.Anim.MergeFrames <= 0 {
		c.Anim.MergeFrames = def.Anim.MergeFrames
	}
	if c.Anim.Stagger < 0 {
		c.Anim.Stagger = 0
	}
	if c.Anim.HitStopFrames < 0 {
		c.Anim.HitStopFrames = 0
	}
	if len(c.Heroes) == 0 {
		c.Heroes = def.Heroes
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyNormal
	}
}
