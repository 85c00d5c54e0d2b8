package config

import (
	_ "embed"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

// DefaultGameYAML returns the embedded default configuration.
func DefaultGameYAML() []byte {
	return defaultGameYAML
}

// DefaultGameConfig returns the hardcoded default configuration.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Board: BoardConfig{
			Width:   5,
			Height:  7,
			HeroRow: 0,
		},
		Turn: TurnConfig{
			Threshold: 3,
		},
		Spawn: SpawnConfig{
			Every:          2,
			IntervalFrames: 0,
			RoomsPerFloor:  3,
			FallbackHP:     3,
			HPScale:        1.0,
			Slots: []SlotConfig{
				{Column: 0, RowFromTop: 0},
				{Column: 2, RowFromTop: 0},
				{Column: 4, RowFromTop: 0},
			},
			Waves: []WaveConfig{
				{Entries: []WaveEntryConfig{{Enemy: "goblin", Count: 2}}},
				{Entries: []WaveEntryConfig{{Enemy: "goblin", Count: 1}, {Enemy: "archer", Count: 1}}},
				{Entries: []WaveEntryConfig{{Enemy: "brute", Count: 1}, {Enemy: "sentry", Count: 1}}},
			},
		},
		Loot: LootConfig{
			BagTile:     "loot_bag",
			DefaultItem: "coin",
		},
		Anim: AnimConfig{
			MergeFrames:   10,
			Stagger:       4,
			Arc:           0.6,
			HitStopFrames: 4,
		},
		Heroes:     []string{"knight", "ranger"},
		Starting:   []string{"spark", "spark", "twig", "twig", "berry"},
		Difficulty: DifficultyNormal,
	}
}
