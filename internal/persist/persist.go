// Package persist saves and restores the state needed to resume a run.
// Stores are YAML with a version stamp; there is no migration beyond
// rejecting versions this build does not understand.
package persist

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Version is stamped on every save.
const Version = 1

// TileState is a tile on the board.
type TileState struct {
	Def       string         `yaml:"def"`
	X         int            `yaml:"x"`
	Y         int            `yaml:"y"`
	Remaining int            `yaml:"remaining,omitempty"`
	Table     string         `yaml:"table,omitempty"`
	Stored    map[string]int `yaml:"stored,omitempty"`
}

// EnemyState is a live enemy.
type EnemyState struct {
	Def   string `yaml:"def"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	HP    int    `yaml:"hp"`
	MaxHP int    `yaml:"max_hp"`
	Slot  int    `yaml:"slot"`
}

// HeroState is a hero.
type HeroState struct {
	Def     string `yaml:"def"`
	X       int    `yaml:"x"`
	HP      int    `yaml:"hp"`
	Level   int    `yaml:"level"`
	Exp     int    `yaml:"exp"`
	Stamina int    `yaml:"stamina"`
}

// State is a resumable run.
type State struct {
	Version  int    `yaml:"version"`
	RunID    string `yaml:"run_id"`
	Seed     int64  `yaml:"seed"`
	Floor    int    `yaml:"floor"`
	Room     int    `yaml:"room"`
	Wave     int    `yaml:"wave"`
	Meter    int    `yaml:"meter"`
	Advances int    `yaml:"advances"`
	Score    int    `yaml:"score"`
	Kills    int    `yaml:"kills"`
	Merges   int    `yaml:"merges"`

	Tiles   []TileState  `yaml:"tiles,omitempty"`
	Enemies []EnemyState `yaml:"enemies,omitempty"`
	Heroes  []HeroState  `yaml:"heroes,omitempty"`
}

// Service stores one run state.
type Service interface {
	// Save writes st, replacing any previous save.
	Save(ctx context.Context, st State) error
	// SaveAsync writes st in the background. The channel receives exactly
	// one value and is then closed.
	SaveAsync(ctx context.Context, st State) <-chan error
	// Load returns the saved state. ok is false when there is no usable
	// save; the caller starts a fresh run.
	Load(ctx context.Context) (State, bool)
	// Clear removes the save.
	Clear(ctx context.Context) error
}

// Encode stamps and marshals st.
func Encode(st State) ([]byte, error) {
	st.Version = Version
	data, err := yaml.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("persist: encode: %w", err)
	}
	return data, nil
}

// Decode unmarshals data and checks the version stamp.
func Decode(data []byte) (State, error) {
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("persist: decode: %w", err)
	}
	if st.Version < 1 || st.Version > Version {
		return State{}, fmt.Errorf("persist: unsupported version %d", st.Version)
	}
	return st, nil
}

func async(ctx context.Context, save func(context.Context, State) error, st State) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- save(ctx, st)
	}()
	return ch
}
