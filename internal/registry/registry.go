// Package registry provides a global registry for enemy turn behaviours.
// Behaviours register themselves in init() functions, allowing enemy
// definitions to name them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/mergecrawl/internal/board"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/entity"
)

// Behaviour decides what an enemy does during an advance.
type Behaviour interface {
	// Name returns the identifier enemy definitions refer to.
	Name() string

	// ExecuteTurn runs the enemy's turn. It returns false to fall back to
	// the default downward step.
	ExecuteTurn(e *entity.Enemy, ctx TurnContext) bool
}

// SlotInfo is the bench-slot metadata an enemy targets with.
type SlotInfo struct {
	Index      int
	Column     int
	RowFromTop int
}

// Actor performs board mutations on behalf of a behaviour. The step engine
// implements it so that events and invariants stay in one place.
type Actor interface {
	AttackHero(e *entity.Enemy, h *entity.Hero)
	SpawnDisruption(e *entity.Enemy, def *defs.TileDef, at board.Coord) bool
}

// TurnContext is what a behaviour sees. It is built fresh for every enemy
// and must not be retained.
type TurnContext struct {
	Registry *entity.Registry
	Heroes   []*entity.Hero // hero bench, ordered by column
	Slot     SlotInfo
	HasSlot  bool
	Act      Actor
}

// BehaviourInfo contains metadata about a registered behaviour.
type BehaviourInfo struct {
	Name string
}

// Factory is a function that creates a new behaviour.
type Factory func() Behaviour

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a behaviour factory to the registry.
// Typically called from an init() function.
// Panics if a behaviour with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registry: behaviour %q already registered", name))
	}

	factories[name] = f
}

// List returns information about all registered behaviours, sorted by name.
func List() []BehaviourInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]BehaviourInfo, 0, len(factories))
	for name := range factories {
		result = append(result, BehaviourInfo{Name: name})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a behaviour by name.
// Returns an error if the name is not registered.
func Create(name string) (Behaviour, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown behaviour %q", name)
	}

	return f(), nil
}

// Exists checks if a behaviour with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
