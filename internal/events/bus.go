package events

import "github.com/vovakirdan/mergecrawl/internal/board"

// EnemySpawned is published after an enemy is placed on the board.
type EnemySpawned struct {
	ID   board.ID
	Def  string
	Pos  board.Coord
	HP   int
	Boss bool
}

// EnemyDied is published once per enemy death, before loot is resolved.
type EnemyDied struct {
	ID   board.ID
	Def  string
	Pos  board.Coord
	Boss bool
}

// TargetKind says what a DamageDealt event hit.
type TargetKind int

const (
	TargetEnemy TargetKind = iota
	TargetHero
)

// DamageDealt is published for every hit on an enemy or hero.
type DamageDealt struct {
	Target board.ID
	Kind   TargetKind
	Pos    board.Coord
	Amount int
	Source string // tile or enemy definition id
}

// AdvanceFired is published when the advance meter fills.
type AdvanceFired struct {
	Count int // advances fired so far in this run
}

// MergeCompleted is published when a merge group's animation finishes and
// the output is placed.
type MergeCompleted struct {
	Anchor   board.Coord
	Output   string
	Consumed int
	Produced int
}

// TileDestroyed is published when a tile leaves the board for good.
type TileDestroyed struct {
	ID     board.ID
	Def    string
	Pos    board.Coord
	Reason string
}

// HeroDowned is published once when a hero reaches 0 HP.
type HeroDowned struct {
	ID  board.ID
	Def string
	Pos board.Coord
}

// HitStop asks the frame clock to pause for Frames frames.
type HitStop struct {
	Frames int
}

// RoomCleared is published when the last enemy of a room dies and no waves
// remain.
type RoomCleared struct {
	Floor int
	Room  int
}

// Bus groups the channels the simulation publishes on.
type Bus struct {
	EnemySpawned   Channel[EnemySpawned]
	EnemyDied      Channel[EnemyDied]
	DamageDealt    Channel[DamageDealt]
	AdvanceFired   Channel[AdvanceFired]
	MergeCompleted Channel[MergeCompleted]
	TileDestroyed  Channel[TileDestroyed]
	HeroDowned     Channel[HeroDowned]
	HitStop        Channel[HitStop]
	RoomCleared    Channel[RoomCleared]
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}
