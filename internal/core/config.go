package core

// RuntimeConfig is what the front-end passes to a game on Reset: the screen
// it has and the seed for a new run.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second (default 60)
	Seed     int64 // RNG seed; 0 lets the platform pick one from the clock
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 60 fps.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// GameState is the per-frame status the platform reads after Step.
type GameState struct {
	Score    int
	GameOver bool // every hero is downed
	Paused   bool // paused by the player or the window is too small
	Floor    int  // zero-based
	Room     int
}

// StepResult is returned by Game.Step after each frame.
type StepResult struct {
	State GameState
}
