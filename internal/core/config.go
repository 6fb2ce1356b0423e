package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second requested from the platform
	Seed     int64 // RNG seed for wave spawning
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a level.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score     int     // Current score
	Wave      int     // 1-based wave number
	Health    int     // Player health
	Combo     int     // Consecutive perfect kills
	TimeScale float64 // Current simulation speed
	GameOver  bool    // Player died
	Won       bool    // Every wave cleared
	Paused    bool    // Whether the level is paused
}

// Finished reports whether the run is over, won or lost.
func (s GameState) Finished() bool {
	return s.GameOver || s.Won
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
	Beats int // Beats dispatched this frame
}

// RunStats summarizes one finished run for persistence.
type RunStats struct {
	Score          int
	Won            bool
	WavesCleared   int
	Kills          int
	PerfectHits    int
	OffBeatHits    int
	MaxCombo       int
	Beats          int     // Beats crossed during the run
	FinalTimeScale float64 // Time scale when the run ended
	Duration       float64 // Wall-clock seconds spent unpaused
}
