// Package registry provides a global registry for level factories.
// Levels register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatshot/internal/audio"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
)

// Game is the interface every playable level implements.
// The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID returns a unique identifier (e.g., "level1").
	// Used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or restarts the level. Any audio or beat session
	// from a previous run is stopped first.
	Reset(cfg core.RuntimeConfig) error

	// Step advances the level by dt wall-clock seconds.
	Step(in core.InputFrame, dt float64) core.StepResult

	// Render draws the current state into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState

	// Result returns the statistics of the current run for persistence.
	Result() core.RunStats

	// Close releases audio resources. Safe to call more than once.
	Close()
}

// Env carries process-wide dependencies into level factories.
type Env struct {
	Logger     *log.Logger
	OpenAudio  audio.Opener // Nil plays muted
	Sync       config.SyncConfig
	Assets     string // Directory that beatmap and music paths are relative to
	LevelPath  string // Optional level YAML overriding the embedded one
	Difficulty config.DifficultyPreset
	Now        func() time.Time
}

// GameInfo contains metadata about a registered level.
type GameInfo struct {
	ID    string
	Title string
	Order int
}

// Factory is a function that creates a new level instance.
type Factory func(env Env) Game

type entry struct {
	factory Factory
	info    GameInfo
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a level factory to the registry.
// Panics if a level with the same ID is already registered.
func Register(id string, order int, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: level %q already registered", id))
	}

	// Get title by creating a temporary instance
	g := f(Env{})
	entries[id] = entry{
		factory: f,
		info:    GameInfo{ID: id, Title: g.Title(), Order: order},
	}
}

// List returns all registered levels, sorted by order then ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a level by its ID.
// Returns an error if the ID is not registered.
func Create(id string, env Env) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown level %q", id)
	}

	return e.factory(env), nil
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
