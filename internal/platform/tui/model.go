package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/beatshot/internal/core"
	"github.com/vovakirdan/beatshot/internal/registry"
	"github.com/vovakirdan/beatshot/internal/storage"
)

// Model is the Bubble Tea model for running a level.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	lastTick   time.Time
	embedded   bool // Back returns to a parent menu instead of quitting
	quitting   bool
	backToMenu bool
	runSaved   bool // Whether the finished run has been persisted
}

// NewModel creates a new Bubble Tea model for the given level and resets
// it to the configured screen size.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) (Model, error) {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := game.Reset(cfg); err != nil {
		return Model{}, fmt.Errorf("tui: cannot start %s: %w", game.ID(), err)
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		logger:     logger,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		gameState:  game.State(),
	}, nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if a := m.keyMapper.MapMouse(msg); a != core.ActionNone {
			m.inputFrame.Set(a)
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quit()
		return m, tea.Quit
	}

	// B or Esc leaves only when the run is over or paused
	if m.inputFrame.Has(core.ActionBack) && (m.gameState.Finished() || m.gameState.Paused) {
		m.game.Close()
		if m.embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleResize processes window resize events. The arena is sized at reset,
// so a changed size restarts a run that is still in progress.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Width == m.config.ScreenW && msg.Height == m.config.ScreenH {
		return m, nil
	}
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if !m.gameState.Finished() {
		if err := m.game.Reset(m.config); err != nil {
			m.logger.Error("reset after resize failed", "level", m.game.ID(), "error", err)
		}
		m.gameState = m.game.State()
		m.lastTick = time.Time{}
	}

	return m, nil
}

// handleTick advances the level by the wall-clock time since the last tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}

	dt := frameDt(m.lastTick, now, m.config.TickRate)
	m.lastTick = now

	result := m.game.Step(m.inputFrame, dt)
	m.gameState = result.State

	if m.gameState.Finished() {
		m.saveRun()
	} else {
		m.runSaved = false
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.config.TickRate)
}

// saveRun persists the finished run once.
func (m *Model) saveRun() {
	if m.runSaved {
		return
	}
	m.runSaved = true
	if m.store == nil {
		return
	}

	stats := m.game.Result()
	if stats.Score > 0 {
		if _, err := m.store.SaveScore(m.game.ID(), stats.Score); err != nil {
			m.logger.Warn("score not saved", "level", m.game.ID(), "error", err)
		}
	}
	if _, err := m.store.SaveRun(m.game.ID(), stats); err != nil {
		m.logger.Warn("run not saved", "level", m.game.ID(), "error", err)
		return
	}
	m.logger.Info("run saved", "level", m.game.ID(), "score", stats.Score, "won", stats.Won)
}

func (m *Model) quit() {
	m.quitting = true
	m.game.Close()
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.draw()

	dir := filepath.Join(os.Getenv("HOME"), ".beatshot", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("screenshot directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot not saved", "path", path, "error", err)
	}
}

// draw renders the level and its effects into the screen buffer.
func (m Model) draw() {
	m.screen.Clear()
	m.game.Render(m.screen)
	if src, ok := m.game.(effectsSource); ok && !m.gameState.Finished() {
		frame, clip := src.Effects()
		DrawEffects(m.screen, frame, clip)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	m.draw()
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given level.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	model, err := NewModel(game, store, cfg, logger)
	if err != nil {
		return err
	}
	defer game.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // Wheel scales time
	)

	_, err = p.Run()
	return err
}
