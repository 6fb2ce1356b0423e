// beatshot is a terminal arena shooter where attacks land hardest on the
// beat of the music and the player bends the tempo of the whole world.
//
// Usage:
//
//	beatshot levels            - List available levels
//	beatshot play <level>      - Play a level
//	beatshot menu              - Start menu to pick levels interactively
//	beatshot scores <level>    - Show high scores or run history
//	beatshot beats <file.mid>  - Inspect the beats of a MIDI file
//	beatshot serve             - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible waves
//	--db <path>           - Set database path (default: ~/.beatshot/scores.db)
//	--assets <dir>        - Directory holding beat maps and music
//	--sync-config <path>  - Custom time scale/beat/audio YAML
//	--difficulty <name>   - easy, normal or hard
//	--mute                - Play without audio
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/beatshot/internal/audio"
	"github.com/vovakirdan/beatshot/internal/config"
	"github.com/vovakirdan/beatshot/internal/core"
	"github.com/vovakirdan/beatshot/internal/registry"

	// Import levels to register them
	_ "github.com/vovakirdan/beatshot/internal/game"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagAssets     string
	flagSyncConfig string
	flagLogFile    string
	flagLogLevel   string
	flagMute       bool
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatshot",
	Short: "beatshot - strike on the beat, bend the tempo",
	Long: `beatshot is a terminal arena shooter driven by a music beat track.

Attacks that land on the beat are perfect; the mouse wheel or +/- bends
the speed of the world, and the music follows.

Available commands:
  levels   - Show all available levels
  play     - Play a specific level directly
  menu     - Interactive level picker menu
  scores   - View high scores and run history
  beats    - Inspect the beats of a MIDI file
  serve    - Start SSH server for remote play

Examples:
  beatshot levels
  beatshot play level1
  beatshot play level2 --difficulty hard --mute
  beatshot menu --assets ./assets
  beatshot serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	home := config.HomeDir()
	if home == "" {
		home = ".beatshot"
	}

	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.beatshot/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "assets", "Directory that beat map and music paths are relative to")
	rootCmd.PersistentFlags().StringVar(&flagSyncConfig, "sync-config", "", "Path to custom sync config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", filepath.Join(home, "beatshot.log"), "Log file path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagMute, "mute", false, "Play without audio")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "normal", "Difficulty preset: easy, normal, hard")

	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(beatsCmd)
	rootCmd.AddCommand(serveCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLogger opens the log file. The TUI owns the terminal, so logs never go
// to stderr while playing.
func newLogger() (*log.Logger, func()) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fail("invalid --log-level %q", flagLogLevel)
	}

	opts := log.Options{ReportTimestamp: true, Prefix: "beatshot", Level: level}

	if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err == nil {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			return log.NewWithOptions(f, opts), func() { f.Close() }
		}
	}

	fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s, logging disabled\n", flagLogFile)
	opts.Level = log.FatalLevel
	return log.NewWithOptions(os.Stderr, opts), func() {}
}

// session bundles what every level needs from the process.
type session struct {
	env      registry.Env
	device   *audio.Device
	closeLog func()
}

// newSession loads the sync config, opens the log and, unless muted, the
// audio device. Audio failures fall back to muted play.
func newSession(mute bool) *session {
	preset, ok := config.ParseDifficulty(flagDifficulty)
	if !ok {
		fail("unknown difficulty %q (expected easy, normal or hard)", flagDifficulty)
	}

	logger, closeLog := newLogger()

	sync, err := config.LoadSync(flagSyncConfig)
	if err != nil {
		logger.Warn("sync config unusable, using defaults", "path", flagSyncConfig, "error", err)
	}

	s := &session{
		env: registry.Env{
			Logger:     logger,
			Sync:       sync,
			Assets:     flagAssets,
			Difficulty: preset,
			Now:        time.Now,
		},
		closeLog: closeLog,
	}

	if mute || !sync.Audio.Enabled {
		logger.Info("audio disabled", "mute", mute)
		return s
	}

	dev, err := audio.NewDevice(sync.Audio.SampleRate)
	if err != nil {
		logger.Warn("no audio output, playing muted", "error", err)
		return s
	}
	s.device = dev
	s.env.OpenAudio = audio.NewFileOpener(dev, sync.Audio.Loop)
	return s
}

func (s *session) Close() {
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			s.env.Logger.Warn("audio device close", "error", err)
		}
	}
	s.closeLog()
}

// runtimeConfig sizes the screen from the controlling terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
