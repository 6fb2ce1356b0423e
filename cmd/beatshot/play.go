package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatshot/internal/platform/tui"
	"github.com/vovakirdan/beatshot/internal/registry"
	"github.com/vovakirdan/beatshot/internal/storage"
)

var flagConfig string

var playCmd = &cobra.Command{
	Use:   "play <level>",
	Short: "Play a level",
	Long: `Start playing the specified level.

Controls:
  WASD/Arrows     - Move
  Space           - Shockwave attack (perfect on the beat)
  X               - Dash
  +/= and -       - Speed the world up or slow it down
  Mouse wheel     - Same as +/-
  P               - Pause
  R               - Restart (after the run ends)
  B/Esc           - Leave (after the run ends or while paused)
  Q/Ctrl+C        - Quit

Examples:
  beatshot play level1
  beatshot play level2 --difficulty easy
  beatshot play level3 --mute --seed 42
  beatshot play level1 --config ./my-level.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom level config YAML")
}

func runPlay(cmd *cobra.Command, args []string) {
	levelID := args[0]

	if !registry.Exists(levelID) {
		fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
		fmt.Fprintln(os.Stderr, "Run 'beatshot levels' to see available levels.")
		os.Exit(1)
	}

	sess := newSession(flagMute)
	sess.env.LevelPath = flagConfig

	game, err := registry.Create(levelID, sess.env)
	if err != nil {
		sess.Close()
		fail("creating level: %v", err)
	}

	// Continue without storage - the level still plays
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	}

	runErr := tui.Run(game, store, runtimeConfig(), sess.env.Logger)

	if store != nil {
		store.Close()
	}
	sess.Close()

	if runErr != nil {
		fail("running level: %v", runErr)
	}
}
