package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatshot/internal/registry"
	"github.com/vovakirdan/beatshot/internal/storage"
)

var (
	flagRuns  bool
	flagLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores <level>",
	Short: "Show high scores for a level",
	Long: `Display the top high scores for the specified level, or the latest
runs with their on-beat accuracy when --runs is given.

Examples:
  beatshot scores level1
  beatshot scores level2 --runs --limit 20`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagRuns, "runs", false, "Show run history instead of top scores")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rows to show")
}

func runScores(cmd *cobra.Command, args []string) {
	levelID := args[0]

	if !registry.Exists(levelID) {
		fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
		fmt.Fprintln(os.Stderr, "Run 'beatshot levels' to see available levels.")
		os.Exit(1)
	}

	title := levelID
	for _, l := range registry.List() {
		if l.ID == levelID {
			title = l.Title
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	defer store.Close()

	if flagRuns {
		printRuns(store, levelID, title)
		return
	}

	scores, err := store.TopScores(levelID, flagLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'beatshot play %s' to set the first high score!\n", levelID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")

	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if highScore, err := store.HighScore(levelID); err == nil {
		fmt.Printf("Best: %d\n", highScore)
	}
}

func printRuns(store *storage.Store, levelID, title string) {
	runs, err := store.RecentRuns(levelID, flagLimit)
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Printf("Run History - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	fmt.Printf("  %-16s  %-6s  %-7s  %-5s  %-9s  %-5s  %-5s  %s\n",
		"Date", "Result", "Score", "Waves", "Perfect", "Combo", "Scale", "Time")
	for _, r := range runs {
		result := "lost"
		if r.Stats.Won {
			result = "won"
		}
		fmt.Printf("  %-16s  %-6s  %-7d  %-5d  %-9s  x%-4d  %-5.1f  %.0fs\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			result,
			r.Stats.Score,
			r.Stats.WavesCleared,
			fmt.Sprintf("%d/%d", r.Stats.PerfectHits, r.Stats.PerfectHits+r.Stats.OffBeatHits),
			r.Stats.MaxCombo,
			r.Stats.FinalTimeScale,
			r.Stats.Duration,
		)
	}

	if stats, err := store.LevelStats(levelID); err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d  Wins: %d  Best: %d  Avg: %.0f  On-beat: %.0f%%\n",
			stats.Runs, stats.Wins, stats.HighScore, stats.AvgScore, stats.Accuracy()*100)
	}
}
