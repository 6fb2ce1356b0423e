package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/vovakirdan/beatshot/internal/beat"
)

var (
	flagMergeMS int
	flagNotes   int
)

var beatsCmd = &cobra.Command{
	Use:   "beats <file.mid>",
	Short: "Inspect the beats of a MIDI file",
	Long: `Read a Standard MIDI File the way a level does and print its timing:
resolution, tempo changes, note onsets and the beat map left after chord
merging.

Examples:
  beatshot beats assets/level1.mid
  beatshot beats song.mid --notes 40 --merge-ms 50`,
	Args: cobra.ExactArgs(1),
	Run:  runBeats,
}

func init() {
	beatsCmd.Flags().IntVar(&flagMergeMS, "merge-ms", 30, "Chord merge window in milliseconds")
	beatsCmd.Flags().IntVar(&flagNotes, "notes", 16, "Number of note onsets to list")
}

func runBeats(_ *cobra.Command, args []string) {
	path := args[0]

	info, err := beat.Inspect(path)
	if err != nil {
		fail("%v", err)
	}

	raw := info.Map()
	merged := raw.Merge(float64(flagMergeMS) / 1000)

	fmt.Printf("File:         %s\n", path)
	fmt.Printf("Format:       %d (%d tracks)\n", info.Format, info.Tracks)
	fmt.Printf("Resolution:   %d ticks/quarter\n", info.Resolution)
	fmt.Printf("Tempo events: %d\n", info.TempoEvents)
	fmt.Printf("Duration:     %.3fs\n", info.Duration)
	fmt.Printf("Notes:        %d\n", len(info.Notes))
	fmt.Printf("Beats:        %d after %dms chord merge\n", merged.Len(), flagMergeMS)

	if merged.Sufficient() {
		fmt.Printf("Estimated:    %.1f BPM (first interval %.3fs, last %.3fs)\n",
			merged.EstimateBPM(), merged.FirstInterval(), merged.LastInterval())
	} else {
		fmt.Println("Estimated:    not enough beats, levels fall back to a fixed tempo")
	}

	if len(info.Notes) == 0 || flagNotes <= 0 {
		return
	}

	fmt.Println()
	fmt.Printf("  %-10s  %-8s  %-5s  %-3s  %-4s  %s\n", "Time", "Tick", "Track", "Ch", "Note", "Vel")
	for i, n := range info.Notes {
		if i >= flagNotes {
			fmt.Printf("  ... %d more\n", len(info.Notes)-flagNotes)
			break
		}
		fmt.Printf("  %-10.4f  %-8d  %-5d  %-3d  %-4s  %d\n",
			n.Time, n.Tick, n.Track, n.Channel, midi.Note(n.Key).String(), n.Velocity)
	}
}
