package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zemerlab/zemer/internal/merge"
	"github.com/zemerlab/zemer/internal/subtitle"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [source.srt] [target.srt]",
	Short: "Merge two SRT tracks into one bilingual SRT",
	Long: `Merge a source-language SRT and a Hebrew SRT into one track.

Cues are matched by id, not position, so a dropped cue on one side
cannot shift every later pairing. Each combined cue spans the union of
its two intervals.

Examples:
  zemer merge subtitles/song_en.srt subtitles/song_he.srt -o combined.srt
  zemer merge en.srt he.srt -o out.srt --fps 30 --duration 215.5`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().
		StringP("output", "o", "combined.srt", "Output SRT path")
	mergeCmd.Flags().
		Int("fps", 25, "Frame rate used for the minimum cue duration")
	mergeCmd.Flags().
		Float64("duration", 0, "Clamp cue intervals to this length in seconds (0 = no clamp)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	fps, _ := cmd.Flags().GetInt("fps")
	durationSecs, _ := cmd.Flags().GetFloat64("duration")

	store := subtitle.NewStore(logger)

	source, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load source track: %w", err)
	}
	target, err := store.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load target track: %w", err)
	}
	if source == nil && target == nil {
		return fmt.Errorf("neither input file exists")
	}

	combined := merge.Combine(source, target, merge.Options{
		FPS:           fps,
		TotalDuration: time.Duration(durationSecs * float64(time.Second)),
	})
	if len(combined) == 0 {
		return fmt.Errorf("no cues survived the merge")
	}

	track := &subtitle.Track{Cues: make([]subtitle.Cue, 0, len(combined))}
	for i, c := range combined {
		track.Cues = append(track.Cues, subtitle.Cue{
			ID:    i + 1,
			Start: c.Interval.Start,
			End:   c.Interval.End,
			Text:  c.Text,
		})
	}

	if err := store.Save(output, track); err != nil {
		return fmt.Errorf("failed to write merged track: %w", err)
	}

	fmt.Printf("Merged %d cues into %s\n", len(combined), output)
	return nil
}
