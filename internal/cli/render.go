package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zemerlab/zemer/internal/audio"
	"github.com/zemerlab/zemer/internal/merge"
	"github.com/zemerlab/zemer/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [media_file]",
	Short: "Run the full pipeline and render bilingual subtitle frames",
	Long: `Generate (or load) both subtitle tracks for a song, merge them
into bilingual cues, and render each cue as a transparent PNG frame.

Frame sizing, fonts and colors come from the style TOML; any field left
out keeps its default. Frames land in --frames-dir, one per cue,
named by the cue's start time.

Examples:
  zemer render song.mp3 --name "Shir LaShalom" --style style.toml
  zemer render clip.mp4 --name "Hava Nagila" --style style.toml --frames-dir out/frames`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		String("name", "", "Song name used for cache filenames (required)")
	renderCmd.Flags().
		String("url", "", "Source URL; a YouTube video id in it disambiguates the cache")
	renderCmd.Flags().
		String("lyrics-file", "", "Text file with known lyrics, used as a transcription hint")
	renderCmd.Flags().
		StringP("api-key", "k", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	renderCmd.Flags().
		String("model", "", "Model for transcription and translation")
	renderCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	renderCmd.Flags().
		Int("batch-size", 50, "Subtitle entries per translation request")
	renderCmd.Flags().
		Int("concurrency", 3, "Parallel translation workers")
	renderCmd.Flags().
		Bool("force", false, "Regenerate even when cache files exist")
	renderCmd.Flags().
		StringP("style", "s", "", "Style TOML file with fonts and colors (required)")
	renderCmd.Flags().
		String("frames-dir", "frames", "Directory for rendered PNG frames")

	_ = renderCmd.MarkFlagRequired("name")
	_ = renderCmd.MarkFlagRequired("style")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stylePath, _ := cmd.Flags().GetString("style")
	framesDir, _ := cmd.Flags().GetString("frames-dir")

	// style problems (missing fonts above all) must surface before any
	// API spend
	cfg, err := render.LoadConfig(stylePath)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(cfg)
	if err != nil {
		return err
	}

	song, cleanup, err := songFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	totalDuration, err := audio.Duration(ctx, song.MediaPath)
	if err != nil {
		logger.Warnw("Failed to probe media duration, cue clamping disabled",
			"path", song.MediaPath,
			"error", err,
		)
		totalDuration = 0
	}

	orchestrator, err := orchestratorFromFlags(ctx, cmd)
	if err != nil {
		return err
	}

	pair := orchestrator.GenerateOrLoad(ctx, song)
	if pair.Source == nil && pair.Target == nil {
		return fmt.Errorf("no tracks could be generated for %q", song.Name)
	}

	combined := merge.Combine(pair.Source, pair.Target, merge.Options{
		FPS:           cfg.FPS,
		TotalDuration: totalDuration,
	})
	if len(combined) == 0 {
		return fmt.Errorf("no cues to render for %q", song.Name)
	}

	capture := merge.NewCapture(framesDir, logger)
	rendered := 0
	for _, cue := range combined {
		if !capture.ShouldCapture(cue.ID) {
			continue
		}
		img := renderer.Render(cue.Text)
		if err := capture.Save(cue, img); err != nil {
			continue
		}
		rendered++
	}

	logger.Infow("Render complete",
		"song", song.Name,
		"cues", len(combined),
		"frames", rendered,
	)
	fmt.Printf("Rendered %d frames to %s\n", rendered, framesDir)
	return nil
}
