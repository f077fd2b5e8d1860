package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zemerlab/zemer/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zemer",
	Short: "Bilingual song subtitle generator",
	Long: `Zemer turns songs into bilingual subtitle assets.

It transcribes lyrics with AI, translates them to Hebrew, caches both
tracks as SRT files, merges them into combined bilingual cues, and
renders each cue as a transparent PNG frame for video assembly.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; flags and real env vars win
		_ = godotenv.Load()
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		String("cache-dir", "subtitles", "Directory for cached SRT files")
	rootCmd.PersistentFlags().
		StringP("language", "l", "en", "Source language code (e.g. en, yi)")
}
