package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zemerlab/zemer/internal/audio"
	"github.com/zemerlab/zemer/internal/pipeline"
	"github.com/zemerlab/zemer/internal/songs"
	"github.com/zemerlab/zemer/internal/subtitle"
	"github.com/zemerlab/zemer/internal/transcribe"
	"github.com/zemerlab/zemer/internal/translate"
)

var subtitlesCmd = &cobra.Command{
	Use:   "subtitles [media_file]",
	Short: "Generate or load the bilingual SRT pair for a song",
	Long: `Generate the source-language and Hebrew SRT tracks for a song.

Existing cache files are reused: each track is probed independently, so
a run that lost only its translation regenerates only the translation.
Video inputs have their audio extracted before transcription.

Examples:
  zemer subtitles song.mp3 --name "Shir LaShalom"
  zemer subtitles clip.mp4 --name "Hava Nagila" --url https://youtu.be/abc123xyz_-
  zemer subtitles song.mp3 --name "Oyfn Pripetshik" -l yi --lyrics-file lyrics.txt
  zemer subtitles song.mp3 --name "Shir LaShalom" --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSubtitles,
}

func init() {
	rootCmd.AddCommand(subtitlesCmd)

	subtitlesCmd.Flags().
		String("name", "", "Song name used for cache filenames (required)")
	subtitlesCmd.Flags().
		String("url", "", "Source URL; a YouTube video id in it disambiguates the cache")
	subtitlesCmd.Flags().
		String("lyrics-file", "", "Text file with known lyrics, used as a transcription hint")
	subtitlesCmd.Flags().
		StringP("api-key", "k", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	subtitlesCmd.Flags().
		String("model", "", "Model for transcription and translation")
	subtitlesCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	subtitlesCmd.Flags().
		Int("batch-size", 50, "Subtitle entries per translation request")
	subtitlesCmd.Flags().
		Int("concurrency", 3, "Parallel translation workers")
	subtitlesCmd.Flags().
		Bool("force", false, "Regenerate even when cache files exist")

	_ = subtitlesCmd.MarkFlagRequired("name")
}

func runSubtitles(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	song, cleanup, err := songFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	orchestrator, err := orchestratorFromFlags(ctx, cmd)
	if err != nil {
		return err
	}

	pair := orchestrator.GenerateOrLoad(ctx, song)
	if pair.Source == nil && pair.Target == nil {
		return fmt.Errorf("no tracks could be generated for %q", song.Name)
	}

	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	sourcePath, targetPath := song.CachePaths(cacheDir)

	report := func(label, path string, track *subtitle.Track) {
		if track == nil {
			fmt.Printf("  %s: FAILED\n", label)
			return
		}
		fmt.Printf("  %s: %s (%d cues)\n", label, path, len(track.Cues))
	}

	fmt.Printf("Subtitles for %q:\n", song.Name)
	report("source ("+song.SourceLang+")", sourcePath, pair.Source)
	report("target (he)", targetPath, pair.Target)

	return nil
}

// builds the song identity from flags, extracting audio from video
// inputs into a temp file; cleanup removes that temp file
func songFromFlags(cmd *cobra.Command, mediaPath string) (songs.Song, func(), error) {
	noop := func() {}

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return songs.Song{}, noop, fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return songs.Song{}, noop, fmt.Errorf(
			"unsupported file type: %s (expected audio or video file)",
			filepath.Ext(mediaPath),
		)
	}

	name, _ := cmd.Flags().GetString("name")
	url, _ := cmd.Flags().GetString("url")
	language, _ := cmd.Flags().GetString("language")
	lyricsFile, _ := cmd.Flags().GetString("lyrics-file")

	var lyrics string
	if lyricsFile != "" {
		data, err := os.ReadFile(lyricsFile)
		if err != nil {
			return songs.Song{}, noop, fmt.Errorf("failed to read lyrics file: %w", err)
		}
		lyrics = strings.TrimSpace(string(data))
	}

	song := songs.Song{
		Name:       name,
		URL:        url,
		MediaPath:  mediaPath,
		Lyrics:     lyrics,
		SourceLang: language,
	}

	if !audio.IsVideoFile(mediaPath) {
		return song, noop, nil
	}

	logger.Infow("Extracting audio from video", "input", mediaPath)

	tempDir, err := os.MkdirTemp("", "zemer-*")
	if err != nil {
		return songs.Song{}, noop, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	// keep the original basename so the cache identifier is unchanged
	// by the extraction
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	audioPath := filepath.Join(tempDir, base+".mp3")
	if err := audio.ExtractAudio(
		context.Background(),
		mediaPath,
		audioPath,
		audio.DefaultCompressionOptions(),
	); err != nil {
		cleanup()
		return songs.Song{}, noop, fmt.Errorf("failed to extract audio: %w", err)
	}

	song.MediaPath = audioPath
	return song, cleanup, nil
}

// wires the orchestrator from flags: store, transcriber, translator
func orchestratorFromFlags(ctx context.Context, cmd *cobra.Command) (*pipeline.Orchestrator, error) {
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	force, _ := cmd.Flags().GetBool("force")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	language, _ := cmd.Flags().GetString("language")
	lyricsFile, _ := cmd.Flags().GetString("lyrics-file")

	geminiKey := apiKey
	if geminiKey == "" {
		geminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required: use --api-key flag or set GEMINI_API_KEY environment variable")
	}

	var lyrics string
	if lyricsFile != "" {
		if data, err := os.ReadFile(lyricsFile); err == nil {
			lyrics = strings.TrimSpace(string(data))
		}
	}

	transcriber, err := transcribe.NewGeminiTranscriber(ctx, geminiKey, transcribe.Options{
		Language: language,
		Model:    model,
		Lyrics:   lyrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	provider := translate.Provider(providerStr)
	translatorKey := translateAPIKey(provider, apiKey)
	if translatorKey == "" {
		return nil, fmt.Errorf("API key for translation provider %q is required", provider)
	}

	translator, err := translate.Factory(ctx, provider, translatorKey, translate.Options{
		SourceLanguage: language,
		Model:          model,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	cfg := pipeline.Config{
		CacheDir:        cacheDir,
		ForceRegenerate: force,
	}

	return pipeline.New(
		subtitle.NewStore(logger),
		transcriber,
		translate.NewTrackService(translator, translate.DefaultTarget),
		cfg,
		logger,
	), nil
}

func translateAPIKey(provider translate.Provider, flagKey string) string {
	if flagKey != "" {
		return flagKey
	}
	switch provider {
	case translate.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case translate.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case translate.ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}
