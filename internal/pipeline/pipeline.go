package pipeline

import (
	"context"

	"github.com/zemerlab/zemer/internal/logging"
	"github.com/zemerlab/zemer/internal/songs"
	"github.com/zemerlab/zemer/internal/subtitle"
)

// Transcriber produces a timed source-language track from audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*subtitle.Track, error)
}

// TrackTranslator turns a source track into its Hebrew counterpart.
type TrackTranslator interface {
	TranslateTrack(ctx context.Context, src *subtitle.Track) (*subtitle.Track, error)
}

// Pair is the outcome of one song's generation: either track may be nil
// on partial failure, and callers render with whatever is available.
type Pair struct {
	Source *subtitle.Track
	Target *subtitle.Track
}

type Config struct {
	CacheDir        string
	ForceRegenerate bool
	Retry           RetryPolicy
}

// Orchestrator decides per song whether to load cached SRT files or to
// run the transcription and translation calls, persisting fresh results
// as soon as they exist. API and parse failures degrade to nil tracks;
// they are logged and never propagated, so one bad song cannot take
// down a batch.
type Orchestrator struct {
	store       *subtitle.Store
	transcriber Transcriber
	translator  TrackTranslator
	cfg         Config
	log         *logging.Logger
}

func New(
	store *subtitle.Store,
	transcriber Transcriber,
	translator TrackTranslator,
	cfg Config,
	log *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		transcriber: transcriber,
		translator:  translator,
		cfg:         cfg,
		log:         log,
	}
}

// GenerateOrLoad returns the (source, target) pair for the song,
// preferring the on-disk cache. Each cache file is probed
// independently, so a run that lost only its translation regenerates
// only the translation.
func (o *Orchestrator) GenerateOrLoad(ctx context.Context, song songs.Song) Pair {
	sourcePath, targetPath := song.CachePaths(o.cfg.CacheDir)

	var pair Pair
	if !o.cfg.ForceRegenerate {
		pair.Source = o.loadCached(sourcePath, song.SourceLang)
		pair.Target = o.loadCached(targetPath, songs.TargetLang)
		if pair.Source != nil && pair.Target != nil {
			o.log.Debugw("Both tracks loaded from cache",
				"song", song.Name,
				"source", sourcePath,
				"target", targetPath,
			)
			return pair
		}
	}

	if pair.Source == nil {
		pair.Source = o.transcribe(ctx, song, sourcePath)
	}

	if pair.Source == nil {
		// cannot translate without a source
		o.log.Errorw("Transcription unavailable, skipping translation",
			"song", song.Name,
			"language", song.SourceLang,
		)
		return pair
	}

	if pair.Target == nil {
		pair.Target = o.translate(ctx, song, pair.Source, targetPath)
	}

	return pair
}

func (o *Orchestrator) loadCached(path, language string) *subtitle.Track {
	track, err := o.store.Load(path)
	if err != nil {
		o.log.Warnw("Failed to load cached track", "path", path, "error", err)
		return nil
	}
	if track != nil {
		track.Language = language
	}
	return track
}

func (o *Orchestrator) transcribe(ctx context.Context, song songs.Song, path string) *subtitle.Track {
	o.log.Infow("Transcribing song",
		"song", song.Name,
		"language", song.SourceLang,
	)

	var track *subtitle.Track
	err := o.cfg.Retry.Do(ctx, func() error {
		var callErr error
		track, callErr = o.transcriber.Transcribe(ctx, song.MediaPath)
		return callErr
	})
	if err != nil {
		o.log.Errorw("Transcription failed",
			"song", song.Name,
			"language", song.SourceLang,
			"error", err,
		)
		return nil
	}

	// persist immediately so a later translation failure cannot lose
	// the transcription work
	if err := o.store.Save(path, track); err != nil {
		o.log.Warnw("Failed to persist transcription", "path", path, "error", err)
	}

	o.log.Infow("Transcription complete",
		"song", song.Name,
		"cues", len(track.Cues),
	)
	return track
}

func (o *Orchestrator) translate(ctx context.Context, song songs.Song, source *subtitle.Track, path string) *subtitle.Track {
	o.log.Infow("Translating song",
		"song", song.Name,
		"target", songs.TargetLang,
	)

	var track *subtitle.Track
	err := o.cfg.Retry.Do(ctx, func() error {
		var callErr error
		track, callErr = o.translator.TranslateTrack(ctx, source)
		return callErr
	})
	if err != nil {
		o.log.Errorw("Translation failed",
			"song", song.Name,
			"target", songs.TargetLang,
			"error", err,
		)
		return nil
	}

	if err := o.store.Save(path, track); err != nil {
		o.log.Warnw("Failed to persist translation", "path", path, "error", err)
	}

	o.log.Infow("Translation complete",
		"song", song.Name,
		"cues", len(track.Cues),
	)
	return track
}
