package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zemerlab/zemer/internal/subtitle"
	"github.com/zemerlab/zemer/internal/timecode"
)

// one cue on the wire: compact MM:SS.mmm timestamps, as in transcription
type Item struct {
	ID        int    `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// interface for cue translation
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Item, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	SourceLanguage string
	TargetLanguage string // defaults to Hebrew
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
	Concurrency    int // parallel batch workers (default 3)
}

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
	DefaultTarget      = "Hebrew"
)

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

func (o Options) target() string {
	if o.TargetLanguage != "" {
		return o.TargetLanguage
	}
	return DefaultTarget
}

// creates a Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// TranslateTrack re-serializes the source track into wire items, runs
// them through the translator, and rebuilds a track in the target
// language. Result timing is used when valid, otherwise the source
// cue's timing is kept.
func TranslateTrack(
	ctx context.Context,
	tr Translator,
	src *subtitle.Track,
	targetLang string,
) (*subtitle.Track, error) {
	if src == nil || len(src.Cues) == 0 {
		return &subtitle.Track{Language: targetLang}, nil
	}

	items := make([]Item, len(src.Cues))
	for i, cue := range src.Cues {
		items[i] = Item{
			ID:        cue.ID,
			StartTime: timecode.ToCompact(cue.Start),
			EndTime:   timecode.ToCompact(cue.End),
			Text:      cue.Text,
		}
	}

	results, err := tr.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]subtitle.Cue, len(src.Cues))
	for _, cue := range src.Cues {
		byID[cue.ID] = cue
	}

	out := &subtitle.Track{Language: targetLang}
	for _, res := range results {
		cue := subtitle.Cue{
			ID:    res.ID,
			Start: timecode.FromCompact(res.StartTime),
			End:   timecode.FromCompact(res.EndTime),
			Text:  strings.TrimSpace(res.Text),
		}
		if cue.End <= cue.Start {
			if orig, ok := byID[res.ID]; ok && orig.ValidTiming() {
				cue.Start = orig.Start
				cue.End = orig.End
			} else {
				cue.End = cue.Start + subtitle.MinCueDuration
			}
		}
		out.Cues = append(out.Cues, cue)
	}

	sort.Slice(out.Cues, func(i, j int) bool {
		return out.Cues[i].Start < out.Cues[j].Start
	})

	return out, nil
}

// TrackService binds a Translator to a fixed target language so the
// pipeline can translate whole tracks without knowing the provider.
type TrackService struct {
	tr     Translator
	target string
}

func NewTrackService(tr Translator, target string) *TrackService {
	return &TrackService{tr: tr, target: target}
}

func (s *TrackService) TranslateTrack(
	ctx context.Context,
	src *subtitle.Track,
) (*subtitle.Track, error) {
	return TranslateTrack(ctx, s.tr, src, s.target)
}

// BuildPrompt creates the translation prompt shared by all providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.SourceLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s song lyrics to %s.\n\n",
			opts.SourceLanguage,
			opts.target(),
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following song lyrics to %s.\n\n",
			opts.target(),
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the 'text' field of each entry, preserving the meaning and tone.\n")
	sb.WriteString("2. Keep the 'id', 'start_time' and 'end_time' fields exactly as given.\n")
	sb.WriteString("3. Timestamps use the MM:SS.mmm format and must not be altered.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure and the same number of entries.\n")
	sb.WriteString("5. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

// splits items into batches and runs call over them with a bounded
// worker pool. All three providers share this scaffolding; only the
// API call differs.
func translateInBatches(
	ctx context.Context,
	opts Options,
	items []Item,
	call func(context.Context, []Item) ([]Item, error),
) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	batchSize := opts.batchSize()
	var batches [][]Item
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}

	if len(batches) == 1 {
		return call(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []Item
		Error   error
	}

	concurrency := opts.concurrency()
	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := call(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var allResults []Item
	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", result.Index, result.Error)
			}
			continue
		}
		allResults = append(allResults, result.Results...)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].ID < allResults[j].ID
	})

	return allResults, nil
}

// parses response text shared by all providers: strip fences, locate
// the cue array, check the count
func parseItemsResponse(responseText string, expectedCount int) ([]Item, error) {
	if responseText == "" {
		return nil, fmt.Errorf("no text in response")
	}

	responseText = cleanJSONResponse(responseText)

	results, err := extractItems(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != expectedCount {
		return nil, fmt.Errorf("expected %d results, got %d", expectedCount, len(results))
	}

	return results, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences the model sometimes emits, like
// \N carried over from subtitle conventions
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
				i += 2
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
				i += 2
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

func extractItems(text string) ([]Item, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if items, ok := tryExtractItems(raw); ok && len(items) > 0 {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func tryExtractItems(raw json.RawMessage) ([]Item, bool) {
	var items []Item
	if err := json.Unmarshal(raw, &items); err == nil && validateItems(items) {
		return items, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	wrapperKeys := []string{"results", "translations", "cues", "data", "items"}
	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			if items, ok := tryExtractItems(fieldRaw); ok {
				return items, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if items, ok := tryExtractItems(fieldRaw); ok {
			return items, true
		}
	}

	return nil, false
}

func validateItems(items []Item) bool {
	for _, it := range items {
		if it.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
