package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zemerlab/zemer/internal/subtitle"
	"google.golang.org/genai"
)

// transcribes songs using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe uploads the audio and asks for a timed lyric transcript.
// The response is constrained to a JSON array of cue objects with
// compact timestamps; any schema or parse failure fails the whole call.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*subtitle.Track, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, cueSchemaConfig())
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	cues, err := parseCueResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	return toTrack(cues, t.options.Language), nil
}

// constrains the response to the cue array contract
func cueSchemaConfig() *genai.GenerateContentConfig {
	timeSchema := &genai.Schema{
		Type:    genai.TypeString,
		Pattern: `^\d{2}:\d{2}\.\d{3}$`,
	}
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":         {Type: genai.TypeInteger},
					"start_time": timeSchema,
					"end_time":   timeSchema,
					"text":       {Type: genai.TypeString},
				},
				Required: []string{"id", "start_time", "end_time", "text"},
			},
		},
	}
}

func (t *GeminiTranscriber) buildPrompt() string {
	var sb strings.Builder

	sb.WriteString("Transcribe the lyrics of this song line by line. ")
	sb.WriteString("For each sung line, provide its id, start timestamp, end timestamp, and the exact words sung. ")
	sb.WriteString("Timestamps use the MM:SS.mmm format, for example 01:23.450. ")
	sb.WriteString("Respond with a JSON array of objects with 'id', 'start_time', 'end_time' and 'text' fields. ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The song is sung in %s. ", t.options.Language))
	}

	if t.options.Lyrics != "" {
		sb.WriteString("The known lyrics of this song are:\n\n")
		sb.WriteString(t.options.Lyrics)
		sb.WriteString("\n\nAlign your transcription to these lyrics. ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into wire cues
func parseCueResponse(result *genai.GenerateContentResponse) ([]wireCue, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	responseText = cleanJSONResponse(responseText)

	cues, err := extractCues(responseText)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, truncateString(responseText, 200))
	}

	return cues, nil
}

// removes markdown code fences from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// finds the first decodable cue array in the text, tolerating preamble,
// trailing prose and common wrapper objects
func extractCues(text string) ([]wireCue, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if cues, ok := tryExtractCues(raw); ok {
			return cues, nil
		}
	}
	return nil, fmt.Errorf("no valid cue JSON found in response")
}

func tryExtractCues(raw json.RawMessage) ([]wireCue, bool) {
	var cues []wireCue
	if err := json.Unmarshal(raw, &cues); err == nil && validateCues(cues) {
		return cues, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	wrapperKeys := []string{"cues", "lyrics", "segments", "data", "items"}
	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			if cues, ok := tryExtractCues(fieldRaw); ok {
				return cues, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		if cues, ok := tryExtractCues(fieldRaw); ok {
			return cues, true
		}
	}

	return nil, false
}

// a cue list is usable when at least one entry has text or timing
func validateCues(cues []wireCue) bool {
	for _, c := range cues {
		if c.Text != "" || c.StartTime != "" || c.EndTime != "" {
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

func (t *GeminiTranscriber) Close() error {
	return nil
}
