package songs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Song identifies one track to process: a display name plus either a
// source URL or a local media path, with optional known lyrics used as
// a transcription hint.
type Song struct {
	Name       string
	URL        string
	MediaPath  string
	Lyrics     string
	SourceLang string
}

// the fixed translation language of the whole system
const TargetLang = "he"

var (
	sanitizeRegex = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
	youtubeRegex  = regexp.MustCompile(
		`(?:youtube\.com/(?:watch\?v=|shorts/|embed/)|youtu\.be/)([A-Za-z0-9_-]{6,})`,
	)
)

// SanitizeName reduces a free-form song name to a filename-safe token.
func SanitizeName(name string) string {
	s := sanitizeRegex.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "untitled"
	}
	return s
}

// VideoID extracts a YouTube video id from watch, shorts, embed or
// youtu.be URLs. Returns "" when the URL carries none.
func VideoID(url string) string {
	matches := youtubeRegex.FindStringSubmatch(url)
	if matches == nil {
		return ""
	}
	return matches[1]
}

// Identifier disambiguates songs sharing a name: the video id when the
// URL has one, otherwise the sanitized media basename.
func (s Song) Identifier() string {
	if id := VideoID(s.URL); id != "" {
		return id
	}
	base := filepath.Base(s.MediaPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return SanitizeName(base)
}

// CachePaths derives the deterministic SRT cache paths for the song's
// source track and its Hebrew translation. The same song and language
// always map to the same files across runs.
func (s Song) CachePaths(dir string) (sourcePath, targetPath string) {
	base := fmt.Sprintf("%s_%s", SanitizeName(s.Name), s.Identifier())
	sourcePath = filepath.Join(dir, fmt.Sprintf("%s_%s.srt", base, s.SourceLang))
	targetPath = filepath.Join(dir, fmt.Sprintf("%s_%s.srt", base, TargetLang))
	return sourcePath, targetPath
}
