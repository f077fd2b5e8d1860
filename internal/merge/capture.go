package merge

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/zemerlab/zemer/internal/logging"
	"github.com/zemerlab/zemer/internal/songs"
)

// Capture snapshots each combined cue's frame to disk the first time
// the cue becomes active, for human review. The seen set guarantees at
// most one file per cue id no matter how many frames fall inside its
// interval.
type Capture struct {
	dir  string
	seen map[string]struct{}
	log  *logging.Logger
}

func NewCapture(dir string, log *logging.Logger) *Capture {
	return &Capture{
		dir:  dir,
		seen: make(map[string]struct{}),
		log:  log,
	}
}

// ShouldCapture reports whether the cue id is being seen for the first
// time, and marks it seen.
func (c *Capture) ShouldCapture(id string) bool {
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	return true
}

// Save writes the cue's rendered frame as a PNG. Call only after
// ShouldCapture returned true. Failures are logged and returned but
// never abort a render pass.
func (c *Capture) Save(cue Combined, img image.Image) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.log.Warnw("Failed to create capture directory", "dir", c.dir, "error", err)
		return err
	}

	path := filepath.Join(c.dir, FrameName(cue.Interval.Start, cue.Text))
	file, err := os.Create(path)
	if err != nil {
		c.log.Warnw("Failed to create capture file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		c.log.Warnw("Failed to encode capture frame", "path", path, "error", err)
		return err
	}

	return nil
}

// Remove deletes the capture directory; called after a fully
// successful run, leaving frames behind for inspection on failure.
func (c *Capture) Remove() error {
	return os.RemoveAll(c.dir)
}

// FrameName builds the capture filename: seconds, milliseconds and a
// sanitized prefix of the cue text.
func FrameName(start time.Duration, text string) string {
	millis := start.Milliseconds()
	slug := songs.SanitizeName(text)
	if runes := []rune(slug); len(runes) > 40 {
		slug = string(runes[:40])
	}
	return fmt.Sprintf("frame_%04d_%03d_%s.png", millis/1000, millis%1000, slug)
}
