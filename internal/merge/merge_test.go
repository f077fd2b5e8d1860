package merge

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zemerlab/zemer/internal/logging"
	"github.com/zemerlab/zemer/internal/subtitle"
)

func track(lang string, cues ...subtitle.Cue) *subtitle.Track {
	return &subtitle.Track{Language: lang, Cues: cues}
}

func TestCombineIntervalUnion(t *testing.T) {
	source := track("en", subtitle.Cue{ID: 1, Start: 0, End: 2 * time.Second, Text: "hello"})
	target := track("he", subtitle.Cue{ID: 1, Start: 500 * time.Millisecond, End: 2500 * time.Millisecond, Text: "שלום"})

	combined := Combine(source, target, Options{})
	if len(combined) != 1 {
		t.Fatalf("expected 1 combined cue, got %d", len(combined))
	}

	c := combined[0]
	if c.Interval.Start != 0 || c.Interval.End != 2500*time.Millisecond {
		t.Errorf("interval = %v..%v, want 0..2.5s", c.Interval.Start, c.Interval.End)
	}
	if !strings.Contains(c.Text, "hello") || !strings.Contains(c.Text, "שלום") {
		t.Errorf("text missing a side: %q", c.Text)
	}
	if !strings.Contains(c.Text, Separator) {
		t.Errorf("expected separator between blocks: %q", c.Text)
	}
}

func TestCombineSingleLanguageFallback(t *testing.T) {
	source := track("en", subtitle.Cue{ID: 2, Start: 3 * time.Second, End: 4 * time.Second, Text: "bye"})

	combined := Combine(source, nil, Options{})
	if len(combined) != 1 {
		t.Fatalf("expected 1 combined cue, got %d", len(combined))
	}

	c := combined[0]
	if c.Text != "bye" {
		t.Errorf("text = %q, want 'bye' with no separator", c.Text)
	}
	if c.Interval.Start != 3*time.Second || c.Interval.End != 4*time.Second {
		t.Errorf("interval = %v..%v", c.Interval.Start, c.Interval.End)
	}
}

func TestCombineEmptyTextOneSide(t *testing.T) {
	// one side has timing but empty text: only the real text appears,
	// yet the timing union reflects both
	source := track("en", subtitle.Cue{ID: 1, Start: 1 * time.Second, End: 2 * time.Second, Text: ""})
	target := track("he", subtitle.Cue{ID: 1, Start: 1500 * time.Millisecond, End: 3 * time.Second, Text: "שלום"})

	combined := Combine(source, target, Options{})
	if len(combined) != 1 {
		t.Fatalf("expected 1 combined cue, got %d", len(combined))
	}

	c := combined[0]
	if c.Text != "שלום" {
		t.Errorf("text = %q, want only the Hebrew side", c.Text)
	}
	if strings.Contains(c.Text, Separator) {
		t.Error("stray separator with single contributing text")
	}
	if c.Interval.Start != 1*time.Second || c.Interval.End != 3*time.Second {
		t.Errorf("interval = %v..%v, want union 1s..3s", c.Interval.Start, c.Interval.End)
	}
}

func TestCombineTimingOnlyEntry(t *testing.T) {
	source := track("en", subtitle.Cue{ID: 1, Start: 1 * time.Second, End: 2 * time.Second, Text: "  "})

	combined := Combine(source, nil, Options{})
	if len(combined) != 1 {
		t.Fatalf("expected a timing-only entry, got %d", len(combined))
	}
	if combined[0].Text != "" {
		t.Errorf("expected empty text, got %q", combined[0].Text)
	}
}

func TestCombineMinimumDuration(t *testing.T) {
	// invalid timing on its own cue is dropped; a zero-length interval
	// surviving via the other side is stretched to one frame
	source := track("en",
		subtitle.Cue{ID: 1, Start: 2 * time.Second, End: 2 * time.Second, Text: "ignored"},
		subtitle.Cue{ID: 2, Start: 5 * time.Second, End: 5*time.Second + time.Millisecond, Text: "short"},
	)

	combined := Combine(source, nil, Options{FPS: 25})
	if len(combined) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(combined))
	}
	c := combined[0]
	if c.Interval.End-c.Interval.Start < 40*time.Millisecond {
		t.Errorf("duration %v below one frame", c.Interval.End-c.Interval.Start)
	}
}

func TestCombineClampsToTotalDuration(t *testing.T) {
	source := track("en", subtitle.Cue{ID: 1, Start: 9 * time.Second, End: 15 * time.Second, Text: "end"})

	combined := Combine(source, nil, Options{FPS: 25, TotalDuration: 10 * time.Second})
	c := combined[0]
	if c.Interval.End > 10*time.Second {
		t.Errorf("end %v exceeds total duration", c.Interval.End)
	}
}

func TestCombineSortedByStart(t *testing.T) {
	// ids deliberately out of chronological order
	source := track("en",
		subtitle.Cue{ID: 1, Start: 10 * time.Second, End: 12 * time.Second, Text: "late"},
		subtitle.Cue{ID: 2, Start: 1 * time.Second, End: 2 * time.Second, Text: "early"},
	)

	combined := Combine(source, nil, Options{})
	if len(combined) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(combined))
	}
	if combined[0].Interval.Start > combined[1].Interval.Start {
		t.Error("combined cues not sorted by start time")
	}
	if !strings.Contains(combined[0].Text, "early") {
		t.Errorf("first cue = %q, want the early one", combined[0].Text)
	}
}

func TestCombineDeterministic(t *testing.T) {
	source := track("en",
		subtitle.Cue{ID: 1, Start: 0, End: 2 * time.Second, Text: "one"},
		subtitle.Cue{ID: 2, Start: 3 * time.Second, End: 5 * time.Second, Text: "two"},
	)
	target := track("he",
		subtitle.Cue{ID: 2, Start: 3 * time.Second, End: 5 * time.Second, Text: "שתיים"},
		subtitle.Cue{ID: 3, Start: 6 * time.Second, End: 8 * time.Second, Text: "שלוש"},
	)

	first := Combine(source, target, Options{})
	second := Combine(source, target, Options{})

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cue %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCombineUniqueIDs(t *testing.T) {
	source := track("en",
		subtitle.Cue{ID: 1, Start: 0, End: 1 * time.Second, Text: "a"},
		subtitle.Cue{ID: 2, Start: 2 * time.Second, End: 3 * time.Second, Text: "b"},
	)
	target := track("he",
		subtitle.Cue{ID: 1, Start: 0, End: 1 * time.Second, Text: "א"},
	)

	combined := Combine(source, target, Options{})
	seen := make(map[string]bool)
	for _, c := range combined {
		if seen[c.ID] {
			t.Errorf("duplicate combined id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestCaptureAtMostOnce(t *testing.T) {
	capture := NewCapture(t.TempDir(), logging.NewNop())

	// the same cue id sampled across many frames captures once
	writes := 0
	for i := 0; i < 10; i++ {
		if capture.ShouldCapture("1_1") {
			writes++
		}
	}
	if writes != 1 {
		t.Errorf("expected exactly 1 capture, got %d", writes)
	}

	if !capture.ShouldCapture("2_2") {
		t.Error("a new id must be captured")
	}
}

func TestCaptureSave(t *testing.T) {
	dir := t.TempDir()
	capture := NewCapture(dir, logging.NewNop())

	cue := Combined{
		Interval: Interval{Start: 62500 * time.Millisecond, End: 65 * time.Second},
		Text:     "hello שלום",
		ID:       "1_1",
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := capture.Save(cue, img); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(dir, FrameName(cue.Interval.Start, cue.Text))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected frame file at %s: %v", path, err)
	}

	if err := capture.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected capture directory removed")
	}
}

func TestFrameName(t *testing.T) {
	name := FrameName(62500*time.Millisecond, "hello world")
	if name != "frame_0062_500_hello_world.png" {
		t.Errorf("FrameName = %q", name)
	}
}
