package render

import (
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/zemerlab/zemer/internal/merge"
)

// width proportional to rune count, enough for wrap decisions
func fakeMeasure(s string) float64 {
	return float64(len([]rune(s))) * 10
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.FrameWidth = 200
	cfg.FrameHeight = 100
	cfg.WidthFraction = 0.9
	return cfg
}

func testRenderer() *Renderer {
	face := basicfont.Face7x13
	return newRendererWithFaces(testConfig(), face, face)
}

func TestWrapText(t *testing.T) {
	// budget of 10 characters
	wrapped := wrapText(fakeMeasure, "aaa bbb ccc ddd", 100)

	if len(wrapped) < 2 {
		t.Fatalf("expected wrapping, got %v", wrapped)
	}
	for _, line := range wrapped {
		if fakeMeasure(line) > 100 {
			t.Errorf("line %q exceeds the budget", line)
		}
	}

	// joining the wrapped lines reproduces the original word sequence
	if joined := strings.Join(wrapped, " "); joined != "aaa bbb ccc ddd" {
		t.Errorf("wrap lost or reordered words: %q", joined)
	}
}

func TestWrapTextSingleLongWord(t *testing.T) {
	wrapped := wrapText(fakeMeasure, "short incomprehensibilities end", 100)

	found := false
	for _, line := range wrapped {
		if line == "incomprehensibilities" {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word must sit alone, unsplit: %v", wrapped)
	}
}

func TestWrapTextEmpty(t *testing.T) {
	if got := wrapText(fakeMeasure, "   ", 100); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestWrapHebrewLogicalOrder(t *testing.T) {
	logical := "שירו שיר לשלום אל תלחשו תפילה"

	wrapped := wrapText(fakeMeasure, logical, 150)
	if len(wrapped) < 2 {
		t.Fatalf("expected wrapping, got %v", wrapped)
	}

	// wrap boundaries must fall on logical word boundaries: the
	// wrapped lines joined back reproduce the logical string, proving
	// the visually-reordered text never entered the wrap
	if joined := strings.Join(wrapped, " "); joined != logical {
		t.Errorf("wrap did not preserve logical order: %q", joined)
	}
}

func TestIsRTL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello world", false},
		{"שלום עולם", true},
		{"123 שלום", true},
		{"123 hello", false},
		{"مرحبا", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := isRTL(tt.input); got != tt.want {
			t.Errorf("isRTL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestVisualOrderPureHebrew(t *testing.T) {
	got := visualOrder("אבג")
	if got != "גבא" {
		t.Errorf("visualOrder = %q, want reversed characters", got)
	}
}

func TestSplitBlocks(t *testing.T) {
	text := "hello world\nsecond line" + merge.Separator + "שלום עולם"

	blocks := splitBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if len(blocks[0]) != 2 {
		t.Errorf("expected 2 logical lines in block 0, got %v", blocks[0])
	}
	if blocks[1][0] != "שלום עולם" {
		t.Errorf("block 1 = %v", blocks[1])
	}
}

func TestLayoutGapPolicy(t *testing.T) {
	r := testRenderer()
	measure := func(style *Style, s string) (float64, float64) {
		return fakeMeasure(s), 12
	}

	// two short source lines, then one Hebrew block
	text := "aa\nbb" + merge.Separator + "שלום"
	lines := r.layoutBlocks(text, measure)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	if lines[0].gapAfter != r.cfg.LineGap {
		t.Errorf("within-block gap = %v, want %v", lines[0].gapAfter, r.cfg.LineGap)
	}
	if lines[1].gapAfter != r.cfg.BlockGap {
		t.Errorf("between-blocks gap = %v, want %v", lines[1].gapAfter, r.cfg.BlockGap)
	}
	if lines[2].gapAfter != 0 {
		t.Errorf("gap after last line = %v, want 0", lines[2].gapAfter)
	}

	if lines[0].rtl || !lines[2].rtl {
		t.Error("directionality flags wrong")
	}
	if lines[0].style != &r.cfg.Source || lines[2].style != &r.cfg.Hebrew {
		t.Error("style selection wrong")
	}
}

func TestLayoutStyleGovernsWholeBlock(t *testing.T) {
	r := testRenderer()
	measure := func(style *Style, s string) (float64, float64) {
		return fakeMeasure(s), 12
	}

	// a Hebrew block with an embedded Latin word still uses the
	// Hebrew style for every wrapped line
	text := "שלום HELLO שלום"
	lines := r.layoutBlocks(text, measure)
	for _, line := range lines {
		if line.style != &r.cfg.Hebrew {
			t.Errorf("line %q not governed by the Hebrew style", line.text)
		}
	}
}
