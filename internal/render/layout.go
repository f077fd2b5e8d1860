package render

import (
	"strings"
)

// ephemeral per-frame layout record for one wrapped line; discarded
// after the frame is rasterized
type renderLine struct {
	text     string // logical order
	width    float64
	height   float64
	gapAfter float64
	rtl      bool
	style    *Style
}

// wrapText greedily wraps a logical line of words to the pixel budget.
// A single word wider than maxWidth is placed alone on its own line
// rather than split mid-word. The measure callback keeps wrapping
// independent of any particular font backend.
func wrapText(measure func(string) float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var wrapped []string
	current := words[0]

	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		wrapped = append(wrapped, current)
		current = word
	}
	wrapped = append(wrapped, current)

	return wrapped
}

// layoutBlocks builds the per-line layout for a combined cue's text.
// Blocks are separated by the merge sentinel; within a block every
// non-blank logical line is wrapped against the pixel budget. Gaps:
// LineGap after a line followed by another in the same block, BlockGap
// at a block transition, none after the very last line.
func (r *Renderer) layoutBlocks(text string, measure func(*Style, string) (float64, float64)) []renderLine {
	maxWidth := float64(r.cfg.FrameWidth) * r.cfg.WidthFraction

	var lines []renderLine

	blocks := splitBlocks(text)
	for blockIdx, block := range blocks {
		rtl := isRTL(block[0])
		style := &r.cfg.Source
		if rtl {
			style = &r.cfg.Hebrew
		}

		blockMeasure := func(s string) float64 {
			w, _ := measure(style, s)
			return w
		}

		var blockLines []string
		for _, logical := range block {
			blockLines = append(blockLines, wrapText(blockMeasure, logical, maxWidth)...)
		}

		for i, wrapped := range blockLines {
			w, h := measure(style, wrapped)
			gap := 0.0
			switch {
			case i < len(blockLines)-1:
				gap = r.cfg.LineGap
			case blockIdx < len(blocks)-1:
				gap = r.cfg.BlockGap
			}
			lines = append(lines, renderLine{
				text:     wrapped,
				width:    w,
				height:   h,
				gapAfter: gap,
				rtl:      rtl,
				style:    style,
			})
		}
	}

	return lines
}

// splits cue text into language blocks of non-blank logical lines
func splitBlocks(text string) [][]string {
	var blocks [][]string
	for _, raw := range strings.Split(text, blockSeparator) {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, lines)
		}
	}
	return blocks
}

func totalHeight(lines []renderLine) float64 {
	var h float64
	for _, line := range lines {
		h += line.height + line.gapAfter
	}
	return h
}
