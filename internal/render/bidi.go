package render

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// reports whether the line's first strong character falls in the
// Hebrew or Arabic Unicode blocks; this flags the whole block RTL
func isRTL(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x0590 && r <= 0x05FF:
			return true
		case r >= 0x0600 && r <= 0x06FF:
			return true
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			return false
		}
	}
	return false
}

// visualOrder reorders a logical-order RTL line into the visual order
// a left-to-right rasterizer expects. Called only at draw time: word
// wrapping always operates on the logical string.
func visualOrder(s string) string {
	p := &bidi.Paragraph{}
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return s
	}

	ordering, err := p.Order()
	if err != nil {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}
		sb.WriteString(text)
	}

	return sb.String()
}
