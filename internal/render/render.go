package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/zemerlab/zemer/internal/merge"
)

const blockSeparator = merge.Separator

// Renderer rasterizes a combined cue's text into a transparent frame
// sized to the video. Wrapping and measuring happen on logical-order
// text; RTL lines are converted to visual order only immediately
// before drawing, because wrap boundaries computed on visual text
// would scramble word boundaries.
type Renderer struct {
	cfg        *Config
	sourceFace font.Face
	hebrewFace font.Face
}

// NewRenderer loads both configured font faces. A missing or unloadable
// font is fatal here, at initialization, not deferred to per-cue calls.
func NewRenderer(cfg *Config) (*Renderer, error) {
	sourceFace, err := gg.LoadFontFace(cfg.Source.FontPath, cfg.Source.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load source font %s: %w", cfg.Source.FontPath, err)
	}

	hebrewFace, err := gg.LoadFontFace(cfg.Hebrew.FontPath, cfg.Hebrew.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load hebrew font %s: %w", cfg.Hebrew.FontPath, err)
	}

	return newRendererWithFaces(cfg, sourceFace, hebrewFace), nil
}

// test seam: inject prebuilt faces
func newRendererWithFaces(cfg *Config, sourceFace, hebrewFace font.Face) *Renderer {
	return &Renderer{
		cfg:        cfg,
		sourceFace: sourceFace,
		hebrewFace: hebrewFace,
	}
}

func (r *Renderer) face(style *Style) font.Face {
	if style == &r.cfg.Hebrew {
		return r.hebrewFace
	}
	return r.sourceFace
}

// Render draws one combined cue into a fresh transparent frame. Empty
// or whitespace-only text yields a fully transparent frame rather than
// no frame, so the cue still occupies its display window.
func (r *Renderer) Render(text string) image.Image {
	dc := gg.NewContext(r.cfg.FrameWidth, r.cfg.FrameHeight)

	if strings.TrimSpace(text) == "" {
		return dc.Image()
	}

	measure := func(style *Style, s string) (float64, float64) {
		dc.SetFontFace(r.face(style))
		return dc.MeasureString(s)
	}

	lines := r.layoutBlocks(text, measure)
	if len(lines) == 0 {
		return dc.Image()
	}

	y := r.startY(totalHeight(lines))
	centerX := float64(r.cfg.FrameWidth) / 2

	for _, line := range lines {
		y += line.height
		r.drawLine(dc, line, centerX, y)
		y += line.gapAfter
	}

	return dc.Image()
}

func (r *Renderer) startY(stackHeight float64) float64 {
	frameH := float64(r.cfg.FrameHeight)
	switch r.cfg.VerticalAlign {
	case "top":
		return r.cfg.BlockGap
	case "bottom":
		return frameH - stackHeight - r.cfg.BlockGap
	default:
		return (frameH - stackHeight) / 2
	}
}

// drawLine draws one wrapped line at its baseline. The visual-order
// conversion happens here and nowhere earlier.
func (r *Renderer) drawLine(dc *gg.Context, line renderLine, centerX, baselineY float64) {
	text := line.text
	if line.rtl {
		text = visualOrder(text)
	}

	dc.SetFontFace(r.face(line.style))
	x := centerX - line.width/2

	// outline: the text drawn at ±w offsets in the four cardinal
	// directions, under the fill
	if w := line.style.StrokeWidth; w > 0 {
		dc.SetHexColor(line.style.StrokeColor)
		offset := float64(w)
		dc.DrawString(text, x-offset, baselineY)
		dc.DrawString(text, x+offset, baselineY)
		dc.DrawString(text, x, baselineY-offset)
		dc.DrawString(text, x, baselineY+offset)
	}

	dc.SetHexColor(line.style.Color)
	dc.DrawString(text, x, baselineY)
}
