package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// Style holds the drawing parameters for one language side. The two
// sides are configured independently; a block's directionality selects
// which one governs it.
type Style struct {
	FontPath    string  `toml:"font_path"`
	FontSize    float64 `toml:"font_size"`
	Color       string  `toml:"color"`
	StrokeColor string  `toml:"stroke_color"`
	StrokeWidth int     `toml:"stroke_width"`
}

// Config describes the frame geometry and the per-side styles.
type Config struct {
	FrameWidth    int     `toml:"frame_width"`
	FrameHeight   int     `toml:"frame_height"`
	FPS           int     `toml:"fps"`
	WidthFraction float64 `toml:"width_fraction"`
	LineGap       float64 `toml:"line_gap"`
	BlockGap      float64 `toml:"block_gap"`
	VerticalAlign string  `toml:"vertical_align"`

	Source Style `toml:"source"`
	Hebrew Style `toml:"hebrew"`
}

func DefaultConfig() *Config {
	return &Config{
		FrameWidth:    1280,
		FrameHeight:   720,
		FPS:           25,
		WidthFraction: 0.85,
		LineGap:       8,
		BlockGap:      28,
		VerticalAlign: "center",
		Source: Style{
			FontSize:    44,
			Color:       "#FFFFFF",
			StrokeColor: "#000000",
			StrokeWidth: 2,
		},
		Hebrew: Style{
			FontSize:    48,
			Color:       "#FFD966",
			StrokeColor: "#000000",
			StrokeWidth: 2,
		},
	}
}

// LoadConfig reads a TOML style file over the defaults. A missing file
// is an error: font paths cannot be defaulted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("style config not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read style config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse style config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks the structural configuration. Violations here are
// fatal for the whole run and surface at startup, never per cue.
func (c *Config) Validate() error {
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("frame dimensions must be positive, got %dx%d", c.FrameWidth, c.FrameHeight)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.WidthFraction <= 0 || c.WidthFraction > 1 {
		return fmt.Errorf("width_fraction must be in (0, 1], got %v", c.WidthFraction)
	}
	switch c.VerticalAlign {
	case "top", "center", "bottom":
	default:
		return fmt.Errorf("vertical_align must be top, center or bottom, got %q", c.VerticalAlign)
	}

	for name, style := range map[string]Style{"source": c.Source, "hebrew": c.Hebrew} {
		if style.FontPath == "" {
			return fmt.Errorf("%s.font_path is required", name)
		}
		if _, err := os.Stat(style.FontPath); err != nil {
			return fmt.Errorf("%s font file not found: %s", name, style.FontPath)
		}
		if style.FontSize <= 0 {
			return fmt.Errorf("%s.font_size must be positive, got %v", name, style.FontSize)
		}
		if !hexColorRegex.MatchString(style.Color) {
			return fmt.Errorf("%s.color is not a hex color: %q", name, style.Color)
		}
		if style.StrokeWidth > 0 && !hexColorRegex.MatchString(style.StrokeColor) {
			return fmt.Errorf("%s.stroke_color is not a hex color: %q", name, style.StrokeColor)
		}
		if style.StrokeWidth < 0 {
			return fmt.Errorf("%s.stroke_width must not be negative, got %d", name, style.StrokeWidth)
		}
	}

	return nil
}
