package kaleido

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DisplayMode selects the accumulation resolve policy.
type DisplayMode uint8

// Display modes. The numeric values are the ones accepted on the command
// line and in config files.
const (
	// ModePoint shows every pixel hit this frame.
	ModePoint DisplayMode = iota

	// ModeTrail keeps hits across frames and fades pixels that stop
	// receiving new ones.
	ModeTrail

	// ModeDensity colors pixels by their hit count.
	ModeDensity
)

var modeNames = [...]string{"point", "trail", "density"}

// String returns "point", "trail" or "density".
func (m DisplayMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is a known mode.
func (m DisplayMode) Valid() bool { return int(m) < len(modeNames) }

// ParseDisplayMode accepts a mode name or its number.
func ParseDisplayMode(s string) (DisplayMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name || s == strconv.Itoa(i) {
			return DisplayMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m DisplayMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DisplayMode) UnmarshalText(b []byte) error {
	v, err := ParseDisplayMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Color is a linear RGBA color with components in [0,1].
type Color [4]float32

// RGBA builds a Color.
func RGBA(r, g, b, a float32) Color { return Color{r, g, b, a} }

// Config is the static configuration of a renderer. It is built once,
// validated, and passed by value to NewPipeline.
type Config struct {
	// Mirrors lists the reflecting lines, at most MaxMirrors.
	Mirrors []Mirror

	// MaxDepth is the longest reflection sequence enumerated.
	MaxDepth int

	// Width and Height are the display dimensions in pixels.
	Width, Height int

	// Mode selects the resolve policy.
	Mode DisplayMode

	// ShowMirrors draws the mirror lines over the image.
	ShowMirrors bool

	// Color is the hit color of the point and trail modes.
	Color Color

	// Background is the color of pixels without hits.
	Background Color

	// TrailDecay is the fraction of a trail pixel's brightness kept per
	// frame, in [0,1).
	TrailDecay float32

	// DensitySaturation is the hit count mapped to the top of the density
	// ramp. Must be positive.
	DensitySaturation float32
}

// Default configuration values.
const (
	DefaultWidth             = 800
	DefaultHeight            = 800
	DefaultMaxDepth          = 12
	DefaultTrailDecay        = 0.92
	DefaultDensitySaturation = 256
)

// DefaultMirrors returns the three mirrors y = x, y = -2x and y = 0.5.
func DefaultMirrors() []Mirror {
	return []Mirror{
		{Slope: 1, Offset: 0},
		{Slope: -2, Offset: 0},
		{Slope: 0, Offset: 0.5},
	}
}

// DefaultConfig returns an 800x800 point-mode configuration with the
// default mirrors, depth 12 and the mirror overlay enabled.
func DefaultConfig() Config {
	return Config{
		Mirrors:           DefaultMirrors(),
		MaxDepth:          DefaultMaxDepth,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Mode:              ModePoint,
		ShowMirrors:       true,
		Color:             Color{1, 1, 1, 1},
		Background:        Color{0, 0, 0, 1},
		TrailDecay:        DefaultTrailDecay,
		DensitySaturation: DefaultDensitySaturation,
	}
}

// Validate checks every field. The returned error is a *ConfigurationError.
func (c *Config) Validate() error {
	if _, err := NewMirrorSet(c.Mirrors); err != nil {
		return err
	}
	if err := checkShape(len(c.Mirrors), c.MaxDepth); err != nil {
		return err
	}
	if c.Width <= 0 || c.Height <= 0 {
		return configErrf("size", ErrInvalidDimensions, "%dx%d", c.Width, c.Height)
	}
	if uint64(c.Width)*uint64(c.Height)*16 > math.MaxUint32 {
		return configErrf("size", ErrIndexOverflow, "%dx%d", c.Width, c.Height)
	}
	if !c.Mode.Valid() {
		return configErrf("mode", ErrInvalidMode, "%d", c.Mode)
	}
	if !(c.TrailDecay >= 0 && c.TrailDecay < 1) {
		return configErrf("trail_decay", ErrInvalidParameter, "%v not in [0,1)", c.TrailDecay)
	}
	if !(c.DensitySaturation > 0) || !finite(c.DensitySaturation) {
		return configErrf("density_saturation", ErrInvalidParameter, "%v", c.DensitySaturation)
	}
	return nil
}
