package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/kaleido"
)

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml":     TOML,
		"b.YAML":     YAML,
		"dir/c.yml":  YAML,
		"/x/y/z.tml": -1,
	} {
		got, err := FormatOf(path)
		if want < 0 {
			assert.ErrorIs(t, err, ErrUnknownFormat, path)
			continue
		}
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestDecode_TOML(t *testing.T) {
	src := `
depth = 6
width = 320
height = 240
mode = "density"
show_mirrors = false
trail_decay = 0.0
substrate = "cpu"
workers = 3

[[mirrors]]
slope = 1.0
offset = 0.0

[[mirrors]]
slope = -1.0
offset = 0.25
`
	f, err := Decode(strings.NewReader(src), TOML)
	require.NoError(t, err)
	assert.Equal(t, "cpu", f.Substrate)
	assert.Equal(t, 3, f.Workers)

	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, []kaleido.Mirror{{Slope: 1}, {Slope: -1, Offset: 0.25}}, cfg.Mirrors)
	assert.Equal(t, 6, cfg.MaxDepth)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, kaleido.ModeDensity, cfg.Mode)
	assert.False(t, cfg.ShowMirrors)
	assert.Equal(t, float32(0), cfg.TrailDecay)
	assert.Equal(t, kaleido.DefaultConfig().Color, cfg.Color, "absent fields keep defaults")
}

func TestDecode_YAML(t *testing.T) {
	src := `
mirrors:
  - {slope: 0.5, offset: 0}
  - {slope: -3, offset: 0.1}
  - {slope: 0, offset: -0.5}
depth: 4
mode: "1"
color: [1, 0.5, 0, 1]
`
	f, err := Decode(strings.NewReader(src), YAML)
	require.NoError(t, err)
	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Len(t, cfg.Mirrors, 3)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, kaleido.ModeTrail, cfg.Mode)
	assert.Equal(t, kaleido.Color{1, 0.5, 0, 1}, cfg.Color)
	assert.Equal(t, kaleido.DefaultWidth, cfg.Width)
}

func TestDecode_EmptyYAMLIsDefault(t *testing.T) {
	f, err := Decode(strings.NewReader(""), YAML)
	require.NoError(t, err)
	cfg, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, kaleido.DefaultConfig(), cfg)
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("colour = [1, 1, 1, 1]\n"), TOML)
	assert.Error(t, err)
	_, err = Decode(strings.NewReader("colour: [1, 1, 1, 1]\n"), YAML)
	assert.Error(t, err)
}

func TestConfig_Invalid(t *testing.T) {
	one := &File{Mirrors: []kaleido.Mirror{{Slope: 1}}}
	_, err := one.Config()
	var ce *kaleido.ConfigurationError
	require.True(t, errors.As(err, &ce), "err = %v", err)
	assert.Equal(t, "mirrors", ce.Field)

	_, err = (&File{Mode: "sparkle"}).Config()
	assert.ErrorIs(t, err, kaleido.ErrInvalidMode)

	sat := float32(0)
	_, err = (&File{DensitySaturation: &sat}).Config()
	assert.ErrorIs(t, err, kaleido.ErrInvalidParameter)
}

func TestRoundTrip(t *testing.T) {
	cfg := kaleido.DefaultConfig()
	cfg.Mode = kaleido.ModeTrail
	cfg.MaxDepth = 9
	cfg.ShowMirrors = false
	cfg.TrailDecay = 0.75
	cfg.Background = kaleido.Color{0.1, 0.2, 0.3, 1}

	for _, name := range []string{"k.toml", "k.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			f := FromConfig(cfg)
			f.Substrate = "auto"
			require.NoError(t, Save(path, &f))

			got, file, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
			assert.Equal(t, "auto", file.Substrate)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = Load(filepath.Join(dir, "k.json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("depth = 0\nwidth = -4\n"), 0o644))
	_, _, err = Load(bad)
	assert.ErrorIs(t, err, kaleido.ErrInvalidDimensions)
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(&buf, &File{}, Format(7)), ErrUnknownFormat)
}
