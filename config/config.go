// Package config reads and writes kaleido settings files.
//
// The format follows the file extension: .toml uses go-toml, .yaml and
// .yml use yaml.v3. Fields left out of a file keep their default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/kaleido"
)

// ErrUnknownFormat is returned for file extensions other than .toml,
// .yaml and .yml.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Format is a settings file encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

// FormatOf picks the format from path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// File is the on-disk form of a renderer configuration plus the
// substrate choice. Pointer fields distinguish "absent" from zero.
type File struct {
	Mirrors           []kaleido.Mirror `toml:"mirrors,omitempty" yaml:"mirrors,omitempty"`
	Depth             int              `toml:"depth,omitempty" yaml:"depth,omitempty"`
	Width             int              `toml:"width,omitempty" yaml:"width,omitempty"`
	Height            int              `toml:"height,omitempty" yaml:"height,omitempty"`
	Mode              string           `toml:"mode,omitempty" yaml:"mode,omitempty"`
	ShowMirrors       *bool            `toml:"show_mirrors,omitempty" yaml:"show_mirrors,omitempty"`
	Color             *[4]float32      `toml:"color,omitempty" yaml:"color,omitempty"`
	Background        *[4]float32      `toml:"background,omitempty" yaml:"background,omitempty"`
	TrailDecay        *float32         `toml:"trail_decay,omitempty" yaml:"trail_decay,omitempty"`
	DensitySaturation *float32         `toml:"density_saturation,omitempty" yaml:"density_saturation,omitempty"`

	// Substrate is "auto", "cpu" or "wgpu".
	Substrate string `toml:"substrate,omitempty" yaml:"substrate,omitempty"`

	// Workers sizes the CPU substrate pool. Zero uses GOMAXPROCS.
	Workers int `toml:"workers,omitempty" yaml:"workers,omitempty"`
}

// FromConfig captures every field of cfg.
func FromConfig(cfg kaleido.Config) File {
	show := cfg.ShowMirrors
	fg, bg := [4]float32(cfg.Color), [4]float32(cfg.Background)
	decay, sat := cfg.TrailDecay, cfg.DensitySaturation
	return File{
		Mirrors:           append([]kaleido.Mirror(nil), cfg.Mirrors...),
		Depth:             cfg.MaxDepth,
		Width:             cfg.Width,
		Height:            cfg.Height,
		Mode:              cfg.Mode.String(),
		ShowMirrors:       &show,
		Color:             &fg,
		Background:        &bg,
		TrailDecay:        &decay,
		DensitySaturation: &sat,
	}
}

// Config overlays the fields present in f on kaleido.DefaultConfig and
// validates the result.
func (f *File) Config() (kaleido.Config, error) {
	cfg := kaleido.DefaultConfig()
	if len(f.Mirrors) > 0 {
		cfg.Mirrors = append([]kaleido.Mirror(nil), f.Mirrors...)
	}
	if f.Depth != 0 {
		cfg.MaxDepth = f.Depth
	}
	if f.Width != 0 {
		cfg.Width = f.Width
	}
	if f.Height != 0 {
		cfg.Height = f.Height
	}
	if f.Mode != "" {
		m, err := kaleido.ParseDisplayMode(f.Mode)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		cfg.Mode = m
	}
	if f.ShowMirrors != nil {
		cfg.ShowMirrors = *f.ShowMirrors
	}
	if f.Color != nil {
		cfg.Color = kaleido.Color(*f.Color)
	}
	if f.Background != nil {
		cfg.Background = kaleido.Color(*f.Background)
	}
	if f.TrailDecay != nil {
		cfg.TrailDecay = *f.TrailDecay
	}
	if f.DensitySaturation != nil {
		cfg.DensitySaturation = *f.DensitySaturation
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode reads a File in the given format.
func Decode(r io.Reader, format Format) (*File, error) {
	f := &File{}
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(f)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(f)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return f, nil
}

// Encode writes f in the given format.
func Encode(w io.Writer, f *File, format Format) error {
	switch format {
	case TOML:
		return toml.NewEncoder(w).Encode(f)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return ErrUnknownFormat
}

// Read loads path into a File without applying defaults.
func Read(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Load reads path and returns the validated configuration with the file
// itself, whose Substrate and Workers fields the caller may use.
func Load(path string) (kaleido.Config, *File, error) {
	f, err := Read(path)
	if err != nil {
		return kaleido.Config{}, nil, err
	}
	cfg, err := f.Config()
	if err != nil {
		return kaleido.Config{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, f, nil
}

// Save writes f to path in the format its extension names.
func Save(path string, f *File) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, format); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
