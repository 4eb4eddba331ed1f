package kaleido

import (
	"fmt"

	"github.com/gogpu/kaleido/gpucore"
)

// AccumulationResolver turns the per-pixel hit counts into a color image.
//
// A resolver is chosen once from the configured display mode. Besides the
// kernel it runs, it owns the clearing contract of the accumulation buffer:
// point and density clear it every frame, trail only at session start.
type AccumulationResolver interface {
	// Mode returns the display mode the resolver implements.
	Mode() DisplayMode

	// Kernel returns the resolve kernel.
	Kernel() gpucore.Kernel

	// ClearEachFrame reports whether the accumulation buffer is zeroed
	// before every reflect stage.
	ClearEachFrame() bool

	// UsesHistory reports whether the kernel needs the history buffer.
	UsesHistory() bool

	configure(u *gpucore.Uniforms)
}

// PointResolver shows pixels hit in the current frame.
type PointResolver struct {
	Color, Background Color
}

func (PointResolver) Mode() DisplayMode      { return ModePoint }
func (PointResolver) Kernel() gpucore.Kernel { return gpucore.KernelResolvePoint }
func (PointResolver) ClearEachFrame() bool   { return true }
func (PointResolver) UsesHistory() bool      { return false }
func (r PointResolver) configure(u *gpucore.Uniforms) {
	u.Color, u.Background = r.Color, r.Background
}

// TrailResolver paints pixels whose count grew since the last resolve and
// fades every other pixel toward the background by Decay per frame.
type TrailResolver struct {
	Color, Background Color
	Decay             float32
}

func (TrailResolver) Mode() DisplayMode      { return ModeTrail }
func (TrailResolver) Kernel() gpucore.Kernel { return gpucore.KernelResolveTrail }
func (TrailResolver) ClearEachFrame() bool   { return false }
func (TrailResolver) UsesHistory() bool      { return true }
func (r TrailResolver) configure(u *gpucore.Uniforms) {
	u.Color, u.Background = r.Color, r.Background
	u.Decay = r.Decay
}

// DensityResolver colors pixels by ln(1+count)/ln(1+Saturation) through a
// dark-blue, magenta, pale-yellow ramp.
type DensityResolver struct {
	Background Color
	Saturation float32
}

func (DensityResolver) Mode() DisplayMode      { return ModeDensity }
func (DensityResolver) Kernel() gpucore.Kernel { return gpucore.KernelResolveDensity }
func (DensityResolver) ClearEachFrame() bool   { return true }
func (DensityResolver) UsesHistory() bool      { return false }
func (r DensityResolver) configure(u *gpucore.Uniforms) {
	u.Background = r.Background
	u.Saturation = r.Saturation
}

// NewResolver returns the resolver for cfg.Mode.
func NewResolver(cfg Config) (AccumulationResolver, error) {
	switch cfg.Mode {
	case ModePoint:
		return PointResolver{Color: cfg.Color, Background: cfg.Background}, nil
	case ModeTrail:
		return TrailResolver{Color: cfg.Color, Background: cfg.Background, Decay: cfg.TrailDecay}, nil
	case ModeDensity:
		return DensityResolver{Background: cfg.Background, Saturation: cfg.DensitySaturation}, nil
	default:
		return nil, configErr("mode", fmt.Errorf("%w: %d", ErrInvalidMode, cfg.Mode))
	}
}
