// Package input provides cursor positions for the renderer.
//
// Positions are in window pixels with the origin at the top-left corner,
// the same space the viewer reads from the mouse. The pipeline converts
// them to normalized device coordinates.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadSource is returned by Parse for malformed descriptions.
var ErrBadSource = errors.New("input: bad cursor source")

// Source yields the cursor for a frame number. ok is false when the
// source has no position for that frame, which ends a scripted render.
type Source interface {
	Cursor(frame int) (x, y float64, ok bool)
}

// Fixed holds the cursor at one position for Frames frames.
type Fixed struct {
	X, Y   float64
	Frames int
}

func (f Fixed) Cursor(frame int) (float64, float64, bool) {
	if frame < 0 || frame >= f.Frames {
		return 0, 0, false
	}
	return f.X, f.Y, true
}

// Orbit circles the window center with radius R pixels, one revolution
// every Period frames, for Frames frames.
type Orbit struct {
	CX, CY float64
	R      float64
	Period int
	Frames int
}

func (o Orbit) Cursor(frame int) (float64, float64, bool) {
	if frame < 0 || frame >= o.Frames || o.Period <= 0 {
		return 0, 0, false
	}
	a := 2 * math.Pi * float64(frame%o.Period) / float64(o.Period)
	return o.CX + o.R*math.Cos(a), o.CY + o.R*math.Sin(a), true
}

// Sweep moves the cursor in a straight line from (X0,Y0) to (X1,Y1) over
// Frames frames, landing on the end point at the last frame.
type Sweep struct {
	X0, Y0, X1, Y1 float64
	Frames         int
}

func (s Sweep) Cursor(frame int) (float64, float64, bool) {
	if frame < 0 || frame >= s.Frames {
		return 0, 0, false
	}
	t := 0.0
	if s.Frames > 1 {
		t = float64(frame) / float64(s.Frames-1)
	}
	return s.X0 + (s.X1-s.X0)*t, s.Y0 + (s.Y1-s.Y0)*t, true
}

// Parse builds a source from a short description for a width x height
// window producing frames frames:
//
//	center                  the window center
//	fixed:X,Y               a fixed pixel position
//	orbit:R[,PERIOD]        a circle of radius R around the center
//	sweep:X0,Y0,X1,Y1       a straight line
//
// PERIOD defaults to frames.
func Parse(desc string, width, height, frames int) (Source, error) {
	kind, args, _ := strings.Cut(strings.TrimSpace(desc), ":")
	vals, err := parseFloats(args)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadSource, desc, err)
	}
	cx, cy := float64(width)/2, float64(height)/2
	switch strings.ToLower(kind) {
	case "center", "":
		if len(vals) != 0 {
			break
		}
		return Fixed{X: cx, Y: cy, Frames: frames}, nil
	case "fixed":
		if len(vals) != 2 {
			break
		}
		return Fixed{X: vals[0], Y: vals[1], Frames: frames}, nil
	case "orbit":
		if len(vals) != 1 && len(vals) != 2 {
			break
		}
		period := frames
		if len(vals) == 2 {
			period = int(vals[1])
		}
		if period <= 0 {
			return nil, fmt.Errorf("%w %q: period must be positive", ErrBadSource, desc)
		}
		return Orbit{CX: cx, CY: cy, R: vals[0], Period: period, Frames: frames}, nil
	case "sweep":
		if len(vals) != 4 {
			break
		}
		return Sweep{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3], Frames: frames}, nil
	default:
		return nil, fmt.Errorf("%w %q: unknown kind %q", ErrBadSource, desc, kind)
	}
	return nil, fmt.Errorf("%w %q: wrong number of values", ErrBadSource, desc)
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
