package kaleido

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/kaleido/gpucore"
	"github.com/gogpu/kaleido/internal/kernel"
)

// MaxMirrors is the largest supported mirror count.
const MaxMirrors = gpucore.MaxMirrors

// Mirror is a straight reflecting line y = Slope*x + Offset in normalized
// device coordinates.
type Mirror struct {
	Slope  float32 `toml:"slope" yaml:"slope"`
	Offset float32 `toml:"offset" yaml:"offset"`
}

// Normal is the unit normal form of a mirror: NX*x + NY*y = D for every
// point on the line.
type Normal struct {
	NX, NY, D float32
}

// Segment is a drawable piece of a mirror line, clipped to [-1,1]^2.
type Segment struct {
	A, B Point
}

// MirrorSet is an immutable, validated set of mirrors with their normal
// forms precomputed.
type MirrorSet struct {
	mirrors []Mirror
	normals []kernel.Normal
}

// NewMirrorSet validates mirrors and derives their normal forms.
// It fails with a *ConfigurationError for zero, one, or more than
// MaxMirrors mirrors, and for non-finite parameters.
func NewMirrorSet(mirrors []Mirror) (*MirrorSet, error) {
	switch n := len(mirrors); {
	case n == 0:
		return nil, configErr("mirrors", ErrNoMirrors)
	case n == 1:
		return nil, configErr("mirrors", ErrDegenerateMirrorCount)
	case n > MaxMirrors:
		return nil, configErrf("mirrors", ErrTooManyMirrors, "%d > %d", n, MaxMirrors)
	}

	ms := &MirrorSet{
		mirrors: append([]Mirror(nil), mirrors...),
		normals: make([]kernel.Normal, len(mirrors)),
	}
	for i, m := range mirrors {
		if !finite(m.Slope) || !finite(m.Offset) {
			return nil, configErrf("mirrors", ErrInvalidMirror, "mirror %d", i)
		}
		ms.normals[i] = kernel.NormalForm(m.Slope, m.Offset)
	}
	return ms, nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Len returns the number of mirrors.
func (s *MirrorSet) Len() int { return len(s.mirrors) }

// Mirror returns mirror i.
func (s *MirrorSet) Mirror(i int) Mirror { return s.mirrors[i] }

// Mirrors returns a copy of the mirror list.
func (s *MirrorSet) Mirrors() []Mirror { return append([]Mirror(nil), s.mirrors...) }

// Normal returns the normal form of mirror i.
func (s *MirrorSet) Normal(i int) Normal {
	n := s.normals[i]
	return Normal{NX: n[0], NY: n[1], D: n[2]}
}

// Normals returns a copy of every mirror's normal form, in mirror order.
func (s *MirrorSet) Normals() []Normal {
	out := make([]Normal, len(s.normals))
	for i := range s.normals {
		out[i] = s.Normal(i)
	}
	return out
}

// Reflect mirrors p across mirror i.
func (s *MirrorSet) Reflect(i int, p Point) Point {
	r := kernel.Reflect(kernel.Vec2{X: p.X, Y: p.Y}, s.normals[i])
	return Point{X: r.X, Y: r.Y}
}

// Apply reflects p across every mirror in seq, in order.
func (s *MirrorSet) Apply(seq []int, p Point) Point {
	for _, i := range seq {
		p = s.Reflect(i, p)
	}
	return p
}

// fillUniforms writes the packed normals into u.
func (s *MirrorSet) fillUniforms(u *gpucore.Uniforms) {
	u.NumMirrors = uint32(len(s.normals))
	copy(u.Normals[:], s.normals)
}

// Segments returns the visible part of every mirror line. Each mirror is
// taken between x = -1 and x = 1 and clipped to the unit square; mirrors
// that miss the square are left out.
func (s *MirrorSet) Segments() []Segment {
	segs := make([]Segment, 0, len(s.mirrors))
	for _, m := range s.mirrors {
		a := Point{X: -1, Y: -m.Slope + m.Offset}
		b := Point{X: 1, Y: m.Slope + m.Offset}
		if seg, ok := clipSegment(a, b); ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

// clipSegment clips ab to [-1,1]^2 (Liang-Barsky).
func clipSegment(a, b Point) (Segment, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := float32(0), float32(1)
	edges := [4][2]float32{
		{-dx, a.X + 1},
		{dx, 1 - a.X},
		{-dy, a.Y + 1},
		{dy, 1 - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return Segment{}, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return Segment{}, false
		}
	}
	return Segment{
		A: Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		B: Point{X: a.X + t1*dx, Y: a.Y + t1*dy},
	}, true
}
