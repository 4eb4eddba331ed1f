package kaleido

import (
	"fmt"

	"github.com/gogpu/kaleido/gpucore"
)

// WorkgroupSize is the number of path codes one reflect workgroup covers.
const WorkgroupSize = gpucore.ReflectWorkgroupSize

// DispatchGeometry is the 3-D workgroup count of the reflect stage.
type DispatchGeometry struct {
	X, Y, Z uint32
}

// SizeDispatch returns the geometry covering total path codes.
//
// Starting from 1x1x1 it doubles X, then Y, then Z, round-robin, until
// X*Y*Z*WorkgroupSize >= total. The result depends only on total.
func SizeDispatch(total int) DispatchGeometry {
	g := [3]uint64{1, 1, 1}
	need := uint64(max(total, 0))
	for axis := 0; g[0]*g[1]*g[2]*WorkgroupSize < need; axis = (axis + 1) % 3 {
		g[axis] *= 2
	}
	return DispatchGeometry{X: uint32(g[0]), Y: uint32(g[1]), Z: uint32(g[2])}
}

// Workgroups returns X*Y*Z.
func (g DispatchGeometry) Workgroups() uint64 {
	return uint64(g.X) * uint64(g.Y) * uint64(g.Z)
}

// Invocations returns the number of kernel invocations the geometry launches.
func (g DispatchGeometry) Invocations() uint64 {
	return g.Workgroups() * WorkgroupSize
}

// Covers reports whether the geometry launches at least total invocations.
func (g DispatchGeometry) Covers(total int) bool {
	return g.Invocations() >= uint64(max(total, 0))
}

// Grid converts g to the substrate grid type.
func (g DispatchGeometry) Grid() gpucore.Grid {
	return gpucore.Grid{X: g.X, Y: g.Y, Z: g.Z}
}

// String implements fmt.Stringer.
func (g DispatchGeometry) String() string {
	return fmt.Sprintf("%dx%dx%d", g.X, g.Y, g.Z)
}
