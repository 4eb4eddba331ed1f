package kernel

import "github.com/chewxy/math32"

// Vec2 is a point in normalized device coordinates.
type Vec2 struct {
	X, Y float32
}

// Normal is a mirror line in Hessian normal form: NX*x + NY*y = D.
// The fourth component pads it to a WGSL vec4.
type Normal = [4]float32

// NormalForm converts y = slope*x + offset into a unit normal form.
func NormalForm(slope, offset float32) Normal {
	inv := 1 / math32.Sqrt(slope*slope+1)
	return Normal{slope * inv, -inv, -offset * inv, 0}
}

// Reflect mirrors p across the line n.
func Reflect(p Vec2, n Normal) Vec2 {
	dist := n[0]*p.X + n[1]*p.Y - n[2]
	return Vec2{
		X: p.X - 2*dist*n[0],
		Y: p.Y - 2*dist*n[1],
	}
}

// Walk applies the reflection sequence encoded by code to p.
//
// Base-m digits of |code| are applied least significant first, so the digit
// with weight m^(k-1) is the k-th reflection. A negative code applies one
// more reflection across mirror 0 after its digits. The sentinel code is
// the unreflected point.
func Walk(p Vec2, code, sentinel int32, m uint32, normals []Normal) Vec2 {
	if code == sentinel {
		return p
	}
	a := uint32(code)
	if code < 0 {
		a = uint32(-code)
	}
	for {
		p = Reflect(p, normals[a%m])
		a /= m
		if a == 0 {
			break
		}
	}
	if code < 0 {
		p = Reflect(p, normals[0])
	}
	return p
}

// PixelIndex maps p to a row-major pixel index with row 0 at the top.
// Points outside [-1,1)^2 and NaN coordinates report ok == false.
func PixelIndex(p Vec2, width, height uint32) (idx uint32, ok bool) {
	w, h := float32(width), float32(height)
	fx := math32.Floor((p.X + 1) * 0.5 * w)
	fy := math32.Floor((p.Y + 1) * 0.5 * h)
	if !(fx >= 0 && fx < w && fy >= 0 && fy < h) {
		return 0, false
	}
	row := height - 1 - uint32(fy)
	return row*width + uint32(fx), true
}

// GlobalIndex flattens a workgroup id and local index into the linear path
// table index used by the reflect kernel.
func GlobalIndex(wx, wy, wz, gx, gy, local uint32) uint32 {
	return ((wz*gy+wy)*gx+wx)*128 + local
}
