package gpucore

import (
	"encoding/binary"
	"math"
)

// MaxMirrors is the number of mirror slots in the uniform block.
const MaxMirrors = 8

// UniformsSize is the encoded size of Uniforms in bytes.
// Must match the Params struct in every WGSL kernel.
const UniformsSize = 208

// Uniforms is the parameter block shared by all kernels.
// Must match Params in reflect.wgsl, point.wgsl, trail.wgsl and density.wgsl.
//
// Layout (std140-compatible, little-endian):
//
//	  0  normals      array<vec4<f32>, 8>   (nx, ny, d, 0)
//	128  color        vec4<f32>
//	144  background   vec4<f32>
//	160  cursor       vec2<f32>
//	168  width        u32
//	172  height       u32
//	176  num_mirrors  u32
//	180  total_points u32
//	184  groups_x     u32
//	188  groups_y     u32
//	192  decay        f32
//	196  saturation   f32
//	200  sentinel     i32
//	204  _pad         u32
type Uniforms struct {
	Normals     [MaxMirrors][4]float32
	Color       [4]float32
	Background  [4]float32
	Cursor      [2]float32
	Width       uint32
	Height      uint32
	NumMirrors  uint32
	TotalPoints uint32
	GroupsX     uint32
	GroupsY     uint32
	Decay       float32
	Saturation  float32
	Sentinel    int32
}

// Bytes encodes u in the WGSL layout.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, UniformsSize)
	le := binary.LittleEndian
	off := 0
	putF := func(v float32) {
		le.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	putU := func(v uint32) {
		le.PutUint32(buf[off:], v)
		off += 4
	}
	for i := range u.Normals {
		for _, v := range u.Normals[i] {
			putF(v)
		}
	}
	for _, v := range u.Color {
		putF(v)
	}
	for _, v := range u.Background {
		putF(v)
	}
	putF(u.Cursor[0])
	putF(u.Cursor[1])
	putU(u.Width)
	putU(u.Height)
	putU(u.NumMirrors)
	putU(u.TotalPoints)
	putU(u.GroupsX)
	putU(u.GroupsY)
	putF(u.Decay)
	putF(u.Saturation)
	putU(uint32(u.Sentinel))
	return buf
}
