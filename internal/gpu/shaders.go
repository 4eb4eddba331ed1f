//go:build !nogpu

package gpu

import (
	"embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/kaleido/gpucore"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// maxDigits is the longest digit string an int32 path code can carry
// (base 2, 31 magnitude bits).
const maxDigits = 31

var kernelFiles = [gpucore.NumKernels]string{
	gpucore.KernelReflect:        "reflect.wgsl",
	gpucore.KernelResolvePoint:   "point.wgsl",
	gpucore.KernelResolveTrail:   "trail.wgsl",
	gpucore.KernelResolveDensity: "density.wgsl",
}

const digitsMarker = "//@DIGITS"

// kernelSource assembles the WGSL for k: the shared Params block followed by
// the kernel body.
func kernelSource(k gpucore.Kernel) (string, error) {
	if !k.Valid() {
		return "", gpucore.ErrUnknownKernel
	}
	params, err := shaderFS.ReadFile("shaders/params.wgsl")
	if err != nil {
		return "", err
	}
	body, err := shaderFS.ReadFile("shaders/" + kernelFiles[k])
	if err != nil {
		return "", err
	}
	src := string(params) + "\n" + string(body)
	if k == gpucore.KernelReflect {
		src = strings.Replace(src, digitsMarker, unrollDigits(), 1)
	}
	return src, nil
}

// unrollDigits expands the digit walk after the first reflection into
// straight-line code. naga's SPIR-V output only runs the first iteration
// of a loop, so the reflect kernel cannot iterate.
func unrollDigits() string {
	var b strings.Builder
	for i := 1; i < maxDigits; i++ {
		if i > 1 {
			b.WriteString("\n        ")
		}
		b.WriteString("if (a != 0u) { p = reflect_point(p, params.normals[a % m]); a = a / m; }")
	}
	return b.String()
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(src string) ([]uint32, error) {
	raw, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = uint32(raw[i*4]) |
			uint32(raw[i*4+1])<<8 |
			uint32(raw[i*4+2])<<16 |
			uint32(raw[i*4+3])<<24
	}
	return words, nil
}
