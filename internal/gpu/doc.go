//go:build !nogpu

// Package gpu implements the kaleido compute substrate on wgpu/hal.
//
// Each kernel is a WGSL compute shader compiled to SPIR-V with naga and
// wrapped in its own pipeline. Binding numbers in the shaders equal the
// gpucore slot numbers; binding 0 is always the params uniform block.
//
// The reflect kernel decodes path codes without a loop (see unrollDigits).
package gpu
