// Package kernel holds the per-element math of the kaleido compute kernels
// in plain float32 Go.
//
// The functions here mirror the WGSL sources in internal/gpu/shaders line
// for line. The CPU substrate runs them directly and the tests use them as
// the reference for both backends.
package kernel
