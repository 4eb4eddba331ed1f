// Package gpucore defines the compute substrate contract used by the kaleido
// reflection pipeline.
//
// A substrate is anything that can hold buffers and run the four kaleido
// kernels over a 3-D grid of workgroups: the wgpu HAL backend in
// internal/gpu and the worker-pool CPU backend in internal/cpu both satisfy
// [Substrate]. The pipeline orchestrator only ever speaks in the primitives
// declared here:
//
//   - bind a buffer read-only or read-write to a numbered slot
//   - set the shared uniform block
//   - dispatch a kernel over a [Grid]
//   - issue a [Barrier] between stages
//
// # Resource Management
//
// Buffers are addressed by opaque [BufferID] values. IDs are never reused
// within one substrate, and using an ID after DestroyBuffer is an error.
//
// # Binding Model
//
// Every kernel declares the slots it reads and writes in [Kernel.Bindings].
// Slot numbers equal the @binding indices in the WGSL sources, so the CPU
// and GPU backends agree on one layout:
//
//	slot 0  params        uniform
//	slot 1  path table    read-only storage  (reflect)
//	slot 2  accumulation  read-write atomic  (reflect) / read-only (resolve)
//	slot 3  image         read-write storage (resolve)
//	slot 4  history       read-write storage (trail resolve)
//
// Slot 0 is implicit: it is always backed by the block passed to
// [Substrate.SetUniforms].
package gpucore
