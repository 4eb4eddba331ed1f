package gpucore

import "errors"

// Substrate errors.
var (
	// ErrUnknownBuffer is returned when an ID does not name a live buffer.
	ErrUnknownBuffer = errors.New("gpucore: unknown buffer")

	// ErrUnknownKernel is returned when dispatching an invalid Kernel.
	ErrUnknownKernel = errors.New("gpucore: unknown kernel")

	// ErrUnbound is returned when a kernel slot has no buffer bound.
	ErrUnbound = errors.New("gpucore: slot not bound")

	// ErrAccessMismatch is returned when a slot is bound with a different
	// access mode than the kernel declares.
	ErrAccessMismatch = errors.New("gpucore: binding access mismatch")

	// ErrOutOfRange is returned for reads and writes past the buffer end.
	ErrOutOfRange = errors.New("gpucore: buffer range out of bounds")

	// ErrNoUniforms is returned when dispatching before SetUniforms.
	ErrNoUniforms = errors.New("gpucore: uniforms not set")

	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("gpucore: substrate closed")
)

// Substrate is a compute backend able to run the kaleido kernels.
//
// Substrates are driven by a single goroutine. Work issued by Dispatch may
// run asynchronously. Host-visible results are only guaranteed after
// Barrier(BarrierImage) or a ReadBuffer call, which implies one.
//
// Resource lifecycle:
//   - Buffers are created via CreateBuffer and zero-initialized
//   - Buffers must be explicitly destroyed via DestroyBuffer
//   - Bindings persist across dispatches until rebound
type Substrate interface {
	// Name returns the registry name of the substrate ("cpu", "wgpu").
	Name() string

	// CreateBuffer allocates a zeroed buffer of size bytes. Size must be a
	// multiple of 4.
	CreateBuffer(label string, size uint64, usage BufferUsage) (BufferID, error)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// WriteBuffer copies data into the buffer at offset.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// ClearBuffer zeroes the whole buffer. It is ordered after previously
	// issued dispatches.
	ClearBuffer(id BufferID) error

	// ReadBuffer copies size bytes at offset back to the host, waiting for
	// all issued work first.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)

	// SetUniforms replaces the params block seen by subsequent dispatches.
	SetUniforms(u *Uniforms) error

	// Bind attaches a buffer to a slot with the given access.
	Bind(slot Slot, id BufferID, access Access) error

	// Dispatch runs kernel k over grid g using the current bindings.
	Dispatch(k Kernel, g Grid) error

	// Barrier orders all previously issued work before later work.
	Barrier(kind BarrierKind) error

	// Close releases all resources held by the substrate.
	Close()
}

// CheckBindings verifies that every slot k uses is bound with the access
// the kernel declares. bound reports the buffer and access for a slot.
func CheckBindings(k Kernel, bound func(Slot) (BufferID, Access, bool)) error {
	if !k.Valid() {
		return ErrUnknownKernel
	}
	for _, b := range k.Bindings() {
		id, access, ok := bound(b.Slot)
		if !ok || id == InvalidID {
			return &BindingError{Kernel: k, Slot: b.Slot, Err: ErrUnbound}
		}
		if access != b.Access {
			return &BindingError{Kernel: k, Slot: b.Slot, Err: ErrAccessMismatch}
		}
	}
	return nil
}

// BindingError reports a bad binding for a kernel slot.
type BindingError struct {
	Kernel Kernel
	Slot   Slot
	Err    error
}

func (e *BindingError) Error() string {
	return e.Err.Error() + ": " + e.Kernel.String() + " " + e.Slot.String()
}

func (e *BindingError) Unwrap() error { return e.Err }
