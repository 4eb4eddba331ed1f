package gpucore

import "fmt"

// Kernel identifies one of the compute programs a substrate can run.
type Kernel uint8

// Kernels.
const (
	// KernelReflect walks every path code from the cursor and scatters
	// atomic hits into the accumulation buffer.
	KernelReflect Kernel = iota

	// KernelResolvePoint writes presence colors.
	KernelResolvePoint

	// KernelResolveTrail blends new hits over a decaying copy of the
	// previous image.
	KernelResolveTrail

	// KernelResolveDensity maps hit counts through a logarithmic ramp.
	KernelResolveDensity

	// NumKernels is the number of kernels.
	NumKernels
)

// ReflectWorkgroupSize is the invocation count of one reflect workgroup.
const ReflectWorkgroupSize = 128

// ResolveTile is the edge of the square resolve workgroup.
const ResolveTile = 8

// Binding describes one slot a kernel uses.
type Binding struct {
	Slot   Slot
	Access Access
}

var kernelNames = [NumKernels]string{"reflect", "resolve_point", "resolve_trail", "resolve_density"}

var kernelBindings = [NumKernels][]Binding{
	KernelReflect: {
		{SlotPathTable, ReadOnly},
		{SlotAccumulation, ReadWrite},
	},
	KernelResolvePoint: {
		{SlotAccumulation, ReadOnly},
		{SlotImage, ReadWrite},
	},
	KernelResolveTrail: {
		{SlotAccumulation, ReadOnly},
		{SlotImage, ReadWrite},
		{SlotHistory, ReadWrite},
	},
	KernelResolveDensity: {
		{SlotAccumulation, ReadOnly},
		{SlotImage, ReadWrite},
	},
}

// String returns the kernel name, which is also its WGSL file stem.
func (k Kernel) String() string {
	if k < NumKernels {
		return kernelNames[k]
	}
	return fmt.Sprintf("kernel(%d)", uint8(k))
}

// Valid reports whether k names a known kernel.
func (k Kernel) Valid() bool { return k < NumKernels }

// WorkgroupSize returns the local size of the kernel.
func (k Kernel) WorkgroupSize() [3]uint32 {
	if k == KernelReflect {
		return [3]uint32{ReflectWorkgroupSize, 1, 1}
	}
	return [3]uint32{ResolveTile, ResolveTile, 1}
}

// Invocations returns the number of invocations in one workgroup.
func (k Kernel) Invocations() uint32 {
	s := k.WorkgroupSize()
	return s[0] * s[1] * s[2]
}

// Bindings returns the storage slots the kernel uses, excluding the
// implicit params slot. The returned slice must not be modified.
func (k Kernel) Bindings() []Binding {
	if k < NumKernels {
		return kernelBindings[k]
	}
	return nil
}

// ResolveGrid returns the workgroup grid that covers a width x height image
// with ResolveTile x ResolveTile workgroups.
func ResolveGrid(width, height int) Grid {
	return Grid{
		X: uint32((width + ResolveTile - 1) / ResolveTile),
		Y: uint32((height + ResolveTile - 1) / ResolveTile),
		Z: 1,
	}
}
