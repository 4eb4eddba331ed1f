package gpucore

import "fmt"

// BufferID is an opaque handle to a substrate buffer.
type BufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID BufferID = 0

// BufferUsage is a bitmask hinting how a buffer will be used.
// Backends without usage-specific memory (the CPU substrate) ignore it.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageStorage marks a buffer bound to a kernel slot.
	BufferUsageStorage BufferUsage = 1 << iota

	// BufferUsageUpload marks a buffer written from the host.
	BufferUsageUpload

	// BufferUsageReadback marks a buffer read back to the host.
	BufferUsageReadback
)

// Access describes how a kernel uses a bound buffer.
type Access uint8

const (
	// ReadOnly binds a buffer as read-only storage.
	ReadOnly Access = iota

	// ReadWrite binds a buffer as read-write storage.
	ReadWrite
)

// String returns "ro" or "rw".
func (a Access) String() string {
	if a == ReadWrite {
		return "rw"
	}
	return "ro"
}

// Slot is a binding index shared by every kernel.
type Slot uint32

// Binding slots. The values are the WGSL @binding numbers.
const (
	SlotParams       Slot = 0
	SlotPathTable    Slot = 1
	SlotAccumulation Slot = 2
	SlotImage        Slot = 3
	SlotHistory      Slot = 4

	// NumSlots is one past the highest slot.
	NumSlots = 5
)

var slotNames = [NumSlots]string{"params", "path_table", "accumulation", "image", "history"}

// String returns the slot name.
func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return fmt.Sprintf("slot(%d)", uint32(s))
}

// Grid is a 3-D workgroup count.
type Grid struct {
	X, Y, Z uint32
}

// Workgroups returns X*Y*Z.
func (g Grid) Workgroups() uint64 {
	return uint64(g.X) * uint64(g.Y) * uint64(g.Z)
}

// Empty reports whether any axis is zero.
func (g Grid) Empty() bool {
	return g.X == 0 || g.Y == 0 || g.Z == 0
}

// String implements fmt.Stringer.
func (g Grid) String() string {
	return fmt.Sprintf("%dx%dx%d", g.X, g.Y, g.Z)
}

// BarrierKind selects what a barrier makes visible.
type BarrierKind uint8

const (
	// BarrierStorage orders storage writes of one dispatch before storage
	// reads of the next (reflect -> resolve).
	BarrierStorage BarrierKind = iota

	// BarrierImage makes the resolved image visible to the host
	// (resolve -> present). Backends that queue work flush and wait here.
	BarrierImage
)

// String implements fmt.Stringer.
func (b BarrierKind) String() string {
	switch b {
	case BarrierStorage:
		return "storage"
	case BarrierImage:
		return "image"
	default:
		return fmt.Sprintf("barrier(%d)", uint8(b))
	}
}
