// Package cpu implements the kaleido compute substrate on a goroutine pool.
//
// Buffers are plain []uint32 slices. Dispatches are split into chunks of
// workgroups and run asynchronously on an internal/parallel Pool; Barrier,
// ReadBuffer, WriteBuffer and ClearBuffer wait for them. Atomic scatter into
// the accumulation buffer uses sync/atomic, matching atomicAdd in the WGSL
// reflect kernel.
package cpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/kaleido/gpucore"
	"github.com/gogpu/kaleido/internal/kernel"
	"github.com/gogpu/kaleido/internal/parallel"
)

// Name is the registry name of the CPU substrate.
const Name = "cpu"

type buffer struct {
	label string
	words []uint32
}

type binding struct {
	id     gpucore.BufferID
	access gpucore.Access
}

// Substrate is the CPU compute substrate.
type Substrate struct {
	pool *parallel.Pool

	buffers map[gpucore.BufferID]*buffer
	nextID  gpucore.BufferID

	bindings [gpucore.NumSlots]binding

	uniforms    gpucore.Uniforms
	hasUniforms bool

	closed bool
}

var _ gpucore.Substrate = (*Substrate)(nil)

// New creates a CPU substrate with the given number of workers.
// Zero or negative uses GOMAXPROCS.
func New(workers int) *Substrate {
	return &Substrate{
		pool:    parallel.NewPool(workers),
		buffers: make(map[gpucore.BufferID]*buffer),
	}
}

// Name returns "cpu".
func (s *Substrate) Name() string { return Name }

// Workers returns the size of the worker pool.
func (s *Substrate) Workers() int { return s.pool.Workers() }

// CreateBuffer allocates a zeroed buffer.
func (s *Substrate) CreateBuffer(label string, size uint64, _ gpucore.BufferUsage) (gpucore.BufferID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	if size == 0 || size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("cpu: buffer %q size %d is not a positive multiple of 4", label, size)
	}
	s.nextID++
	s.buffers[s.nextID] = &buffer{label: label, words: make([]uint32, size/4)}
	return s.nextID, nil
}

// DestroyBuffer releases a buffer after in-flight work has finished.
func (s *Substrate) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := s.buffers[id]; !ok {
		return
	}
	s.pool.Wait()
	delete(s.buffers, id)
	for i := range s.bindings {
		if s.bindings[i].id == id {
			s.bindings[i] = binding{}
		}
	}
}

func (s *Substrate) lookup(id gpucore.BufferID) (*buffer, error) {
	if s.closed {
		return nil, gpucore.ErrClosed
	}
	b, ok := s.buffers[id]
	if !ok {
		return nil, fmt.Errorf("cpu: buffer %d: %w", id, gpucore.ErrUnknownBuffer)
	}
	return b, nil
}

func wordRange(b *buffer, offset, size uint64) (lo, hi uint64, err error) {
	if offset%4 != 0 || size%4 != 0 {
		return 0, 0, fmt.Errorf("cpu: buffer %q: unaligned range [%d, +%d)", b.label, offset, size)
	}
	lo, hi = offset/4, (offset+size)/4
	if hi > uint64(len(b.words)) || hi < lo {
		return 0, 0, fmt.Errorf("cpu: buffer %q: [%d, +%d): %w", b.label, offset, size, gpucore.ErrOutOfRange)
	}
	return lo, hi, nil
}

// WriteBuffer copies little-endian words into the buffer.
func (s *Substrate) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	lo, hi, err := wordRange(b, offset, uint64(len(data)))
	if err != nil {
		return err
	}
	s.pool.Wait()
	for i := lo; i < hi; i++ {
		b.words[i] = binary.LittleEndian.Uint32(data[(i-lo)*4:])
	}
	return nil
}

// ClearBuffer zeroes the buffer.
func (s *Substrate) ClearBuffer(id gpucore.BufferID) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.pool.Wait()
	clear(b.words)
	return nil
}

// ReadBuffer waits for issued work and copies the range out.
func (s *Substrate) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	lo, hi, err := wordRange(b, offset, size)
	if err != nil {
		return nil, err
	}
	s.pool.Wait()
	out := make([]byte, size)
	for i := lo; i < hi; i++ {
		binary.LittleEndian.PutUint32(out[(i-lo)*4:], b.words[i])
	}
	return out, nil
}

// Words exposes the backing words of a buffer after waiting for issued
// work. The slice aliases substrate memory.
func (s *Substrate) Words(id gpucore.BufferID) ([]uint32, error) {
	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	s.pool.Wait()
	return b.words, nil
}

// SetUniforms replaces the params block. Dispatches already issued keep the
// block they were issued with.
func (s *Substrate) SetUniforms(u *gpucore.Uniforms) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	s.uniforms = *u
	s.hasUniforms = true
	return nil
}

// Bind attaches a buffer to a slot.
func (s *Substrate) Bind(slot gpucore.Slot, id gpucore.BufferID, access gpucore.Access) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	if slot == gpucore.SlotParams || int(slot) >= gpucore.NumSlots {
		return fmt.Errorf("cpu: cannot bind %s", slot)
	}
	s.bindings[slot] = binding{id: id, access: access}
	return nil
}

func (s *Substrate) bound(slot gpucore.Slot) (gpucore.BufferID, gpucore.Access, bool) {
	b := s.bindings[slot]
	return b.id, b.access, b.id != gpucore.InvalidID
}

func (s *Substrate) slotWords(slot gpucore.Slot) []uint32 {
	return s.buffers[s.bindings[slot].id].words
}

// Barrier waits for all issued dispatches.
func (s *Substrate) Barrier(gpucore.BarrierKind) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	s.pool.Wait()
	return nil
}

// Close stops the worker pool and drops all buffers.
func (s *Substrate) Close() {
	if s.closed {
		return
	}
	s.pool.Close()
	s.buffers = nil
	s.bindings = [gpucore.NumSlots]binding{}
	s.closed = true
}

func f32(w uint32) float32 { return math.Float32frombits(w) }

func loadColor(words []uint32, i uint32) kernel.Color {
	return kernel.Color{f32(words[i]), f32(words[i+1]), f32(words[i+2]), f32(words[i+3])}
}

func storeColor(words []uint32, i uint32, c kernel.Color) {
	words[i] = math.Float32bits(c[0])
	words[i+1] = math.Float32bits(c[1])
	words[i+2] = math.Float32bits(c[2])
	words[i+3] = math.Float32bits(c[3])
}
