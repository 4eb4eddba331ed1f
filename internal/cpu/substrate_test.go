package cpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/kaleido/gpucore"
	"github.com/gogpu/kaleido/internal/kernel"
)

func codesBytes(codes ...int32) []byte {
	b := make([]byte, 4*len(codes))
	for i, c := range codes {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(c))
	}
	return b
}

func mustBuffer(t *testing.T, s *Substrate, label string, size uint64) gpucore.BufferID {
	t.Helper()
	id, err := s.CreateBuffer(label, size, gpucore.BufferUsageStorage)
	if err != nil {
		t.Fatalf("CreateBuffer(%s) error = %v", label, err)
	}
	return id
}

// =============================================================================
// Buffer Tests
// =============================================================================

func TestSubstrate_WriteReadClear(t *testing.T) {
	s := New(2)
	defer s.Close()

	id := mustBuffer(t, s, "buf", 16)
	if err := s.WriteBuffer(id, 4, codesBytes(7, -3)); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}
	got, err := s.ReadBuffer(id, 0, 16)
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}
	want := codesBytes(0, 7, -3, 0)
	if string(got) != string(want) {
		t.Errorf("ReadBuffer() = %v, want %v", got, want)
	}

	if err := s.ClearBuffer(id); err != nil {
		t.Fatalf("ClearBuffer() error = %v", err)
	}
	words, _ := s.Words(id)
	for i, w := range words {
		if w != 0 {
			t.Errorf("word %d = %d after clear", i, w)
		}
	}
}

func TestSubstrate_BufferErrors(t *testing.T) {
	s := New(1)
	defer s.Close()

	if _, err := s.CreateBuffer("odd", 6, 0); err == nil {
		t.Error("CreateBuffer(6) should fail")
	}
	id := mustBuffer(t, s, "small", 8)
	if err := s.WriteBuffer(id, 4, codesBytes(1, 2)); !errors.Is(err, gpucore.ErrOutOfRange) {
		t.Errorf("overflowing write = %v, want ErrOutOfRange", err)
	}
	if _, err := s.ReadBuffer(99, 0, 4); !errors.Is(err, gpucore.ErrUnknownBuffer) {
		t.Errorf("read unknown = %v, want ErrUnknownBuffer", err)
	}

	s.DestroyBuffer(id)
	if err := s.ClearBuffer(id); !errors.Is(err, gpucore.ErrUnknownBuffer) {
		t.Errorf("clear destroyed = %v, want ErrUnknownBuffer", err)
	}
}

func TestSubstrate_Closed(t *testing.T) {
	s := New(1)
	s.Close()
	s.Close()

	if _, err := s.CreateBuffer("x", 4, 0); !errors.Is(err, gpucore.ErrClosed) {
		t.Errorf("CreateBuffer after Close = %v, want ErrClosed", err)
	}
	if err := s.Barrier(gpucore.BarrierImage); !errors.Is(err, gpucore.ErrClosed) {
		t.Errorf("Barrier after Close = %v, want ErrClosed", err)
	}
}

// =============================================================================
// Dispatch Tests
// =============================================================================

type rig struct {
	s                            *Substrate
	table, accum, image, history gpucore.BufferID
	u                            gpucore.Uniforms
}

func newRig(t *testing.T, w, h uint32, codes ...int32) *rig {
	t.Helper()
	s := New(4)
	t.Cleanup(s.Close)

	r := &rig{s: s}
	r.table = mustBuffer(t, s, "table", uint64(4*len(codes)))
	r.accum = mustBuffer(t, s, "accum", uint64(4*w*h))
	r.image = mustBuffer(t, s, "image", uint64(16*w*h))
	r.history = mustBuffer(t, s, "history", uint64(4*w*h))
	if err := s.WriteBuffer(r.table, 0, codesBytes(codes...)); err != nil {
		t.Fatal(err)
	}

	r.u = gpucore.Uniforms{
		Color:       [4]float32{1, 1, 1, 1},
		Background:  [4]float32{0, 0, 0, 1},
		Width:       w,
		Height:      h,
		NumMirrors:  2,
		TotalPoints: uint32(len(codes)),
		GroupsX:     1,
		GroupsY:     1,
		Decay:       0.5,
		Saturation:  4,
		Sentinel:    3,
	}
	// Mirrors y = x and y = -x.
	r.u.Normals[0] = kernel.NormalForm(1, 0)
	r.u.Normals[1] = kernel.NormalForm(-1, 0)
	return r
}

func (r *rig) reflect(t *testing.T, cursor [2]float32) {
	t.Helper()
	r.u.Cursor = cursor
	if err := r.s.SetUniforms(&r.u); err != nil {
		t.Fatal(err)
	}
	if err := r.s.Bind(gpucore.SlotPathTable, r.table, gpucore.ReadOnly); err != nil {
		t.Fatal(err)
	}
	if err := r.s.Bind(gpucore.SlotAccumulation, r.accum, gpucore.ReadWrite); err != nil {
		t.Fatal(err)
	}
	if err := r.s.Dispatch(gpucore.KernelReflect, gpucore.Grid{X: 1, Y: 1, Z: 1}); err != nil {
		t.Fatalf("Dispatch(reflect) error = %v", err)
	}
	if err := r.s.Barrier(gpucore.BarrierStorage); err != nil {
		t.Fatal(err)
	}
}

func (r *rig) resolve(t *testing.T, k gpucore.Kernel) []float32 {
	t.Helper()
	_ = r.s.Bind(gpucore.SlotAccumulation, r.accum, gpucore.ReadOnly)
	_ = r.s.Bind(gpucore.SlotImage, r.image, gpucore.ReadWrite)
	_ = r.s.Bind(gpucore.SlotHistory, r.history, gpucore.ReadWrite)
	if err := r.s.Dispatch(k, gpucore.ResolveGrid(int(r.u.Width), int(r.u.Height))); err != nil {
		t.Fatalf("Dispatch(%s) error = %v", k, err)
	}
	if err := r.s.Barrier(gpucore.BarrierImage); err != nil {
		t.Fatal(err)
	}
	words, _ := r.s.Words(r.image)
	out := make([]float32, len(words))
	for i, w := range words {
		out[i] = math.Float32frombits(w)
	}
	return out
}

func TestDispatch_ReflectScatter(t *testing.T) {
	// Sentinel, mirror 0, mirror 1, then 0->1 (code 2) and 1->0 (code -1).
	r := newRig(t, 4, 4, 3, 0, 1, 2, -1)
	r.reflect(t, [2]float32{0.6, 0.1})

	words, _ := r.s.Words(r.accum)
	total := uint32(0)
	for _, w := range words {
		total += w
	}
	if total != 5 {
		t.Errorf("total hits = %d, want 5", total)
	}

	// (0.6, 0.1) lands in column 3, row 1 of a 4x4 grid.
	if words[1*4+3] != 1 {
		t.Errorf("cursor cell = %d, want 1", words[1*4+3])
	}
	// Both two-step paths rotate the point by 180 degrees to (-0.6, -0.1).
	if words[2*4+0] != 2 {
		t.Errorf("rotated cell = %d, want 2", words[2*4+0])
	}
}

func TestDispatch_OutOfBoundsDropped(t *testing.T) {
	r := newRig(t, 4, 4, 3)
	r.reflect(t, [2]float32{1.5, 0})

	words, _ := r.s.Words(r.accum)
	for i, w := range words {
		if w != 0 {
			t.Errorf("cell %d = %d, want 0", i, w)
		}
	}
}

func TestDispatch_BindingErrors(t *testing.T) {
	r := newRig(t, 4, 4, 3)
	if err := r.s.SetUniforms(&r.u); err != nil {
		t.Fatal(err)
	}
	err := r.s.Dispatch(gpucore.KernelReflect, gpucore.Grid{X: 1, Y: 1, Z: 1})
	if !errors.Is(err, gpucore.ErrUnbound) {
		t.Errorf("Dispatch unbound = %v, want ErrUnbound", err)
	}

	_ = r.s.Bind(gpucore.SlotPathTable, r.table, gpucore.ReadWrite)
	_ = r.s.Bind(gpucore.SlotAccumulation, r.accum, gpucore.ReadWrite)
	err = r.s.Dispatch(gpucore.KernelReflect, gpucore.Grid{X: 1, Y: 1, Z: 1})
	if !errors.Is(err, gpucore.ErrAccessMismatch) {
		t.Errorf("Dispatch rw table = %v, want ErrAccessMismatch", err)
	}

	if err := r.s.Bind(gpucore.SlotParams, r.table, gpucore.ReadOnly); err == nil {
		t.Error("Bind(params) should fail")
	}
}

func TestDispatch_NoUniforms(t *testing.T) {
	s := New(1)
	defer s.Close()
	if err := s.Dispatch(gpucore.KernelReflect, gpucore.Grid{X: 1, Y: 1, Z: 1}); !errors.Is(err, gpucore.ErrNoUniforms) {
		t.Errorf("Dispatch() = %v, want ErrNoUniforms", err)
	}
}

func TestDispatch_ResolvePoint(t *testing.T) {
	r := newRig(t, 4, 4, 3)
	r.reflect(t, [2]float32{0.6, 0.1})
	img := r.resolve(t, gpucore.KernelResolvePoint)

	hit := (1*4 + 3) * 4
	if img[hit] != 1 || img[hit+3] != 1 {
		t.Errorf("hit pixel = %v, want white", img[hit:hit+4])
	}
	if img[0] != 0 || img[3] != 1 {
		t.Errorf("background pixel = %v, want opaque black", img[0:4])
	}
}

func TestDispatch_ResolveTrailFades(t *testing.T) {
	r := newRig(t, 4, 4, 3)
	r.reflect(t, [2]float32{0.6, 0.1})
	img := r.resolve(t, gpucore.KernelResolveTrail)
	hit := (1*4 + 3) * 4
	if img[hit] != 1 {
		t.Fatalf("first frame hit = %v, want 1", img[hit])
	}

	// Move the cursor away without clearing: the old pixel fades by decay.
	r.reflect(t, [2]float32{-0.6, -0.6})
	img = r.resolve(t, gpucore.KernelResolveTrail)
	if img[hit] != 0.5 {
		t.Errorf("second frame old pixel = %v, want 0.5", img[hit])
	}
	img = r.resolve(t, gpucore.KernelResolveTrail)
	if img[hit] != 0.25 {
		t.Errorf("third frame old pixel = %v, want 0.25", img[hit])
	}

	hist, _ := r.s.Words(r.history)
	if hist[1*4+3] != 1 {
		t.Errorf("history = %d, want 1", hist[1*4+3])
	}
}

func TestDispatch_ResolveDensity(t *testing.T) {
	// Four sentinel entries put four hits on one pixel: saturation 4.
	r := newRig(t, 4, 4, 3, 3, 3, 3)
	r.reflect(t, [2]float32{0.6, 0.1})
	img := r.resolve(t, gpucore.KernelResolveDensity)

	hit := (1*4 + 3) * 4
	want := kernel.Ramp(1, r.u.Background)
	for c := range 4 {
		if img[hit+c] != want[c] {
			t.Errorf("density channel %d = %v, want %v", c, img[hit+c], want[c])
		}
	}
}
