//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/kaleido/gpucore"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Name is the registry name of the wgpu substrate.
const Name = "wgpu"

var (
	// ErrNoBackend is returned when the Vulkan HAL backend is not compiled in.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when the instance reports no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrBadProvider is returned when a device provider does not expose
	// hal.Device and hal.Queue.
	ErrBadProvider = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrTimeout is returned when submitted work does not signal its fence
	// within fenceTimeout.
	ErrTimeout = errors.New("gpu: timed out waiting for GPU")
)

const fenceTimeout = 5 * time.Second

type buffer struct {
	label string
	size  uint64
	buf   hal.Buffer
}

type binding struct {
	id     gpucore.BufferID
	access gpucore.Access
}

type kernelPipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
}

// Substrate runs the kaleido kernels as wgpu compute pipelines.
//
// Dispatches are recorded into one command encoder, one compute pass each.
// Consecutive passes see each other's storage writes, so a storage barrier
// needs no extra work. The encoder is submitted and waited on by
// Barrier(BarrierImage), ReadBuffer, and any host write that would
// otherwise overtake recorded passes.
type Substrate struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool

	pipelines [gpucore.NumKernels]kernelPipeline
	params    hal.Buffer

	buffers  map[gpucore.BufferID]*buffer
	nextID   gpucore.BufferID
	bindings [gpucore.NumSlots]binding

	encoder    hal.CommandEncoder
	bindGroups []hal.BindGroup

	staging     hal.Buffer
	stagingSize uint64

	// zero backs buffer clears; it only grows and is never written.
	zero []byte

	hasUniforms bool
	closed      bool
}

var _ gpucore.Substrate = (*Substrate)(nil)

// New opens the first discrete or integrated adapter on the Vulkan backend
// and builds the kernel pipelines on it.
func New() (*Substrate, error) {
	instance, selected, err := openInstance()
	if err != nil {
		return nil, err
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	s := newSubstrate(openDev.Device, openDev.Queue, false)
	s.instance = instance
	s.adapter = selected.Info.Name
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	slogger().Info("wgpu substrate ready", "adapter", s.adapter)
	return s, nil
}

// NewFromProvider builds a substrate on a device shared by another
// component, such as a gogpu window. The provider must expose HalDevice()
// and HalQueue() returning hal.Device and hal.Queue. The shared device is
// not destroyed by Close.
func NewFromProvider(provider any) (*Substrate, error) {
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	s := newSubstrate(device, queue, true)
	s.adapter = "shared"
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	slogger().Info("wgpu substrate using shared device")
	return s, nil
}

// CheckProvider reports whether provider can back NewFromProvider.
func CheckProvider(provider any) error {
	_, _, err := halFromProvider(provider)
	return err
}

func halFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrBadProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrBadProvider)
	}
	return device, queue, nil
}

func newSubstrate(device hal.Device, queue hal.Queue, external bool) *Substrate {
	return &Substrate{
		device:   device,
		queue:    queue,
		external: external,
		buffers:  make(map[gpucore.BufferID]*buffer),
	}
}

func openInstance() (hal.Instance, *hal.ExposedAdapter, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if isHardware(adapters[i].Info.DeviceType) {
			selected = &adapters[i]
			break
		}
	}
	return instance, selected, nil
}

func isHardware(t gputypes.DeviceType) bool {
	return t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU
}

func (s *Substrate) init() error {
	params, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "kaleido_params", Size: gpucore.UniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create params buffer: %w", err)
	}
	s.params = params
	for k := gpucore.Kernel(0); k < gpucore.NumKernels; k++ {
		if err := s.createPipeline(k); err != nil {
			return fmt.Errorf("gpu: %s pipeline: %w", k, err)
		}
	}
	return nil
}

func (s *Substrate) createPipeline(k gpucore.Kernel) error {
	src, err := kernelSource(k)
	if err != nil {
		return err
	}
	spirv, err := compileSPIRV(src)
	if err != nil {
		return err
	}
	p := &s.pipelines[k]
	p.shader, err = s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  k.String(),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	entries := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
	}
	for _, b := range k.Bindings() {
		typ := gputypes.BufferBindingTypeStorage
		if b.Access == gpucore.ReadOnly {
			typ = gputypes.BufferBindingTypeReadOnlyStorage
		}
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding: uint32(b.Slot), Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: typ},
		})
	}
	p.bindLayout, err = s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: k.String() + "_bind_layout", Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.pipeLayout, err = s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: k.String() + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.compute, err = s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: k.String() + "_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	return nil
}

// Name returns "wgpu".
func (s *Substrate) Name() string { return Name }

// Adapter returns the name of the adapter in use, or "shared" for a
// provider device.
func (s *Substrate) Adapter() string { return s.adapter }

// CreateBuffer allocates a zeroed storage buffer.
func (s *Substrate) CreateBuffer(label string, size uint64, _ gpucore.BufferUsage) (gpucore.BufferID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	if size == 0 || size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("gpu: buffer %q size %d is not a positive multiple of 4", label, size)
	}
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, s.zeroes(size))
	s.nextID++
	s.buffers[s.nextID] = &buffer{label: label, size: size, buf: buf}
	return s.nextID, nil
}

// DestroyBuffer releases a buffer once recorded work has finished.
func (s *Substrate) DestroyBuffer(id gpucore.BufferID) {
	b, ok := s.buffers[id]
	if !ok {
		return
	}
	if err := s.flush(); err != nil {
		slogger().Warn("flush before destroy failed", "buffer", b.label, "err", err)
	}
	s.device.DestroyBuffer(b.buf)
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
		return nil, fmt.Errorf("gpu: buffer %d: %w", id, gpucore.ErrUnknownBuffer)
	}
	return b, nil
}

func checkRange(b *buffer, offset, size uint64) error {
	if offset%4 != 0 || size%4 != 0 {
		return fmt.Errorf("gpu: buffer %q: unaligned range [%d, +%d)", b.label, offset, size)
	}
	if offset+size > b.size || offset+size < offset {
		return fmt.Errorf("gpu: buffer %q: [%d, +%d): %w", b.label, offset, size, gpucore.ErrOutOfRange)
	}
	return nil
}

// WriteBuffer uploads data at offset after recorded passes have run.
func (s *Substrate) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := checkRange(b, offset, uint64(len(data))); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

// ClearBuffer zeroes the buffer after recorded passes have run.
func (s *Substrate) ClearBuffer(id gpucore.BufferID) error {
	b, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.queue.WriteBuffer(b.buf, 0, s.zeroes(b.size))
	return nil
}

// ReadBuffer submits recorded work, copies the range into a staging buffer
// and maps it back.
func (s *Substrate) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	b, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := checkRange(b, offset, size); err != nil {
		return nil, err
	}
	if err := s.flush(); err != nil {
		return nil, err
	}
	if err := s.ensureStaging(size); err != nil {
		return nil, err
	}
	enc, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "kaleido_readback"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	enc.CopyBufferToBuffer(b.buf, s.staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: size},
	})
	cmd, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	if err := s.submit(cmd); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if err := s.queue.ReadBuffer(s.staging, 0, out); err != nil {
		return nil, fmt.Errorf("gpu: readback %q: %w", b.label, err)
	}
	return out, nil
}

func (s *Substrate) ensureStaging(size uint64) error {
	if s.staging != nil && s.stagingSize >= size {
		return nil
	}
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	staging, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "kaleido_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	s.staging = staging
	s.stagingSize = size
	return nil
}

// SetUniforms uploads the params block. Passes already recorded are
// submitted first so they keep the block they were recorded with.
func (s *Substrate) SetUniforms(u *gpucore.Uniforms) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.queue.WriteBuffer(s.params, 0, u.Bytes())
	s.hasUniforms = true
	return nil
}

// Bind attaches a buffer to a slot.
func (s *Substrate) Bind(slot gpucore.Slot, id gpucore.BufferID, access gpucore.Access) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	if slot == gpucore.SlotParams || int(slot) >= gpucore.NumSlots {
		return fmt.Errorf("gpu: cannot bind %s", slot)
	}
	s.bindings[slot] = binding{id: id, access: access}
	return nil
}

func (s *Substrate) bound(slot gpucore.Slot) (gpucore.BufferID, gpucore.Access, bool) {
	b := s.bindings[slot]
	return b.id, b.access, b.id != gpucore.InvalidID
}

// Dispatch records one compute pass for k.
func (s *Substrate) Dispatch(k gpucore.Kernel, g gpucore.Grid) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if !s.hasUniforms {
		return gpucore.ErrNoUniforms
	}
	if err := gpucore.CheckBindings(k, s.bound); err != nil {
		return err
	}
	if g.Empty() {
		return nil
	}

	p := &s.pipelines[k]
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: s.params.NativeHandle(), Offset: 0, Size: gpucore.UniformsSize}},
	}
	for _, b := range k.Bindings() {
		buf := s.buffers[s.bindings[b.Slot].id]
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(b.Slot),
			Resource: gputypes.BufferBinding{Buffer: buf.buf.NativeHandle(), Offset: 0, Size: buf.size},
		})
	}
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: k.String() + "_bind", Layout: p.bindLayout, Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: %s bind group: %w", k, err)
	}
	s.bindGroups = append(s.bindGroups, bg)

	enc, err := s.recording()
	if err != nil {
		return err
	}
	pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: k.String()})
	pass.SetPipeline(p.compute)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(g.X, g.Y, g.Z)
	pass.End()
	return nil
}

// Barrier orders recorded work. Storage barriers fall out of pass
// boundaries; image barriers submit and wait.
func (s *Substrate) Barrier(kind gpucore.BarrierKind) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if kind == gpucore.BarrierImage {
		return s.flush()
	}
	return nil
}

func (s *Substrate) recording() (hal.CommandEncoder, error) {
	if s.encoder != nil {
		return s.encoder, nil
	}
	enc, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "kaleido_frame"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("kaleido_frame"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	s.encoder = enc
	return enc, nil
}

// flush submits the open encoder, if any, and waits for it.
func (s *Substrate) flush() error {
	if s.encoder == nil {
		return nil
	}
	enc := s.encoder
	s.encoder = nil
	defer s.releaseBindGroups()
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	return s.submit(cmd)
}

func (s *Substrate) submit(cmd hal.CommandBuffer) error {
	defer s.device.FreeCommandBuffer(cmd)
	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)
	if err := s.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	ok, err := s.device.Wait(fence, 1, fenceTimeout)
	return waitResult(ok, err)
}

func waitResult(signaled bool, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("gpu: wait for GPU: %w", err)
	case !signaled:
		return fmt.Errorf("%w after %v", ErrTimeout, fenceTimeout)
	}
	return nil
}

// zeroes returns n zero bytes from a shared slice.
func (s *Substrate) zeroes(n uint64) []byte {
	if uint64(len(s.zero)) < n {
		s.zero = make([]byte, n)
	}
	return s.zero[:n]
}

func (s *Substrate) releaseBindGroups() {
	for _, bg := range s.bindGroups {
		if bg != nil {
			s.device.DestroyBindGroup(bg)
		}
	}
	s.bindGroups = s.bindGroups[:0]
}

// Close submits outstanding work and releases every GPU object. A shared
// device is left alive.
func (s *Substrate) Close() {
	if s.closed {
		return
	}
	if err := s.flush(); err != nil {
		slogger().Warn("flush on close failed", "err", err)
	}
	s.closed = true
	if s.device == nil {
		return
	}
	for id, b := range s.buffers {
		s.device.DestroyBuffer(b.buf)
		delete(s.buffers, id)
	}
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	if s.params != nil {
		s.device.DestroyBuffer(s.params)
		s.params = nil
	}
	for i := range s.pipelines {
		s.destroyPipeline(&s.pipelines[i])
	}
	if !s.external {
		s.device.Destroy()
		if s.instance != nil {
			s.instance.Destroy()
		}
	}
	s.device = nil
	s.queue = nil
	s.instance = nil
}

func (s *Substrate) destroyPipeline(p *kernelPipeline) {
	if p.compute != nil {
		s.device.DestroyComputePipeline(p.compute)
	}
	if p.pipeLayout != nil {
		s.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		s.device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		s.device.DestroyShaderModule(p.shader)
	}
	*p = kernelPipeline{}
}
