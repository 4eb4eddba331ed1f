package kaleido

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/kaleido/gpucore"
)

// Pipeline renders frames of the reflected point set.
//
// NewPipeline does all one-time work: it validates the configuration,
// enumerates the path table, sizes the reflect dispatch and uploads the
// table. Each Render call then runs the staged frame:
//
//	clear accumulation (point, density)
//	reflect      path table + cursor -> atomic hits in accumulation
//	barrier      storage
//	resolve      accumulation -> image (trail also reads/writes history)
//	barrier      image
//	read back    image -> Frame
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	cfg      Config
	mirrors  *MirrorSet
	table    *PathTable
	geometry DispatchGeometry
	resolver AccumulationResolver

	sub    gpucore.Substrate
	ownSub bool

	tableBuf   gpucore.BufferID
	accumBuf   gpucore.BufferID
	imageBuf   gpucore.BufferID
	historyBuf gpucore.BufferID

	uniforms gpucore.Uniforms

	stats  Stats
	closed bool
}

// Stats reports pipeline timing.
type Stats struct {
	// Frames is the number of frames rendered since creation.
	Frames uint64

	// Last is the duration of the most recent Render.
	Last time.Duration

	// Total is the summed duration of all Render calls.
	Total time.Duration
}

// Average returns the mean frame time.
func (s Stats) Average() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}

// FPS returns frames per second derived from the average frame time.
func (s Stats) FPS() float64 {
	avg := s.Average()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// NewPipeline builds a pipeline for cfg.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Mirrors = append([]Mirror(nil), cfg.Mirrors...)

	mirrors, err := NewMirrorSet(cfg.Mirrors)
	if err != nil {
		return nil, err
	}
	table, err := CachedTable(mirrors.Len(), cfg.MaxDepth)
	if err != nil {
		return nil, err
	}
	resolver, err := NewResolver(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		mirrors:  mirrors,
		table:    table,
		geometry: SizeDispatch(table.Len()),
		resolver: resolver,
		sub:      o.substrate,
	}
	if p.sub == nil {
		p.sub, err = OpenSubstrate(o.substrateName, SubstrateOptions{Workers: o.workers})
		if err != nil {
			return nil, err
		}
		p.ownSub = true
	}

	if err := p.init(); err != nil {
		p.Close()
		return nil, err
	}

	Logger().Debug("kaleido: pipeline ready",
		"substrate", p.sub.Name(),
		"mode", cfg.Mode.String(),
		"paths", table.Len(),
		"geometry", p.geometry.String(),
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
	return p, nil
}

func (p *Pipeline) init() error {
	pixels := uint64(p.cfg.Width) * uint64(p.cfg.Height)

	type bufSpec struct {
		id    *gpucore.BufferID
		label string
		size  uint64
		usage gpucore.BufferUsage
	}
	specs := []bufSpec{
		{&p.tableBuf, "path_table", 4 * uint64(p.table.Len()), gpucore.BufferUsageStorage | gpucore.BufferUsageUpload},
		{&p.accumBuf, "accumulation", 4 * pixels, gpucore.BufferUsageStorage},
		{&p.imageBuf, "image", 16 * pixels, gpucore.BufferUsageStorage | gpucore.BufferUsageUpload | gpucore.BufferUsageReadback},
	}
	if p.resolver.UsesHistory() {
		specs = append(specs, bufSpec{&p.historyBuf, "history", 4 * pixels, gpucore.BufferUsageStorage})
	}
	for _, s := range specs {
		id, err := p.sub.CreateBuffer(s.label, s.size, s.usage)
		if err != nil {
			return fmt.Errorf("kaleido: create %s buffer: %w", s.label, err)
		}
		*s.id = id
	}

	if err := p.sub.WriteBuffer(p.tableBuf, 0, p.table.Bytes()); err != nil {
		return fmt.Errorf("kaleido: upload path table: %w", err)
	}

	u := &p.uniforms
	p.mirrors.fillUniforms(u)
	u.Width = uint32(p.cfg.Width)
	u.Height = uint32(p.cfg.Height)
	u.TotalPoints = uint32(p.table.Len())
	u.GroupsX = p.geometry.X
	u.GroupsY = p.geometry.Y
	u.Sentinel = int32(Sentinel(p.mirrors.Len()))
	p.resolver.configure(u)

	return p.Reset()
}

// Reset starts a new session: the accumulation and history buffers are
// zeroed and the image is filled with the background color. Trail mode
// only ever clears its accumulation here.
func (p *Pipeline) Reset() error {
	if p.closed {
		return ErrClosed
	}
	if err := p.sub.ClearBuffer(p.accumBuf); err != nil {
		return fmt.Errorf("kaleido: clear accumulation: %w", err)
	}
	if p.historyBuf != gpucore.InvalidID {
		if err := p.sub.ClearBuffer(p.historyBuf); err != nil {
			return fmt.Errorf("kaleido: clear history: %w", err)
		}
	}
	bg := make([]byte, 16*p.cfg.Width*p.cfg.Height)
	var px [16]byte
	for c, v := range p.cfg.Background {
		binary.LittleEndian.PutUint32(px[4*c:], math.Float32bits(v))
	}
	for i := 0; i < len(bg); i += 16 {
		copy(bg[i:], px[:])
	}
	if err := p.sub.WriteBuffer(p.imageBuf, 0, bg); err != nil {
		return fmt.Errorf("kaleido: fill image: %w", err)
	}
	return nil
}

// Render runs one frame with the cursor at c (normalized device
// coordinates) and returns the resolved image.
func (p *Pipeline) Render(c Point) (*Frame, error) {
	f := NewFrame(p.cfg.Width, p.cfg.Height)
	if err := p.RenderTo(c, f); err != nil {
		return nil, err
	}
	return f, nil
}

// RenderWindow is Render with the cursor given in window pixels.
func (p *Pipeline) RenderWindow(x, y float64) (*Frame, error) {
	return p.Render(CursorToNDC(x, y, p.cfg.Width, p.cfg.Height))
}

// RenderTo runs one frame into dst, which must match the display size.
func (p *Pipeline) RenderTo(c Point, dst *Frame) error {
	if p.closed {
		return ErrClosed
	}
	if dst.Width != p.cfg.Width || dst.Height != p.cfg.Height || len(dst.Pix) != 4*dst.Width*dst.Height {
		return fmt.Errorf("kaleido: frame is %dx%d, want %dx%d", dst.Width, dst.Height, p.cfg.Width, p.cfg.Height)
	}
	start := time.Now()

	if err := p.reflect(c); err != nil {
		return err
	}
	if err := p.resolve(); err != nil {
		return err
	}

	data, err := p.sub.ReadBuffer(p.imageBuf, 0, 16*uint64(p.cfg.Width*p.cfg.Height))
	if err != nil {
		return fmt.Errorf("kaleido: read image: %w", err)
	}
	dst.decode(data)

	p.stats.Frames++
	p.stats.Last = time.Since(start)
	p.stats.Total += p.stats.Last
	return nil
}

// reflect runs the scatter stage and the storage barrier after it.
func (p *Pipeline) reflect(c Point) error {
	s := p.sub
	if p.resolver.ClearEachFrame() {
		if err := s.ClearBuffer(p.accumBuf); err != nil {
			return fmt.Errorf("kaleido: clear accumulation: %w", err)
		}
	}

	u := p.uniforms
	u.Cursor = [2]float32{c.X, c.Y}
	if err := s.SetUniforms(&u); err != nil {
		return fmt.Errorf("kaleido: set uniforms: %w", err)
	}
	if err := s.Bind(gpucore.SlotPathTable, p.tableBuf, gpucore.ReadOnly); err != nil {
		return fmt.Errorf("kaleido: bind path table: %w", err)
	}
	if err := s.Bind(gpucore.SlotAccumulation, p.accumBuf, gpucore.ReadWrite); err != nil {
		return fmt.Errorf("kaleido: bind accumulation: %w", err)
	}
	if err := s.Dispatch(gpucore.KernelReflect, p.geometry.Grid()); err != nil {
		return fmt.Errorf("kaleido: reflect: %w", err)
	}
	if err := s.Barrier(gpucore.BarrierStorage); err != nil {
		return fmt.Errorf("kaleido: reflect barrier: %w", err)
	}
	return nil
}

// resolve runs the resolve stage and the image barrier after it.
func (p *Pipeline) resolve() error {
	s := p.sub
	if err := s.Bind(gpucore.SlotAccumulation, p.accumBuf, gpucore.ReadOnly); err != nil {
		return fmt.Errorf("kaleido: bind accumulation: %w", err)
	}
	if err := s.Bind(gpucore.SlotImage, p.imageBuf, gpucore.ReadWrite); err != nil {
		return fmt.Errorf("kaleido: bind image: %w", err)
	}
	if p.resolver.UsesHistory() {
		if err := s.Bind(gpucore.SlotHistory, p.historyBuf, gpucore.ReadWrite); err != nil {
			return fmt.Errorf("kaleido: bind history: %w", err)
		}
	}
	k := p.resolver.Kernel()
	if err := s.Dispatch(k, gpucore.ResolveGrid(p.cfg.Width, p.cfg.Height)); err != nil {
		return fmt.Errorf("kaleido: %s: %w", k, err)
	}
	if err := s.Barrier(gpucore.BarrierImage); err != nil {
		return fmt.Errorf("kaleido: resolve barrier: %w", err)
	}
	return nil
}

// Close releases all buffers and, unless the substrate was supplied with
// WithSubstrateInstance, the substrate itself.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, id := range []gpucore.BufferID{p.tableBuf, p.accumBuf, p.imageBuf, p.historyBuf} {
		if id != gpucore.InvalidID {
			p.sub.DestroyBuffer(id)
		}
	}
	if p.ownSub {
		p.sub.Close()
	}
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() Config { return p.cfg }

// Mirrors returns the mirror set.
func (p *Pipeline) Mirrors() *MirrorSet { return p.mirrors }

// Table returns the path table.
func (p *Pipeline) Table() *PathTable { return p.table }

// Geometry returns the reflect dispatch geometry.
func (p *Pipeline) Geometry() DispatchGeometry { return p.geometry }

// Resolver returns the accumulation resolver.
func (p *Pipeline) Resolver() AccumulationResolver { return p.resolver }

// Substrate returns the name of the substrate in use.
func (p *Pipeline) Substrate() string { return p.sub.Name() }

// Stats returns frame timing.
func (p *Pipeline) Stats() Stats { return p.stats }

// Segments returns the mirror overlay geometry, or nil when the overlay is
// disabled.
func (p *Pipeline) Segments() []Segment {
	if !p.cfg.ShowMirrors {
		return nil
	}
	return p.mirrors.Segments()
}
