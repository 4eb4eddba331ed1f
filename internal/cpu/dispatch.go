package cpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/kaleido/gpucore"
	"github.com/gogpu/kaleido/internal/kernel"
)

// Dispatch issues kernel k over grid g. The call returns once the work is
// queued; Barrier completes it.
func (s *Substrate) Dispatch(k gpucore.Kernel, g gpucore.Grid) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if !s.hasUniforms {
		return gpucore.ErrNoUniforms
	}
	if err := gpucore.CheckBindings(k, s.bound); err != nil {
		return fmt.Errorf("cpu: %w", err)
	}
	if g.Empty() {
		return nil
	}

	u := s.uniforms
	pixels := uint64(u.Width) * uint64(u.Height)
	accum := s.slotWords(gpucore.SlotAccumulation)
	if uint64(len(accum)) < pixels {
		return fmt.Errorf("cpu: accumulation holds %d cells, need %d: %w", len(accum), pixels, gpucore.ErrOutOfRange)
	}

	groups := int(g.Workgroups())
	chunk := max(1, groups/(s.pool.Workers()*4))

	if k == gpucore.KernelReflect {
		table := s.slotWords(gpucore.SlotPathTable)
		if uint64(len(table)) < uint64(u.TotalPoints) {
			return fmt.Errorf("cpu: path table holds %d codes, need %d: %w", len(table), u.TotalPoints, gpucore.ErrOutOfRange)
		}
		s.pool.Range(groups, chunk, func(lo, hi int) {
			reflectGroups(&u, g, table, accum, lo, hi)
		})
		return nil
	}

	image := s.slotWords(gpucore.SlotImage)
	if uint64(len(image)) < pixels*4 {
		return fmt.Errorf("cpu: image holds %d words, need %d: %w", len(image), pixels*4, gpucore.ErrOutOfRange)
	}
	var history []uint32
	if k == gpucore.KernelResolveTrail {
		history = s.slotWords(gpucore.SlotHistory)
		if uint64(len(history)) < pixels {
			return fmt.Errorf("cpu: history holds %d cells, need %d: %w", len(history), pixels, gpucore.ErrOutOfRange)
		}
	}
	s.pool.Range(groups, chunk, func(lo, hi int) {
		resolveGroups(k, &u, g, accum, image, history, lo, hi)
	})
	return nil
}

// reflectGroups runs reflect workgroups [lo, hi) of grid g.
func reflectGroups(u *gpucore.Uniforms, g gpucore.Grid, table, accum []uint32, lo, hi int) {
	normals := u.Normals[:u.NumMirrors]
	cursor := kernel.Vec2{X: u.Cursor[0], Y: u.Cursor[1]}
	for wg := lo; wg < hi; wg++ {
		w := uint32(wg)
		wx, wy, wz := w%g.X, (w/g.X)%g.Y, w/(g.X*g.Y)
		for local := uint32(0); local < gpucore.ReflectWorkgroupSize; local++ {
			idx := kernel.GlobalIndex(wx, wy, wz, g.X, g.Y, local)
			if idx >= u.TotalPoints {
				continue
			}
			p := kernel.Walk(cursor, int32(table[idx]), u.Sentinel, u.NumMirrors, normals)
			if px, ok := kernel.PixelIndex(p, u.Width, u.Height); ok {
				atomic.AddUint32(&accum[px], 1)
			}
		}
	}
}

// resolveGroups runs resolve workgroups [lo, hi) of grid g.
func resolveGroups(k gpucore.Kernel, u *gpucore.Uniforms, g gpucore.Grid, accum, image, history []uint32, lo, hi int) {
	for wg := lo; wg < hi; wg++ {
		w := uint32(wg)
		wx, wy := w%g.X, (w/g.X)%g.Y
		for ly := uint32(0); ly < gpucore.ResolveTile; ly++ {
			y := wy*gpucore.ResolveTile + ly
			if y >= u.Height {
				break
			}
			for lx := uint32(0); lx < gpucore.ResolveTile; lx++ {
				x := wx*gpucore.ResolveTile + lx
				if x >= u.Width {
					break
				}
				resolvePixel(k, u, accum, image, history, y*u.Width+x)
			}
		}
	}
}

func resolvePixel(k gpucore.Kernel, u *gpucore.Uniforms, accum, image, history []uint32, i uint32) {
	count := accum[i]
	var c kernel.Color
	switch k {
	case gpucore.KernelResolvePoint:
		c = kernel.ShadePoint(count, u.Color, u.Background)
	case gpucore.KernelResolveTrail:
		c = kernel.ShadeTrail(count, history[i], loadColor(image, i*4), u.Color, u.Background, u.Decay)
		history[i] = count
	case gpucore.KernelResolveDensity:
		c = kernel.ShadeDensity(count, u.Saturation, u.Background)
	}
	storeColor(image, i*4, c)
}
