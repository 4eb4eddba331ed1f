//go:build !nogpu

// Package gpu registers the wgpu compute substrate.
//
// Import it for its side effect to let kaleido run the reflect and resolve
// kernels on the GPU:
//
//	import _ "github.com/gogpu/kaleido/gpu"
//
// With the "auto" substrate (the default), a machine without a usable
// Vulkan adapter falls back to the CPU substrate with a warning.
package gpu

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/gpucore"
	gpuimpl "github.com/gogpu/kaleido/internal/gpu"
)

type driver struct {
	mu       sync.Mutex
	provider gpucontext.DeviceProvider
}

var wgpuDriver = &driver{}

func init() {
	if err := kaleido.RegisterSubstrate(wgpuDriver); err != nil {
		kaleido.Logger().Warn("wgpu substrate not registered", "err", err)
	}
}

func (d *driver) Name() string { return gpuimpl.Name }

func (d *driver) Open(_ kaleido.SubstrateOptions) (gpucore.Substrate, error) {
	d.mu.Lock()
	provider := d.provider
	d.mu.Unlock()
	if provider != nil {
		return gpuimpl.NewFromProvider(provider)
	}
	return gpuimpl.New()
}

// SetLogger forwards kaleido.SetLogger to the substrate implementation.
func (d *driver) SetLogger(l *slog.Logger) { gpuimpl.SetLogger(l) }

// SetDeviceProvider makes substrates opened from now on share the device
// of an external provider (for example a gogpu window) instead of creating
// their own. The provider must also expose HalDevice() and HalQueue().
// Passing nil restores the default.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if provider != nil {
		if err := gpuimpl.CheckProvider(provider); err != nil {
			return err
		}
	}
	wgpuDriver.mu.Lock()
	wgpuDriver.provider = provider
	wgpuDriver.mu.Unlock()
	return nil
}

// Adapter describes one GPU visible to the wgpu substrate.
type Adapter = gpuimpl.AdapterInfo

// Adapters lists the GPUs the wgpu substrate can open.
func Adapters() ([]Adapter, error) { return gpuimpl.Adapters() }
