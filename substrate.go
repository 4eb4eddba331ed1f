package kaleido

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/kaleido/gpucore"
	"github.com/gogpu/kaleido/internal/cpu"
)

// Substrate names understood by OpenSubstrate besides registered drivers.
const (
	// SubstrateCPU is the always-available worker pool substrate.
	SubstrateCPU = cpu.Name

	// SubstrateAuto prefers the GPU driver and falls back to the CPU.
	SubstrateAuto = "auto"

	// SubstrateWGPU is the name the gpu package registers under.
	SubstrateWGPU = "wgpu"
)

// SubstrateOptions are passed to a driver when a substrate is opened.
type SubstrateOptions struct {
	// Workers sizes the CPU worker pool. Zero uses GOMAXPROCS.
	Workers int
}

// SubstrateDriver opens compute substrates of one kind.
//
// Drivers are registered by blank import:
//
//	import _ "github.com/gogpu/kaleido/gpu" // enables the wgpu substrate
type SubstrateDriver interface {
	// Name returns the registry name.
	Name() string

	// Open creates a substrate.
	Open(opts SubstrateOptions) (gpucore.Substrate, error)
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]SubstrateDriver{}
)

type cpuDriver struct{}

func (cpuDriver) Name() string { return cpu.Name }

func (cpuDriver) Open(opts SubstrateOptions) (gpucore.Substrate, error) {
	return cpu.New(opts.Workers), nil
}

func init() {
	drivers[cpu.Name] = cpuDriver{}
}

// RegisterSubstrate registers a driver under d.Name(), replacing any driver
// with the same name. "auto" is reserved.
func RegisterSubstrate(d SubstrateDriver) error {
	if d == nil {
		return errors.New("kaleido: substrate driver must not be nil")
	}
	name := d.Name()
	if name == "" || name == SubstrateAuto {
		return fmt.Errorf("kaleido: invalid substrate name %q", name)
	}
	propagateLogger(d, Logger())

	driversMu.Lock()
	drivers[name] = d
	driversMu.Unlock()
	return nil
}

// Substrates returns the registered substrate names, sorted.
func Substrates() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func registeredDrivers() []SubstrateDriver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	out := make([]SubstrateDriver, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d)
	}
	return out
}

func lookupDriver(name string) (SubstrateDriver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

// OpenSubstrate opens the substrate registered under name. An empty name
// or "auto" tries the wgpu driver first and falls back to the CPU
// substrate with a warning when it is missing or fails to open.
func OpenSubstrate(name string, opts SubstrateOptions) (gpucore.Substrate, error) {
	if name == "" || name == SubstrateAuto {
		return openAuto(opts)
	}
	d, ok := lookupDriver(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered (have %v)", ErrSubstrateUnavailable, name, Substrates())
	}
	s, err := d.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSubstrateUnavailable, name, err)
	}
	Logger().Info("kaleido: substrate opened", "substrate", s.Name())
	return s, nil
}

func openAuto(opts SubstrateOptions) (gpucore.Substrate, error) {
	if _, ok := lookupDriver(SubstrateWGPU); ok {
		s, err := OpenSubstrate(SubstrateWGPU, opts)
		if err == nil {
			return s, nil
		}
		Logger().Warn("kaleido: falling back to CPU substrate", "err", err)
	}
	return OpenSubstrate(SubstrateCPU, opts)
}
