package kaleido

import "github.com/gogpu/kaleido/gpucore"

// Option configures a Pipeline during creation.
//
// Example:
//
//	// CPU substrate with 4 workers
//	p, err := kaleido.NewPipeline(cfg, kaleido.WithSubstrate("cpu"), kaleido.WithWorkers(4))
type Option func(*pipelineOptions)

type pipelineOptions struct {
	substrateName string
	substrate     gpucore.Substrate
	workers       int
}

func defaultOptions() pipelineOptions {
	return pipelineOptions{substrateName: SubstrateCPU}
}

// WithSubstrate selects the compute substrate by registry name:
// "cpu" (default), "wgpu" (requires importing the gpu package) or "auto".
func WithSubstrate(name string) Option {
	return func(o *pipelineOptions) {
		o.substrateName = name
	}
}

// WithSubstrateInstance runs the pipeline on an already opened substrate.
// The pipeline does not close it.
func WithSubstrateInstance(s gpucore.Substrate) Option {
	return func(o *pipelineOptions) {
		o.substrate = s
	}
}

// WithWorkers sizes the CPU substrate's worker pool.
func WithWorkers(n int) Option {
	return func(o *pipelineOptions) {
		o.workers = n
	}
}
