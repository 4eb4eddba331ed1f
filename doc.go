// Package kaleido renders the points a cursor reaches by repeated
// reflection across a fixed set of straight line mirrors.
//
// # Overview
//
// Every reflection sequence of length 0..MaxDepth that never uses the same
// mirror twice in a row is enumerated once, at startup, into a [PathTable]
// of compact integer [PathCode] values. Each frame, a compute kernel walks
// every code from the current cursor position and atomically counts the
// final points per pixel. A second kernel resolves the counts into an image
// with one of three [AccumulationResolver] policies: points, trails or
// density.
//
// # Quick Start
//
//	import "github.com/gogpu/kaleido"
//
//	cfg := kaleido.DefaultConfig()
//	p, err := kaleido.NewPipeline(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	frame, err := p.Render(kaleido.Pt(0.3, 0.1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png.Encode(w, frame.Image())
//
// # Substrates
//
// Kernels run on a compute substrate ([gpucore.Substrate]). The CPU
// substrate is always available. The wgpu substrate is enabled by a blank
// import:
//
//	import _ "github.com/gogpu/kaleido/gpu"
//
// and selected with [WithSubstrate]("wgpu") or "auto".
//
// # Path Codes
//
// A code's absolute value, read in base M (the mirror count), lists the
// mirrors in application order starting from the least significant digit.
// Appending mirror 0 to a sequence negates its code instead of adding a
// zero digit, which would not change the value. For three mirrors and depth
// two the table is
//
//	4 | 0 1 2 | 3 6 -1 7 -2 5
//
// where 4 is the base point sentinel, 3 is "mirror 0 then mirror 1" and -1
// is "mirror 1 then mirror 0".
//
// # Logging
//
// kaleido is silent by default. Call [SetLogger] to enable structured
// logging via log/slog.
package kaleido
