package kaleido

import "github.com/gogpu/kaleido/internal/kernel"

// Point is a position in normalized device coordinates, where the display
// spans [-1,1] on both axes with +Y up.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// CursorToNDC maps a window pixel position (origin top-left, +Y down) on a
// width x height display to normalized device coordinates.
func CursorToNDC(x, y float64, width, height int) Point {
	hw, hh := float64(width)/2, float64(height)/2
	return Point{
		X: float32((x - hw) / hw),
		Y: float32(((float64(height) - y) - hh) / hh),
	}
}

// PixelOf returns the column and row (row 0 at the top) that p falls into
// on a width x height display, using the same mapping as the reflect
// kernel. ok is false for points outside the display.
func PixelOf(p Point, width, height int) (col, row int, ok bool) {
	idx, ok := kernel.PixelIndex(kernel.Vec2{X: p.X, Y: p.Y}, uint32(width), uint32(height))
	if !ok {
		return 0, 0, false
	}
	return int(idx) % width, int(idx) / width, true
}
