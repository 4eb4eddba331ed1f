package kaleido

import "testing"

func TestCursorToNDC(t *testing.T) {
	tests := []struct {
		x, y float64
		want Point
	}{
		{400, 400, Pt(0, 0)},
		{0, 0, Pt(-1, 1)},
		{800, 800, Pt(1, -1)},
		{600, 200, Pt(0.5, 0.5)},
	}
	for _, tt := range tests {
		if got := CursorToNDC(tt.x, tt.y, 800, 800); got != tt.want {
			t.Errorf("CursorToNDC(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPixelOf_RoundTrip(t *testing.T) {
	const w, h = 640, 480
	for _, px := range [][2]int{{0, 0}, {639, 479}, {320, 240}, {17, 401}} {
		// Pixel centers map back to the same pixel.
		p := CursorToNDC(float64(px[0])+0.5, float64(px[1])+0.5, w, h)
		col, row, ok := PixelOf(p, w, h)
		if !ok || col != px[0] || row != px[1] {
			t.Errorf("PixelOf(center of %v) = (%d, %d, %v)", px, col, row, ok)
		}
	}
	if _, _, ok := PixelOf(Pt(1, 0), w, h); ok {
		t.Error("PixelOf(x=1) should be out of bounds")
	}
}
