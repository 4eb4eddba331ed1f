package kaleido

import (
	"math/bits"
	"testing"
)

func TestSizeDispatch(t *testing.T) {
	tests := []struct {
		total int
		want  DispatchGeometry
	}{
		{0, DispatchGeometry{1, 1, 1}},
		{10, DispatchGeometry{1, 1, 1}},
		{128, DispatchGeometry{1, 1, 1}},
		{129, DispatchGeometry{2, 1, 1}},
		{257, DispatchGeometry{2, 2, 1}},
		{513, DispatchGeometry{2, 2, 2}},
		{1025, DispatchGeometry{4, 2, 2}},
		{12286, DispatchGeometry{8, 4, 4}},
		{1 << 25, DispatchGeometry{64, 64, 64}},
		{1<<25 + 1, DispatchGeometry{128, 64, 64}},
	}
	for _, tt := range tests {
		if got := SizeDispatch(tt.total); got != tt.want {
			t.Errorf("SizeDispatch(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestSizeDispatch_Properties(t *testing.T) {
	totals := []int{1, 2, 127, 128, 129, 1000, 4097, 12286, 88573, 1 << 20, 1<<25 - 1, 1 << 25, 1 << 26}
	for _, total := range totals {
		g := SizeDispatch(total)
		if !g.Covers(total) {
			t.Errorf("SizeDispatch(%d) = %v does not cover", total, g)
		}
		for _, v := range []uint32{g.X, g.Y, g.Z} {
			if bits.OnesCount32(v) != 1 {
				t.Errorf("SizeDispatch(%d) axis %d is not a power of two", total, v)
			}
		}
		// Round-robin keeps X >= Y >= Z >= X/2.
		if !(g.X >= g.Y && g.Y >= g.Z && 2*g.Z >= g.X) {
			t.Errorf("SizeDispatch(%d) = %v is not round-robin balanced", total, g)
		}

		// Undoing the last doubling must no longer cover.
		steps := bits.TrailingZeros32(g.X) + bits.TrailingZeros32(g.Y) + bits.TrailingZeros32(g.Z)
		if steps == 0 {
			continue
		}
		prev := g
		switch (steps - 1) % 3 {
		case 0:
			prev.X /= 2
		case 1:
			prev.Y /= 2
		case 2:
			prev.Z /= 2
		}
		if prev.Covers(total) {
			t.Errorf("SizeDispatch(%d) = %v is not the first covering step (%v covers)", total, g, prev)
		}
	}
}

func TestSizeDispatch_Stable(t *testing.T) {
	for total := 0; total < 5000; total += 37 {
		if SizeDispatch(total) != SizeDispatch(total) {
			t.Fatalf("SizeDispatch(%d) not stable", total)
		}
	}
}

func TestDispatchGeometry_Invocations(t *testing.T) {
	g := DispatchGeometry{X: 4, Y: 2, Z: 2}
	if g.Workgroups() != 16 {
		t.Errorf("Workgroups() = %d, want 16", g.Workgroups())
	}
	if g.Invocations() != 2048 {
		t.Errorf("Invocations() = %d, want 2048", g.Invocations())
	}
	if g.Grid().X != 4 || g.String() != "4x2x2" {
		t.Errorf("Grid() = %v, String() = %q", g.Grid(), g.String())
	}
}
