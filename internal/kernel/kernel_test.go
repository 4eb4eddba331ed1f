package kernel

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func near(a, b float32) bool { return math32.Abs(a-b) < eps }

func nearVec(a, b Vec2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

// =============================================================================
// Reflection Tests
// =============================================================================

func TestNormalForm_OnLine(t *testing.T) {
	lines := [][2]float32{{1, 0}, {-2, 0}, {0, 0.5}, {3.5, -0.25}}
	for _, l := range lines {
		n := NormalForm(l[0], l[1])
		if !near(n[0]*n[0]+n[1]*n[1], 1) {
			t.Errorf("NormalForm(%v) not unit: %v", l, n)
		}
		for _, x := range []float32{-1, 0, 0.3, 1} {
			y := l[0]*x + l[1]
			if got := n[0]*x + n[1]*y; !near(got, n[2]) {
				t.Errorf("line %v point (%v,%v): n.p = %v, want %v", l, x, y, got, n[2])
			}
		}
	}
}

func TestReflect_FixedPointOnMirror(t *testing.T) {
	n := NormalForm(-2, 0.25)
	p := Vec2{0.1, -2*0.1 + 0.25}
	if got := Reflect(p, n); !nearVec(got, p) {
		t.Errorf("Reflect(on-line %v) = %v, want unchanged", p, got)
	}
}

func TestReflect_Involution(t *testing.T) {
	n := NormalForm(0.7, -0.1)
	p := Vec2{0.3, 0.8}
	q := Reflect(p, n)
	if nearVec(p, q) {
		t.Fatalf("off-line point should move, got %v", q)
	}
	if got := Reflect(q, n); !nearVec(got, p) {
		t.Errorf("Reflect(Reflect(p)) = %v, want %v", got, p)
	}
}

func TestReflect_Axes(t *testing.T) {
	// y = x swaps coordinates; y = 0.5 mirrors y around 0.5.
	if got := Reflect(Vec2{0.2, 0.7}, NormalForm(1, 0)); !nearVec(got, Vec2{0.7, 0.2}) {
		t.Errorf("reflect across y=x = %v, want (0.7, 0.2)", got)
	}
	if got := Reflect(Vec2{0.2, 0.1}, NormalForm(0, 0.5)); !nearVec(got, Vec2{0.2, 0.9}) {
		t.Errorf("reflect across y=0.5 = %v, want (0.2, 0.9)", got)
	}
}

// =============================================================================
// Walk Tests
// =============================================================================

func TestWalk(t *testing.T) {
	normals := []Normal{NormalForm(1, 0), NormalForm(0, 0.5), NormalForm(0, -0.5)}
	const m, sentinel = 3, 4
	p := Vec2{0.2, 0.1}

	r0 := func(v Vec2) Vec2 { return Reflect(v, normals[0]) }
	r1 := func(v Vec2) Vec2 { return Reflect(v, normals[1]) }
	r2 := func(v Vec2) Vec2 { return Reflect(v, normals[2]) }

	tests := []struct {
		name string
		code int32
		want Vec2
	}{
		{"sentinel", sentinel, p},
		{"mirror0", 0, r0(p)},
		{"mirror2", 2, r2(p)},
		{"0 then 1", 3, r1(r0(p))},
		{"1 then 0", -1, r0(r1(p))},
		{"2 then 0", -2, r0(r2(p))},
		{"1 then 2", 7, r2(r1(p))},
		{"1 then 0 then 2", 1 + 2*9, r2(r0(r1(p)))},
		{"0 then 1 then 0", -3, r0(r1(r0(p)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Walk(p, tt.code, sentinel, m, normals); !nearVec(got, tt.want) {
				t.Errorf("Walk(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Pixel Mapping Tests
// =============================================================================

func TestPixelIndex(t *testing.T) {
	tests := []struct {
		name string
		p    Vec2
		idx  uint32
		ok   bool
	}{
		{"bottom-left", Vec2{-1, -1}, 3 * 4, true},
		{"top-right inside", Vec2{0.99, 0.99}, 3, true},
		{"center", Vec2{0, 0}, 1*4 + 2, true},
		{"right edge excluded", Vec2{1, 0}, 0, false},
		{"top edge excluded", Vec2{0, 1}, 0, false},
		{"left outside", Vec2{-1.01, 0}, 0, false},
		{"below", Vec2{0, -3}, 0, false},
		{"nan", Vec2{math32.NaN(), 0}, 0, false},
		{"inf", Vec2{math32.Inf(1), 0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := PixelIndex(tt.p, 4, 4)
			if ok != tt.ok || (ok && idx != tt.idx) {
				t.Errorf("PixelIndex(%v) = (%d, %v), want (%d, %v)", tt.p, idx, ok, tt.idx, tt.ok)
			}
		})
	}
}

func TestGlobalIndex(t *testing.T) {
	if got := GlobalIndex(0, 0, 0, 2, 2, 5); got != 5 {
		t.Errorf("GlobalIndex origin = %d, want 5", got)
	}
	// Workgroup (1,1,1) in a 2x2x2 grid is the last of 8.
	if got := GlobalIndex(1, 1, 1, 2, 2, 127); got != 8*128-1 {
		t.Errorf("GlobalIndex last = %d, want %d", got, 8*128-1)
	}
}

// =============================================================================
// Shading Tests
// =============================================================================

var (
	white = Color{1, 1, 1, 1}
	black = Color{0, 0, 0, 1}
)

func TestShadePoint(t *testing.T) {
	if got := ShadePoint(0, white, black); got != black {
		t.Errorf("ShadePoint(0) = %v, want background", got)
	}
	if got := ShadePoint(7, white, black); got != white {
		t.Errorf("ShadePoint(7) = %v, want color", got)
	}
}

func TestShadeTrail(t *testing.T) {
	prev := Color{0.8, 0.8, 0.8, 1}
	if got := ShadeTrail(5, 4, prev, white, black, 0.5); got != white {
		t.Errorf("fresh hit = %v, want color", got)
	}
	got := ShadeTrail(4, 4, prev, white, black, 0.5)
	if !near(got[0], 0.4) || got[3] != 1 {
		t.Errorf("fade = %v, want 0.4 grey", got)
	}
	if got := ShadeTrail(0, 0, black, white, black, 0.9); got != black {
		t.Errorf("idle background = %v, want background", got)
	}
}

func TestShadeDensity_Monotonic(t *testing.T) {
	if got := ShadeDensity(0, 64, black); got != black {
		t.Errorf("ShadeDensity(0) = %v, want background", got)
	}
	prev := float32(-1)
	for c := uint32(1); c <= 64; c *= 2 {
		col := ShadeDensity(c, 64, black)
		lum := col[0] + col[1] + col[2]
		if lum <= prev {
			t.Errorf("luminance not increasing at count %d: %v <= %v", c, lum, prev)
		}
		prev = lum
	}
	if got := ShadeDensity(1000, 64, black); got != densityStops[2] {
		t.Errorf("saturated = %v, want top stop", got)
	}
}

func TestRamp_Clamp(t *testing.T) {
	if got := Ramp(-1, black); got != black {
		t.Errorf("Ramp(-1) = %v, want background", got)
	}
	if got := Ramp(math32.NaN(), black); got != black {
		t.Errorf("Ramp(NaN) = %v, want background", got)
	}
	if got := Ramp(2, black); got != densityStops[2] {
		t.Errorf("Ramp(2) = %v, want top stop", got)
	}
}
