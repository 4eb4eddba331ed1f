package input

import (
	"errors"
	"math"
	"testing"
)

func TestFixed(t *testing.T) {
	f := Fixed{X: 10, Y: 20, Frames: 2}
	for frame := 0; frame < 2; frame++ {
		x, y, ok := f.Cursor(frame)
		if !ok || x != 10 || y != 20 {
			t.Errorf("Cursor(%d) = (%v, %v, %v), want (10, 20, true)", frame, x, y, ok)
		}
	}
	if _, _, ok := f.Cursor(2); ok {
		t.Error("Cursor(2) should end the source")
	}
}

func TestOrbit(t *testing.T) {
	o := Orbit{CX: 100, CY: 100, R: 50, Period: 4, Frames: 8}
	tests := []struct {
		frame int
		x, y  float64
	}{
		{0, 150, 100},
		{1, 100, 150},
		{2, 50, 100},
		{4, 150, 100},
	}
	for _, tt := range tests {
		x, y, ok := o.Cursor(tt.frame)
		if !ok || math.Abs(x-tt.x) > 1e-9 || math.Abs(y-tt.y) > 1e-9 {
			t.Errorf("Cursor(%d) = (%v, %v, %v), want (%v, %v)", tt.frame, x, y, ok, tt.x, tt.y)
		}
	}
	if _, _, ok := o.Cursor(8); ok {
		t.Error("Cursor(8) should end the source")
	}
}

func TestSweep(t *testing.T) {
	s := Sweep{X0: 0, Y0: 0, X1: 30, Y1: 60, Frames: 4}
	x, y, _ := s.Cursor(0)
	if x != 0 || y != 0 {
		t.Errorf("Cursor(0) = (%v, %v), want start", x, y)
	}
	x, y, _ = s.Cursor(3)
	if x != 30 || y != 60 {
		t.Errorf("Cursor(3) = (%v, %v), want end", x, y)
	}
	x, y, _ = s.Cursor(1)
	if x != 10 || y != 20 {
		t.Errorf("Cursor(1) = (%v, %v), want (10, 20)", x, y)
	}

	one := Sweep{X0: 5, Y0: 6, X1: 7, Y1: 8, Frames: 1}
	if x, y, ok := one.Cursor(0); !ok || x != 5 || y != 6 {
		t.Errorf("single frame sweep = (%v, %v, %v), want start", x, y, ok)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		desc string
		want Source
	}{
		{"center", Fixed{X: 400, Y: 300, Frames: 10}},
		{"", Fixed{X: 400, Y: 300, Frames: 10}},
		{"fixed:12, 34", Fixed{X: 12, Y: 34, Frames: 10}},
		{"orbit:100", Orbit{CX: 400, CY: 300, R: 100, Period: 10, Frames: 10}},
		{"ORBIT:100,5", Orbit{CX: 400, CY: 300, R: 100, Period: 5, Frames: 10}},
		{"sweep:0,0,800,600", Sweep{X1: 800, Y1: 600, Frames: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Parse(tt.desc, 800, 600, 10)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.desc, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.desc, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, desc := range []string{
		"fixed:1",
		"fixed:a,b",
		"orbit:",
		"orbit:10,0",
		"sweep:1,2,3",
		"spiral:1",
		"center:1",
	} {
		if _, err := Parse(desc, 100, 100, 5); !errors.Is(err, ErrBadSource) {
			t.Errorf("Parse(%q) error = %v, want ErrBadSource", desc, err)
		}
	}
}
