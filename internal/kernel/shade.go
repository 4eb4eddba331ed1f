package kernel

import "github.com/chewxy/math32"

// Color is a linear RGBA color.
type Color = [4]float32

var densityStops = [3]Color{
	{0.10, 0.12, 0.55, 1},
	{0.85, 0.20, 0.55, 1},
	{1.00, 0.95, 0.65, 1},
}

// ShadePoint returns fg for any hit and bg otherwise.
func ShadePoint(count uint32, fg, bg Color) Color {
	if count > 0 {
		return fg
	}
	return bg
}

// ShadeTrail blends one trail pixel. A pixel whose count moved since the
// last resolve (seen) is a fresh hit and takes fg. Otherwise prev fades
// toward bg by decay.
func ShadeTrail(count, seen uint32, prev, fg, bg Color, decay float32) Color {
	if count != seen {
		return fg
	}
	return Mix(bg, prev, decay)
}

// ShadeDensity maps a hit count to the density ramp. Counts at or above
// saturation reach the top stop.
func ShadeDensity(count uint32, saturation float32, bg Color) Color {
	if count == 0 {
		return bg
	}
	t := math32.Log(1+float32(count)) / math32.Log(1+saturation)
	return Ramp(t, bg)
}

// Ramp evaluates the four stop density gradient at t, clamped to [0,1].
func Ramp(t float32, bg Color) Color {
	t = clamp01(t)
	if t >= 1 {
		return densityStops[2]
	}
	s := t * 3
	switch {
	case s < 1:
		return Mix(bg, densityStops[0], s)
	case s < 2:
		return Mix(densityStops[0], densityStops[1], s-1)
	default:
		return Mix(densityStops[1], densityStops[2], s-2)
	}
}

// Mix linearly interpolates between a and b.
func Mix(a, b Color, t float32) Color {
	return Color{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

func clamp01(t float32) float32 {
	if math32.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
