package present

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
)

// applyGlow adds a Gaussian-blurred copy of img onto itself.
func applyGlow(img *image.NRGBA, radius float64) {
	halo := blur.Gaussian(img, radius)
	sum := blend.Add(img, halo)
	draw.Draw(img, img.Bounds(), sum, sum.Bounds().Min, draw.Src)
}

// Glow returns a copy of img with a bloom of the given radius.
func Glow(img image.Image, radius float64) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	if radius > 0 {
		applyGlow(out, radius)
	}
	return out
}
