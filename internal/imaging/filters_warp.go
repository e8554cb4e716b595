package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// thickGlassSquares quantizes sampling to a coarse cell grid, imitating
// refraction through square glass tiles. Cell size tracks image size:
// min(w, h)/32, never below 4.
func thickGlassSquares(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cell := maxInt(4, minInt(w, h)/32)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Offset within the cell bends the sample toward the cell center.
			cx := (x/cell)*cell + cell/2
			cy := (y/cell)*cell + cell/2
			sx := clampInt(x+(cx-x)/2, 0, w-1)
			sy := clampInt(y+(cy-y)/2, 0, h-1)
			copyPixel(out, src, x, y, sx, sy)
		}
	}
	return out
}

// lens magnifies a circular region around the image center: radius 0.35 of
// the short side, intensity 0.65.
func lens(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	centerX, centerY := float64(w)/2, float64(h)/2
	radius := 0.35 * float64(minInt(w, h))
	const intensity = 0.65

	out := imaging.Clone(src)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Hypot(dx, dy)
			if dist >= radius || dist == 0 {
				continue
			}
			// Pull samples toward the center; the pull fades at the rim.
			falloff := 1 - dist/radius
			scale := 1 / (1 + intensity*falloff)
			sx := clampInt(int(centerX+dx*scale), 0, w-1)
			sy := clampInt(int(centerY+dy*scale), 0, h-1)
			copyPixel(out, src, x, y, sx, sy)
		}
	}
	return out
}

func copyPixel(dst, src *image.NRGBA, dx, dy, sx, sy int) {
	d := dy*dst.Stride + dx*4
	s := sy*src.Stride + sx*4
	copy(dst.Pix[d:d+4], src.Pix[s:s+4])
}
