package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Downscale bounds an image to maxDimension on its longer side, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(img image.Image, maxDimension int) image.Image {
	if img == nil || maxDimension <= 0 {
		return img
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}
