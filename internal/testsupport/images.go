package testsupport

import (
	"image"
	"image/color"
)

// NewImage builds a uniformly colored test bitmap.
func NewImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// NewSubjectImage paints a dark centered square on a light background,
// enough contrast for the segmenter to find a subject.
func NewSubjectImage(w, h int) *image.NRGBA {
	img := NewImage(w, h, color.NRGBA{R: 245, G: 245, B: 240, A: 255})
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 25, G: 35, B: 45, A: 255})
		}
	}
	return img
}
