package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"montage/internal/canvas"
)

// Flatten renders canvas items onto a single bitmap, back to front. Each
// item's display image is scaled to its transformed size, rotated, and
// placed with its center at canvas center plus translation. The result is
// the exported snapshot of an edit session.
func Flatten(items []*canvas.Item, size canvas.Size) image.Image {
	w := maxInt(1, int(math.Round(size.Width)))
	h := maxInt(1, int(math.Round(size.Height)))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}

	ordered := make([]*canvas.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ZPosition < ordered[j].ZPosition
	})

	centerX, centerY := float64(w)/2, float64(h)/2
	for _, item := range ordered {
		layer := renderItem(item)
		if layer == nil {
			continue
		}
		lb := layer.Bounds()
		x := int(math.Round(centerX + item.Transform.Translation.X - float64(lb.Dx())/2))
		y := int(math.Round(centerY + item.Transform.Translation.Y - float64(lb.Dy())/2))
		result := imaging.Overlay(dst, layer, image.Pt(x, y), 1.0)
		dst = result
	}
	return dst
}

// renderItem scales an item's display image to its placed size and applies
// its rotation. Returns nil for items without a displayable size.
func renderItem(item *canvas.Item) image.Image {
	src := item.DisplayImage()
	if src == nil {
		return nil
	}
	t := item.Transform
	targetW := int(math.Round(t.Size.Width * t.Scale))
	targetH := int(math.Round(t.Size.Height * t.Scale))
	if targetW < 1 || targetH < 1 {
		return nil
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	if t.Rotation == 0 {
		return scaled
	}
	// Model rotation is clockwise in screen coordinates; imaging.Rotate is
	// counter-clockwise in image coordinates, so the angles line up.
	degrees := t.Rotation * 180 / math.Pi
	return imaging.Rotate(scaled, degrees, color.NRGBA{})
}
