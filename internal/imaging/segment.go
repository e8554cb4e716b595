package imaging

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"montage/internal/logging"
)

// ErrNoForeground reports that segmentation found nothing plausible to cut
// out. Callers treat it as a best-effort miss, not a failure.
var ErrNoForeground = errors.New("no foreground found")

// Segmenter isolates the dominant foreground subject of a photo by modeling
// the background from border pixels and keeping the largest connected
// region that deviates from it. The result is an NRGBA image whose alpha
// channel masks out the background.
type Segmenter struct {
	logger *slog.Logger

	// minCoverage and maxCoverage bound the accepted foreground share of
	// the frame; outside them the subject is indistinguishable from the
	// background and the attempt reports ErrNoForeground.
	minCoverage float64
	maxCoverage float64
}

// NewSegmenter constructs a segmenter with default coverage bounds.
func NewSegmenter(logger *slog.Logger) *Segmenter {
	return &Segmenter{
		logger:      logging.WithComponent(logger, "segmenter"),
		minCoverage: 0.02,
		maxCoverage: 0.95,
	}
}

const segmentCancelStride = 64

// Cutout produces a foreground-isolated copy of img. It returns
// ErrNoForeground when no plausible subject exists and honors context
// cancellation between row batches.
func (s *Segmenter) Cutout(ctx context.Context, img image.Image) (image.Image, error) {
	if img == nil {
		return nil, errors.New("segment: nil image")
	}
	src := imaging.Clone(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 4 || h < 4 {
		return nil, ErrNoForeground
	}

	bgR, bgG, bgB, spread := borderModel(src, w, h)

	// Threshold adapts to how uniform the border is: a busy border needs a
	// larger deviation before a pixel counts as foreground.
	threshold := math.Max(30, spread*1.5)

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		if y%segmentCancelStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := y * src.Stride
		for x := 0; x < w; x++ {
			o := row + x*4
			dist := colorDistance(float64(src.Pix[o]), float64(src.Pix[o+1]), float64(src.Pix[o+2]), bgR, bgG, bgB)
			mask[y*w+x] = dist > threshold
		}
	}

	component, area := largestComponent(ctx, mask, w, h)
	if component == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoForeground
	}
	coverage := float64(area) / float64(w*h)
	if coverage < s.minCoverage || coverage > s.maxCoverage {
		s.logger.Debug("segmentation rejected", logging.Float64("coverage", coverage))
		return nil, ErrNoForeground
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := y * src.Stride
		dstRow := y * out.Stride
		for x := 0; x < w; x++ {
			so := srcRow + x*4
			do := dstRow + x*4
			copy(out.Pix[do:do+3], src.Pix[so:so+3])
			out.Pix[do+3] = featherAlpha(component, w, h, x, y, src.Pix[so+3])
		}
	}
	return out, nil
}

// borderModel averages a one-pixel border ring and reports the mean color
// plus the average deviation from it.
func borderModel(src *image.NRGBA, w, h int) (r, g, b, spread float64) {
	var sumR, sumG, sumB float64
	var count int
	sample := func(x, y int) {
		o := y*src.Stride + x*4
		sumR += float64(src.Pix[o])
		sumG += float64(src.Pix[o+1])
		sumB += float64(src.Pix[o+2])
		count++
	}
	for x := 0; x < w; x++ {
		sample(x, 0)
		sample(x, h-1)
	}
	for y := 1; y < h-1; y++ {
		sample(0, y)
		sample(w-1, y)
	}
	r, g, b = sumR/float64(count), sumG/float64(count), sumB/float64(count)

	var devSum float64
	for x := 0; x < w; x++ {
		for _, y := range []int{0, h - 1} {
			o := y*src.Stride + x*4
			devSum += colorDistance(float64(src.Pix[o]), float64(src.Pix[o+1]), float64(src.Pix[o+2]), r, g, b)
		}
	}
	spread = devSum / float64(2*w)
	return r, g, b, spread
}

func colorDistance(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr, dg, db := r1-r2, g1-g2, b1-b2
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// largestComponent returns the biggest 4-connected foreground region and
// its area, or nil when the mask is empty.
func largestComponent(ctx context.Context, mask []bool, w, h int) ([]bool, int) {
	visited := make([]bool, len(mask))
	var best []bool
	bestArea := 0
	queue := make([]int, 0, 256)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		if ctx.Err() != nil {
			return nil, 0
		}

		current := make([]bool, len(mask))
		area := 0
		queue = append(queue[:0], start)
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			current[idx] = true
			area++

			x, y := idx%w, idx/w
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				n := ny*w + nx
				if visited[n] || !mask[n] {
					continue
				}
				visited[n] = true
				queue = append(queue, n)
			}
		}
		if area > bestArea {
			best, bestArea = current, area
		}
	}
	if bestArea == 0 {
		return nil, 0
	}
	return best, bestArea
}

// featherAlpha softens the mask edge by shading pixels whose neighborhood
// straddles the component boundary.
func featherAlpha(component []bool, w, h, x, y int, srcAlpha uint8) uint8 {
	if !component[y*w+x] {
		return 0
	}
	inside := 0
	total := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			total++
			if component[ny*w+nx] {
				inside++
			}
		}
	}
	scaled := int(srcAlpha) * inside / total
	return clampByte(scaled)
}
