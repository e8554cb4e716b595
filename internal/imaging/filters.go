package imaging

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"montage/internal/canvas"
	"montage/internal/logging"
)

// Pipeline applies an ordered shader stack to an image. It keeps no state
// between calls; the engine treats it as a pure function.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline constructs the shader pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logging.WithComponent(logger, "shaders")}
}

// Apply runs img through every shader in order and returns the filtered
// result. A shader that fails is skipped; an empty stack returns the source
// unchanged. Apply honors context cancellation between shaders.
func (p *Pipeline) Apply(ctx context.Context, shaders []canvas.Shader, img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("apply shaders: nil image")
	}
	if len(shaders) == 0 {
		return img, nil
	}

	current := imaging.Clone(img)
	for _, shader := range shaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := applyShader(shader, current)
		if err != nil {
			p.logger.Debug("shader skipped",
				logging.String(logging.FieldShader, string(shader)),
				logging.Error(err))
			continue
		}
		current = next
	}
	return current, nil
}

func applyShader(shader canvas.Shader, src *image.NRGBA) (*image.NRGBA, error) {
	switch shader {
	case canvas.ShaderPixellate:
		return pixellate(src), nil
	case canvas.ShaderGrainy:
		return grainy(src), nil
	case canvas.ShaderGrayscale:
		return imaging.Grayscale(src), nil
	case canvas.ShaderSpectral:
		return spectral(src), nil
	case canvas.ShaderThreeDGlasses:
		return threeDGlasses(src), nil
	case canvas.ShaderAlien:
		return alien(src), nil
	case canvas.ShaderThickGlassSquares:
		return thickGlassSquares(src), nil
	case canvas.ShaderLens:
		return lens(src), nil
	default:
		return nil, fmt.Errorf("unknown shader %q", shader)
	}
}

// pixellate downsamples to the block grid and scales back up with nearest
// neighbor. Block size tracks image size: max(4, maxDim/50).
func pixellate(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	block := maxInt(4, maxInt(w, h)/50)
	smallW, smallH := maxInt(1, w/block), maxInt(1, h/block)
	small := imaging.Resize(src, smallW, smallH, imaging.Box)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

// grainy overlays deterministic monochrome noise. The generator is seeded
// per call so identical inputs render identically.
func grainy(src *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(src)
	rng := rand.New(rand.NewPCG(0x6d6f6e74, 0x61676521))
	const amplitude = 28
	for i := 0; i < len(out.Pix); i += 4 {
		noise := int(rng.Int32N(2*amplitude+1)) - amplitude
		out.Pix[i] = clampByte(int(out.Pix[i]) + noise)
		out.Pix[i+1] = clampByte(int(out.Pix[i+1]) + noise)
		out.Pix[i+2] = clampByte(int(out.Pix[i+2]) + noise)
	}
	return out
}

// spectral rotates color channels and blends the result with the source,
// giving a false-color look while keeping luminance structure.
func spectral(src *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(src)
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
		out.Pix[i] = clampByte((g*3 + r) / 4)
		out.Pix[i+1] = clampByte((b*3 + g) / 4)
		out.Pix[i+2] = clampByte((r*3 + b) / 4)
	}
	return out
}

// threeDGlasses offsets the red channel left and the cyan channels right,
// the classic anaglyph fringe.
func threeDGlasses(src *image.NRGBA) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	shift := maxInt(2, w/90)
	out := imaging.Clone(src)
	for y := 0; y < h; y++ {
		row := y * out.Stride
		for x := 0; x < w; x++ {
			o := row + x*4
			leftX := clampInt(x-shift, 0, w-1)
			rightX := clampInt(x+shift, 0, w-1)
			out.Pix[o] = src.Pix[row+leftX*4]
			out.Pix[o+1] = src.Pix[row+rightX*4+1]
			out.Pix[o+2] = src.Pix[row+rightX*4+2]
		}
	}
	return out
}

// alien pushes greens up and swaps warm tones toward magenta.
func alien(src *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(src)
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
		out.Pix[i] = clampByte(b)
		out.Pix[i+1] = clampByte(g * 7 / 5)
		out.Pix[i+2] = clampByte(r * 4 / 5)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
