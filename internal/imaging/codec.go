package imaging

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// EncodeJPEG writes img as JPEG with the given quality (1-100). JPEG is the
// lossy encoding used for base photos and flattened snapshots.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("jpeg quality out of range: %d", quality)
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// EncodePNG writes img as PNG. PNG is the lossless encoding used for
// alpha-sensitive cutout images.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// Decode reads an image in any registered format.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
