//go:build !gocv
// +build !gocv

package imaging

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"issue-classifier/internal/domain/entity"
)

// Decoder decodes JPEG, PNG, GIF and WebP and resizes them to a square raster.
// Build with the gocv tag to use OpenCV instead.
type Decoder struct {
	Size      int
	MaxPixels int64
}

// NewDecoder creates a decoder producing size×size rasters. maxPixels bounds the
// source canvas; zero or less disables the check.
func NewDecoder(size int, maxPixels int64) *Decoder {
	return &Decoder{Size: size, MaxPixels: maxPixels}
}

// Decode turns image bytes into an RGB raster. Alpha is dropped without compositing.
func (d *Decoder) Decode(data []byte) (*entity.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrImageDecode)
	}
	if err := checkCanvas(data, d.MaxPixels); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrImageDecode, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrImageDecode)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, d.Size, d.Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	r := entity.NewRaster(d.Size, d.Size)
	for i, j := 0, 0; i < len(dst.Pix); i, j = i+4, j+3 {
		r.Pix[j], r.Pix[j+1], r.Pix[j+2] = dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2]
	}
	return r, nil
}
