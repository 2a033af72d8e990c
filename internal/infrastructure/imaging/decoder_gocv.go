//go:build gocv
// +build gocv

package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"issue-classifier/internal/domain/entity"
)

// Decoder decodes images with OpenCV and resizes them to a square raster.
type Decoder struct {
	Size      int
	MaxPixels int64
}

// NewDecoder creates a decoder producing size×size rasters. maxPixels bounds the
// source canvas; zero or less disables the check.
func NewDecoder(size int, maxPixels int64) *Decoder {
	return &Decoder{Size: size, MaxPixels: maxPixels}
}

// Decode turns image bytes into an RGB raster.
func (d *Decoder) Decode(data []byte) (*entity.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", entity.ErrImageDecode)
	}
	if err := checkCanvas(data, d.MaxPixels); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(d.Size, d.Size), 0, 0, gocv.InterpolationCubic)

	// OpenCV keeps pixels in BGR order.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	r := entity.NewRaster(d.Size, d.Size)
	copy(r.Pix, rgb.ToBytes())
	return r, nil
}

// decodeToMat turns image bytes into a 3-channel gocv.Mat. On error nothing
// is left for the caller to close.
func decodeToMat(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", entity.ErrImageDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("%w: unsupported or corrupt image", entity.ErrImageDecode)
	}
	return mat, nil
}
