package entity

// Raster is a decoded RGB image with interleaved 8-bit channels.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8 // R,G,B for each pixel, row-major
}

// NewRaster allocates a black raster of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Empty reports whether the raster holds no pixels.
func (r *Raster) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0 || len(r.Pix) < r.Width*r.Height*3
}

// At returns the RGB triple at (x, y).
func (r *Raster) At(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// Set writes the RGB triple at (x, y).
func (r *Raster) Set(x, y int, red, green, blue uint8) {
	i := (y*r.Width + x) * 3
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = red, green, blue
}

// Normalized returns the pixels scaled to [0,1] in HWC order, the classifier input layout.
func (r *Raster) Normalized() []float32 {
	out := make([]float32, len(r.Pix))
	for i, v := range r.Pix {
		out[i] = float32(v) / 255
	}
	return out
}

// SourceImage is an undecoded image as received from a client or fetched from a URL.
type SourceImage struct {
	Data        []byte
	ContentType string
}
