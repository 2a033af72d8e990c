package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"issue-classifier/internal/domain/entity"
)

// DefaultMaxPixels admits 48 MP phone photos.
const DefaultMaxPixels = 50_000_000

// checkCanvas reads only the image header and rejects canvases larger than maxPixels,
// so a small compressed file cannot force a huge allocation. Formats the header
// reader does not know are left to the decoder.
func checkCanvas(data []byte, maxPixels int64) error {
	if maxPixels <= 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", entity.ErrImageDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", entity.ErrImageDecode, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}
