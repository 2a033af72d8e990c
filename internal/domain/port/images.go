package port

import (
	"context"

	"issue-classifier/internal/domain/entity"
)

// ImageFetcher downloads an image by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.SourceImage, error)
}

// ImageDecoder turns encoded bytes into the fixed-size raster the classifier expects.
type ImageDecoder interface {
	Decode(data []byte) (*entity.Raster, error)
}
