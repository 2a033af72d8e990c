package app

import (
	"context"
	"errors"
	"sync/atomic"

	"issue-classifier/internal/domain/entity"
)

type stubClassifier struct {
	probs  entity.Probabilities
	labels []string
	err    error
	block  chan struct{}
	calls  atomic.Int32
}

func (c *stubClassifier) Classify(ctx context.Context, img *entity.Raster) (entity.Probabilities, error) {
	c.calls.Add(1)
	if c.block != nil {
		<-c.block
	}
	return c.probs, c.err
}

func (c *stubClassifier) Labels() []string { return c.labels }

type stubDecoder struct {
	raster *entity.Raster
	err    error
}

func (d *stubDecoder) Decode(data []byte) (*entity.Raster, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.raster, nil
}

type stubFetcher struct {
	img   *entity.SourceImage
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*entity.SourceImage, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type stubDescriber struct {
	text  string
	err   error
	issue entity.IssueType
}

func (d *stubDescriber) Describe(ctx context.Context, img *entity.SourceImage, issue entity.IssueType) (string, error) {
	d.issue = issue
	return d.text, d.err
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) (*entity.ClassificationVerdict, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, key string, v *entity.ClassificationVerdict) error {
	return errors.New("cache down")
}

func uniformRaster(r, g, b uint8) *entity.Raster {
	img := entity.NewRaster(224, 224)
	for y := 0; y < 224; y++ {
		for x := 0; x < 224; x++ {
			img.Set(x, y, r, g, b)
		}
	}
	return img
}

func texturedRaster() *entity.Raster {
	img := entity.NewRaster(224, 224)
	for y := 0; y < 224; y++ {
		for x := 0; x < 224; x++ {
			img.Set(x, y, uint8((x*7+y*13)%256), uint8((x*11+y*3)%256), uint8((x*5+y*17)%256))
		}
	}
	return img
}

// potholeFirstLabels puts "Potholes and Road Damage" at index 0.
func potholeFirstLabels() []string {
	entries := entity.TaxonomyEntries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.ClassName
	}
	return labels
}
