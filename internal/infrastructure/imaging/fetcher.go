package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"issue-classifier/internal/domain/entity"
)

// Fetcher downloads images over HTTP with a per-attempt timeout and retries
// transient failures with exponential backoff.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	retries  uint64
	backoff  time.Duration
}

// NewFetcher creates a fetcher.
func NewFetcher(timeout time.Duration, maxBytes int64, retries uint64) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		retries:  retries,
		backoff:  200 * time.Millisecond,
	}
}

// Fetch downloads rawURL. Every failure wraps entity.ErrImageFetch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*entity.SourceImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid image url %q", entity.ErrImageFetch, rawURL)
	}

	var img *entity.SourceImage
	b := retry.WithMaxRetries(f.retries, retry.NewExponential(f.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		res, err := f.fetchOnce(ctx, u.String())
		if err != nil {
			return err
		}
		img = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrImageFetch, err)
	}
	return img, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) (*entity.SourceImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("download image: %w", err)
		}
		return nil, retry.RetryableError(fmt.Errorf("download image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("image server returned %s", resp.Status))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image server returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("read image: %w", err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("url does not point to an image (content type %q)", contentType)
	}

	return &entity.SourceImage{Data: data, ContentType: contentType}, nil
}
