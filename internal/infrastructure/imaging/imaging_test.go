package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"issue-classifier/internal/domain/entity"
)

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecoder_ResizesToSquare(t *testing.T) {
	d := NewDecoder(224, DefaultMaxPixels)
	r, err := d.Decode(pngBytes(t, 300, 180, color.RGBA{R: 10, G: 120, B: 200, A: 255}))
	require.NoError(t, err)
	require.Equal(t, 224, r.Width)
	require.Equal(t, 224, r.Height)
	require.Len(t, r.Pix, 224*224*3)

	red, green, blue := r.At(100, 100)
	require.InDelta(t, 10, red, 1)
	require.InDelta(t, 120, green, 1)
	require.InDelta(t, 200, blue, 1)
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	d := NewDecoder(224, DefaultMaxPixels)

	_, err := d.Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, entity.ErrImageDecode)

	_, err = d.Decode(nil)
	require.ErrorIs(t, err, entity.ErrImageDecode)
}

// pngHeader returns a PNG holding only a signature and an IHDR chunk that
// declares a w x h grayscale canvas.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // 8-bit grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecoder_RejectsHugeCanvasFromHeader(t *testing.T) {
	d := NewDecoder(224, DefaultMaxPixels)

	data := pngHeader(40000, 40000)
	require.Less(t, len(data), 64)

	_, err := d.Decode(data)
	require.ErrorIs(t, err, entity.ErrImageDecode)
	require.ErrorContains(t, err, "40000x40000")
}

func TestDecoder_PixelCap(t *testing.T) {
	data := pngBytes(t, 300, 180, color.RGBA{R: 90, G: 90, B: 90, A: 255})

	_, err := NewDecoder(224, 300*180-1).Decode(data)
	require.ErrorIs(t, err, entity.ErrImageDecode)

	_, err = NewDecoder(224, 300*180).Decode(data)
	require.NoError(t, err)

	_, err = NewDecoder(224, 0).Decode(data)
	require.NoError(t, err)
}

func newTestFetcher() *Fetcher {
	f := NewFetcher(time.Second, 1<<20, 2)
	f.backoff = time.Millisecond
	return f
}

func TestFetcher_Success(t *testing.T) {
	body := pngBytes(t, 4, 4, color.RGBA{A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	img, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	require.Equal(t, "image/png", img.ContentType)
	require.Equal(t, body, img.Data)
}

func TestFetcher_SniffsMissingContentType(t *testing.T) {
	body := pngBytes(t, 4, 4, color.RGBA{A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	img, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "image/png", img.ContentType)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	body := pngBytes(t, 4, 4, color.RGBA{A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetcher_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, entity.ErrImageFetch)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetcher_RejectsNonImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, entity.ErrImageFetch)
	require.Contains(t, err.Error(), "does not point to an image")
}

func TestFetcher_RejectsOversized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.maxBytes = 32
	_, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, entity.ErrImageFetch)
	require.Contains(t, err.Error(), "exceeds 32 bytes")
}

func TestFetcher_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com/a.png", "not a url", "http://"} {
		_, err := newTestFetcher().Fetch(context.Background(), u)
		require.ErrorIs(t, err, entity.ErrImageFetch, u)
	}
}
