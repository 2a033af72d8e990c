package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"issue-classifier/internal/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"HTTP_ADDR", "FETCH_TIMEOUT", "CACHE_SIZE", "THRESHOLDS_FILE", "REDIS_ADDR", "MAX_IMAGE_PIXELS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":5000", cfg.HTTPAddr)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, 1000, cfg.CacheSize)
	require.Equal(t, int64(50_000_000), cfg.MaxImagePixels)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, entity.DefaultThresholds(), cfg.Thresholds)
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("INFERENCE_TIMEOUT", "2s")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("MAX_IMAGE_PIXELS", "1000000")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 2*time.Second, cfg.InferenceTimeout)
	require.Equal(t, int64(1024), cfg.MaxImageBytes)
	require.Equal(t, uint64(5), cfg.FetchRetries)
	require.Equal(t, int64(1000000), cfg.MaxImagePixels)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err := Load()
	require.ErrorContains(t, err, "FETCH_TIMEOUT")

	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("CACHE_SIZE", "-1")
	_, err = Load()
	require.ErrorContains(t, err, "CACHE_SIZE")
}

func TestLoadThresholds_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("confidence_threshold: 0.8\nmax_entropy: 1.2\n"), 0o600))

	th, err := LoadThresholds(path)
	require.NoError(t, err)

	want := entity.DefaultThresholds()
	want.ConfidenceThreshold = 0.8
	want.MaxEntropy = 1.2
	require.Equal(t, want, th)
}

func TestLoad_RejectsInconsistentThresholds(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_brightness: 250\nmax_brightness: 10\n"), 0o600))
	t.Setenv("THRESHOLDS_FILE", path)

	_, err := Load()
	require.ErrorContains(t, err, "thresholds")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
