package onnx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClassMapping_TrainingFormat(t *testing.T) {
	labels, err := parseClassMapping([]byte(`{
		"class_indices": {"Fallen trees": 1, "Broken Road Sign Issues": 0},
		"index_to_class": {"1": "Fallen trees", "0": "Broken Road Sign Issues"},
		"num_classes": 2
	}`))
	require.NoError(t, err)
	require.Equal(t, []string{"Broken Road Sign Issues", "Fallen trees"}, labels)
}

func TestParseClassMapping_ArrayAndBareMap(t *testing.T) {
	labels, err := parseClassMapping([]byte(`["a", "b", "c"]`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, labels)

	labels, err = parseClassMapping([]byte(`{"1": "b", "0": "a"}`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, labels)
}

func TestParseClassMapping_Invalid(t *testing.T) {
	for name, data := range map[string]string{
		"empty array":    `[]`,
		"gap":            `{"0": "a", "2": "c"}`,
		"non numeric":    `{"x": "a"}`,
		"count mismatch": `{"index_to_class": {"0": "a"}, "num_classes": 9}`,
		"not json":       `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseClassMapping([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadClassMapping_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ClassMappingFile)
	require.NoError(t, os.WriteFile(path, []byte(`["only"]`), 0o644))

	labels, err := loadClassMapping(path)
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, labels)

	_, err = loadClassMapping(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestToProbabilities(t *testing.T) {
	p := toProbabilities([]float32{0.25, 0.75})
	require.InDelta(t, 0.25, p[0], 1e-7)
	require.InDelta(t, 0.75, p[1], 1e-7)

	p = toProbabilities([]float32{2, 0, -1})
	var sum float64
	for _, v := range p {
		sum += v
	}
	require.InDelta(t, 1, sum, 1e-9)
	require.Greater(t, p[0], p[1])
	require.InDelta(t, math.Exp(2)/(math.Exp(2)+1+math.Exp(-1)), p[0], 1e-9)
}

func TestToCHW(t *testing.T) {
	hwc := []float32{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	require.Equal(t, []float32{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}, toCHW(hwc, 2))
}

func TestResolveSharedLibraryPath(t *testing.T) {
	require.Equal(t, "/explicit/lib.so", resolveSharedLibraryPath("/explicit/lib.so", t.TempDir()))

	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/from/env.so")
	require.Equal(t, "/from/env.so", resolveSharedLibraryPath("", t.TempDir()))

	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "")
	dir := t.TempDir()
	lib := filepath.Join(dir, "libonnxruntime.so")
	require.NoError(t, os.WriteFile(lib, nil, 0o644))
	require.Equal(t, lib, resolveSharedLibraryPath("", dir))
}
