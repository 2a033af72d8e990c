package onnx

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"issue-classifier/internal/domain/entity"
)

// classMapping is the file written next to the model by the training job.
type classMapping struct {
	IndexToClass map[string]string `json:"index_to_class"`
	NumClasses   int               `json:"num_classes"`
}

// loadClassMapping reads class labels in index order. Accepted forms are a
// plain JSON array, {"index_to_class": {"0": ...}, "num_classes": N} and a
// bare {"0": ...} map.
func loadClassMapping(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseClassMapping(data)
}

func parseClassMapping(data []byte) ([]string, error) {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) == 0 {
			return nil, errors.New("class mapping is empty")
		}
		return arr, nil
	}

	var wrapped classMapping
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.IndexToClass) > 0 {
		labels, err := indexedLabels(wrapped.IndexToClass)
		if err != nil {
			return nil, err
		}
		if wrapped.NumClasses != 0 && wrapped.NumClasses != len(labels) {
			return nil, fmt.Errorf("num_classes is %d but %d labels are mapped", wrapped.NumClasses, len(labels))
		}
		return labels, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode class mapping: %w", err)
	}
	if len(m) == 0 {
		return nil, errors.New("class mapping is empty")
	}
	return indexedLabels(m)
}

func indexedLabels(m map[string]string) ([]string, error) {
	out := make([]string, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, err)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// toProbabilities passes a softmax output through and applies softmax to raw logits.
func toProbabilities(raw []float32) entity.Probabilities {
	out := make(entity.Probabilities, len(raw))
	var sum float64
	isDistribution := true
	for i, v := range raw {
		out[i] = float64(v)
		sum += out[i]
		if out[i] < 0 || out[i] > 1 {
			isDistribution = false
		}
	}
	if isDistribution && math.Abs(sum-1) < 1e-3 {
		return out
	}

	maxLogit := math.Inf(-1)
	for _, v := range out {
		maxLogit = math.Max(maxLogit, v)
	}
	sum = 0
	for i, v := range out {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// toCHW reorders an HWC buffer into CHW for models exported channels-first.
func toCHW(hwc []float32, size int) []float32 {
	out := make([]float32, len(hwc))
	plane := size * size
	for p := 0; p < plane; p++ {
		for c := 0; c < 3; c++ {
			out[c*plane+p] = hwc[p*3+c]
		}
	}
	return out
}

// resolveSharedLibraryPath finds the onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH (or the explicit path) wins; otherwise common locations are probed.
func resolveSharedLibraryPath(explicit, modelDir string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/usr/local/lib",
		"/usr/lib",
		"/opt/homebrew/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
