package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
)

const (
	ModelFile        = "classifier.onnx"
	ClassMappingFile = "class_mapping.json"
)

// Options configures LoadClassifier.
type Options struct {
	ModelDir          string
	SharedLibraryPath string
	InputSize         int
}

// Classifier runs the exported image model through onnxruntime. Tensors are
// allocated once; Run calls are serialized.
type Classifier struct {
	session       *ort.AdvancedSession
	input         *ort.Tensor[float32]
	output        *ort.Tensor[float32]
	labels        []string
	size          int
	channelsFirst bool

	mu sync.Mutex
}

// LoadClassifier initializes the runtime, reads the class mapping and opens the session.
// It is meant to be called once at startup.
func LoadClassifier(opts Options) (*Classifier, error) {
	if opts.ModelDir == "" {
		return nil, errors.New("model dir is empty")
	}
	if opts.InputSize <= 0 {
		opts.InputSize = 224
	}

	libPath := resolveSharedLibraryPath(opts.SharedLibraryPath, opts.ModelDir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(opts.ModelDir, ModelFile)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	labels, err := loadClassMapping(filepath.Join(opts.ModelDir, ClassMappingFile))
	if err != nil {
		return nil, fmt.Errorf("load class mapping: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) < 1 {
		return nil, fmt.Errorf("expected one input and at least one output, got %d and %d", len(inputs), len(outputs))
	}

	size := int64(opts.InputSize)
	inputShape := ort.NewShape(1, size, size, 3)
	channelsFirst := len(inputs[0].Dimensions) == 4 && inputs[0].Dimensions[1] == 3
	if channelsFirst {
		inputShape = ort.NewShape(1, 3, size, size)
	}

	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(labels))))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Classifier{
		session:       session,
		input:         input,
		output:        output,
		labels:        labels,
		size:          opts.InputSize,
		channelsFirst: channelsFirst,
	}, nil
}

// Classify runs one inference.
func (c *Classifier) Classify(ctx context.Context, img *entity.Raster) (entity.Probabilities, error) {
	if c == nil || c.session == nil {
		return nil, entity.ErrModelNotLoaded
	}
	if img.Empty() || img.Width != c.size || img.Height != c.size {
		return nil, fmt.Errorf("classifier expects a %dx%d raster", c.size, c.size)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := img.Normalized()
	if c.channelsFirst {
		data = toCHW(data, c.size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.input.GetData(), data)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	return toProbabilities(c.output.GetData()), nil
}

// Labels returns the class names in output index order.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Close releases the session and tensors.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.session != nil {
		errs = append(errs, c.session.Destroy())
		c.session = nil
	}
	if c.input != nil {
		errs = append(errs, c.input.Destroy())
	}
	if c.output != nil {
		errs = append(errs, c.output.Destroy())
	}
	return errors.Join(errs...)
}

var _ port.Classifier = (*Classifier)(nil)
