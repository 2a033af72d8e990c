package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"issue-classifier/internal/decision"
	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/domain/port"
	"issue-classifier/internal/logging"
)

// Dependencies are the collaborators of ClassificationService. Classifier,
// Describer and Cache may be nil.
type Dependencies struct {
	Fetcher          port.ImageFetcher
	Decoder          port.ImageDecoder
	Classifier       port.Classifier
	Describer        port.IssueDescriber
	Cache            port.VerdictCache
	Thresholds       entity.Thresholds
	InferenceTimeout time.Duration
}

// ClassificationService runs the full pipeline: acquire, gate, classify, decide.
type ClassificationService struct {
	fetcher          port.ImageFetcher
	decoder          port.ImageDecoder
	gate             *decision.QualityGate
	classifier       port.Classifier
	policy           *decision.Policy
	describer        port.IssueDescriber
	cache            port.VerdictCache
	inferenceTimeout time.Duration
	log              *slog.Logger
}

// NewClassificationService wires the decision layer with its collaborators.
func NewClassificationService(deps Dependencies) *ClassificationService {
	if deps.InferenceTimeout <= 0 {
		deps.InferenceTimeout = 15 * time.Second
	}
	return &ClassificationService{
		fetcher:          deps.Fetcher,
		decoder:          deps.Decoder,
		gate:             decision.NewQualityGate(deps.Thresholds),
		classifier:       deps.Classifier,
		policy:           decision.NewPolicy(deps.Thresholds),
		describer:        deps.Describer,
		cache:            deps.Cache,
		inferenceTimeout: deps.InferenceTimeout,
		log:              logging.New("classification"),
	}
}

// ModelLoaded reports whether a classifier is available.
func (s *ClassificationService) ModelLoaded() bool {
	return s.classifier != nil
}

// DescriptionEnabled reports whether a describer is configured.
func (s *ClassificationService) DescriptionEnabled() bool {
	return s.describer != nil
}

// IssueTypes lists the taxonomy.
func (s *ClassificationService) IssueTypes() []entity.TaxonomyEntry {
	return entity.TaxonomyEntries()
}

// ClassifyURL downloads and classifies an image. Verdicts are cached per URL.
func (s *ClassificationService) ClassifyURL(ctx context.Context, url string) (*entity.ClassificationVerdict, error) {
	if s.classifier == nil {
		return nil, entity.ErrModelNotLoaded
	}

	key := cacheKey(url)
	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("verdict cache read failed", "error", err)
		} else if ok {
			s.log.Debug("verdict cache hit", "key", key)
			return v, nil
		}
	}

	img, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	v, err := s.ClassifyBytes(ctx, img.Data)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v); err != nil {
			s.log.Warn("verdict cache write failed", "error", err)
		}
	}
	return v, nil
}

// ClassifyBytes decodes and classifies an uploaded image.
func (s *ClassificationService) ClassifyBytes(ctx context.Context, data []byte) (*entity.ClassificationVerdict, error) {
	if s.classifier == nil {
		return nil, entity.ErrModelNotLoaded
	}
	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.ClassifyRaster(ctx, img)
}

// ClassifyRaster runs the quality gate and, only if it passes, the classifier.
func (s *ClassificationService) ClassifyRaster(ctx context.Context, img *entity.Raster) (*entity.ClassificationVerdict, error) {
	if s.classifier == nil {
		return nil, entity.ErrModelNotLoaded
	}

	quality := s.gate.Evaluate(img)
	if !quality.Passed {
		s.log.Info("image rejected by quality gate", "reason", quality.Reason)
		return s.policy.Decide(quality, nil, nil)
	}

	started := time.Now()
	probs, err := s.infer(ctx, img)
	if err != nil {
		return nil, err
	}

	v, err := s.policy.Decide(quality, probs, s.classifier.Labels())
	if err != nil {
		return nil, err
	}
	s.log.Info("image classified",
		"valid", v.IsValid,
		"unrelated", v.IsUnrelated,
		"confidence", v.Confidence,
		"entropy", v.Entropy,
		"inference_ms", time.Since(started).Milliseconds())
	return v, nil
}

// infer bounds the classifier call by the inference timeout.
func (s *ClassificationService) infer(ctx context.Context, img *entity.Raster) (entity.Probabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	type result struct {
		probs entity.Probabilities
		err   error
	}
	done := make(chan result, 1)
	go func() {
		probs, err := s.classifier.Classify(ctx, img)
		done <- result{probs, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("classify: %w", r.err)
		}
		return r.probs, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", entity.ErrInferenceTimeout, s.inferenceTimeout)
		}
		return nil, ctx.Err()
	}
}

// DescribeURL downloads an image and asks the describer for a description.
func (s *ClassificationService) DescribeURL(ctx context.Context, url string, issue entity.IssueType) (string, error) {
	if s.describer == nil {
		return "", entity.ErrDescriberDisabled
	}
	img, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return s.Describe(ctx, img, issue)
}

// Describe asks the describer for a description of an already available image.
func (s *ClassificationService) Describe(ctx context.Context, img *entity.SourceImage, issue entity.IssueType) (string, error) {
	if s.describer == nil {
		return "", entity.ErrDescriberDisabled
	}
	text, err := s.describer.Describe(ctx, img, issue)
	if err != nil {
		return "", err
	}
	return text, nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
