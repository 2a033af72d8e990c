package entity

import (
	"errors"
	"fmt"
)

// Thresholds holds every tunable bound used by the quality gate, the uncertainty
// analyzer and the decision policy.
type Thresholds struct {
	// Quality gate, 0-255 pixel scale.
	MinBrightness     float64 `yaml:"min_brightness"`
	MaxBrightness     float64 `yaml:"max_brightness"`
	MinVariance       float64 `yaml:"min_variance"`
	MinEdgeDensity    float64 `yaml:"min_edge_density"`
	MinColorDiversity float64 `yaml:"min_color_diversity"`

	// Uncertainty analysis.
	ProbabilityFloor  float64 `yaml:"probability_floor"`
	MaxEntropy        float64 `yaml:"max_entropy"`
	MinTopProbability float64 `yaml:"min_top_probability"`
	MaxSecondaryRatio float64 `yaml:"max_secondary_ratio"`

	// Decision policy.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	WarningThreshold    float64 `yaml:"warning_threshold"`
	TopPredictions      int     `yaml:"top_predictions"`
}

// DefaultThresholds returns the bounds the production model was tuned with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBrightness:     15,
		MaxBrightness:     245,
		MinVariance:       200,
		MinEdgeDensity:    0.01,
		MinColorDiversity: 10,

		ProbabilityFloor:  1e-10,
		MaxEntropy:        1.5,
		MinTopProbability: 0.5,
		MaxSecondaryRatio: 0.6,

		ConfidenceThreshold: 0.70,
		WarningThreshold:    0.85,
		TopPredictions:      5,
	}
}

// Validate checks that the bounds are consistent with each other.
func (t Thresholds) Validate() error {
	if t.MinBrightness < 0 || t.MaxBrightness > 255 || t.MinBrightness >= t.MaxBrightness {
		return fmt.Errorf("brightness bounds must satisfy 0 <= min < max <= 255, got [%v, %v]", t.MinBrightness, t.MaxBrightness)
	}
	if t.MinVariance < 0 || t.MinEdgeDensity < 0 || t.MinColorDiversity < 0 {
		return errors.New("variance, edge density and color diversity bounds must not be negative")
	}
	if t.ProbabilityFloor <= 0 || t.ProbabilityFloor >= 1 {
		return fmt.Errorf("probability floor must be in (0, 1), got %v", t.ProbabilityFloor)
	}
	if t.MaxEntropy <= 0 {
		return fmt.Errorf("max entropy must be positive, got %v", t.MaxEntropy)
	}
	if t.MinTopProbability < 0 || t.MinTopProbability > 1 {
		return fmt.Errorf("min top probability must be in [0, 1], got %v", t.MinTopProbability)
	}
	if t.MaxSecondaryRatio <= 0 || t.MaxSecondaryRatio > 1 {
		return fmt.Errorf("max secondary ratio must be in (0, 1], got %v", t.MaxSecondaryRatio)
	}
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0, 1], got %v", t.ConfidenceThreshold)
	}
	if t.WarningThreshold < t.ConfidenceThreshold || t.WarningThreshold > 1 {
		return fmt.Errorf("warning threshold must be in [confidence threshold, 1], got %v", t.WarningThreshold)
	}
	if t.TopPredictions <= 0 {
		return fmt.Errorf("top predictions must be positive, got %d", t.TopPredictions)
	}
	return nil
}
