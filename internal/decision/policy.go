package decision

import (
	"fmt"
	"math"
	"sort"

	"issue-classifier/internal/domain/entity"
)

// Policy turns a quality verdict and a probability vector into the final verdict.
// It is stateless and safe for concurrent use.
type Policy struct {
	th       entity.Thresholds
	analyzer *UncertaintyAnalyzer
}

// NewPolicy creates a policy with the given bounds.
func NewPolicy(th entity.Thresholds) *Policy {
	return &Policy{th: th, analyzer: NewUncertaintyAnalyzer(th)}
}

// Decide builds the verdict. probs and labels are ignored when the quality gate failed.
// An error means the classifier output is unusable, never that the image was bad.
func (p *Policy) Decide(quality entity.QualityVerdict, probs entity.Probabilities, labels []string) (*entity.ClassificationVerdict, error) {
	if !quality.Passed {
		return &entity.ClassificationVerdict{
			IsValid:     false,
			IsUnrelated: true,
			Message:     fmt.Sprintf("Invalid image: %s. Please upload a clear photo of the municipal issue.", quality.Reason),
			Predictions: []entity.Prediction{},
		}, nil
	}

	if len(probs) == 0 || len(probs) != len(labels) {
		return nil, fmt.Errorf("%w: %d probabilities for %d classes", entity.ErrInvalidProbabilities, len(probs), len(labels))
	}
	for i, prob := range probs {
		if math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 {
			return nil, fmt.Errorf("%w: class %d has probability %v", entity.ErrInvalidProbabilities, i, prob)
		}
	}

	topIndex := Argmax(probs)
	confidence := probs[topIndex]
	topClass := labels[topIndex]

	u := p.analyzer.Analyze(probs)
	valid := confidence >= p.th.ConfidenceThreshold && !u.IsUnrelated

	v := &entity.ClassificationVerdict{
		IsValid:     valid,
		IsUnrelated: u.IsUnrelated,
		Confidence:  confidence,
		Entropy:     u.Entropy,
		Message:     p.message(u, valid, topClass, confidence),
		Predictions: p.rank(probs, labels),
	}
	if !u.IsUnrelated {
		v.ClassName = &topClass
	}
	if valid {
		if code, ok := entity.IssueCode(topClass); ok {
			v.IssueType = &code
		}
	}
	return v, nil
}

func (p *Policy) message(u entity.UncertaintyVerdict, valid bool, topClass string, confidence float64) string {
	switch {
	case u.IsUnrelated:
		return fmt.Sprintf("This image doesn't appear to show a municipal issue. Reason: %s. "+
			"Please upload a clear photo of the issue (pothole, garbage, vandalism, etc.).", u.Reason)
	case !valid:
		return fmt.Sprintf("Unable to confidently classify this image (%.0f%% confidence). "+
			"The image may not clearly show a municipal issue. "+
			"Please upload a clearer image or select the issue type manually.", confidence*100)
	case confidence < p.th.WarningThreshold:
		return fmt.Sprintf("Detected as '%s' with %.0f%% confidence. Please confirm this is the correct issue type.", topClass, confidence*100)
	default:
		return fmt.Sprintf("Detected as '%s' with %.0f%% confidence.", topClass, confidence*100)
	}
}

// rank pairs every class with its probability, highest first. Equal
// probabilities keep class index order.
func (p *Policy) rank(probs entity.Probabilities, labels []string) []entity.Prediction {
	out := make([]entity.Prediction, len(probs))
	for i, prob := range probs {
		out[i] = entity.Prediction{ClassName: labels[i], Probability: prob}
		if code, ok := entity.IssueCode(labels[i]); ok {
			out[i].IssueType = &code
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	if len(out) > p.th.TopPredictions {
		out = out[:p.th.TopPredictions]
	}
	return out
}

// Argmax returns the index of the largest value; the first one wins on ties.
func Argmax(probs entity.Probabilities) int {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}
