package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"issue-classifier/internal/domain/entity"
)

func TestAnalyze_UniformIsUnrelatedByEntropy(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	probs := make(entity.Probabilities, 9)
	for i := range probs {
		probs[i] = 1.0 / 9
	}

	v := a.Analyze(probs)
	require.True(t, v.IsUnrelated)
	require.InDelta(t, math.Log(9), v.Entropy, 1e-9)
	require.Contains(t, v.Reason, "High uncertainty (entropy: 2.20)")
}

func TestAnalyze_DominantClassIsRelated(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	probs := entity.Probabilities{0.95}
	for i := 0; i < 8; i++ {
		probs = append(probs, 0.05/8)
	}

	v := a.Analyze(probs)
	require.False(t, v.IsUnrelated)
	require.Empty(t, v.Reason)
	require.Less(t, v.Entropy, 0.5)
}

func TestAnalyze_LowTopProbability(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	v := a.Analyze(entity.Probabilities{0.45, 0.40, 0.15, 0, 0, 0, 0, 0, 0})
	require.True(t, v.IsUnrelated)
	require.Equal(t, "Low confidence (45%)", v.Reason)
}

func TestAnalyze_AmbiguousTopTwo(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	v := a.Analyze(entity.Probabilities{0.05, 0.40, 0.55, 0, 0, 0, 0, 0, 0})
	require.True(t, v.IsUnrelated)
	require.Equal(t, "Ambiguous classification (top two: 55% vs 40%)", v.Reason)
}

func TestAnalyze_AllZeroIsUnrelatedWithoutDividing(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	v := a.Analyze(make(entity.Probabilities, 9))
	require.True(t, v.IsUnrelated)
	require.Equal(t, "Low confidence (0%)", v.Reason)
	require.False(t, math.IsNaN(v.Entropy))
}

func TestAnalyze_Empty(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	v := a.Analyze(nil)
	require.True(t, v.IsUnrelated)
	require.Zero(t, v.Entropy)
}

func TestAnalyze_NaN(t *testing.T) {
	a := NewUncertaintyAnalyzer(entity.DefaultThresholds())
	v := a.Analyze(entity.Probabilities{math.NaN(), math.NaN()})
	require.True(t, v.IsUnrelated)
}

func TestAnalyze_ThresholdsAreConfigurable(t *testing.T) {
	th := entity.DefaultThresholds()
	th.MaxEntropy = 3
	a := NewUncertaintyAnalyzer(th)

	probs := make(entity.Probabilities, 9)
	for i := range probs {
		probs[i] = 1.0 / 9
	}
	v := a.Analyze(probs)
	require.True(t, v.IsUnrelated)
	require.Contains(t, v.Reason, "Low confidence")

	th.MaxSecondaryRatio = 0.8
	v = NewUncertaintyAnalyzer(th).Analyze(entity.Probabilities{0.55, 0.40, 0.05})
	require.False(t, v.IsUnrelated)
}

func TestEntropy_Certain(t *testing.T) {
	require.InDelta(t, 0, Entropy(entity.Probabilities{1, 0, 0}, 1e-10), 1e-8)
	require.InDelta(t, math.Log(2), Entropy(entity.Probabilities{0.5, 0.5}, 1e-10), 1e-9)
}
