package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

func TestEntropy(t *testing.T) {
	tests := []struct {
		name     string
		probs    models.OutcomeProbabilities
		expected float64
	}{
		{
			"uniform split is maximal",
			models.OutcomeProbabilities{Home: 1.0 / 3, Draw: 1.0 / 3, Away: 1.0 / 3},
			math.Log2(3),
		},
		{
			"certain outcome has zero entropy",
			models.OutcomeProbabilities{Home: 1, Draw: 0, Away: 0},
			0,
		},
		{
			"two-way coin flip",
			models.OutcomeProbabilities{Home: 0.5, Draw: 0, Away: 0.5},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Entropy(tt.probs), 1e-12)
		})
	}
}

func TestNormalizedEntropyBounds(t *testing.T) {
	uniform := models.OutcomeProbabilities{Home: 1.0 / 3, Draw: 1.0 / 3, Away: 1.0 / 3}
	assert.InDelta(t, 1.0, NormalizedEntropy(uniform), 1e-12)

	skewed := models.OutcomeProbabilities{Home: 0.85, Draw: 0.10, Away: 0.05}
	ne := NormalizedEntropy(skewed)
	assert.Greater(t, ne, 0.0)
	assert.Less(t, ne, 0.5)
}
