package probability

import (
	"math"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// maxEntropy3 is log2(3), the entropy of a uniform three-way distribution.
var maxEntropy3 = math.Log2(3)

// Entropy returns the Shannon entropy (base 2) of a three-way distribution.
// Zero-probability components contribute nothing.
func Entropy(p models.OutcomeProbabilities) float64 {
	h := 0.0
	for _, v := range []float64{p.Home, p.Draw, p.Away} {
		if v > 0 {
			h -= v * math.Log2(v)
		}
	}
	return h
}

// NormalizedEntropy rescales Entropy to [0,1], where 1 is the uniform split.
func NormalizedEntropy(p models.OutcomeProbabilities) float64 {
	return Entropy(p) / maxEntropy3
}
