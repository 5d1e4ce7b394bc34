package decision

import (
	"fmt"
	"math"
	"sort"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// Threshold re-estimation defaults.
const (
	DefaultBucketWidth      = 0.05
	DefaultMinBucketSamples = 30
)

// scoreBucket aggregates settled tickets whose scores fall in one interval.
type scoreBucket struct {
	lower float64
	count int
	wins  int
}

// EstimateScoreThreshold re-estimates the acceptance cutoff from historical
// settled tickets: tickets are bucketed by score, buckets thinner than
// minBucketSamples are ignored, and the cutoff chosen is the qualifying
// bucket lower bound maximizing the sample-weighted hit rate of all tickets
// at or above it.
//
// Returns models.ErrInsufficientData when no bucket qualifies.
func EstimateScoreThreshold(history []models.SettledTicket, bucketWidth float64, minBucketSamples int) (float64, error) {
	if bucketWidth <= 0 {
		bucketWidth = DefaultBucketWidth
	}
	if minBucketSamples <= 0 {
		minBucketSamples = DefaultMinBucketSamples
	}

	buckets := map[int]*scoreBucket{}
	for _, t := range history {
		if math.IsInf(t.Score, 0) || math.IsNaN(t.Score) {
			continue
		}
		idx := int(math.Floor(t.Score / bucketWidth))
		b, ok := buckets[idx]
		if !ok {
			b = &scoreBucket{lower: float64(idx) * bucketWidth}
			buckets[idx] = b
		}
		b.count++
		if t.Won {
			b.wins++
		}
	}

	qualified := make([]*scoreBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.count >= minBucketSamples {
			qualified = append(qualified, b)
		}
	}
	if len(qualified) == 0 {
		return 0, fmt.Errorf("%w: no score bucket reaches %d samples", models.ErrInsufficientData, minBucketSamples)
	}
	sort.Slice(qualified, func(i, j int) bool { return qualified[i].lower < qualified[j].lower })

	bestCutoff := qualified[0].lower
	bestHitRate := -1.0
	// Evaluate each qualifying bucket lower bound as a candidate cutoff.
	for i := range qualified {
		count, wins := 0, 0
		for _, b := range qualified[i:] {
			count += b.count
			wins += b.wins
		}
		hitRate := float64(wins) / float64(count)
		if hitRate > bestHitRate {
			bestHitRate = hitRate
			bestCutoff = qualified[i].lower
		}
	}
	return bestCutoff, nil
}
