// Package service wires the probability, calibration, and decision stages
// into the pipelines the scheduler and CLIs drive.
package service

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/metrics"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// CurveCache keeps active calibration curves in memory so the prediction
// path does not hit the database per fixture. Entries expire on TTL and are
// invalidated explicitly on curve activation.
type CurveCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// negativeEntry marks a scope known to have no active curve, so misses are
// also cached instead of re-querying every prediction.
type negativeEntry struct{}

// NewCurveCache creates a curve cache with the given TTL.
func NewCurveCache(ttl time.Duration) *CurveCache {
	return &CurveCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns the cached curve for a scope. The second return value reports
// whether the scope was cached at all; a cached nil means "no active curve".
func (cc *CurveCache) Get(scope models.CurveScope) (*models.CalibrationCurve, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	entry, found := cc.cache.Get(scope.String())
	if !found {
		cc.missCount++
		return nil, false
	}
	cc.hitCount++

	if _, negative := entry.(negativeEntry); negative {
		return nil, true
	}
	curve, ok := entry.(*models.CalibrationCurve)
	if !ok {
		return nil, false
	}
	return curve, true
}

// Set caches a curve for its scope. A nil curve records a negative entry.
func (cc *CurveCache) Set(scope models.CurveScope, curve *models.CalibrationCurve) {
	if curve == nil {
		cc.cache.Set(scope.String(), negativeEntry{}, cc.ttl)
	} else {
		cc.cache.Set(scope.String(), curve, cc.ttl)
	}
	metrics.CurveCacheSize.Set(float64(cc.cache.ItemCount()))
}

// Invalidate drops the cached entry for a scope. Called on activation so the
// next prediction picks up the new curve immediately.
func (cc *CurveCache) Invalidate(scope models.CurveScope) {
	cc.cache.Delete(scope.String())
	metrics.CurveCacheSize.Set(float64(cc.cache.ItemCount()))
}

// Flush clears the cache.
func (cc *CurveCache) Flush() {
	cc.cache.Flush()
	cc.mu.Lock()
	cc.hitCount = 0
	cc.missCount = 0
	cc.mu.Unlock()
	metrics.CurveCacheSize.Set(0)
}

// Stats returns hit/miss counts and the hit ratio.
func (cc *CurveCache) Stats() (hits, misses uint64, ratio float64) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	hits = cc.hitCount
	misses = cc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}
