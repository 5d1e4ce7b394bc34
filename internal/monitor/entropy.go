// Package monitor tracks rolling normalized-entropy statistics over recent
// model outputs. It is a read-only diagnostic: it never alters
// probabilities, only reports drift for operator visibility.
package monitor

import (
	"math"
	"sort"
	"sync"
)

// Health statuses reported by the monitor.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Default thresholds and window size.
const (
	DefaultWindowSize        = 500
	DefaultWarningThreshold  = 0.45
	DefaultCriticalThreshold = 0.35
)

// Snapshot is the monitor's point-in-time view of the rolling window.
type Snapshot struct {
	Status string  `json:"status"`
	Mean   float64 `json:"mean"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
	Count  int     `json:"count"`
}

// EntropyMonitor keeps a bounded window of recent normalized-entropy
// observations. It is the only stateful component in the core; updates are
// mutex-serialized so a single instance may be shared across callers.
type EntropyMonitor struct {
	mu        sync.Mutex
	window    []float64
	next      int
	filled    bool
	size      int
	warning   float64
	critical  float64
}

// NewEntropyMonitor creates a monitor with the given window size and
// thresholds; non-positive arguments fall back to the defaults.
func NewEntropyMonitor(windowSize int, warningThreshold, criticalThreshold float64) *EntropyMonitor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if warningThreshold <= 0 {
		warningThreshold = DefaultWarningThreshold
	}
	if criticalThreshold <= 0 {
		criticalThreshold = DefaultCriticalThreshold
	}
	return &EntropyMonitor{
		window:   make([]float64, windowSize),
		size:     windowSize,
		warning:  warningThreshold,
		critical: criticalThreshold,
	}
}

// Record adds one normalized-entropy observation, evicting the oldest once
// the window is full. NaN observations are dropped.
func (m *EntropyMonitor) Record(normalizedEntropy float64) {
	if math.IsNaN(normalizedEntropy) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window[m.next] = normalizedEntropy
	m.next++
	if m.next == m.size {
		m.next = 0
		m.filled = true
	}
}

// Snapshot computes the rolling mean and 10th/90th percentiles and maps the
// mean onto a health status: critical below the critical threshold, warning
// below the warning threshold, ok otherwise.
func (m *EntropyMonitor) Snapshot() Snapshot {
	m.mu.Lock()
	var values []float64
	if m.filled {
		values = append(values, m.window...)
	} else {
		values = append(values, m.window[:m.next]...)
	}
	m.mu.Unlock()

	if len(values) == 0 {
		return Snapshot{Status: StatusOK}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sort.Float64s(values)
	snap := Snapshot{
		Mean:  mean,
		P10:   percentile(values, 0.10),
		P90:   percentile(values, 0.90),
		Count: len(values),
	}
	switch {
	case mean < m.critical:
		snap.Status = StatusCritical
	case mean < m.warning:
		snap.Status = StatusWarning
	default:
		snap.Status = StatusOK
	}
	return snap
}

// percentile interpolates linearly over sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
