package monitor

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyMonitorIsHealthy(t *testing.T) {
	m := NewEntropyMonitor(10, 0, 0)
	snap := m.Snapshot()
	assert.Equal(t, StatusOK, snap.Status)
	assert.Equal(t, 0, snap.Count)
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"healthy uncertainty", 0.60, StatusOK},
		{"at the warning threshold", 0.45, StatusOK},
		{"drifting confident", 0.40, StatusWarning},
		{"at the critical threshold", 0.35, StatusWarning},
		{"overconfident", 0.30, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEntropyMonitor(10, 0, 0)
			for i := 0; i < 5; i++ {
				m.Record(tt.value)
			}
			snap := m.Snapshot()
			assert.Equal(t, tt.expected, snap.Status)
			assert.InDelta(t, tt.value, snap.Mean, 1e-12)
			assert.Equal(t, 5, snap.Count)
		})
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	m := NewEntropyMonitor(3, 0, 0)
	m.Record(0.20)
	m.Record(0.20)
	m.Record(0.20)
	// three more observations push the confident batch out entirely
	m.Record(0.60)
	m.Record(0.60)
	m.Record(0.60)

	snap := m.Snapshot()
	assert.Equal(t, 3, snap.Count)
	assert.InDelta(t, 0.60, snap.Mean, 1e-12)
	assert.Equal(t, StatusOK, snap.Status)
}

func TestNaNObservationsDropped(t *testing.T) {
	m := NewEntropyMonitor(10, 0, 0)
	m.Record(0.50)
	m.Record(math.NaN())
	m.Record(0.70)

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.Count)
	assert.InDelta(t, 0.60, snap.Mean, 1e-12)
}

func TestPercentiles(t *testing.T) {
	m := NewEntropyMonitor(20, 0, 0)
	for i := 0; i <= 10; i++ {
		m.Record(float64(i) / 10.0) // 0.0 .. 1.0
	}

	snap := m.Snapshot()
	assert.InDelta(t, 0.1, snap.P10, 1e-12)
	assert.InDelta(t, 0.9, snap.P90, 1e-12)
	assert.LessOrEqual(t, snap.P10, snap.Mean)
	assert.LessOrEqual(t, snap.Mean, snap.P90)
}

func TestDefaultsAppliedOnNonPositiveArguments(t *testing.T) {
	m := NewEntropyMonitor(0, -1, -1)
	assert.Equal(t, DefaultWindowSize, m.size)
	assert.Equal(t, DefaultWarningThreshold, m.warning)
	assert.Equal(t, DefaultCriticalThreshold, m.critical)
}

func TestConcurrentRecording(t *testing.T) {
	m := NewEntropyMonitor(100, 0, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Record(0.5)
				m.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, 100, snap.Count)
	assert.InDelta(t, 0.5, snap.Mean, 1e-12)
}
