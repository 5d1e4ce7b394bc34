package models

import "fmt"

// CorrelationMatrix is a symmetric pairwise similarity matrix over a
// candidate slate, entries in [0,1] with unit diagonal.
type CorrelationMatrix struct {
	Size    int         `json:"size"`
	Entries [][]float64 `json:"entries"`
}

// NewCorrelationMatrix allocates an identity matrix of the given size.
func NewCorrelationMatrix(size int) CorrelationMatrix {
	entries := make([][]float64, size)
	for i := range entries {
		entries[i] = make([]float64, size)
		entries[i][i] = 1.0
	}
	return CorrelationMatrix{Size: size, Entries: entries}
}

// Set stores a pairwise correlation symmetrically.
func (m CorrelationMatrix) Set(i, j int, v float64) {
	m.Entries[i][j] = v
	m.Entries[j][i] = v
}

// Get returns the correlation between slate positions i and j.
func (m CorrelationMatrix) Get(i, j int) float64 {
	return m.Entries[i][j]
}

// Validate checks symmetry, range and unit diagonal.
func (m CorrelationMatrix) Validate() error {
	for i := 0; i < m.Size; i++ {
		if m.Entries[i][i] != 1.0 {
			return fmt.Errorf("correlation diagonal at %d is %f, want 1.0", i, m.Entries[i][i])
		}
		for j := 0; j < m.Size; j++ {
			v := m.Entries[i][j]
			if v < 0 || v > 1 {
				return fmt.Errorf("correlation [%d][%d] = %f out of [0,1]", i, j, v)
			}
			if m.Entries[j][i] != v {
				return fmt.Errorf("correlation matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
	return nil
}

// Portfolio is a selected bundle of tickets with its diversity diagnostics.
type Portfolio struct {
	Tickets []TicketEvaluation `json:"tickets"`
	// TotalScore is the plain sum of the selected tickets' scores.
	TotalScore float64 `json:"total_score"`
	// PenalizedScore subtracts the pairwise correlation penalty the greedy
	// selector optimized.
	PenalizedScore float64 `json:"penalized_score"`
	// MeanCorrelation is the average pairwise ticket correlation across the
	// selection, reported for operator visibility.
	MeanCorrelation float64 `json:"mean_correlation"`
}
