package repository

import (
	"fmt"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
)

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Calibration:   NewPostgresCalibrationRepository(db),
		PredictionLog: NewPostgresPredictionLogRepository(db),
		SettledTicket: NewPostgresSettledTicketRepository(db),
	}, nil
}
