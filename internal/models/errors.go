package models

import "errors"

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
	ErrInvalidID            = errors.New("invalid ID format")
	ErrInsufficientData     = errors.New("insufficient samples for fitting")
	ErrNoActiveCurve        = errors.New("no active calibration curve for scope")
	ErrInvalidOdds          = errors.New("market odds must be greater than 1.0")
	ErrInvalidOutcome       = errors.New("outcome must be one of H, D, A")
	ErrProbabilityInvariant = errors.New("outcome probabilities do not sum to one")
)
