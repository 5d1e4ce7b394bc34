// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for calibration
// administration and ticket decisions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogCurveActivation logs a calibration curve activation, including the
// curve it displaced so rollbacks can be traced.
func (al *AuditLogger) LogCurveActivation(curveID, replacedID, outcome, leagueID, modelVersion string, sampleCount int, activatedAt time.Time) {
	al.WithFields(logrus.Fields{
		"curve_id":      curveID,
		"replaced_id":   replacedID,
		"outcome":       outcome,
		"league_id":     leagueID,
		"model_version": modelVersion,
		"sample_count":  sampleCount,
		"activated_at":  activatedAt.Unix(),
	}).Info("Calibration curve activated")
}

// LogTemperatureUpdate logs a newly learned softening temperature.
func (al *AuditLogger) LogTemperatureUpdate(value, fittedLogLoss float64, sampleCount int) {
	al.WithFields(logrus.Fields{
		"temperature":     value,
		"fitted_log_loss": fittedLogLoss,
		"sample_count":    sampleCount,
	}).Info("Temperature setting updated")
}

// LogTicketDecision logs an accept/reject decision for a candidate ticket.
func (al *AuditLogger) LogTicketDecision(ticketID string, accepted bool, score float64, contradictions int, reason string) {
	al.WithFields(logrus.Fields{
		"ticket_id":      ticketID,
		"accepted":       accepted,
		"score":          score,
		"contradictions": contradictions,
		"reason":         reason,
	}).Info("Ticket decision recorded")
}

// LogThresholdUpdate logs a re-estimated acceptance threshold.
func (al *AuditLogger) LogThresholdUpdate(oldThreshold, newThreshold float64, sampleCount int) {
	al.WithFields(logrus.Fields{
		"old_threshold": oldThreshold,
		"new_threshold": newThreshold,
		"sample_count":  sampleCount,
	}).Info("Acceptance threshold re-estimated")
}

// LogEntropyStatus logs the entropy monitor's rolling health snapshot.
func (al *AuditLogger) LogEntropyStatus(status string, mean, p10, p90 float64, count int) {
	entry := al.WithFields(logrus.Fields{
		"status": status,
		"mean":   mean,
		"p10":    p10,
		"p90":    p90,
		"count":  count,
	})
	if status == "critical" {
		entry.Warn("Entropy monitor critical")
		return
	}
	entry.Info("Entropy monitor status")
}
