// Package event carries structured observability events out of the
// core: validation failures, persistence retries, degraded generation.
// Emission is fire-and-forget and never blocks the caller.
package event

import "go.uber.org/zap"

// Event types emitted by the core components.
const (
	TypePreferencesUpdated   = "preferences.updated"
	TypeValidationFailed     = "preferences.validation_failed"
	TypePersistenceRetry     = "persistence.retry"
	TypePersistenceExhausted = "persistence.retries_exhausted"
	TypePersistenceReconcile = "persistence.reconciled"
	TypeGeneratorDegraded    = "generator.degraded_quality"
	TypeTierRaised           = "adaptive.tier_raised"
	TypeTierLowered          = "adaptive.tier_lowered"
	TypeSessionCreated       = "session.created"
	TypeSessionAnswer        = "session.answer_submitted"
)

// Sink receives structured events. Implementations must not block.
type Sink interface {
	Emit(eventType string, payload map[string]any)
}

// LogSink writes events to the structured log. Used when RabbitMQ is
// not configured.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log.Named("events")}
}

func (s *LogSink) Emit(eventType string, payload map[string]any) {
	s.log.Info(eventType, zap.Any("payload", payload))
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(string, map[string]any) {}
