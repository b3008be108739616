package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"personalization-service/internal/event"
	"personalization-service/internal/persistence"
	"personalization-service/internal/prefs"
)

// PreferenceService is the mutation entry point for external callers.
// It wraps the store with observability and owns the durable lifecycle
// (bootstrap at start, flush at shutdown).
type PreferenceService struct {
	store   *prefs.Store
	gateway *persistence.Gateway
	sink    event.Sink
	log     *zap.Logger
}

func NewPreferenceService(store *prefs.Store, gateway *persistence.Gateway, sink event.Sink, log *zap.Logger) *PreferenceService {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	return &PreferenceService{store: store, gateway: gateway, sink: sink, log: log}
}

// Bootstrap loads the initial snapshot: the last durable value, or the
// registry defaults when none exists. A failing backend degrades to
// defaults rather than blocking startup.
func Bootstrap(ctx context.Context, gateway *persistence.Gateway, log *zap.Logger) *prefs.Snapshot {
	snap, err := gateway.Read(ctx)
	if err == nil {
		log.Info("preferences loaded from durable storage", zap.Int64("version", snap.Version()))
		return snap
	}
	if errors.Is(err, persistence.ErrNotFound) {
		log.Info("no durable preferences found, using defaults")
	} else {
		log.Warn("durable read failed at startup, using defaults", zap.Error(err))
	}
	return prefs.DefaultSnapshot()
}

// Current returns the live snapshot.
func (s *PreferenceService) Current() *prefs.Snapshot {
	return s.store.Current()
}

// Apply mutates the preference set through the validated path.
// Validation failures are reported to the observability sink and
// returned to the caller; the store is unchanged.
func (s *PreferenceService) Apply(patch prefs.Patch) (*prefs.Snapshot, error) {
	snap, err := s.store.Mutate(patch)
	if err != nil {
		var verr *prefs.ValidationError
		if errors.As(err, &verr) {
			s.sink.Emit(event.TypeValidationFailed, map[string]any{
				"field":  verr.Field,
				"domain": verr.Domain,
				"reason": verr.Reason,
			})
		}
		return nil, err
	}
	return snap, nil
}

// AIContext exports the read-only projection of the AI-related fields
// for the external personalization service.
func (s *PreferenceService) AIContext() map[string]any {
	return s.store.Current().AIProjection()
}

// Shutdown forces any pending debounced write before the process
// exits.
func (s *PreferenceService) Shutdown(ctx context.Context) error {
	return s.gateway.Flush(ctx)
}
