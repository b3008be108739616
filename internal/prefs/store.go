package prefs

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Notifier receives every committed transition, synchronously, on the
// commit path. Implemented by the change broadcaster.
type Notifier interface {
	Notify(old, new *Snapshot)
}

// WriteScheduler receives the committed snapshot for durable
// persistence. Implemented by the persistence gateway; scheduling must
// be cheap since it runs on the commit path.
type WriteScheduler interface {
	ScheduleWrite(snap *Snapshot)
}

// Store is the single-writer holder of the current snapshot. Mutations
// are validated against the field registry and applied copy-on-write;
// concurrent mutation attempts are serialized, never merged. Reads are
// lock-free.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[Snapshot]
	notifier  Notifier
	scheduler WriteScheduler
	log       *zap.Logger
}

// NewStore creates a store seeded with the given snapshot (normally the
// last durable value, or DefaultSnapshot). Notifier and scheduler may
// be nil in tests.
func NewStore(initial *Snapshot, notifier Notifier, scheduler WriteScheduler, log *zap.Logger) *Store {
	if initial == nil {
		initial = DefaultSnapshot()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{notifier: notifier, scheduler: scheduler, log: log}
	s.current.Store(initial)
	return s
}

// Current returns the live snapshot reference. The snapshot is
// immutable and safe to share across goroutines.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Mutate validates the patch atomically and, on success, commits a new
// snapshot, notifies subscribers synchronously and schedules a durable
// write. On any validation failure the store is unchanged and a
// *ValidationError is returned.
func (s *Store) Mutate(patch Patch) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	old := s.current.Load()
	next := old.overlay(normalized)
	s.current.Store(next)

	s.log.Debug("preferences committed",
		zap.Int64("version", next.Version()),
		zap.Int("changed_fields", len(normalized)))

	// Subscribers observe versions in commit order because Notify runs
	// under the writer lock.
	if s.notifier != nil {
		s.notifier.Notify(old, next)
	}
	if s.scheduler != nil {
		s.scheduler.ScheduleWrite(next)
	}
	return next, nil
}
