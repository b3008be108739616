// Package broadcast fans committed preference transitions out to
// registered subscribers: synchronous, registration-ordered, with
// per-subscriber fault isolation.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"personalization-service/internal/prefs"
)

// Callback receives both snapshots plus the set of changed field names
// so consumers can cheaply skip irrelevant updates. Callbacks run on
// the commit path and must not perform long-running work inline.
type Callback func(old, new *prefs.Snapshot, changed []string)

// Handle identifies a subscription for Unsubscribe.
type Handle string

type subscription struct {
	handle Handle
	cb     Callback
}

// Broadcaster delivers every commit to all subscribers exactly once,
// in registration order. It never coalesces; only the persistence
// gateway coalesces.
type Broadcaster struct {
	mu   sync.Mutex
	subs []subscription
	log  *zap.Logger
}

func New(log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{log: log}
}

// Subscribe registers a callback and returns its handle. Notification
// order follows registration order.
func (b *Broadcaster) Subscribe(cb Callback) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := Handle(uuid.NewString())
	b.subs = append(b.subs, subscription{handle: h, cb: cb})
	return h
}

// Unsubscribe removes a subscription. Unknown handles are ignored.
func (b *Broadcaster) Unsubscribe(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.handle == h {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Notify delivers one transition to every subscriber. A panicking
// subscriber is logged and skipped; delivery to the remaining
// subscribers continues and the commit is unaffected (it already
// happened). Invoked by the preference store only, under its writer
// lock, so subscribers observe versions in strictly increasing order.
func (b *Broadcaster) Notify(old, new *prefs.Snapshot) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	changed := prefs.Diff(old, new)
	for _, sub := range subs {
		b.deliver(sub, old, new, changed)
	}
}

func (b *Broadcaster) deliver(sub subscription, old, new *prefs.Snapshot, changed []string) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber panicked",
				zap.String("handle", string(sub.handle)),
				zap.Int64("version", new.Version()),
				zap.Any("panic", r))
		}
	}()
	sub.cb(old, new, changed)
}
