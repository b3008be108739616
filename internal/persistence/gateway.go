package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"personalization-service/internal/event"
	"personalization-service/internal/prefs"
)

// RetryConfig bounds the exponential backoff applied to failed durable
// writes.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFactor   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// Options configures a Gateway.
type Options struct {
	// Key is the backend key the snapshot is stored under.
	Key string

	// DebounceWindow is the idle period after which the latest pending
	// snapshot is durably written. Every ScheduleWrite restarts it.
	DebounceWindow time.Duration

	// CacheTTL bounds how long a read is served from memory before the
	// next read reconciles with durable storage.
	CacheTTL time.Duration

	Retry RetryConfig
}

func DefaultOptions() Options {
	return Options{
		Key:            "preferences:default",
		DebounceWindow: 500 * time.Millisecond,
		CacheTTL:       5 * time.Minute,
		Retry:          DefaultRetryConfig(),
	}
}

// Gateway is the debounced, retrying write-through/read-through cache
// between the preference store and the durable backend. Durability may
// lag the live session; it never rolls the session back.
type Gateway struct {
	backend Backend
	opts    Options
	log     *zap.Logger
	sink    event.Sink

	mu          sync.Mutex
	timer       *time.Timer
	timerSeq    uint64
	pending     *prefs.Snapshot
	cached      *prefs.Snapshot
	cachedAt    time.Time
	lastVersion int64
}

func NewGateway(backend Backend, opts Options, sink event.Sink, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultOptions().DebounceWindow
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.Key == "" {
		opts.Key = DefaultOptions().Key
	}
	return &Gateway{backend: backend, opts: opts, log: log, sink: sink}
}

// ScheduleWrite registers the snapshot for durable persistence after
// the debounce window. A newer call before expiry cancels the pending
// timer and supersedes the payload, so at most one durable write
// happens per idle period and it always reflects the latest state.
func (g *Gateway) ScheduleWrite(snap *prefs.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending = snap
	if snap.Version() > g.lastVersion {
		g.lastVersion = snap.Version()
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timerSeq++
	seq := g.timerSeq
	g.timer = time.AfterFunc(g.opts.DebounceWindow, func() { g.firePending(seq) })
}

func (g *Gateway) firePending(seq uint64) {
	g.mu.Lock()
	if seq != g.timerSeq {
		// Superseded by a newer ScheduleWrite.
		g.mu.Unlock()
		return
	}
	snap := g.pending
	g.pending = nil
	g.timer = nil
	g.mu.Unlock()

	if snap == nil {
		return
	}
	g.persist(snap)
}

// Flush forces a pending debounced write immediately. Used on shutdown.
func (g *Gateway) Flush(ctx context.Context) error {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.timerSeq++
	snap := g.pending
	g.pending = nil
	g.mu.Unlock()

	if snap == nil {
		return nil
	}
	return g.writeWithRetry(ctx, snap)
}

func (g *Gateway) persist(snap *prefs.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = g.writeWithRetry(ctx, snap)
}

func (g *Gateway) writeWithRetry(ctx context.Context, snap *prefs.Snapshot) error {
	data, err := prefs.MarshalSnapshot(snap)
	if err != nil {
		g.log.Error("snapshot marshal failed", zap.Error(err))
		return err
	}

	backoff := g.opts.Retry.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= g.opts.Retry.MaxAttempts; attempt++ {
		lastErr = g.backend.Set(ctx, g.opts.Key, data)
		if lastErr == nil {
			g.mu.Lock()
			g.cached = snap
			g.cachedAt = time.Now()
			g.mu.Unlock()
			g.log.Debug("snapshot persisted",
				zap.Int64("version", snap.Version()),
				zap.Int("attempt", attempt))
			return nil
		}
		if attempt == g.opts.Retry.MaxAttempts {
			break
		}
		g.sink.Emit(event.TypePersistenceRetry, map[string]any{
			"attempt": attempt,
			"version": snap.Version(),
			"error":   lastErr.Error(),
		})
		sleep := backoff
		if g.opts.Retry.JitterFactor > 0 {
			sleep += time.Duration(rand.Float64() * g.opts.Retry.JitterFactor * float64(backoff))
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
		backoff = time.Duration(float64(backoff) * g.opts.Retry.BackoffFactor)
		if backoff > g.opts.Retry.MaxBackoff {
			backoff = g.opts.Retry.MaxBackoff
		}
	}

	// Durability lags; the live session is not rolled back.
	g.sink.Emit(event.TypePersistenceExhausted, map[string]any{
		"attempts": g.opts.Retry.MaxAttempts,
		"version":  snap.Version(),
		"error":    lastErr.Error(),
	})
	g.log.Error("durable write failed after retries",
		zap.Int64("version", snap.Version()),
		zap.Int("attempts", g.opts.Retry.MaxAttempts),
		zap.Error(lastErr))
	return fmt.Errorf("durable write: %w", lastErr)
}

// Read returns the stored snapshot. Within the cache TTL it is served
// from memory without touching the backend. A durable value older than
// the last version seen in memory loses to the in-memory value
// (last-writer-wins by version, not wall clock).
func (g *Gateway) Read(ctx context.Context) (*prefs.Snapshot, error) {
	g.mu.Lock()
	if g.cached != nil && time.Since(g.cachedAt) < g.opts.CacheTTL {
		snap := g.cached
		g.mu.Unlock()
		return snap, nil
	}
	g.mu.Unlock()

	data, err := g.backend.Get(ctx, g.opts.Key)
	if errors.Is(err, ErrNotFound) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if best := g.best(nil); best != nil {
			return best, nil
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("durable read: %w", err)
	}

	decoded, err := prefs.UnmarshalSnapshot(data)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	best := g.best(decoded)
	if best != decoded {
		g.sink.Emit(event.TypePersistenceReconcile, map[string]any{
			"durable_version":   decoded.Version(),
			"in_memory_version": best.Version(),
		})
	} else {
		g.cached = decoded
		if decoded.Version() > g.lastVersion {
			g.lastVersion = decoded.Version()
		}
	}
	g.cachedAt = time.Now()
	return best, nil
}

// best resolves between the durable value and the last value known to
// be written (the cache); the higher version wins. The pending
// debounced payload is deliberately not consulted: until the window
// fires, reads reflect the pre-write state. Caller holds g.mu.
func (g *Gateway) best(durable *prefs.Snapshot) *prefs.Snapshot {
	if g.cached != nil && (durable == nil || g.cached.Version() > durable.Version()) {
		return g.cached
	}
	return durable
}
