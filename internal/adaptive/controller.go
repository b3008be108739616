// Package adaptive closes the feedback loop: it consumes per-item
// answer outcomes and steers the difficulty tier through the normal
// validated preference mutation path. It has no privileged write
// access to the store.
package adaptive

import (
	"sync"

	"go.uber.org/zap"

	"personalization-service/internal/event"
	"personalization-service/internal/prefs"
)

// Config holds the streak thresholds for tier transitions.
type Config struct {
	// RaiseStreak is the consecutive-correct count that raises the
	// difficulty tier by one.
	RaiseStreak int

	// LowerStreak is the consecutive-incorrect count that lowers the
	// difficulty tier by one.
	LowerStreak int
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{RaiseStreak: 5, LowerStreak: 3}
}

// Store is the slice of the preference store the controller needs.
type Store interface {
	Current() *prefs.Snapshot
	Mutate(prefs.Patch) (*prefs.Snapshot, error)
}

// Outcome reports what a recorded answer did to the difficulty tier.
type Outcome struct {
	Correct     bool   `json:"correct"`
	TierChanged bool   `json:"tier_changed"`
	Tier        string `json:"difficulty_tier"`
}

// Controller tracks correct/incorrect streaks for one session. Each
// streak counter resets whenever the opposite outcome occurs; hitting
// a threshold issues a clamped tier mutation and resets the counter.
// There is no terminal state.
type Controller struct {
	cfg   Config
	store Store
	log   *zap.Logger
	sink  event.Sink

	mu                   sync.Mutex
	consecutiveCorrect   int
	consecutiveIncorrect int
}

func NewController(cfg Config, store Store, sink event.Sink, log *zap.Logger) *Controller {
	if cfg.RaiseStreak < 1 {
		cfg.RaiseStreak = DefaultConfig().RaiseStreak
	}
	if cfg.LowerStreak < 1 {
		cfg.LowerStreak = DefaultConfig().LowerStreak
	}
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	return &Controller{cfg: cfg, store: store, log: log, sink: sink}
}

// RecordOutcome feeds one answer outcome into the state machine and
// returns the resulting tier state.
func (c *Controller) RecordOutcome(correct bool) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if correct {
		c.consecutiveIncorrect = 0
		c.consecutiveCorrect++
		if c.consecutiveCorrect >= c.cfg.RaiseStreak {
			c.consecutiveCorrect = 0
			return c.shift(1)
		}
	} else {
		c.consecutiveCorrect = 0
		c.consecutiveIncorrect++
		if c.consecutiveIncorrect >= c.cfg.LowerStreak {
			c.consecutiveIncorrect = 0
			return c.shift(-1)
		}
	}
	return Outcome{Correct: correct, Tier: c.store.Current().String("difficulty_tier")}
}

// shift moves the tier by delta, clamped to the tier order. At either
// end the transition is a no-op but the counter reset above stands.
func (c *Controller) shift(delta int) Outcome {
	current := c.store.Current().String("difficulty_tier")
	idx := tierIndex(current)
	next := idx + delta
	if next < 0 || next >= len(prefs.TierOrder) || idx < 0 {
		return Outcome{Correct: delta > 0, Tier: current}
	}

	target := prefs.TierOrder[next]
	snap, err := c.store.Mutate(prefs.Patch{"difficulty_tier": target})
	if err != nil {
		// The mutation goes through the validated path; a rejection
		// here means the store is configured differently than the
		// controller expects.
		c.log.Warn("tier mutation rejected", zap.String("target", target), zap.Error(err))
		return Outcome{Correct: delta > 0, Tier: current}
	}

	eventType := event.TypeTierRaised
	if delta < 0 {
		eventType = event.TypeTierLowered
	}
	c.sink.Emit(eventType, map[string]any{
		"from":    current,
		"to":      target,
		"version": snap.Version(),
	})
	c.log.Info("difficulty tier changed",
		zap.String("from", current),
		zap.String("to", target))
	return Outcome{Correct: delta > 0, TierChanged: true, Tier: target}
}

func tierIndex(tier string) int {
	for i, t := range prefs.TierOrder {
		if t == tier {
			return i
		}
	}
	return -1
}
