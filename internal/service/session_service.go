package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"personalization-service/internal/adaptive"
	"personalization-service/internal/event"
	"personalization-service/internal/generator"
	"personalization-service/internal/prefs"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrItemOutOfRange  = errors.New("item index out of range")
	ErrAlreadyAnswered = errors.New("item already answered")
	ErrBadOptionIndex  = errors.New("selected option index out of range")
)

// PlaySession is one content-consumption session: a generated batch
// plus its own feedback controller.
type PlaySession struct {
	ID        string             `json:"id"`
	Category  generator.Category `json:"category"`
	Seed      int64              `json:"seed"`
	Items     []generator.Item   `json:"items"`
	Answered  int                `json:"answered"`
	Correct   int                `json:"correct"`
	CreatedAt time.Time          `json:"created_at"`

	controller *adaptive.Controller
	answered   []bool
}

// AnswerResult is returned to the caller after an outcome is recorded.
type AnswerResult struct {
	Correct      bool             `json:"correct"`
	CorrectIndex int              `json:"correct_index"`
	Explanation  string           `json:"explanation,omitempty"`
	Adaptive     adaptive.Outcome `json:"adaptive"`
}

// SessionService creates play sessions from the current snapshot and
// routes answer outcomes into the feedback controller.
type SessionService struct {
	store       *prefs.Store
	gen         *generator.Generator
	adaptiveCfg adaptive.Config
	sink        event.Sink
	log         *zap.Logger
	seedFn      func() int64

	mu       sync.RWMutex
	sessions map[string]*PlaySession
}

func NewSessionService(store *prefs.Store, gen *generator.Generator, adaptiveCfg adaptive.Config, sink event.Sink, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	return &SessionService{
		store:       store,
		gen:         gen,
		adaptiveCfg: adaptiveCfg,
		sink:        sink,
		log:         log,
		seedFn:      func() int64 { return time.Now().UnixNano() },
		sessions:    make(map[string]*PlaySession),
	}
}

// WithSeedFunc overrides the per-session seed source. Used by tests to
// make whole sessions reproducible.
func (s *SessionService) WithSeedFunc(fn func() int64) *SessionService {
	s.seedFn = fn
	return s
}

// CreateSession generates a batch for the given category using the
// current snapshot. An empty category falls back to the first topic in
// the user's topic focus; a non-positive count falls back to the
// items_per_session preference.
func (s *SessionService) CreateSession(category string, count int) (*PlaySession, error) {
	snap := s.store.Current()

	if category == "" {
		topics := snap.StringSet("topic_focus")
		if len(topics) == 0 {
			return nil, fmt.Errorf("%w: no category given and topic focus is empty", generator.ErrInvalidRequest)
		}
		category = topics[0]
	}
	if count <= 0 {
		count = int(snap.Int("items_per_session"))
	}

	req := generator.Request{
		Category:             generator.Category(category),
		Difficulty:           generator.DifficultyTier(snap.String("difficulty_tier")),
		Grade:                generator.GradeTier(snap.String("grade_tier")),
		ComplexityMultiplier: snap.Float("complexity_multiplier"),
		Count:                count,
		Seed:                 s.seedFn(),
	}
	items, err := s.gen.Generate(req)
	if err != nil {
		return nil, err
	}

	sess := &PlaySession{
		ID:        uuid.NewString(),
		Category:  req.Category,
		Seed:      req.Seed,
		Items:     items,
		CreatedAt: time.Now().UTC(),
		answered:  make([]bool, len(items)),
	}
	if snap.Bool("adaptive_difficulty_enabled") {
		sess.controller = adaptive.NewController(s.adaptiveCfg, s.store, s.sink, s.log)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.sink.Emit(event.TypeSessionCreated, map[string]any{
		"session_id": sess.ID,
		"category":   string(sess.Category),
		"count":      len(items),
	})
	return sess, nil
}

// GetSession returns a session by id.
func (s *SessionService) GetSession(id string) (*PlaySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SubmitAnswer records one outcome: correctness is checked against the
// generated item and fed into the session's feedback controller, which
// may in turn adjust the difficulty tier for subsequent sessions.
func (s *SessionService) SubmitAnswer(sessionID string, itemIndex, selectedIndex int) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if itemIndex < 0 || itemIndex >= len(sess.Items) {
		return nil, ErrItemOutOfRange
	}
	if selectedIndex < 0 || selectedIndex >= len(sess.Items[itemIndex].Options) {
		return nil, ErrBadOptionIndex
	}
	if sess.answered[itemIndex] {
		return nil, ErrAlreadyAnswered
	}
	sess.answered[itemIndex] = true
	sess.Answered++

	item := sess.Items[itemIndex]
	correct := selectedIndex == item.CorrectIndex
	if correct {
		sess.Correct++
	}

	var outcome adaptive.Outcome
	if sess.controller != nil {
		outcome = sess.controller.RecordOutcome(correct)
	} else {
		outcome = adaptive.Outcome{Correct: correct, Tier: s.store.Current().String("difficulty_tier")}
	}

	s.sink.Emit(event.TypeSessionAnswer, map[string]any{
		"session_id":   sessionID,
		"item_index":   itemIndex,
		"correct":      correct,
		"tier_changed": outcome.TierChanged,
	})

	result := &AnswerResult{
		Correct:      correct,
		CorrectIndex: item.CorrectIndex,
		Adaptive:     outcome,
	}
	if s.store.Current().Bool("show_explanations") {
		result.Explanation = item.Explanation
	}
	return result, nil
}
