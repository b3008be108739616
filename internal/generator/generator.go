package generator

import (
	"fmt"
	"math/rand"
	"strconv"

	"go.uber.org/zap"

	"personalization-service/internal/event"
)

const maxBatchSize = 100

// Generator builds item batches. Generation itself is a pure function
// of the request; the logger and sink are only used to report
// non-fatal degraded-quality fallbacks, so concurrent Generate calls
// are safe.
type Generator struct {
	log  *zap.Logger
	sink event.Sink
}

func New(log *zap.Logger, sink event.Sink) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = event.NopSink{}
	}
	return &Generator{log: log, sink: sink}
}

// Generate produces req.Count items. The same request yields the same
// batch: all randomness is drawn from a local source seeded with
// req.Seed.
func (g *Generator) Generate(req Request) ([]Item, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	floor := floorMinimums[req.Grade]
	effRange := EffectiveRange(req.Category, req.Difficulty, req.Grade, req.ComplexityMultiplier)

	items := make([]Item, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		item := g.buildItem(rng, req, floor, effRange)
		if item.DegradedQuality {
			g.log.Warn("distractor budget exhausted, accepting duplicate",
				zap.String("category", string(req.Category)),
				zap.String("prompt", item.Prompt))
			g.sink.Emit(event.TypeGeneratorDegraded, map[string]any{
				"category":        string(req.Category),
				"difficulty_tier": string(req.Difficulty),
				"grade_tier":      string(req.Grade),
			})
		}
		items = append(items, item)
	}
	return items, nil
}

func validate(req Request) error {
	if !validCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, req.Category)
	}
	if !validDifficulty(req.Difficulty) {
		return fmt.Errorf("%w: unknown difficulty tier %q", ErrInvalidRequest, req.Difficulty)
	}
	if !validGrade(req.Grade) {
		return fmt.Errorf("%w: unknown grade tier %q", ErrInvalidRequest, req.Grade)
	}
	if req.ComplexityMultiplier <= 0 {
		return fmt.Errorf("%w: complexity multiplier must be positive, got %g", ErrInvalidRequest, req.ComplexityMultiplier)
	}
	if req.Count < 1 || req.Count > maxBatchSize {
		return fmt.Errorf("%w: count must be in [1, %d], got %d", ErrInvalidRequest, maxBatchSize, req.Count)
	}
	return nil
}

func (g *Generator) buildItem(rng *rand.Rand, req Request, floor, effRange int) Item {
	ps := phrasings[req.Grade]

	var prompt, explanation string
	var correct int

	a := floor + rng.Intn(effRange+1)
	b := floor + rng.Intn(effRange+1)

	switch req.Category {
	case CategoryAddition:
		correct = a + b
		prompt = fmt.Sprintf(ps.add, a, b)
		explanation = fmt.Sprintf("%d + %d = %d", a, b, correct)

	case CategorySubtraction:
		if b > a {
			a, b = b, a
		}
		correct = a - b
		prompt = fmt.Sprintf(ps.sub, a, b)
		explanation = fmt.Sprintf("%d - %d = %d", a, b, correct)

	case CategoryMultiplication:
		correct = a * b
		prompt = fmt.Sprintf(ps.mul, a, b)
		explanation = fmt.Sprintf("%d × %d = %d", a, b, correct)

	case CategoryDivision:
		divisorSpan := effRange
		if divisorSpan > 8 {
			divisorSpan = 8
		}
		divisor := 2 + rng.Intn(divisorSpan)
		quotient := floor + rng.Intn(effRange+1)
		dividend := quotient * divisor
		correct = quotient
		prompt = fmt.Sprintf(ps.div, dividend, divisor)
		explanation = fmt.Sprintf("%d ÷ %d = %d", dividend, divisor, correct)

	case CategoryCounting:
		correct = a + 1
		prompt = fmt.Sprintf(ps.count, a)
		explanation = fmt.Sprintf("%d comes right after %d", correct, a)
	}

	distractors, unique := drawDistractors(rng, correct)

	vals := [4]int{correct, distractors[0], distractors[1], distractors[2]}
	perm := rng.Perm(4)
	options := make([]string, 4)
	correctIndex := 0
	for i, p := range perm {
		options[i] = strconv.Itoa(vals[p])
		if p == 0 {
			correctIndex = i
		}
	}

	return Item{
		Prompt:          prompt,
		Options:         options,
		CorrectIndex:    correctIndex,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		Grade:           req.Grade,
		Explanation:     explanation,
		DegradedQuality: !unique,
	}
}
