package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func TestEffectiveRangeScaling(t *testing.T) {
	tests := []struct {
		name       string
		category   Category
		tier       DifficultyTier
		grade      GradeTier
		multiplier float64
		want       int
	}{
		{
			name:       "normal addition for early elementary",
			category:   CategoryAddition,
			tier:       TierNormal,
			grade:      GradeEarlyElementary,
			multiplier: 1.0,
			want:       8, // round(12 * 1.0 * 0.7)
		},
		{
			name:       "elementary baseline leaves the base range unchanged",
			category:   CategoryAddition,
			tier:       TierNormal,
			grade:      GradeElementary,
			multiplier: 1.0,
			want:       12,
		},
		{
			name:       "tiny product clamps to the category minimum",
			category:   CategoryMultiplication,
			tier:       TierRelaxed,
			grade:      GradePreK,
			multiplier: 0.5,
			want:       2, // round(4 * 0.5 * 0.3) = 1, band min 2
		},
		{
			name:       "huge product clamps to the category maximum",
			category:   CategoryAddition,
			tier:       TierExpert,
			grade:      GradeHighSchool,
			multiplier: 3.0,
			want:       200, // round(60 * 3.0 * 1.8) = 324, band max 200
		},
		{
			name:       "half rounds away from zero",
			category:   CategoryCounting,
			tier:       TierRelaxed,
			grade:      GradeElementary,
			multiplier: 0.9,
			want:       5, // round(5 * 0.9) = round(4.5)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveRange(tt.category, tt.tier, tt.grade, tt.multiplier)
			if got != tt.want {
				t.Errorf("EffectiveRange() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGradeAdjustmentElementaryIsBaseline(t *testing.T) {
	if adj := GradeAdjustment(GradeElementary); adj != 1.0 {
		t.Fatalf("GradeAdjustment(elementary) = %g, want exactly 1.0", adj)
	}
}

func TestGenerateValidation(t *testing.T) {
	valid := Request{
		Category:             CategoryAddition,
		Difficulty:           TierNormal,
		Grade:                GradeElementary,
		ComplexityMultiplier: 1.0,
		Count:                5,
		Seed:                 1,
	}

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"unknown category", func(r *Request) { r.Category = "geometry" }},
		{"unknown difficulty tier", func(r *Request) { r.Difficulty = "tier9" }},
		{"unknown grade tier", func(r *Request) { r.Grade = "college" }},
		{"zero multiplier", func(r *Request) { r.ComplexityMultiplier = 0 }},
		{"negative multiplier", func(r *Request) { r.ComplexityMultiplier = -1.5 }},
		{"zero count", func(r *Request) { r.Count = 0 }},
		{"count over batch limit", func(r *Request) { r.Count = maxBatchSize + 1 }},
	}

	g := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if _, err := g.Generate(req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Generate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}

	if _, err := g.Generate(valid); err != nil {
		t.Fatalf("Generate() with valid request failed: %v", err)
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	g := New(nil, nil)
	req := Request{
		Category:             CategoryMultiplication,
		Difficulty:           TierChallenge,
		Grade:                GradeMiddleSchool,
		ComplexityMultiplier: 1.2,
		Count:                10,
		Seed:                 42,
	}

	first, err := g.Generate(req)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	second, err := g.Generate(req)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two Generate() calls with the same request produced different batches")
	}

	req.Seed = 43
	other, err := g.Generate(req)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if reflect.DeepEqual(first, other) {
		t.Error("changing the seed produced an identical batch")
	}
}

func TestGenerateOperandsRespectFloorAndRange(t *testing.T) {
	g := New(nil, nil)
	// effective range 8, floor 5: operands must land in [5, 13].
	req := Request{
		Category:             CategoryAddition,
		Difficulty:           TierNormal,
		Grade:                GradeEarlyElementary,
		ComplexityMultiplier: 1.0,
		Count:                20,
	}

	for seed := int64(0); seed < 50; seed++ {
		req.Seed = seed
		items, err := g.Generate(req)
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		for _, item := range items {
			var a, b, sum int
			if _, err := fmt.Sscanf(item.Explanation, "%d + %d = %d", &a, &b, &sum); err != nil {
				t.Fatalf("unparseable explanation %q: %v", item.Explanation, err)
			}
			if a < 5 || a > 13 || b < 5 || b > 13 {
				t.Errorf("seed %d: operands %d, %d outside [5, 13]", seed, a, b)
			}
			if sum != a+b {
				t.Errorf("seed %d: explanation says %d + %d = %d", seed, a, b, sum)
			}
		}
	}
}

func TestGenerateOptionIntegrity(t *testing.T) {
	g := New(nil, nil)
	categories := []Category{
		CategoryAddition,
		CategorySubtraction,
		CategoryMultiplication,
		CategoryDivision,
		CategoryCounting,
	}

	for _, cat := range categories {
		for seed := int64(0); seed < 25; seed++ {
			req := Request{
				Category:             cat,
				Difficulty:           TierNormal,
				Grade:                GradeElementary,
				ComplexityMultiplier: 1.0,
				Count:                4,
				Seed:                 seed,
			}
			items, err := g.Generate(req)
			if err != nil {
				t.Fatalf("Generate(%s) failed: %v", cat, err)
			}
			for _, item := range items {
				if len(item.Options) != 4 {
					t.Fatalf("%s seed %d: got %d options, want 4", cat, seed, len(item.Options))
				}
				if item.CorrectIndex < 0 || item.CorrectIndex > 3 {
					t.Fatalf("%s seed %d: correct index %d out of range", cat, seed, item.CorrectIndex)
				}
				want := answerFromExplanation(t, cat, item.Explanation)
				if item.Options[item.CorrectIndex] != fmt.Sprint(want) {
					t.Errorf("%s seed %d: option %q at correct index, want %d",
						cat, seed, item.Options[item.CorrectIndex], want)
				}
				if !item.DegradedQuality {
					seen := map[string]bool{}
					for _, opt := range item.Options {
						if seen[opt] {
							t.Errorf("%s seed %d: duplicate option %q without degraded flag", cat, seed, opt)
						}
						seen[opt] = true
					}
				}
			}
		}
	}
}

func answerFromExplanation(t *testing.T, cat Category, expl string) int {
	t.Helper()
	var a, b, result int
	var err error
	switch cat {
	case CategoryAddition:
		_, err = fmt.Sscanf(expl, "%d + %d = %d", &a, &b, &result)
	case CategorySubtraction:
		_, err = fmt.Sscanf(expl, "%d - %d = %d", &a, &b, &result)
		if err == nil && a-b != result {
			t.Fatalf("explanation %q is arithmetically wrong", expl)
		}
		if err == nil && result < 0 {
			t.Fatalf("explanation %q has a negative result", expl)
		}
	case CategoryMultiplication:
		_, err = fmt.Sscanf(expl, "%d × %d = %d", &a, &b, &result)
	case CategoryDivision:
		_, err = fmt.Sscanf(expl, "%d ÷ %d = %d", &a, &b, &result)
		if err == nil && result*b != a {
			t.Fatalf("explanation %q does not divide evenly", expl)
		}
	case CategoryCounting:
		_, err = fmt.Sscanf(expl, "%d comes right after %d", &result, &a)
	}
	if err != nil {
		t.Fatalf("unparseable %s explanation %q: %v", cat, expl, err)
	}
	return result
}

func TestDrawDistractorsNearOneAlwaysDegrades(t *testing.T) {
	// Around correct=1 only two positive non-answer candidates exist, so
	// three unique distractors are impossible whatever the rng does.
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		_, unique := drawDistractors(rng, 1)
		if unique {
			t.Fatalf("seed %d: three unique distractors around 1 should be impossible", seed)
		}
	}
}

func TestDrawDistractorsStayPositiveAndDistinctFromAnswer(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		correct := 100
		out, unique := drawDistractors(rng, correct)
		for _, v := range out {
			if v <= 0 {
				t.Errorf("seed %d: non-positive distractor %d", seed, v)
			}
		}
		if !unique {
			continue
		}
		seen := map[int]bool{correct: true}
		for _, v := range out {
			if seen[v] {
				t.Errorf("seed %d: duplicate %d despite unique flag", seed, v)
			}
			seen[v] = true
		}
	}
}
