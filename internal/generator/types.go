// Package generator produces batches of bounded, age-appropriate
// arithmetic items from an explicit parameter set derived from the
// preference snapshot. Generation is deterministic: the same request
// (including seed) always yields the same batch.
package generator

import "errors"

// ErrInvalidRequest is returned for requests outside the declared
// parameter domains.
var ErrInvalidRequest = errors.New("generator: invalid request")

// Category selects the kind of arithmetic item produced.
type Category string

const (
	CategoryAddition       Category = "addition"
	CategorySubtraction    Category = "subtraction"
	CategoryMultiplication Category = "multiplication"
	CategoryDivision       Category = "division"
	CategoryCounting       Category = "counting"
)

// DifficultyTier values mirror the "difficulty_tier" preference domain.
type DifficultyTier string

const (
	TierRelaxed   DifficultyTier = "tier0"
	TierNormal    DifficultyTier = "tier1"
	TierChallenge DifficultyTier = "tier2"
	TierExpert    DifficultyTier = "tier3"
)

// GradeTier values mirror the "grade_tier" preference domain, earliest
// to latest.
type GradeTier string

const (
	GradePreK            GradeTier = "pre_k"
	GradeKindergarten    GradeTier = "kindergarten"
	GradeEarlyElementary GradeTier = "early_elementary"
	GradeElementary      GradeTier = "elementary"
	GradeUpperElementary GradeTier = "upper_elementary"
	GradeMiddleSchool    GradeTier = "middle_school"
	GradeHighSchool      GradeTier = "high_school"
)

// Request parametrizes one batch. It is a pure value: nothing in it
// references UI or store state.
type Request struct {
	Category             Category
	Difficulty           DifficultyTier
	Grade                GradeTier
	ComplexityMultiplier float64
	Count                int
	Seed                 int64
}

// Item is one generated content item. Items are immutable and have no
// identity beyond the batch that produced them.
type Item struct {
	Prompt       string         `json:"prompt"`
	Options      []string       `json:"options"`
	CorrectIndex int            `json:"correct_index"`
	Category     Category       `json:"category"`
	Difficulty   DifficultyTier `json:"difficulty_tier"`
	Grade        GradeTier      `json:"grade_tier"`
	Explanation  string         `json:"explanation"`

	// DegradedQuality marks an item whose distractor uniqueness could
	// not be satisfied within the resample budget.
	DegradedQuality bool `json:"degraded_quality,omitempty"`
}
