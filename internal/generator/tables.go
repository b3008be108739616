package generator

import "math"

// gradeAdjustments scales the base range by grade tier. The elementary
// tier is the baseline with an adjustment of exactly 1.0.
var gradeAdjustments = map[GradeTier]float64{
	GradePreK:            0.3,
	GradeKindergarten:    0.5,
	GradeEarlyElementary: 0.7,
	GradeElementary:      1.0,
	GradeUpperElementary: 1.2,
	GradeMiddleSchool:    1.5,
	GradeHighSchool:      1.8,
}

// floorMinimums keeps operands above an age-appropriate floor even at
// the lowest difficulty.
var floorMinimums = map[GradeTier]int{
	GradePreK:            1,
	GradeKindergarten:    2,
	GradeEarlyElementary: 5,
	GradeElementary:      10,
	GradeUpperElementary: 20,
	GradeMiddleSchool:    40,
	GradeHighSchool:      75,
}

// baseRanges is the operand range before grade and complexity scaling.
var baseRanges = map[Category]map[DifficultyTier]int{
	CategoryAddition: {
		TierRelaxed: 6, TierNormal: 12, TierChallenge: 25, TierExpert: 60,
	},
	CategorySubtraction: {
		TierRelaxed: 6, TierNormal: 12, TierChallenge: 25, TierExpert: 60,
	},
	CategoryMultiplication: {
		TierRelaxed: 4, TierNormal: 8, TierChallenge: 12, TierExpert: 20,
	},
	CategoryDivision: {
		TierRelaxed: 4, TierNormal: 8, TierChallenge: 12, TierExpert: 20,
	},
	CategoryCounting: {
		TierRelaxed: 5, TierNormal: 10, TierChallenge: 20, TierExpert: 40,
	},
}

type rangeBand struct {
	Min, Max int
}

// rangeBands clamps the scaled range to a per-category band.
var rangeBands = map[Category]rangeBand{
	CategoryAddition:       {Min: 4, Max: 200},
	CategorySubtraction:    {Min: 4, Max: 200},
	CategoryMultiplication: {Min: 2, Max: 30},
	CategoryDivision:       {Min: 2, Max: 30},
	CategoryCounting:       {Min: 3, Max: 120},
}

// phraseSet holds the question templates for one grade tier. Template
// choice is a pure lookup; no randomness.
type phraseSet struct {
	add   string
	sub   string
	mul   string
	div   string
	count string
}

var phrasings = map[GradeTier]phraseSet{
	GradePreK: {
		add:   "If you have %d and get %d more, how many do you have?",
		sub:   "You have %d and give away %d. How many are left?",
		mul:   "How many is %d groups of %d?",
		div:   "Share %d into groups of %d. How many groups?",
		count: "What number comes right after %d?",
	},
	GradeKindergarten: {
		add:   "If you have %d and get %d more, how many do you have?",
		sub:   "You have %d and give away %d. How many are left?",
		mul:   "How many is %d groups of %d?",
		div:   "Share %d into groups of %d. How many groups?",
		count: "What number comes right after %d?",
	},
	GradeEarlyElementary: {
		add:   "What do you get when you add %d and %d?",
		sub:   "What do you get when you take %[2]d away from %[1]d?",
		mul:   "What do you get when you multiply %d by %d?",
		div:   "How many times does %[2]d fit into %[1]d?",
		count: "What number comes right after %d?",
	},
	GradeElementary: {
		add:   "What is %d + %d?",
		sub:   "What is %d - %d?",
		mul:   "What is %d × %d?",
		div:   "What is %d ÷ %d?",
		count: "What is the next number after %d?",
	},
	GradeUpperElementary: {
		add:   "What is %d + %d?",
		sub:   "What is %d - %d?",
		mul:   "What is %d × %d?",
		div:   "What is %d ÷ %d?",
		count: "What is the successor of %d?",
	},
	GradeMiddleSchool: {
		add:   "Compute %d + %d.",
		sub:   "Compute %d - %d.",
		mul:   "Compute %d × %d.",
		div:   "Compute %d ÷ %d.",
		count: "What is the successor of %d?",
	},
	GradeHighSchool: {
		add:   "Evaluate %d + %d.",
		sub:   "Evaluate %d - %d.",
		mul:   "Evaluate %d × %d.",
		div:   "Evaluate %d ÷ %d.",
		count: "What is the successor of %d?",
	},
}

// GradeAdjustment returns the scaling factor for a grade tier, or 0 for
// an unknown tier.
func GradeAdjustment(grade GradeTier) float64 {
	return gradeAdjustments[grade]
}

// FloorMinimum returns the operand floor for a grade tier.
func FloorMinimum(grade GradeTier) int {
	return floorMinimums[grade]
}

// EffectiveRange computes the operand range for a request:
// round(baseRange × multiplier × gradeAdjustment), clamped to the
// category band.
func EffectiveRange(cat Category, tier DifficultyTier, grade GradeTier, multiplier float64) int {
	base := baseRanges[cat][tier]
	r := int(math.Round(float64(base) * multiplier * gradeAdjustments[grade]))
	band := rangeBands[cat]
	if r < band.Min {
		r = band.Min
	}
	if r > band.Max {
		r = band.Max
	}
	return r
}

func validCategory(c Category) bool {
	_, ok := baseRanges[c]
	return ok
}

func validDifficulty(t DifficultyTier) bool {
	switch t {
	case TierRelaxed, TierNormal, TierChallenge, TierExpert:
		return true
	}
	return false
}

func validGrade(g GradeTier) bool {
	_, ok := gradeAdjustments[g]
	return ok
}
