package generator

import "math/rand"

// maxResampleAttempts bounds how often a colliding distractor is
// redrawn before a duplicate is accepted.
const maxResampleAttempts = 12

// drawDistractors produces three plausible wrong answers by perturbing
// the correct value with small deltas (within ±15% or a small integer
// offset, whichever is larger). Distractors equal to the correct value
// or to each other are resampled; once the budget is spent a duplicate
// is accepted rather than looping forever, and the second return value
// is false.
func drawDistractors(rng *rand.Rand, correct int) ([3]int, bool) {
	used := map[int]bool{correct: true}
	var out [3]int
	unique := true
	for i := 0; i < 3; i++ {
		v, ok := drawOne(rng, correct, used)
		if !ok {
			unique = false
		}
		out[i] = v
		used[v] = true
	}
	return out, unique
}

func drawOne(rng *rand.Rand, correct int, used map[int]bool) (int, bool) {
	span := correct * 15 / 100
	if span < 2 {
		span = 2
	}
	for attempt := 0; attempt < maxResampleAttempts; attempt++ {
		off := rng.Intn(2*span+1) - span
		if off == 0 {
			continue
		}
		v := correct + off
		if v <= 0 || used[v] {
			continue
		}
		return v, true
	}
	// Budget exhausted: return a positive candidate even if it
	// duplicates an earlier option.
	return correct + 1 + rng.Intn(span), false
}
