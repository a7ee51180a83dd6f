// Package score provides the token quality-score collaborator. The production
// model is external; this implementation honours only its contract: a
// deterministic, bounded score per mint.
package score

import "hash/fnv"

// Deterministic maps each mint to a fixed value in [Min, Max).
type Deterministic struct {
	Min float64
	Max float64
}

// NewDeterministic returns a scorer over the given half-open range.
func NewDeterministic(min, max float64) *Deterministic {
	if max <= min {
		max = min + 1
	}
	return &Deterministic{Min: min, Max: max}
}

// Score hashes the mint and maps it uniformly into the configured range.
func (d *Deterministic) Score(mint string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(mint))
	frac := float64(h.Sum64()%1_000_000) / 1_000_000
	return d.Min + frac*(d.Max-d.Min)
}
