// Package ladder derives runs of consecutive orders from a starting order.
//
// A ladder steps away from zero: non-negative starts climb (ν, ν+1, ν+2, …)
// and negative starts descend (ν, ν−1, ν−2, …). Each rung records the signed
// step so the effective order can be rebuilt from the (start, step) pair that
// ends up in the output tables.
package ladder

import (
	"errors"
	"math"
)

// DefaultRunLength is the number of consecutive orders per starting order.
const DefaultRunLength = 3

// ErrRunLength is returned when a ladder of fewer than one rung is requested.
var ErrRunLength = errors.New("ladder: run length must be >= 1")

// Rung is one effective order on a ladder.
type Rung struct {
	Step  int     // j for non-negative starts, -j for negative starts
	Order float64 // effective order passed to the oracle
}

// Direction returns +1 for start >= 0 and -1 otherwise.
func Direction(start float64) int {
	if start >= 0 {
		return 1
	}
	return -1
}

// EffectiveOrder rebuilds the order evaluated for a signed step.
// The step sign is ignored; the direction always follows the start.
func EffectiveOrder(start float64, step int) float64 {
	if step < 0 {
		step = -step
	}
	return start + float64(Direction(start)*step)
}

// IsInteger reports whether nu has no fractional part.
func IsInteger(nu float64) bool {
	if math.IsInf(nu, 0) || math.IsNaN(nu) {
		return false
	}
	return math.Trunc(nu) == nu
}

// New returns the n rungs starting at start.
func New(start float64, n int) ([]Rung, error) {
	if n < 1 {
		return nil, ErrRunLength
	}

	dir := Direction(start)
	rungs := make([]Rung, n)
	for j := range n {
		rungs[j] = Rung{
			Step:  dir * j,
			Order: start + float64(dir*j),
		}
	}
	return rungs, nil
}
