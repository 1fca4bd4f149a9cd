package pipeline

import (
	"errors"

	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
)

// ErrUnexpectedValue is returned when the oracle produced a value for a
// real-argument call on the branch cut, where a domain error is required.
var ErrUnexpectedValue = errors.New("pipeline: oracle returned a value on the branch cut")

// OnBranchCut reports whether the real-argument functions are undefined for
// ladders starting at start with argument x: a non-integer order on the
// negative real axis. Every rung of a ladder shares the integer-ness of its
// start, so the start decides for the whole ladder.
func OnBranchCut(start, x float64) bool {
	return !ladder.IsInteger(start) && x < 0
}

// admitReal applies the branch-cut rule to the outcome of a real-argument
// oracle call. On the cut the call must have failed with oracle.ErrDomain and
// the row is dropped; off the cut any error is fatal.
func admitReal(start, x float64, callErr error) (bool, error) {
	if OnBranchCut(start, x) {
		switch {
		case errors.Is(callErr, oracle.ErrDomain):
			return false, nil
		case callErr != nil:
			return false, callErr
		default:
			return false, ErrUnexpectedValue
		}
	}
	if callErr != nil {
		return false, callErr
	}
	return true, nil
}
