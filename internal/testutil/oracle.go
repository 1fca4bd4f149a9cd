package testutil

import (
	"context"
	"sync"

	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
)

// Call records one oracle invocation.
type Call struct {
	Fn     oracle.Function
	Order  float64
	Arg    complex128
	Scaled bool
	Real   bool
}

// FakeOracle is a deterministic stand-in for the numerical library. Its
// values are cheap closed forms that differ per function, order, argument
// and scaling, and its real-argument calls follow the branch-cut rule.
//
// Hooks replace the default behavior to inject faults.
type FakeOracle struct {
	ComplexHook func(fn oracle.Function, nu float64, z complex128, scaled bool) (complex128, error)
	RealHook    func(fn oracle.Function, nu, x float64, scaled bool) (float64, error)

	mu    sync.Mutex
	calls []Call
}

var _ oracle.Oracle = (*FakeOracle)(nil)

// FakeComplexValue is the default complex-call value.
func FakeComplexValue(fn oracle.Function, nu float64, z complex128, scaled bool) complex128 {
	scale := 1.0
	if scaled {
		scale = 0.5
	}
	return complex(nu+10*float64(fn), -nu) + z*complex(scale, float64(fn))
}

// FakeRealValue is the default real-call value where it is defined.
func FakeRealValue(fn oracle.Function, nu, x float64, scaled bool) float64 {
	return real(FakeComplexValue(fn, nu, complex(x, 0), scaled))
}

// Complex implements oracle.Oracle.
func (f *FakeOracle) Complex(_ context.Context, fn oracle.Function, nu float64, z complex128, scaled bool) (complex128, error) {
	f.record(Call{Fn: fn, Order: nu, Arg: z, Scaled: scaled})
	if f.ComplexHook != nil {
		return f.ComplexHook(fn, nu, z, scaled)
	}
	return FakeComplexValue(fn, nu, z, scaled), nil
}

// Real implements oracle.Oracle.
func (f *FakeOracle) Real(_ context.Context, fn oracle.Function, nu, x float64, scaled bool) (float64, error) {
	f.record(Call{Fn: fn, Order: nu, Arg: complex(x, 0), Scaled: scaled, Real: true})
	if f.RealHook != nil {
		return f.RealHook(fn, nu, x, scaled)
	}
	if !ladder.IsInteger(nu) && x < 0 {
		return 0, oracle.NewError(oracle.ClassDomain, fn, nu, "branch cut")
	}
	return FakeRealValue(fn, nu, x, scaled), nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeOracle) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeOracle) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}
