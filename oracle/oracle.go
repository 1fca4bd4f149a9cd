// Package oracle defines the contract of the numerical library that supplies
// reference values for the test vectors.
//
// The oracle is a black box: it evaluates the Hankel functions of the first
// and second kind and the modified Bessel function of the first kind for a
// real order and a complex (or real) argument, optionally exponentially
// scaled. Nothing in this module computes those functions itself.
//
// Domain errors are reported through an explicit error value instead of a
// NaN sentinel. A real-argument call at a branch-cut point (non-integer order
// and a negative argument) fails with an error matching ErrDomain:
//
//	v, err := o.Real(ctx, oracle.BesselI, 0.5, -0.4, false)
//	if errors.Is(err, oracle.ErrDomain) {
//	    // expected: the point lies on the branch cut
//	}
package oracle

import (
	"context"
	"fmt"
)

// Function identifies a special function family.
type Function int

const (
	// Hankel1 is the Hankel function of the first kind H1(ν, z).
	// The scaled form is H1(ν, z)·exp(−iz).
	Hankel1 Function = iota

	// Hankel2 is the Hankel function of the second kind H2(ν, z).
	// The scaled form is H2(ν, z)·exp(iz).
	Hankel2

	// BesselI is the modified Bessel function of the first kind I(ν, z).
	// The scaled form is I(ν, z)·exp(−|Re z|).
	BesselI
)

// String returns the name the oracle backend uses for the function.
func (f Function) String() string {
	switch f {
	case Hankel1:
		return "hankel1"
	case Hankel2:
		return "hankel2"
	case BesselI:
		return "iv"
	default:
		return fmt.Sprintf("Function(%d)", int(f))
	}
}

// Valid reports whether f names a known function.
func (f Function) Valid() bool {
	return f >= Hankel1 && f <= BesselI
}

// Oracle evaluates special functions.
type Oracle interface {
	// Complex evaluates fn(nu, z), or its scaled form when scaled is set.
	// Points on a branch cut are evaluated like any other point.
	Complex(ctx context.Context, fn Function, nu float64, z complex128, scaled bool) (complex128, error)

	// Real evaluates fn(nu, x) for a real argument. It fails with ErrDomain
	// where the real-valued function is undefined and with ErrNotReal when
	// the backend produced a complex-typed result.
	Real(ctx context.Context, fn Function, nu, x float64, scaled bool) (float64, error)
}
