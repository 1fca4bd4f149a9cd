// Package table holds generated test cases and reads and writes them as
// delimited text tables.
//
// A table file starts with a single comment line naming the columns followed
// by one row per test case:
//
//	# nu j zr zi cyr cyi
//	0 0 0.37 -0.82 1.02 -0.31
//
// Real-argument tables drop the imaginary columns (`# nu j z cy`). Numbers
// use the shortest decimal form that round-trips to the same float64.
package table

import (
	"errors"
	"fmt"
)

// Kind distinguishes complex-argument from real-argument tables.
type Kind int

const (
	// Complex tables carry nu j zr zi cyr cyi.
	Complex Kind = iota

	// Real tables carry nu j z cy.
	Real
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Complex:
		return "complex"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Columns returns the column names of a table of this kind.
func (k Kind) Columns() []string {
	if k == Real {
		return []string{"nu", "j", "z", "cy"}
	}
	return []string{"nu", "j", "zr", "zi", "cyr", "cyi"}
}

var (
	errUnknownKind = errors.New("table: unknown kind")
	errRealImag    = errors.New("table: real table row has an imaginary part")
)

// TestCase is one row of a table.
type TestCase struct {
	Order float64    // starting order of the ladder
	Step  int        // signed step; see ladder.EffectiveOrder
	Arg   complex128 // sampled argument; imaginary part is zero in real tables
	Value complex128 // oracle value; imaginary part is zero in real tables
}

// Table is an ordered list of test cases destined for one file.
type Table struct {
	Name string // file name, e.g. "zbesh1_test.txt"
	Kind Kind
	Rows []TestCase
}

// New creates an empty table.
func New(name string, kind Kind) *Table {
	return &Table{Name: name, Kind: kind}
}

// Append adds a row. Real tables reject rows with imaginary parts.
func (t *Table) Append(tc TestCase) error {
	switch t.Kind {
	case Complex:
	case Real:
		if imag(tc.Arg) != 0 || imag(tc.Value) != 0 {
			return fmt.Errorf("%w: %s row %d", errRealImag, t.Name, len(t.Rows))
		}
	default:
		return errUnknownKind
	}
	t.Rows = append(t.Rows, tc)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Values splits the oracle values into real and imaginary parts.
func (t *Table) Values() (re, im []float64) {
	re = make([]float64, len(t.Rows))
	im = make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		re[i] = real(r.Value)
		im[i] = imag(r.Value)
	}
	return re, im
}
