package table

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Read parses a table the way downstream consumers do: lines starting with
// '#' are skipped and every other non-empty line is split on whitespace (or
// commas) into floats. The step column must hold an integer.
func Read(r io.Reader, name string, kind Kind) (*Table, error) {
	if kind != Complex && kind != Real {
		return nil, errUnknownKind
	}
	want := len(kind.Columns())

	t := New(name, kind)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		if len(fields) != want {
			return nil, fmt.Errorf("table: %s line %d: %d columns, want %d", name, line, len(fields), want)
		}

		vals := make([]float64, want)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("table: %s line %d column %d: %w", name, line, i+1, err)
			}
			vals[i] = v
		}

		step := vals[1]
		if step != math.Trunc(step) || math.Abs(step) > math.MaxInt32 {
			return nil, fmt.Errorf("table: %s line %d: step %v is not an integer", name, line, step)
		}

		tc := TestCase{Order: vals[0], Step: int(step)}
		if kind == Real {
			tc.Arg = complex(vals[2], 0)
			tc.Value = complex(vals[3], 0)
		} else {
			tc.Arg = complex(vals[2], vals[3])
			tc.Value = complex(vals[4], vals[5])
		}
		t.Rows = append(t.Rows, tc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("table: read %s: %w", name, err)
	}
	return t, nil
}
