package pipeline

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
	"github.com/cwbudde/algo-besseldata/vectors/sampling"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

// Result holds the tables of one completed run.
type Result struct {
	Spec      Spec
	Seed      int64
	RunLength int
	Starts    []float64

	// Tables and Excluded are parallel to Spec.Outputs. Excluded counts the
	// branch-cut rows dropped from a real table.
	Tables   []*table.Table
	Excluded []int
}

// Table returns the table with the given file name.
func (r *Result) Table(name string) (*table.Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Generate runs spec against o.
func Generate(ctx context.Context, spec Spec, o oracle.Oracle, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if cfg.runLength < 1 {
		return nil, ladder.ErrRunLength
	}

	src := sampling.NewSource(cfg.seed)
	res := newResult(spec, cfg)
	res.Starts = sampling.StartOrders(src)

	cfg.logger.Debug("pipeline started",
		"pipeline", spec.Name, "seed", cfg.seed, "runLength", cfg.runLength,
		"granularity", spec.Granularity.String(), "starts", res.Starts)

	for _, start := range res.Starts {
		rungs, err := ladder.New(start, cfg.runLength)
		if err != nil {
			return nil, err
		}

		var z complex128
		if spec.Granularity == sampling.PerStart {
			z = src.Argument()
		}
		for _, r := range rungs {
			if spec.Granularity == sampling.PerStep {
				z = src.Argument()
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("pipeline: %s: %w", spec.Name, err)
			}
			if err := res.evaluate(ctx, o, cfg, start, r, z); err != nil {
				return nil, err
			}
		}
	}

	for i, t := range res.Tables {
		cfg.logger.Info("table generated",
			"pipeline", spec.Name, "file", t.Name, "rows", t.Len(), "excluded", res.Excluded[i])
	}
	return res, nil
}

func newResult(spec Spec, cfg config) *Result {
	res := &Result{
		Spec:      spec,
		Seed:      cfg.seed,
		RunLength: cfg.runLength,
		Tables:    make([]*table.Table, len(spec.Outputs)),
		Excluded:  make([]int, len(spec.Outputs)),
	}
	for i, out := range spec.Outputs {
		res.Tables[i] = table.New(out.Name, out.Kind)
	}
	return res
}

// evaluate computes every output of the pipeline for one (order, argument)
// pair and appends the admitted rows.
func (r *Result) evaluate(ctx context.Context, o oracle.Oracle, cfg config, start float64, rung ladder.Rung, z complex128) error {
	for i, out := range r.Spec.Outputs {
		tc := table.TestCase{Order: start, Step: rung.Step}

		switch out.Kind {
		case table.Complex:
			v, err := o.Complex(ctx, out.Function, rung.Order, z, out.Scaled)
			if err != nil {
				return fmt.Errorf("pipeline: %s: nu=%g z=%v: %w", out.Name, rung.Order, z, err)
			}
			tc.Arg, tc.Value = z, v

		case table.Real:
			x := real(z)
			v, err := o.Real(ctx, out.Function, rung.Order, x, out.Scaled)
			keep, err := admitReal(start, x, err)
			if err != nil {
				return fmt.Errorf("pipeline: %s: nu=%g x=%g: %w", out.Name, rung.Order, x, err)
			}
			if !keep {
				r.Excluded[i]++
				cfg.logger.Debug("branch-cut row dropped",
					"file", out.Name, "nu", start, "j", rung.Step, "x", x)
				continue
			}
			tc.Arg, tc.Value = complex(x, 0), complex(v, 0)

		default:
			return fmt.Errorf("pipeline: %s: unknown table kind %v", out.Name, out.Kind)
		}

		if err := r.Tables[i].Append(tc); err != nil {
			return err
		}
	}
	return nil
}
