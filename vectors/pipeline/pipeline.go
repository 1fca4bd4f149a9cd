// Package pipeline turns sampled orders and arguments into reference tables.
//
// A pipeline is a linear batch job: it seeds a fresh random source, draws the
// starting orders, walks each order ladder, samples arguments at its fixed
// granularity, evaluates every output through the oracle and applies the
// branch-cut rule to real-argument outputs. All tables are held in memory
// until the run completes, so a failed run never produces partial files.
//
// Two pipelines are defined, both drawing one argument per starting order:
//
//   - zbesh: H1 and H2, unscaled and scaled
//   - zbesi: I, unscaled and scaled, complex and real argument
//
// Consumers check a ladder by evaluating the whole order sequence at the
// argument of its current row, so every rung of a ladder shares one argument.
// For the real tables this also means the branch cut drops whole ladders.
//
// # Usage
//
//	res, err := pipeline.Generate(ctx, pipeline.Hankel(), o)
//	files, err := res.Files()
//	err = pipeline.WriteFiles(dir, files)
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
	"github.com/cwbudde/algo-besseldata/vectors/sampling"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

var (
	errNoOutputs       = errors.New("pipeline: spec has no outputs")
	errDuplicateOutput = errors.New("pipeline: duplicate output name")
)

// Output describes one generated table.
type Output struct {
	Name     string
	Function oracle.Function
	Scaled   bool
	Kind     table.Kind
}

// Spec describes a pipeline.
type Spec struct {
	Name        string
	Granularity sampling.Granularity
	Outputs     []Output
}

// Hankel returns the H1/H2 pipeline.
func Hankel() Spec {
	return Spec{
		Name:        "zbesh",
		Granularity: sampling.PerStart,
		Outputs: []Output{
			{Name: "zbesh1_test.txt", Function: oracle.Hankel1, Kind: table.Complex},
			{Name: "zbesh1_e_test.txt", Function: oracle.Hankel1, Scaled: true, Kind: table.Complex},
			{Name: "zbesh2_test.txt", Function: oracle.Hankel2, Kind: table.Complex},
			{Name: "zbesh2_e_test.txt", Function: oracle.Hankel2, Scaled: true, Kind: table.Complex},
		},
	}
}

// BesselI returns the modified Bessel I pipeline.
func BesselI() Spec {
	return Spec{
		Name:        "zbesi",
		Granularity: sampling.PerStart,
		Outputs: []Output{
			{Name: "zbesi_test.txt", Function: oracle.BesselI, Kind: table.Complex},
			{Name: "zbesi_e_test.txt", Function: oracle.BesselI, Scaled: true, Kind: table.Complex},
			{Name: "zbesi_real_test.txt", Function: oracle.BesselI, Kind: table.Real},
			{Name: "zbesi_e_real_test.txt", Function: oracle.BesselI, Scaled: true, Kind: table.Real},
		},
	}
}

// Specs returns every known pipeline in generation order.
func Specs() []Spec {
	return []Spec{Hankel(), BesselI()}
}

// Lookup returns the pipeline with the given name.
func Lookup(name string) (Spec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

func (s Spec) validate() error {
	if len(s.Outputs) == 0 {
		return errNoOutputs
	}
	seen := make(map[string]bool, len(s.Outputs))
	for _, o := range s.Outputs {
		if seen[o.Name] {
			return fmt.Errorf("%w: %s", errDuplicateOutput, o.Name)
		}
		seen[o.Name] = true
		if !o.Function.Valid() {
			return fmt.Errorf("pipeline: output %s: %w", o.Name, oracle.ErrUnsupported)
		}
	}
	return nil
}

// Option configures a run.
type Option func(*config)

type config struct {
	seed      int64
	runLength int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		seed:      sampling.DefaultSeed,
		runLength: ladder.DefaultRunLength,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// WithSeed overrides the random seed.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithRunLength sets the number of orders per starting order.
func WithRunLength(n int) Option {
	return func(c *config) {
		c.runLength = n
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
