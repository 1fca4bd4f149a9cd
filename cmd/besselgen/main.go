// Command besselgen writes the reference test-vector tables for the complex
// Hankel functions and the modified Bessel function of the first kind.
//
// Usage:
//
//	besselgen [flags] [pipeline ...]
//
// Without arguments it runs every pipeline (zbesh, zbesi). Values are
// computed by scipy.special in a Python subprocess; the random seed is fixed,
// so two runs against the same scipy produce byte-identical files.
//
// Examples:
//
//	besselgen -out testdata
//	besselgen -out testdata zbesi
//	besselgen -out testdata -check
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cwbudde/algo-besseldata/oracle"
	"github.com/cwbudde/algo-besseldata/oracle/scipy"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
	"github.com/cwbudde/algo-besseldata/vectors/manifest"
	"github.com/cwbudde/algo-besseldata/vectors/pipeline"
	"github.com/cwbudde/algo-besseldata/vectors/sampling"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

const (
	exitSuccess  = 0
	exitInvalid  = 2
	exitInternal = 10
)

// startOracle launches the evaluation backend. Tests replace it.
var startOracle = func(ctx context.Context, python string, logger *slog.Logger) (oracle.Oracle, func() error, error) {
	p, err := scipy.Start(ctx, scipy.WithPython(python), scipy.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	out     string
	python  string
	check   bool
	verbose bool
	specs   []pipeline.Spec
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("besselgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.out, "out", ".", "output directory")
	fs.StringVar(&opts.python, "python", scipy.DefaultPython, "Python interpreter with scipy installed")
	fs.BoolVar(&opts.check, "check", false, "regenerate in memory and compare with the files in -out")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: besselgen [flags] [pipeline ...]\n\n")
		fmt.Fprintf(stderr, "Writes Bessel/Hankel reference tables. Pipelines:")
		for _, s := range pipeline.Specs() {
			fmt.Fprintf(stderr, " %s", s.Name)
		}
		fmt.Fprintf(stderr, "\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() == 0 {
		opts.specs = pipeline.Specs()
		return opts, nil
	}
	seen := map[string]bool{}
	for _, name := range fs.Args() {
		spec, ok := pipeline.Lookup(name)
		if !ok {
			return options{}, fmt.Errorf("unknown pipeline: %s", name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		opts.specs = append(opts.specs, spec)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitInvalid
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	files, err := generate(ctx, opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitInternal
	}

	if opts.check {
		return check(opts.out, files, stdout, stderr)
	}

	if err := pipeline.WriteFiles(opts.out, files); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitInternal
	}
	for _, f := range files {
		fmt.Fprintln(stdout, filepath.Join(opts.out, f.Name))
	}
	return exitSuccess
}

// generate runs the selected pipelines against one backend and returns the
// tables followed by the manifest.
func generate(ctx context.Context, opts options, logger *slog.Logger) (files []pipeline.File, err error) {
	o, closeOracle, err := startOracle(ctx, opts.python, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeOracle(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, spec := range opts.specs {
		res, err := pipeline.Generate(ctx, spec, o,
			pipeline.WithSeed(sampling.DefaultSeed),
			pipeline.WithRunLength(ladder.DefaultRunLength),
			pipeline.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		fs, err := res.Files()
		if err != nil {
			return nil, err
		}
		files = append(files, fs...)
	}

	m, err := manifest.Build(sampling.DefaultSeed, ladder.DefaultRunLength, files)
	if err != nil {
		return nil, err
	}
	logger.Info("run complete", "runID", m.RunID, "files", len(m.Files))
	mf, err := m.File()
	if err != nil {
		return nil, err
	}
	return append(files, mf), nil
}

// check compares files with their counterparts in dir.
func check(dir string, files []pipeline.File, stdout, stderr io.Writer) int {
	drift := 0
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintf(stdout, "missing %s\n", path)
			drift++
		case err != nil:
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitInternal
		case !bytes.Equal(data, f.Data):
			fmt.Fprintf(stdout, "differs %s%s\n", path, describeDrift(f, data))
			drift++
		}
	}
	if drift > 0 {
		fmt.Fprintf(stderr, "%d of %d files out of date\n", drift, len(files))
		return exitInvalid
	}
	fmt.Fprintf(stdout, "%d files up to date\n", len(files))
	return exitSuccess
}

// describeDrift summarizes how the bytes on disk differ from a table.
func describeDrift(f pipeline.File, data []byte) string {
	if f.Table == nil {
		return ""
	}
	got, err := table.Read(bytes.NewReader(data), f.Name, f.Table.Kind)
	if err != nil {
		return " (unparseable: " + err.Error() + ")"
	}
	if got.Len() != f.Table.Len() {
		return fmt.Sprintf(" (%d rows, want %d)", got.Len(), f.Table.Len())
	}
	return " (values differ)"
}
