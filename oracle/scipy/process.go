// Package scipy provides an oracle backed by scipy.special, driven as a
// long-lived Python subprocess.
//
// The helper script reads one JSON request per line on stdin and answers with
// one JSON reply per line on stdout. Floating-point values travel as shortest
// round-trip decimal strings in both directions so that NaN and infinities
// survive the trip and no digits are lost.
//
// # Usage
//
//	p, err := scipy.Start(ctx, scipy.WithPython("python3"))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	h, err := p.Complex(ctx, oracle.Hankel1, 0.5, complex(0.3, -0.2), false)
package scipy

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

//go:embed oracle.py
var helperScript string

// DefaultPython is the interpreter used when WithPython is not given.
const DefaultPython = "python3"

// Option configures the subprocess.
type Option func(*config)

type config struct {
	python string
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		python: DefaultPython,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithPython sets the interpreter executable.
func WithPython(path string) Option {
	return func(c *config) {
		if path != "" {
			c.python = path
		}
	}
}

// WithLogger sets the logger receiving backend warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Process is a running helper script. It implements oracle.Oracle through
// the embedded Client.
type Process struct {
	*Client

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
}

// Start launches the helper script. Cancelling ctx kills the subprocess.
func Start(ctx context.Context, opts ...Option) (*Process, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// #nosec G204 -- interpreter path is operator-controlled, script is embedded.
	cmd := exec.CommandContext(ctx, cfg.python, "-u", "-c", helperScript)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("scipy: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("scipy: stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("scipy: start %s: %w", cfg.python, err)
	}
	cfg.logger.Debug("oracle started", "python", cfg.python, "pid", cmd.Process.Pid)

	return &Process{
		Client: NewClient(stdout, stdin, cfg.logger),
		cmd:    cmd,
		stdin:  stdin,
		stderr: &stderr,
	}, nil
}

// Close ends the helper script and waits for it to exit.
func (p *Process) Close() error {
	closeErr := p.stdin.Close()
	if err := p.cmd.Wait(); err != nil {
		msg := strings.TrimSpace(p.stderr.String())
		if msg != "" {
			return fmt.Errorf("scipy: helper exited: %w: %s", err, msg)
		}
		return fmt.Errorf("scipy: helper exited: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("scipy: close stdin: %w", closeErr)
	}
	return nil
}

