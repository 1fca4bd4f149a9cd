package scipy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cwbudde/algo-besseldata/oracle"
)

const (
	kindReal    = "real"
	kindComplex = "complex"
)

type request struct {
	ID     int64  `json:"id"`
	Fn     string `json:"fn"`
	Nu     string `json:"nu"`
	Re     string `json:"re"`
	Im     string `json:"im"`
	Scaled bool   `json:"scaled"`
	Real   bool   `json:"real"`
}

type reply struct {
	ID       int64    `json:"id"`
	Kind     string   `json:"kind"`
	Re       string   `json:"re"`
	Im       string   `json:"im"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error"`
}

// Client speaks the line-delimited JSON protocol of the helper script over
// an arbitrary transport. Calls are serialized.
type Client struct {
	mu     sync.Mutex
	enc    *json.Encoder
	dec    *json.Decoder
	nextID int64
	logger *slog.Logger
}

var _ oracle.Oracle = (*Client)(nil)

// NewClient creates a client that reads replies from r and writes requests
// to w. A nil logger discards backend warnings.
func NewClient(r io.Reader, w io.Writer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		enc:    json.NewEncoder(w),
		dec:    json.NewDecoder(r),
		logger: logger,
	}
}

// Complex implements oracle.Oracle.
func (c *Client) Complex(ctx context.Context, fn oracle.Function, nu float64, z complex128, scaled bool) (complex128, error) {
	rep, err := c.call(ctx, fn, nu, z, scaled, false)
	if err != nil {
		return 0, err
	}

	re, im, err := parseParts(fn, nu, rep)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// Real implements oracle.Oracle. A NaN from the backend is reported as
// oracle.ErrDomain and a complex-typed reply as oracle.ErrNotReal.
func (c *Client) Real(ctx context.Context, fn oracle.Function, nu, x float64, scaled bool) (float64, error) {
	rep, err := c.call(ctx, fn, nu, complex(x, 0), scaled, true)
	if err != nil {
		return 0, err
	}

	if rep.Kind != kindReal {
		return 0, oracle.NewError(oracle.ClassShape, fn, nu,
			fmt.Sprintf("reply kind %q for x=%g", rep.Kind, x))
	}

	re, _, err := parseParts(fn, nu, rep)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(re) {
		return 0, oracle.NewError(oracle.ClassDomain, fn, nu, fmt.Sprintf("x=%g", x))
	}
	return re, nil
}

func (c *Client) call(ctx context.Context, fn oracle.Function, nu float64, z complex128, scaled, realArg bool) (reply, error) {
	if !fn.Valid() {
		return reply{}, oracle.NewError(oracle.ClassUnsupported, fn, nu, "")
	}
	if err := ctx.Err(); err != nil {
		return reply{}, oracle.Wrap(oracle.ClassTransport, fn, nu, "call cancelled", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := request{
		ID:     c.nextID,
		Fn:     fn.String(),
		Nu:     formatFloat(nu),
		Re:     formatFloat(real(z)),
		Im:     formatFloat(imag(z)),
		Scaled: scaled,
		Real:   realArg,
	}
	if err := c.enc.Encode(req); err != nil {
		return reply{}, oracle.Wrap(oracle.ClassTransport, fn, nu, "write request", err)
	}

	var rep reply
	if err := c.dec.Decode(&rep); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return reply{}, oracle.Wrap(oracle.ClassTransport, fn, nu, "read reply", err)
	}
	if rep.ID != req.ID {
		return reply{}, oracle.NewError(oracle.ClassProtocol, fn, nu,
			fmt.Sprintf("reply id %d, want %d", rep.ID, req.ID))
	}

	for _, w := range rep.Warnings {
		c.logger.Warn("oracle warning",
			"fn", fn.String(), "nu", nu, "z", z, "scaled", scaled, "message", w)
	}

	if rep.Error != "" {
		class := oracle.ClassProtocol
		if strings.HasPrefix(rep.Error, "unsupported") {
			class = oracle.ClassUnsupported
		}
		return reply{}, oracle.NewError(class, fn, nu, rep.Error)
	}
	if rep.Kind != kindReal && rep.Kind != kindComplex {
		return reply{}, oracle.NewError(oracle.ClassProtocol, fn, nu,
			fmt.Sprintf("unknown reply kind %q", rep.Kind))
	}
	return rep, nil
}

func parseParts(fn oracle.Function, nu float64, rep reply) (float64, float64, error) {
	re, err := strconv.ParseFloat(rep.Re, 64)
	if err != nil {
		return 0, 0, oracle.Wrap(oracle.ClassProtocol, fn, nu, "real part", err)
	}
	im, err := strconv.ParseFloat(rep.Im, 64)
	if err != nil {
		return 0, 0, oracle.Wrap(oracle.ClassProtocol, fn, nu, "imaginary part", err)
	}
	return re, im, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
