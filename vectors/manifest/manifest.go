// Package manifest describes a generator run in a canonical JSON document
// written next to the tables.
//
// The manifest lists every table with its row count, SHA-256 digest and the
// peak magnitude of its finite values. It is serialized with RFC 8785 JSON
// canonicalization, and the run id is a name-based UUID over the table
// digests, so identical tables always yield a byte-identical manifest.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-besseldata/vectors/pipeline"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

// FileName is the name of the manifest inside the output directory.
const FileName = "manifest.json"

// Generator identifies the producer in the manifest.
const Generator = "github.com/cwbudde/algo-besseldata/cmd/besselgen"

// namespace scopes run ids to this generator.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://"+Generator))

var errNoTables = errors.New("manifest: no tables")

// Entry describes one table file.
type Entry struct {
	File          string  `json:"file"`
	Pipeline      string  `json:"pipeline"`
	Kind          string  `json:"kind"`
	Columns       string  `json:"columns"`
	Rows          int     `json:"rows"`
	SHA256        string  `json:"sha256"`
	PeakMagnitude float64 `json:"peak_magnitude"`
	NonFinite     int     `json:"non_finite"`
}

// Manifest describes a run.
type Manifest struct {
	RunID     string  `json:"run_id"`
	Generator string  `json:"generator"`
	Seed      int64   `json:"seed"`
	RunLength int     `json:"run_length"`
	Files     []Entry `json:"files"`
}

// Build describes files, which must all carry a table.
func Build(seed int64, runLength int, files []pipeline.File) (*Manifest, error) {
	if len(files) == 0 {
		return nil, errNoTables
	}

	m := &Manifest{
		Generator: Generator,
		Seed:      seed,
		RunLength: runLength,
		Files:     make([]Entry, 0, len(files)),
	}
	for _, f := range files {
		if f.Table == nil {
			return nil, fmt.Errorf("manifest: %s is not a table", f.Name)
		}
		sum := sha256.Sum256(f.Data)
		peak, nonFinite := PeakMagnitude(f.Table)
		m.Files = append(m.Files, Entry{
			File:          f.Name,
			Pipeline:      f.Pipeline,
			Kind:          f.Table.Kind.String(),
			Columns:       strings.Join(f.Table.Kind.Columns(), " "),
			Rows:          f.Table.Len(),
			SHA256:        hex.EncodeToString(sum[:]),
			PeakMagnitude: peak,
			NonFinite:     nonFinite,
		})
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].File < m.Files[j].File })

	m.RunID = runID(m).String()
	return m, nil
}

func runID(m *Manifest) uuid.UUID {
	var b strings.Builder
	fmt.Fprintf(&b, "seed=%d\nrun_length=%d\n", m.Seed, m.RunLength)
	for _, e := range m.Files {
		fmt.Fprintf(&b, "%s %s\n", e.File, e.SHA256)
	}
	return uuid.NewSHA1(namespace, []byte(b.String()))
}

// PeakMagnitude returns the largest |value| over the finite rows of t and
// the number of rows skipped for NaN or Inf components.
func PeakMagnitude(t *table.Table) (float64, int) {
	re, im := t.Values()

	n := 0
	nonFinite := 0
	for i := range re {
		if !finite(re[i]) || !finite(im[i]) {
			nonFinite++
			continue
		}
		re[n], im[n] = re[i], im[i]
		n++
	}
	re, im = re[:n], im[:n]
	if n == 0 {
		return 0, nonFinite
	}

	if t.Kind == table.Real {
		return vecmath.MaxAbs(re), nonFinite
	}
	mag := make([]float64, n)
	vecmath.Magnitude(mag, re, im)
	peak := vecmath.MaxAbs(mag)
	if math.IsInf(peak, 0) {
		// re²+im² overflowed for a finite value.
		peak = 0
		for i := range re {
			peak = math.Max(peak, math.Hypot(re[i], im[i]))
		}
		peak = math.Min(peak, math.MaxFloat64)
	}
	return peak, nonFinite
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Marshal returns the canonical JSON encoding of m, newline-terminated.
func (m *Manifest) Marshal() ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	canon, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest: canonicalize: %w", err)
	}
	return append(canon, '\n'), nil
}

// Parse decodes a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// File returns the manifest as an output file.
func (m *Manifest) File() (pipeline.File, error) {
	data, err := m.Marshal()
	if err != nil {
		return pipeline.File{}, err
	}
	return pipeline.File{Name: FileName, Data: data}, nil
}
