package table

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Delimiter separates columns in every written table.
const Delimiter = " "

// Header returns the comment line naming the columns, without newline.
func Header(kind Kind) string {
	return "# " + strings.Join(kind.Columns(), Delimiter)
}

// FormatFloat renders v in the shortest form that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Write serializes t to w.
func Write(w io.Writer, t *Table) error {
	if t.Kind != Complex && t.Kind != Real {
		return errUnknownKind
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(t.Kind) + "\n"); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}

	fields := make([]string, len(t.Kind.Columns()))
	for i, r := range t.Rows {
		fields[0] = FormatFloat(r.Order)
		fields[1] = strconv.Itoa(r.Step)
		if t.Kind == Real {
			fields[2] = FormatFloat(real(r.Arg))
			fields[3] = FormatFloat(real(r.Value))
		} else {
			fields[2] = FormatFloat(real(r.Arg))
			fields[3] = FormatFloat(imag(r.Arg))
			fields[4] = FormatFloat(real(r.Value))
			fields[5] = FormatFloat(imag(r.Value))
		}
		if _, err := bw.WriteString(strings.Join(fields, Delimiter) + "\n"); err != nil {
			return fmt.Errorf("table: write row %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}
	return nil
}

// Marshal returns the serialized form of t.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partially written table.
func WriteFile(path string, data []byte) error {
	tmp, err := StageFile(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("table: rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// StageFile writes data to a new temporary file next to path and returns
// its name. The caller renames or removes it.
func StageFile(path string, data []byte) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("table: stage %s: %w", base, err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("table: stage %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("table: stage %s: %w", base, err)
	}
	// CreateTemp uses 0600; tables are plain data files.
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("table: stage %s: %w", base, err)
	}
	return name, nil
}
