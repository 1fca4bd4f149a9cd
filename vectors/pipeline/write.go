package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-besseldata/vectors/table"
)

// File is a serialized output ready to be written.
type File struct {
	Name     string
	Pipeline string
	Table    *table.Table // nil for files that are not tables
	Data     []byte
}

// Files serializes every table of the run.
func (r *Result) Files() ([]File, error) {
	files := make([]File, 0, len(r.Tables))
	for _, t := range r.Tables {
		data, err := table.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", r.Spec.Name, err)
		}
		files = append(files, File{Name: t.Name, Pipeline: r.Spec.Name, Table: t, Data: data})
	}
	return files, nil
}

// WriteFiles writes files into dir. Every file is staged first; only when
// all staged writes succeeded are they moved into place. Files being replaced
// are kept as backups until every file is installed, so a failure in either
// phase leaves dir as it was.
func WriteFiles(dir string, files []File) error {
	staged := make([]string, 0, len(files))
	for _, f := range files {
		tmp, err := table.StageFile(filepath.Join(dir, f.Name), f.Data)
		if err != nil {
			removeAll(staged)
			return err
		}
		staged = append(staged, tmp)
	}

	var done []install
	for i, f := range files {
		in, err := installFile(staged[i], filepath.Join(dir, f.Name))
		if err != nil {
			for k := len(done) - 1; k >= 0; k-- {
				done[k].rollback()
			}
			removeAll(staged[i:])
			return fmt.Errorf("pipeline: install %s: %w", f.Name, err)
		}
		done = append(done, in)
	}

	for _, in := range done {
		if in.backup != "" {
			_ = os.Remove(in.backup)
		}
	}
	return nil
}

// install records one file moved into place.
type install struct {
	path   string
	backup string // previous content, empty if path did not exist
}

// installFile renames tmp to path, first moving an existing path aside.
func installFile(tmp, path string) (install, error) {
	in := install{path: path}

	if _, err := os.Lstat(path); err == nil {
		bak, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.bak")
		if err != nil {
			return in, err
		}
		in.backup = bak.Name()
		_ = bak.Close()
		if err := os.Rename(path, in.backup); err != nil {
			_ = os.Remove(in.backup)
			return in, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return in, err
	}

	if err := os.Rename(tmp, path); err != nil {
		if in.backup != "" {
			_ = os.Rename(in.backup, path)
		}
		return in, err
	}
	return in, nil
}

// rollback undoes a completed install.
func (in install) rollback() {
	if in.backup == "" {
		_ = os.Remove(in.path)
		return
	}
	_ = os.Rename(in.backup, in.path)
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
