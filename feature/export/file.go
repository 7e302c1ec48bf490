package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gar-builder/core/faults"
	"gar-builder/core/utils"
	"gar-builder/feature/registry/models"
)

// NewCSVWriter returns a csv writer using the flat-file separator.
func NewCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return cw
}

// NewCSVReader returns a csv reader using the flat-file separator.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.ReuseRecord = true
	return cr
}

// Reader reads a flat file and checks its header.
type Reader struct {
	csv    *csv.Reader
	header []string
}

// NewReader reads the header of r. A header that differs from Columns is a structural violation.
func NewReader(r io.Reader) (*Reader, error) {
	cr := NewCSVReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = slices.Clone(header)
	if !slices.Equal(header, columns) {
		return nil, faults.Structural("flat_header", "unexpected columns %v", header)
	}
	return &Reader{csv: cr, header: header}, nil
}

// Read returns the next record, or io.EOF. The slice is reused by the next call.
func (r *Reader) Read() ([]string, error) {
	return r.csv.Read()
}

// WriteFile writes the flat file of a region to path via a temporary file.
// It returns the number of rows written.
func WriteFile(path, region string, addrs []models.ResolvedAddress) (int, error) {
	err := utils.WriteAtomic(path, func(w io.Writer) error {
		cw := NewCSVWriter(w)
		if err := cw.Write(columns); err != nil {
			return err
		}
		enc := NewEncoder(region)
		for _, a := range addrs {
			if err := cw.Write(enc.Encode(a)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write region %s to %s: %w", region, path, err)
	}
	return len(addrs), nil
}

// MergeFiles concatenates the flat files in dir (sorted by name, *.csv) into dest
// with a single header. It returns the number of files and rows merged.
func MergeFiles(dir, dest string) (files, rows int, err error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, 0, err
	}
	slices.Sort(names)

	absDest, _ := filepath.Abs(dest)
	err = utils.WriteAtomic(dest, func(w io.Writer) error {
		cw := NewCSVWriter(w)
		if err := cw.Write(columns); err != nil {
			return err
		}
		for _, name := range names {
			if abs, _ := filepath.Abs(name); abs == absDest {
				continue
			}
			n, err := appendFile(cw, name)
			if err != nil {
				return err
			}
			files++
			rows += n
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to merge %s: %w", dir, err)
	}
	return files, rows, nil
}

func appendFile(cw *csv.Writer, name string) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, faults.Unavailable(name, err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	n := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%s: %w", name, err)
		}
		if err := cw.Write(rec); err != nil {
			return n, err
		}
		n++
	}
}
