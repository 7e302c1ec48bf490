package changelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"gar-builder/core/faults"

	"github.com/golang/snappy"
)

// Shard files hold CSV records inside a snappy framed stream.
// Rows are (guid, current, postalcode, content); entries add prev, curr and status.

type shardWriter struct {
	f  *os.File
	sw *snappy.Writer
	cw *csv.Writer
	n  int64
}

func createShard(path string) (*shardWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	sw := snappy.NewBufferedWriter(f)
	return &shardWriter{f: f, sw: sw, cw: csv.NewWriter(sw)}, nil
}

func (w *shardWriter) writeRow(r Row) error {
	w.n++
	return w.cw.Write([]string{r.GUID, r.Current, r.PostalCode, r.Content})
}

func (w *shardWriter) writeEntry(e Entry) error {
	w.n++
	return w.cw.Write([]string{e.GUID, e.Current, e.PostalCode, e.Prev, e.Curr, string(e.Status)})
}

// Close flushes every layer; the first error wins.
func (w *shardWriter) Close() error {
	w.cw.Flush()
	err := w.cw.Error()
	if cerr := w.sw.Close(); err == nil {
		err = cerr
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// readShard streams the records of a shard file.
func readShard(path string, width int, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return faults.Unavailable("shard "+path, err)
	}
	defer f.Close()

	cr := csv.NewReader(snappy.NewReader(f))
	cr.FieldsPerRecord = width
	cr.ReuseRecord = true

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return faults.Unavailable("shard "+path, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// ReadRows streams the rows of a row shard.
func ReadRows(path string, fn func(Row) error) error {
	return readShard(path, 4, func(rec []string) error {
		return fn(Row{Key: Key{GUID: rec[0], Current: rec[1], PostalCode: rec[2]}, Content: rec[3]})
	})
}

// ReadEntries streams the entries of a partial change log.
func ReadEntries(path string, fn func(Entry) error) error {
	return readShard(path, 6, func(rec []string) error {
		return fn(Entry{
			Key:    Key{GUID: rec[0], Current: rec[1], PostalCode: rec[2]},
			Prev:   rec[3],
			Curr:   rec[4],
			Status: Status(rec[5]),
		})
	})
}

func shardName(prefix int) string {
	return fmt.Sprintf("%c.shard", Prefixes[prefix])
}

func partName(prefix, chunk int) string {
	return fmt.Sprintf("%c_%06d.shard", Prefixes[prefix], chunk)
}
