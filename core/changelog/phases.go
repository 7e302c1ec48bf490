package changelog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gar-builder/core/faults"
	"gar-builder/core/utils"

	"go.uber.org/zap"
)

// Disassemble reads input in chunks of ChunkSize rows and writes each chunk's
// rows into per-prefix part files in partsDir. Memory use is bounded by one chunk.
func (e *Engine) Disassemble(ctx context.Context, input, partsDir string, version Version) (chunks int, rows int64, err error) {
	f, err := os.Open(input)
	if err != nil {
		return 0, 0, faults.Unavailable(fmt.Sprintf("%s dataset %s", version, input), err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = e.layout.Comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, faults.Unavailable(fmt.Sprintf("%s dataset %s", version, input), err)
	}
	b, err := e.layout.bind(header)
	if err != nil {
		return 0, 0, fmt.Errorf("%s dataset %s: %w", version, input, err)
	}

	var buckets [PrefixCount][]Row
	inChunk := 0

	flush := func() error {
		if inChunk == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for p := range buckets {
			if len(buckets[p]) == 0 {
				continue
			}
			if err := writeRows(filepath.Join(partsDir, partName(p, chunks)), buckets[p]); err != nil {
				return err
			}
			buckets[p] = buckets[p][:0]
		}
		e.logger.Debug("Chunk disassembled",
			zap.String("version", string(version)),
			zap.Int("chunk", chunks),
			zap.Int("rows", inChunk),
		)
		chunks++
		inChunk = 0
		return nil
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return chunks, rows, faults.Unavailable(fmt.Sprintf("%s dataset %s", version, input), err)
		}

		row := b.row(rec)
		p, err := PrefixOf(row.GUID)
		if err != nil {
			return chunks, rows, fmt.Errorf("%s dataset line %d: %w", version, rows+2, err)
		}
		buckets[p] = append(buckets[p], row)
		rows++
		inChunk++

		if inChunk == e.cfg.ChunkSize {
			if err := flush(); err != nil {
				return chunks, rows, err
			}
		}
	}
	if err := flush(); err != nil {
		return chunks, rows, err
	}

	if e.metrics != nil {
		e.metrics.ChangelogRowsTotal.WithLabelValues(string(version)).Add(float64(rows))
	}
	return chunks, rows, nil
}

func writeRows(path string, rows []Row) error {
	w, err := createShard(path)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.writeRow(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// Assemble concatenates every part file of one prefix, in chunk order, into a
// single shard in hexDir. The shard is created even when no part exists.
func (e *Engine) Assemble(ctx context.Context, partsDir, hexDir string, prefix int) (int64, error) {
	parts, err := filepath.Glob(filepath.Join(partsDir, fmt.Sprintf("%c_*.shard", Prefixes[prefix])))
	if err != nil {
		return 0, err
	}
	slices.Sort(parts)

	w, err := createShard(filepath.Join(hexDir, shardName(prefix)))
	if err != nil {
		return 0, err
	}
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			_ = w.Close()
			return 0, err
		}
		if err := ReadRows(part, w.writeRow); err != nil {
			_ = w.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.n, nil
}

// Compare outer-joins the old and new shard of one prefix on the identity key
// and writes every row that is not unchanged to outShard. New-side rows come
// first in their input order, then deletions in old order.
func (e *Engine) Compare(ctx context.Context, oldShard, newShard, outShard string) (PrefixStats, error) {
	var stats PrefixStats

	old := make(map[Key]string)
	var order []Key
	err := ReadRows(oldShard, func(r Row) error {
		if _, dup := old[r.Key]; dup {
			return duplicateKey(VersionOld, r.Key)
		}
		old[r.Key] = r.Content
		order = append(order, r.Key)
		return nil
	})
	if err != nil {
		return stats, err
	}
	stats.Old = int64(len(order))

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	w, err := createShard(outShard)
	if err != nil {
		return stats, err
	}

	seen := make(map[Key]struct{})
	err = ReadRows(newShard, func(r Row) error {
		if _, dup := seen[r.Key]; dup {
			return duplicateKey(VersionNew, r.Key)
		}
		seen[r.Key] = struct{}{}
		stats.New++

		prev, ok := old[r.Key]
		if !ok {
			stats.Added++
			return w.writeEntry(Entry{Key: r.Key, Curr: r.Content, Status: StatusNew})
		}
		delete(old, r.Key)
		if prev == r.Content {
			stats.Unchanged++
			return nil
		}
		stats.Changed++
		return w.writeEntry(Entry{Key: r.Key, Prev: prev, Curr: r.Content, Status: StatusChanged})
	})
	if err != nil {
		_ = w.Close()
		return stats, err
	}

	for _, k := range order {
		prev, ok := old[k]
		if !ok {
			continue
		}
		stats.Deleted++
		if err := w.writeEntry(Entry{Key: k, Prev: prev, Status: StatusDeleted}); err != nil {
			_ = w.Close()
			return stats, err
		}
	}

	return stats, w.Close()
}

func duplicateKey(v Version, k Key) error {
	return faults.Structural("unique_identity_key", "%s dataset repeats key (%s, %s, %s)", v, k.GUID, k.Current, k.PostalCode)
}

// Merge concatenates the partial logs in chlogDir, in prefix order, into out.
// out is only created once every partial log has been copied.
func (e *Engine) Merge(ctx context.Context, chlogDir, out string) (int64, error) {
	var n int64
	err := utils.WriteAtomic(out, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = e.layout.Comma
		if err := cw.Write(e.layout.OutputHeader()); err != nil {
			return err
		}

		rec := make([]string, 6)
		for p := range PrefixCount {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := ReadEntries(filepath.Join(chlogDir, shardName(p)), func(en Entry) error {
				rec[0], rec[1], rec[2] = en.GUID, en.Current, en.PostalCode
				rec[3], rec[4], rec[5] = en.Prev, en.Curr, string(en.Status)
				n++
				return cw.Write(rec)
			})
			if err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return n, nil
}
