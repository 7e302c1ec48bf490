package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gar-builder/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine computes change logs between two versions of the flat export.
type Engine struct {
	cfg     Config
	layout  Layout
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an engine. m may be nil.
func NewEngine(cfg Config, layout Layout, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1_000_000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Engine{cfg: cfg, layout: layout, logger: logger, metrics: m}
}

// workspace is the directory tree of one run.
type workspace struct {
	root     string
	partsOld string
	partsNew string
	hexOld   string
	hexNew   string
	chlog    string
}

func newWorkspace(root string) (*workspace, error) {
	ws := &workspace{
		root:     root,
		partsOld: filepath.Join(root, "parts_old"),
		partsNew: filepath.Join(root, "parts_new"),
		hexOld:   filepath.Join(root, "hex_old"),
		hexNew:   filepath.Join(root, "hex_new"),
		chlog:    filepath.Join(root, "chlog"),
	}
	for _, d := range []string{ws.partsOld, ws.partsNew, ws.hexOld, ws.hexNew, ws.chlog} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create work dir: %w", err)
		}
	}
	return ws, nil
}

// Run writes the change log between oldPath and newPath to outPath.
// Any failure aborts the whole run and leaves outPath untouched.
func (e *Engine) Run(ctx context.Context, oldPath, newPath, outPath string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:   uuid.NewString(),
		Entries: make(map[Status]int64),
	}

	ws, err := newWorkspace(filepath.Join(e.cfg.WorkDir, summary.RunID))
	if err != nil {
		return nil, err
	}
	defer e.cleanup(ws.root)

	log := e.logger.With(zap.String("run_id", summary.RunID))
	log.Info("Computing change log",
		zap.String("old", oldPath),
		zap.String("new", newPath),
		zap.Int("chunk_size", e.cfg.ChunkSize),
		zap.Int("workers", e.cfg.Workers),
	)

	// Phase A: both datasets at once, chunks of each strictly in order
	phase := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.ChunksOld, summary.RowsOld, err = e.Disassemble(gctx, oldPath, ws.partsOld, VersionOld)
		return err
	})
	g.Go(func() error {
		var err error
		summary.ChunksNew, summary.RowsNew, err = e.Disassemble(gctx, newPath, ws.partsNew, VersionNew)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("disassemble: %w", err)
	}
	e.phaseDone(log, "disassemble", phase,
		zap.Int64("rows_old", summary.RowsOld),
		zap.Int64("rows_new", summary.RowsNew),
	)

	// Phase B: one task per (version, prefix)
	phase = time.Now()
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for p := range PrefixCount {
		g.Go(func() error {
			_, err := e.Assemble(gctx, ws.partsOld, ws.hexOld, p)
			return err
		})
		g.Go(func() error {
			_, err := e.Assemble(gctx, ws.partsNew, ws.hexNew, p)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	e.removeDirs(log, ws.partsOld, ws.partsNew)
	e.phaseDone(log, "assemble", phase)

	// Phase C: prefixes are independent
	phase = time.Now()
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for p := range PrefixCount {
		g.Go(func() error {
			stats, err := e.Compare(gctx,
				filepath.Join(ws.hexOld, shardName(p)),
				filepath.Join(ws.hexNew, shardName(p)),
				filepath.Join(ws.chlog, shardName(p)),
			)
			if err != nil {
				return fmt.Errorf("prefix %c: %w", Prefixes[p], err)
			}
			stats.Prefix = string(Prefixes[p])
			summary.Prefixes[p] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	e.removeDirs(log, ws.hexOld, ws.hexNew)
	for _, s := range summary.Prefixes {
		summary.Entries[StatusNew] += s.Added
		summary.Entries[StatusDeleted] += s.Deleted
		summary.Entries[StatusChanged] += s.Changed
	}
	e.phaseDone(log, "compare", phase,
		zap.Int64("new", summary.Entries[StatusNew]),
		zap.Int64("deleted", summary.Entries[StatusDeleted]),
		zap.Int64("changed", summary.Entries[StatusChanged]),
	)

	// Phase D: waits for every partial log
	phase = time.Now()
	if _, err := e.Merge(ctx, ws.chlog, outPath); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	e.phaseDone(log, "merge", phase, zap.String("out", outPath))

	if e.metrics != nil {
		for status, n := range summary.Entries {
			e.metrics.ChangelogEntriesTotal.WithLabelValues(string(status)).Add(float64(n))
		}
	}

	summary.Duration = time.Since(start)
	log.Info("Change log written",
		zap.String("out", outPath),
		zap.Int64("entries", summary.Total()),
		zap.Duration("took", summary.Duration),
	)
	return summary, nil
}

func (e *Engine) phaseDone(log *zap.Logger, name string, start time.Time, fields ...zap.Field) {
	e.metrics.ObservePhase("changelog_"+name, start)
	log.Info("Phase complete", append([]zap.Field{zap.String("phase", name), zap.Duration("took", time.Since(start))}, fields...)...)
}

// removeDirs drops working files that later phases no longer read.
func (e *Engine) removeDirs(log *zap.Logger, dirs ...string) {
	if e.cfg.KeepWorkDir {
		return
	}
	for _, d := range dirs {
		if err := os.RemoveAll(d); err != nil {
			log.Warn("Failed to remove work dir", zap.String("dir", d), zap.Error(err))
		}
	}
}

func (e *Engine) cleanup(root string) {
	if e.cfg.KeepWorkDir {
		e.logger.Info("Keeping work dir", zap.String("dir", root))
		return
	}
	if err := os.RemoveAll(root); err != nil {
		e.logger.Warn("Failed to remove work dir", zap.String("dir", root), zap.Error(err))
	}
}
