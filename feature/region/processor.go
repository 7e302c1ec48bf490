package region

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gar-builder/core/faults"
	"gar-builder/core/logger"
	"gar-builder/core/metrics"
	"gar-builder/feature/hierarchy"
	"gar-builder/feature/houselist"
	"gar-builder/feature/registry"
	"gar-builder/feature/registry/models"

	"go.uber.org/zap"
)

// Sink stores the resolved addresses of a region and returns where they went.
type Sink interface {
	WriteRegion(ctx context.Context, region string, addrs []models.ResolvedAddress) (string, error)
}

// Publisher copies a finished region file somewhere else (e.g. object storage).
type Publisher interface {
	PublishRegion(ctx context.Context, region, path string) error
}

// Result describes one processed region.
type Result struct {
	Region    string        `json:"region"`
	Houses    int           `json:"houses"`
	Rows      int           `json:"rows"`
	Orphans   int           `json:"orphans"`
	Conflicts int           `json:"conflicts"`
	Path      string        `json:"path"`
	Duration  time.Duration `json:"duration"`
}

// Failure records a region that could not be processed.
type Failure struct {
	Region string
	Err    error
}

// Report is the outcome of ProcessAll.
type Report struct {
	Succeeded []Result
	Failed    []Failure
}

// Err summarizes the failed regions, or returns nil when all succeeded.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	codes := make([]string, len(r.Failed))
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		codes[i] = f.Region
		errs[i] = f.Err
	}
	return fmt.Errorf("%d region(s) failed [%s]: %w", len(r.Failed), strings.Join(codes, ","), errors.Join(errs...))
}

// Processor runs the region pipeline: load, filter, postal history, hierarchy, write.
type Processor struct {
	source    registry.Source
	sink      Sink
	publisher Publisher
	filter    registry.FilterOptions
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewProcessor creates a processor. m may be nil.
func NewProcessor(source registry.Source, sink Sink, filter registry.FilterOptions, logger *zap.Logger, m *metrics.Metrics) *Processor {
	return &Processor{
		source:  source,
		sink:    sink,
		filter:  filter,
		logger:  logger,
		metrics: m,
	}
}

// WithPublisher makes the processor publish every region file it writes.
func (p *Processor) WithPublisher(pub Publisher) *Processor {
	p.publisher = pub
	return p
}

// ProcessRegion runs the full pipeline for one region.
func (p *Processor) ProcessRegion(ctx context.Context, region string) (*Result, error) {
	log := logger.WithRegion(p.logger, region)
	start := time.Now()
	res := &Result{Region: region}

	phase := time.Now()
	raw, err := p.source.Load(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTook := p.phaseDone("load", phase)

	phase = time.Now()
	ds, err := registry.Filter(raw, p.filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	rows, err := houselist.Build(ds.Houses, ds.Params)
	if err != nil {
		return nil, fmt.Errorf("house list: %w", err)
	}
	res.Houses = len(ds.Houses)
	filterTook := p.phaseDone("filter", phase)

	phase = time.Now()
	resolver, err := hierarchy.NewResolver(ds.Links, ds.Objects, log, p.metrics)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	addrs, stats, err := resolver.Resolve(rows)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	res.Rows, res.Orphans, res.Conflicts = stats.Rows, stats.Orphans, stats.Conflicts
	parentsTook := p.phaseDone("parents", phase)

	phase = time.Now()
	if res.Path, err = p.sink.WriteRegion(ctx, region, addrs); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if p.publisher != nil {
		if err := p.publisher.PublishRegion(ctx, region, res.Path); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
	}
	saveTook := p.phaseDone("save", phase)

	if p.metrics != nil {
		p.metrics.HousesLoadedTotal.Add(float64(res.Houses))
	}

	res.Duration = time.Since(start)
	log.Info("Region processed",
		zap.Int("houses", res.Houses),
		zap.Int("rows", res.Rows),
		zap.Int("orphans", res.Orphans),
		zap.Int("rank_conflicts", res.Conflicts),
		zap.Duration("load", loadTook),
		zap.Duration("filter", filterTook),
		zap.Duration("parents", parentsTook),
		zap.Duration("save", saveTook),
		zap.Duration("total", res.Duration),
	)
	return res, nil
}

func (p *Processor) phaseDone(name string, start time.Time) time.Duration {
	p.metrics.ObservePhase("region_"+name, start)
	return time.Since(start)
}

// ProcessAll processes regions one after another; an empty list means every region
// of the source. A failing region is recorded in the report and does not stop the others.
// The returned error is reserved for listing failures and cancellation.
func (p *Processor) ProcessAll(ctx context.Context, regions []string) (*Report, error) {
	if len(regions) == 0 {
		var err error
		if regions, err = p.source.Regions(ctx); err != nil {
			return nil, err
		}
	}
	p.logger.Info("Processing regions", zap.Int("count", len(regions)))

	report := &Report{}
	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := p.ProcessRegion(ctx, region)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			p.logger.Error("Region failed",
				zap.String("region", region),
				zap.Bool("structural", faults.IsStructural(err)),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, Failure{Region: region, Err: err})
			p.countRegion("failed")
			continue
		}
		report.Succeeded = append(report.Succeeded, *res)
		p.countRegion("ok")
	}
	return report, nil
}

func (p *Processor) countRegion(status string) {
	if p.metrics != nil {
		p.metrics.RegionsTotal.WithLabelValues(status).Inc()
	}
}
