package cmd

import (
	"context"
	"fmt"
	"time"

	"gar-builder/core/config"
	"gar-builder/core/logger"
	"gar-builder/core/metrics"
	"gar-builder/core/storage"
	"gar-builder/feature/artifacts"

	"go.uber.org/zap"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func setup() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	return &app{cfg: cfg, logger: logg, metrics: metrics.NewMetrics()}, nil
}

// openArtifacts connects to object storage and makes sure the bucket exists.
func (a *app) openArtifacts(ctx context.Context) (*artifacts.Service, error) {
	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	svc := artifacts.NewService(client, a.cfg.Storage.Bucket, a.logger)
	if err := svc.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// close pushes batch metrics and flushes the logger.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.metrics.Push(ctx, a.cfg.Metrics); err != nil {
		a.logger.Warn("Metrics push failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
