// Package services contains the business logic layer between HTTP
// transport and the pipeline packages.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"orderlens/internal/config"
	"orderlens/internal/dataset"
	"orderlens/internal/enrich"
	"orderlens/internal/exporter"
	"orderlens/internal/infrastructure"
	"orderlens/internal/ingest"
	"orderlens/pkg/contracts/domain"
)

// DataService owns the ingest-derive-cache cycle and serves datasets,
// filtered views, and exports. It implements dataset.Builder so the store
// can call back into it for rebuilds.
type DataService struct {
	loader  *ingest.Loader
	store   *dataset.Store
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewDataService wires the loader and dataset store. metrics may be nil
// in tests.
func NewDataService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.Metrics) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DataService{
		loader:  ingest.NewLoader(cfg.Pipeline.DataDir, logger, metrics),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
	s.store = dataset.NewStore(s, logger)
	return s
}

func (s *DataService) enrichConfig() enrich.Config {
	return enrich.Config{
		ChurnCautionMultiplier: s.cfg.Pipeline.ChurnCautionMultiplier,
		ChurnAtRiskMultiplier:  s.cfg.Pipeline.ChurnAtRiskMultiplier,
		ChurnChurnedMultiplier: s.cfg.Pipeline.ChurnChurnedMultiplier,
		FallbackIntervalDays:   s.cfg.Pipeline.FallbackIntervalDays,
	}
}

// Signature implements dataset.Builder.
func (s *DataService) Signature(ctx context.Context) (string, error) {
	return s.loader.Signature(ctx)
}

// Build implements dataset.Builder: one full ingest plus derivation.
func (s *DataService) Build(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()

	result, err := s.loader.Load(ctx)
	if err != nil {
		s.countLoad("error")
		return nil, fmt.Errorf("failed to load source files: %w", err)
	}

	ds := enrich.Run(result.Lines, result.Capabilities, s.enrichConfig())
	ds.Signature = result.Signature
	ds.LoadedAt = time.Now()
	ds.SourceFiles = result.SourceFiles

	s.countLoad("rebuild")
	s.logger.InfoContext(ctx, "dataset derived",
		slog.Int("lines", len(ds.Lines)),
		slog.Int("customers", len(ds.Profiles)),
		slog.Int("products", len(ds.Products)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

// Dataset returns the current dataset, rebuilding only when the source
// files changed since the cached derivation.
func (s *DataService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	before := s.store.Current()
	ds, err := s.store.Load(ctx)
	if err != nil {
		s.countLoad("error")
		return nil, err
	}
	if ds == before {
		s.countLoad("hit")
	}
	return ds, nil
}

// Query returns a dataset view restricted by the filter. Population-level
// metrics are rederived over the subset so segments and churn thresholds
// reflect the filtered population, not the full one.
func (s *DataService) Query(ctx context.Context, f dataset.Filter) (*domain.Dataset, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return ds, nil
	}

	rows := f.Apply(ds.Lines)
	return enrich.Rederive(ds, rows, s.enrichConfig()), nil
}

// Refresh forces a full rebuild regardless of source signatures.
func (s *DataService) Refresh(ctx context.Context) (*domain.Dataset, error) {
	return s.store.Refresh(ctx)
}

// Customers returns the per-customer profiles of the current dataset.
func (s *DataService) Customers(ctx context.Context) ([]domain.CustomerProfile, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Profiles, nil
}

// Products returns the per-product aggregates of the current dataset.
func (s *DataService) Products(ctx context.Context) ([]domain.ProductStats, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Products, nil
}

// Export writes the current dataset, restricted by the filter, to the
// dated CSV file in the configured output directory and returns its path.
// A zero filter exports the full table.
func (s *DataService) Export(ctx context.Context, enc exporter.Encoding, f dataset.Filter) (string, error) {
	ds, err := s.Query(ctx, f)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.Export.OutputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path, err := exporter.ExportToFile(ds, s.cfg.Export.OutputDir, enc, time.Now())
	if err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.Exports.Inc()
	}
	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("path", path),
		slog.String("encoding", string(enc)),
		slog.Int("lines", len(ds.Lines)))

	return path, nil
}

// WriteCSV streams a dataset's enriched table as CSV in the requested
// encoding. Used by the download endpoint, which has already resolved the
// dataset and set response headers.
func (s *DataService) WriteCSV(ctx context.Context, w io.Writer, enc exporter.Encoding, ds *domain.Dataset) error {
	cw, err := exporter.NewCSVWriter(w, enc)
	if err != nil {
		return err
	}
	if err := exporter.WriteEnriched(cw, ds.Lines); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.Exports.Inc()
	}
	s.logger.InfoContext(ctx, "dataset export streamed",
		slog.String("encoding", string(enc)),
		slog.Int("lines", len(ds.Lines)))

	return nil
}

func (s *DataService) countLoad(result string) {
	if s.metrics != nil {
		s.metrics.DatasetLoads.WithLabelValues(result).Inc()
	}
}
