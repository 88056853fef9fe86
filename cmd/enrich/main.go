// Command enrich runs the derivation pipeline once and writes the
// enriched table and customer profiles as CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"orderlens/internal/config"
	"orderlens/internal/enrich"
	"orderlens/internal/exporter"
	"orderlens/internal/infrastructure"
	"orderlens/internal/ingest"
	"orderlens/pkg/contracts/domain"
)

func main() {
	dataDir := flag.String("data", "", "source data directory (defaults to configured pipeline dir)")
	outDir := flag.String("out", "", "output directory (defaults to configured export dir)")
	encoding := flag.String("encoding", string(exporter.EncodingEUCKR), "export encoding: euc-kr or utf-8-bom")
	profiles := flag.Bool("profiles", false, "also write the customer profile table")
	flag.Parse()

	if err := run(*dataDir, *outDir, exporter.Encoding(*encoding), *profiles); err != nil {
		fmt.Fprintf(os.Stderr, "enrich failed: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, outDir string, enc exporter.Encoding, writeProfiles bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDir == "" {
		dataDir = cfg.Pipeline.DataDir
	}
	if outDir == "" {
		outDir = cfg.Export.OutputDir
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	ctx := context.Background()
	loader := ingest.NewLoader(dataDir, logger, nil)
	result, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load source files: %w", err)
	}
	if len(result.Lines) == 0 {
		return fmt.Errorf("no order lines found in %s", dataDir)
	}

	ds := enrich.Run(result.Lines, result.Capabilities, enrich.Config{
		ChurnCautionMultiplier: cfg.Pipeline.ChurnCautionMultiplier,
		ChurnAtRiskMultiplier:  cfg.Pipeline.ChurnAtRiskMultiplier,
		ChurnChurnedMultiplier: cfg.Pipeline.ChurnChurnedMultiplier,
		FallbackIntervalDays:   cfg.Pipeline.FallbackIntervalDays,
	})
	ds.Signature = result.Signature
	ds.LoadedAt = time.Now()
	ds.SourceFiles = result.SourceFiles

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path, err := exporter.ExportToFile(ds, outDir, enc, time.Now())
	if err != nil {
		return err
	}
	logger.Info("enriched table written", slog.String("path", path))

	if writeProfiles {
		profilePath := filepath.Join(outDir, "customer_profiles_"+time.Now().Format("20060102")+".csv")
		if err := writeProfileFile(ds.Profiles, profilePath, enc); err != nil {
			return err
		}
		logger.Info("customer profiles written", slog.String("path", profilePath))
	}

	return nil
}

func writeProfileFile(profiles []domain.CustomerProfile, path string, enc exporter.Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile file: %w", err)
	}

	w, err := exporter.NewCSVWriter(f, enc)
	if err != nil {
		f.Close()
		return err
	}
	if err := exporter.WriteProfiles(w, profiles); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
