package ingest

import (
	"context"
	"log/slog"
	"strings"

	"orderlens/internal/infrastructure"
	"orderlens/pkg/contracts/domain"
)

// Loader reads every source file in the data directory into one normalized
// order line set.
type Loader struct {
	dir     string
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewLoader creates a loader for the given data directory. metrics may be
// nil in tests and one-shot tools.
func NewLoader(dir string, logger *slog.Logger, metrics *infrastructure.Metrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger, metrics: metrics}
}

// Result is the outcome of one load: the deduplicated line set, the merged
// capabilities of the source files, and the names of the files that
// contributed rows.
type Result struct {
	Lines        []domain.OrderLine
	Capabilities domain.Capabilities
	SourceFiles  []string
	Signature    string
}

// Signature returns the content signature of the current source file set
// without reading file contents.
func (l *Loader) Signature(ctx context.Context) (string, error) {
	files, err := DiscoverSourceFiles(l.dir)
	if err != nil {
		return "", err
	}
	return Signature(files), nil
}

// Load reads, parses, concatenates, and deduplicates all source files.
// An empty or missing directory yields an empty result. A file that cannot
// be decoded or lacks the required columns is skipped with a warning.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	files, err := DiscoverSourceFiles(l.dir)
	if err != nil {
		return nil, err
	}

	logger := infrastructure.LoggerFromContext(ctx, l.logger)

	result := &Result{Signature: Signature(files)}
	for _, file := range files {
		lines, caps, err := l.parseFile(file)
		if err != nil {
			logger.Warn("skipping unparseable source file",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			if l.metrics != nil {
				l.metrics.FilesSkipped.Inc()
			}
			continue
		}

		result.Lines = append(result.Lines, lines...)
		result.Capabilities = result.Capabilities.Merge(caps)
		result.SourceFiles = append(result.SourceFiles, file.Name)
	}

	before := len(result.Lines)
	result.Lines = Dedup(result.Lines)

	if l.metrics != nil {
		l.metrics.RowsIngested.Add(float64(len(result.Lines)))
	}

	logger.Info("source files loaded",
		slog.Int("files", len(result.SourceFiles)),
		slog.Int("rows", len(result.Lines)),
		slog.Int("duplicates_removed", before-len(result.Lines)))

	return result, nil
}

func (l *Loader) parseFile(file FileInfo) ([]domain.OrderLine, domain.Capabilities, error) {
	if strings.HasSuffix(strings.ToLower(file.Name), ".xlsx") {
		return ParseXLSX(file.Path, file.Name)
	}

	content, err := DecodeFile(file.Path)
	if err != nil {
		return nil, domain.Capabilities{}, err
	}
	return ParseCSV(content, file.Name)
}
