// Package dataset provides the signature-keyed cache for derivation
// results and filtering over enriched rows.
package dataset

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"orderlens/pkg/contracts/domain"
)

// Builder produces datasets on demand. Signature must be cheap relative to
// Build: it stats the source directory while Build runs the full pipeline.
type Builder interface {
	// Signature fingerprints the current state of the source files.
	Signature(ctx context.Context) (string, error)
	// Build ingests the source files and runs the full derivation.
	Build(ctx context.Context) (*domain.Dataset, error)
}

// Store caches the most recent derivation result keyed by source
// signature. Concurrent loads against the same signature collapse into a
// single build; a failed build leaves the previous dataset in place.
type Store struct {
	builder Builder
	logger  *slog.Logger

	mu      sync.RWMutex
	current *domain.Dataset

	group singleflight.Group
}

// NewStore creates a dataset store around the given builder.
func NewStore(builder Builder, logger *slog.Logger) *Store {
	return &Store{
		builder: builder,
		logger:  logger,
	}
}

// Current returns the cached dataset without consulting the source
// directory. It returns nil before the first successful load.
func (s *Store) Current() *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load returns the dataset matching the current source signature,
// rebuilding when the cached one is stale. The common path is two cheap
// reads: a directory stat and an RLock.
func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	sig, err := s.builder.Signature(ctx)
	if err != nil {
		return nil, err
	}

	if ds := s.cachedFor(sig); ds != nil {
		return ds, nil
	}

	v, err, shared := s.group.Do(sig, func() (interface{}, error) {
		// A concurrent flight may have installed this signature already.
		if ds := s.cachedFor(sig); ds != nil {
			return ds, nil
		}
		return s.rebuild(ctx)
	})
	if err != nil {
		s.logger.Error("dataset build failed, previous dataset retained",
			slog.String("signature", sig),
			slog.String("error", err.Error()))
		return nil, err
	}
	if shared {
		s.logger.Debug("dataset load coalesced with in-flight build",
			slog.String("signature", sig))
	}

	return v.(*domain.Dataset), nil
}

// Refresh forces a rebuild regardless of signature state.
func (s *Store) Refresh(ctx context.Context) (*domain.Dataset, error) {
	return s.rebuild(ctx)
}

// Invalidate drops the cached dataset so the next Load rebuilds.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *Store) cachedFor(sig string) *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && s.current.Signature == sig {
		return s.current
	}
	return nil
}

func (s *Store) rebuild(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	s.logger.Info("dataset rebuilt",
		slog.String("signature", ds.Signature),
		slog.Int("lines", len(ds.Lines)),
		slog.Int("customers", len(ds.Profiles)),
		slog.Int("products", len(ds.Products)))

	return ds, nil
}
