package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderlens/pkg/contracts/domain"
)

// fakeBuilder is a Builder with scriptable signature and failure state.
type fakeBuilder struct {
	mu     sync.Mutex
	sig    string
	fail   error
	builds atomic.Int64
}

func (b *fakeBuilder) setSignature(sig string) {
	b.mu.Lock()
	b.sig = sig
	b.mu.Unlock()
}

func (b *fakeBuilder) setFailure(err error) {
	b.mu.Lock()
	b.fail = err
	b.mu.Unlock()
}

func (b *fakeBuilder) Signature(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sig, nil
}

func (b *fakeBuilder) Build(ctx context.Context) (*domain.Dataset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return nil, b.fail
	}
	b.builds.Add(1)
	return &domain.Dataset{
		Signature: b.sig,
		Lines:     []domain.EnrichedOrderLine{{}},
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLoadCachesBySignature(t *testing.T) {
	builder := &fakeBuilder{sig: "sig-1"}
	store := NewStore(builder, discardLogger())

	ctx := context.Background()

	first, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sig-1", first.Signature)
	assert.Equal(t, int64(1), builder.builds.Load())

	// Unchanged signature serves the cached dataset without rebuilding.
	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), builder.builds.Load())

	// A changed signature triggers exactly one rebuild.
	builder.setSignature("sig-2")
	third, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sig-2", third.Signature)
	assert.Equal(t, int64(2), builder.builds.Load())
}

func TestStoreFailedRebuildKeepsPrevious(t *testing.T) {
	builder := &fakeBuilder{sig: "sig-1"}
	store := NewStore(builder, discardLogger())
	ctx := context.Background()

	first, err := store.Load(ctx)
	require.NoError(t, err)

	builder.setSignature("sig-2")
	builder.setFailure(errors.New("disk on fire"))

	_, err = store.Load(ctx)
	require.Error(t, err)

	// The previous derivation stays queryable after the failure.
	assert.Same(t, first, store.Current())
}

func TestStoreCurrentBeforeFirstLoad(t *testing.T) {
	store := NewStore(&fakeBuilder{sig: "sig-1"}, discardLogger())
	assert.Nil(t, store.Current())
}

func TestStoreInvalidate(t *testing.T) {
	builder := &fakeBuilder{sig: "sig-1"}
	store := NewStore(builder, discardLogger())
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.NoError(t, err)

	store.Invalidate()
	assert.Nil(t, store.Current())

	_, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), builder.builds.Load())
}

func TestStoreRefreshAlwaysRebuilds(t *testing.T) {
	builder := &fakeBuilder{sig: "sig-1"}
	store := NewStore(builder, discardLogger())
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.NoError(t, err)

	refreshed, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), builder.builds.Load())
	assert.Same(t, refreshed, store.Current())
}

func TestStoreConcurrentLoadsCoalesce(t *testing.T) {
	builder := &fakeBuilder{sig: "sig-1"}
	store := NewStore(builder, discardLogger())
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]*domain.Dataset, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := store.Load(ctx)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
	// Coalescing keeps concurrent cold loads to a single build.
	assert.Equal(t, int64(1), builder.builds.Load())
}
