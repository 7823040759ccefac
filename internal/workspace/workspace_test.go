package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelogic-mcp/internal/embedder"
	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/pkg/types"
)

func localFactory(calls *atomic.Int32) EmbedderFactory {
	return func() (embedder.Embedder, error) {
		if calls != nil {
			calls.Add(1)
		}
		return embedder.NewLocalProvider(nil)
	}
}

func setupWorkspace(t *testing.T, opts ...Option) (*Workspace, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	ws, err := New(store, append([]Option{WithEmbedderFactory(localFactory(nil)), WithPoolSize(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws, store
}

func TestGuard_RecoversPanic(t *testing.T) {
	g, err := NewGuard(1, nil)
	require.NoError(t, err)
	defer g.Release()
	ctx := context.Background()

	err = g.Do(ctx, func() error { panic("boom") })
	assert.ErrorIs(t, err, ErrPanicked)
	assert.True(t, g.Poisoned())

	// Poisoned guard still serves later callers
	ran := false
	err = g.Do(ctx, func() error { ran = true; return nil })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestGuard_PropagatesError(t *testing.T) {
	g, err := NewGuard(1, nil)
	require.NoError(t, err)
	defer g.Release()

	want := errors.New("query failed")
	assert.ErrorIs(t, g.Do(context.Background(), func() error { return want }), want)
	assert.False(t, g.Poisoned())
}

func TestGuard_ContextCancel(t *testing.T) {
	g, err := NewGuard(1, nil)
	require.NoError(t, err)
	defer g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err = g.Do(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestGuard_Serializes(t *testing.T) {
	g, err := NewGuard(4, nil)
	require.NoError(t, err)
	defer g.Release()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), func() error {
				n := active.Add(1)
				if n > maxActive.Load() {
					maxActive.Store(n)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestGuard_ReleasedPoolRejectsWork(t *testing.T) {
	g, err := NewGuard(1, nil)
	require.NoError(t, err)
	g.Release()
	assert.Error(t, g.Do(context.Background(), func() error { return nil }))
}

func TestWorkspace_NoStore(t *testing.T) {
	ws, err := New(nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	assert.False(t, ws.HasStore())
	err = ws.WithStore(context.Background(), func(storage.Storage) error { return nil })
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = ws.Status(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestWorkspace_EmbeddingEngineOnce(t *testing.T) {
	var calls atomic.Int32
	ws, _ := setupWorkspace(t, WithEmbedderFactory(localFactory(&calls)))

	var wg sync.WaitGroup
	engines := make([]*embedder.Engine, 8)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := ws.EmbeddingEngine(context.Background())
			assert.NoError(t, err)
			engines[i] = e
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, embedder.DefaultLocalModel, engines[0].Model())
}

func TestWorkspace_EngineUnavailable(t *testing.T) {
	ws, _ := setupWorkspace(t, WithEmbedderFactory(func() (embedder.Embedder, error) {
		return nil, embedder.ErrNoProviderEnabled
	}))

	_, err := ws.EmbeddingEngine(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)

	_, err = ws.VectorIndex(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestWorkspace_VectorIndex(t *testing.T) {
	ctx := context.Background()
	ws, store := setupWorkspace(t)

	// No embeddings: index exists but is not ready
	idx, err := ws.VectorIndex(ctx)
	require.NoError(t, err)
	assert.False(t, idx.HasIndex())

	engine, err := ws.EmbeddingEngine(ctx)
	require.NoError(t, err)

	sym := &types.Symbol{ID: "pay", Name: "PaymentService", Kind: types.KindClass, FilePath: "services/payment.go"}
	require.NoError(t, store.UpsertSymbol(ctx, sym))
	vec, err := engine.EmbedSymbol(ctx, sym, embedder.CodeContext{})
	require.NoError(t, err)
	require.NoError(t, store.UpsertEmbedding(ctx, &storage.Embedding{
		SymbolID: sym.ID, Vector: vec, Provider: engine.Provider(), Model: engine.Model(),
	}))

	// Cached until reset
	same, err := ws.VectorIndex(ctx)
	require.NoError(t, err)
	assert.Same(t, idx, same)

	ws.ResetIndex()
	idx, err = ws.VectorIndex(ctx)
	require.NoError(t, err)
	assert.True(t, idx.HasIndex())
	assert.Equal(t, 1, idx.Len())

	status, err := ws.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.VectorIndexReady)
	assert.Equal(t, 1, status.VectorCount)
	assert.Equal(t, 1, status.Store.SymbolsCount)
	assert.Equal(t, engine.Model(), status.EngineModel)
}

func TestWorkspace_StatusDoesNotCreateEngine(t *testing.T) {
	var calls atomic.Int32
	ws, _ := setupWorkspace(t, WithEmbedderFactory(localFactory(&calls)))

	status, err := ws.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status.EngineModel)
	assert.False(t, status.VectorIndexReady)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWorkspace_Open(t *testing.T) {
	ws, err := Open(":memory:", WithEmbedderFactory(localFactory(nil)))
	require.NoError(t, err)
	assert.True(t, ws.HasStore())
	require.NoError(t, ws.Close())
}
