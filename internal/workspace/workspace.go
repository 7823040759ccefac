package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/codelogic-mcp/internal/embedder"
	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/internal/vectorindex"
)

var (
	// ErrStoreUnavailable is returned when the workspace has no symbol store
	ErrStoreUnavailable = errors.New("workspace store unavailable")
	// ErrEngineUnavailable is returned when no embedding engine could be created
	ErrEngineUnavailable = errors.New("embedding engine unavailable")
)

// EmbedderFactory creates the embedder behind the workspace's engine
type EmbedderFactory func() (embedder.Embedder, error)

// Option configures a Workspace
type Option func(*Workspace)

// WithLogger sets the workspace logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithPoolSize sets the number of workers running blocking store calls
func WithPoolSize(size int) Option {
	return func(w *Workspace) {
		w.poolSize = size
	}
}

// WithEmbedderFactory overrides how the embedding engine's provider is created
func WithEmbedderFactory(factory EmbedderFactory) Option {
	return func(w *Workspace) {
		w.factory = factory
	}
}

// WithEmbedderConfig creates the provider from cfg
func WithEmbedderConfig(cfg embedder.Config) Option {
	return func(w *Workspace) {
		w.factory = func() (embedder.Embedder, error) { return embedder.New(cfg) }
	}
}

// WithIndexConfig tunes the vector index graph
func WithIndexConfig(cfg vectorindex.Config) Option {
	return func(w *Workspace) {
		w.indexCfg = cfg
	}
}

// Workspace is the per-workspace handle shared by concurrent queries.
// The store is only reached through the guard; the embedding engine and
// vector index are created on first use.
type Workspace struct {
	store    storage.Storage
	guard    *Guard
	logger   *slog.Logger
	poolSize int
	factory  EmbedderFactory
	indexCfg vectorindex.Config

	group singleflight.Group

	mu     sync.Mutex
	engine *embedder.Engine
	index  *vectorindex.Index
}

// New wraps store in a workspace. A nil store yields a workspace whose
// store calls fail with ErrStoreUnavailable.
func New(store storage.Storage, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		store:   store,
		logger:  slog.Default(),
		factory: embedder.NewFromEnv,
	}
	for _, opt := range opts {
		opt(w)
	}

	guard, err := NewGuard(w.poolSize, w.logger)
	if err != nil {
		return nil, err
	}
	w.guard = guard

	return w, nil
}

// Open opens the SQLite store at dbPath and wraps it in a workspace
func Open(dbPath string, opts ...Option) (*Workspace, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	w, err := New(store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return w, nil
}

// HasStore reports whether the workspace holds a store handle
func (w *Workspace) HasStore() bool {
	return w != nil && w.store != nil
}

// Logger returns the workspace logger
func (w *Workspace) Logger() *slog.Logger {
	return w.logger
}

// WithStore runs fn against the store under the workspace guard
func (w *Workspace) WithStore(ctx context.Context, fn func(storage.Storage) error) error {
	if !w.HasStore() {
		return ErrStoreUnavailable
	}
	return w.guard.Do(ctx, func() error {
		return fn(w.store)
	})
}

// EmbeddingEngine returns the workspace's engine, creating it on first use.
// Creation failures are not cached; the next call tries again.
func (w *Workspace) EmbeddingEngine(ctx context.Context) (*embedder.Engine, error) {
	w.mu.Lock()
	engine := w.engine
	w.mu.Unlock()
	if engine != nil {
		return engine, nil
	}

	v, err, _ := w.group.Do("engine", func() (interface{}, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.engine != nil {
			return w.engine, nil
		}

		if w.factory == nil {
			return nil, ErrEngineUnavailable
		}
		emb, err := w.factory()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}

		w.engine = embedder.NewEngine(emb)
		w.logger.Info("embedding engine ready",
			slog.String("provider", w.engine.Provider()),
			slog.String("model", w.engine.Model()))
		return w.engine, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*embedder.Engine), nil
}

// VectorIndex returns the engine model's vector index, building it from the
// store on first use. A store without embeddings yields an index that is
// not ready rather than an error.
func (w *Workspace) VectorIndex(ctx context.Context) (*vectorindex.Index, error) {
	w.mu.Lock()
	index := w.index
	w.mu.Unlock()
	if index != nil {
		return index, nil
	}

	engine, err := w.EmbeddingEngine(ctx)
	if err != nil {
		return nil, err
	}

	v, err, _ := w.group.Do("index", func() (interface{}, error) {
		w.mu.Lock()
		existing := w.index
		w.mu.Unlock()
		if existing != nil {
			return existing, nil
		}

		idx := vectorindex.New(w.indexCfg, vectorindex.WithLogger(w.logger))
		err := w.WithStore(ctx, func(s storage.Storage) error {
			return idx.Build(ctx, s, engine.Model())
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build vector index: %w", err)
		}

		w.mu.Lock()
		w.index = idx
		w.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*vectorindex.Index), nil
}

// ResetIndex drops the vector index so the next VectorIndex call rebuilds it
func (w *Workspace) ResetIndex() {
	w.mu.Lock()
	w.index = nil
	w.mu.Unlock()
}

// Status describes the workspace store and its lazily created components
type Status struct {
	Store            *storage.Status
	EngineProvider   string
	EngineModel      string
	VectorIndexReady bool
	VectorCount      int
	GuardPoisoned    bool
}

// Status reports store statistics. It does not create the engine or index.
func (w *Workspace) Status(ctx context.Context) (*Status, error) {
	var storeStatus *storage.Status
	err := w.WithStore(ctx, func(s storage.Storage) error {
		var err error
		storeStatus, err = s.GetStatus(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	status := &Status{Store: storeStatus, GuardPoisoned: w.guard.Poisoned()}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != nil {
		status.EngineProvider = w.engine.Provider()
		status.EngineModel = w.engine.Model()
	}
	if w.index != nil {
		status.VectorIndexReady = w.index.HasIndex()
		status.VectorCount = w.index.Len()
	}
	return status, nil
}

// Close releases the worker pool, the engine and the store
func (w *Workspace) Close() error {
	w.guard.Release()

	var errs []error
	w.mu.Lock()
	if w.engine != nil {
		errs = append(errs, w.engine.Close())
		w.engine = nil
	}
	w.index = nil
	w.mu.Unlock()

	if w.store != nil {
		errs = append(errs, w.store.Close())
	}
	return errors.Join(errs...)
}
