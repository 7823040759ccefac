package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/dshills/codelogic-mcp/internal/storage"
)

var (
	// ErrNotReady is returned when no index has been built or it holds no vectors
	ErrNotReady = errors.New("vector index not ready")
	// ErrModelMismatch is returned when a search names a model the index was not built for
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrDimensionMismatch is returned when a vector's length differs from the index's
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// EmbeddingSource is the part of the symbol store the index reads vectors from
type EmbeddingSource interface {
	ListEmbeddings(ctx context.Context, model string) ([]*storage.Embedding, error)
	GetEmbeddings(ctx context.Context, ids []string, model string) ([]*storage.Embedding, error)
}

// Match is one search hit with its exact cosine similarity to the query
type Match struct {
	SymbolID   string
	Similarity float64
}

// Config tunes the HNSW graph
type Config struct {
	M        int // Max neighbours per node (default 16)
	EfSearch int // Search beam width (default 20)
}

// Option configures an Index
type Option func(*Index)

// WithLogger sets the logger used for build and fallback events
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// Index is an in-memory HNSW graph over one embedding model's vectors.
// The graph only nominates neighbours; final scores are exact cosine
// similarities computed from the store's vectors.
type Index struct {
	mu     sync.RWMutex
	cfg    Config
	logger *slog.Logger

	graph   *hnsw.Graph[uint64]
	idMap   map[string]uint64 // symbol id -> graph key
	keyMap  map[uint64]string // graph key -> symbol id
	nextKey uint64

	model string
	dims  int
	ready bool
}

// New creates an empty index
func New(cfg Config, opts ...Option) *Index {
	if cfg.M <= 0 {
		cfg.M = 16
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = 20
	}

	idx := &Index{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(idx)
	}
	idx.reset("", 0)
	return idx
}

// reset replaces the graph; callers hold mu
func (idx *Index) reset(model string, dims int) {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = idx.cfg.M
	graph.EfSearch = idx.cfg.EfSearch
	graph.Ml = 0.25

	idx.graph = graph
	idx.idMap = make(map[string]uint64)
	idx.keyMap = make(map[uint64]string)
	idx.nextKey = 0
	idx.model = model
	idx.dims = dims
	idx.ready = false
}

// Build loads every embedding of model from src into a fresh graph.
// A model with no embeddings leaves the index not ready; that is not an error.
func (idx *Index) Build(ctx context.Context, src EmbeddingSource, model string) error {
	embeddings, err := src.ListEmbeddings(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.reset(model, 0)
	skipped := 0
	for _, e := range embeddings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := idx.addLocked(e.SymbolID, e.Vector); err != nil {
			skipped++
			continue
		}
	}

	idx.logger.Info("vector index built",
		slog.String("model", model),
		slog.Int("vectors", len(idx.idMap)),
		slog.Int("skipped", skipped))

	return nil
}

// Add inserts or replaces the vector for id
func (idx *Index) Add(id string, vector []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.addLocked(id, vector)
}

func (idx *Index) addLocked(id string, vector []float32) error {
	if id == "" || len(vector) == 0 {
		return fmt.Errorf("%w: empty id or vector", ErrDimensionMismatch)
	}
	if idx.dims == 0 {
		idx.dims = len(vector)
	}
	if len(vector) != idx.dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), idx.dims)
	}

	// Lazy deletion: orphan the old key instead of deleting from the graph
	if existing, ok := idx.idMap[id]; ok {
		delete(idx.keyMap, existing)
		delete(idx.idMap, id)
	}

	key := idx.nextKey
	idx.nextKey++

	idx.graph.Add(hnsw.MakeNode(key, normalize(vector)))
	idx.idMap[id] = key
	idx.keyMap[key] = id
	idx.ready = true
	return nil
}

// HasIndex reports whether the index holds searchable vectors
func (idx *Index) HasIndex() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.ready && len(idx.idMap) > 0
}

// Len returns the number of live vectors
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.idMap)
}

// Model returns the embedding model the index was built for
func (idx *Index) Model() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.model
}

// SearchSimilar returns up to k symbols whose similarity to query is at least
// threshold, best first with ties broken by id. Vectors for the graph's
// candidates are fetched from src in one batch and scored exactly. When the
// graph nominates nothing the search falls back to a full scan of src.
func (idx *Index) SearchSimilar(ctx context.Context, src EmbeddingSource, query []float32, k int, threshold float64, model string) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}

	ids, err := idx.nominate(query, k, model)
	if err != nil {
		return nil, err
	}

	var embeddings []*storage.Embedding
	if len(ids) == 0 {
		idx.logger.Debug("hnsw returned no candidates, scanning store", slog.String("model", model))
		embeddings, err = src.ListEmbeddings(ctx, model)
	} else {
		embeddings, err = src.GetEmbeddings(ctx, ids, model)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate vectors: %w", err)
	}

	matches := make([]Match, 0, len(embeddings))
	for _, e := range embeddings {
		sim := storage.CosineSimilarity(query, e.Vector)
		if sim < threshold {
			continue
		}
		matches = append(matches, Match{SymbolID: e.SymbolID, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].SymbolID < matches[j].SymbolID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// nominate asks the graph for neighbour ids under the read lock
func (idx *Index) nominate(query []float32, k int, model string) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.ready || len(idx.idMap) == 0 {
		return nil, ErrNotReady
	}
	if model != idx.model {
		return nil, fmt.Errorf("%w: index holds %q, search asked for %q", ErrModelMismatch, idx.model, model)
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), idx.dims)
	}

	// Orphaned nodes still occupy result slots; the graph never returns
	// more than it holds
	total := idx.graph.Len()
	fetch := total
	if k < len(idx.idMap) {
		fetch = k + (total - len(idx.idMap))
	}
	nodes := idx.graph.Search(normalize(query), fetch)

	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if id, ok := idx.keyMap[node.Key]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)

	var sum float64
	for _, x := range out {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}

	norm := float32(math.Sqrt(sum))
	for i := range out {
		out[i] /= norm
	}
	return out
}
