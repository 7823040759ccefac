package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dshills/codelogic-mcp/internal/embedder"
	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/internal/vectorindex"
	"github.com/dshills/codelogic-mcp/pkg/types"
)

// semanticTier embeds the domain the same way symbols were embedded and
// returns the nearest symbols. Each hit's score is its raw similarity.
// Embedding happens outside the workspace guard; the index search and
// symbol loads run under it.
func (s *Searcher) semanticTier(ctx context.Context, domain string, maxResults int) (Pool, error) {
	engine, err := s.ws.EmbeddingEngine(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := s.ws.VectorIndex(ctx)
	if err != nil {
		return nil, err
	}
	if !idx.HasIndex() {
		return nil, vectorindex.ErrNotReady
	}

	query, err := engine.EmbedSymbol(ctx, engine.QueryRecord(domain), embedder.CodeContext{})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	k := overFetch(maxResults, s.weights.OverFetchFactor)
	pool := make(Pool, 0)

	err = s.ws.WithStore(ctx, func(store storage.Storage) error {
		matches, err := idx.SearchSimilar(ctx, store, query, k, s.weights.SimilarityThreshold, engine.Model())
		if err != nil {
			return err
		}

		for _, m := range matches {
			sym, err := store.GetSymbol(ctx, m.SymbolID)
			if errors.Is(err, storage.ErrNotFound) {
				// Embedding outlived its symbol
				continue
			}
			if err != nil {
				return fmt.Errorf("load symbol %s: %w", m.SymbolID, err)
			}
			pool = append(pool, types.NewCandidate(sym, m.Similarity))
		}
		return nil
	})
	if err != nil {
		return pool, err
	}

	return pool, nil
}

// overFetch returns maxResults*factor, saturating instead of overflowing
func overFetch(maxResults, factor int) int {
	if maxResults <= 0 || factor <= 0 {
		return 0
	}
	if maxResults > math.MaxInt/factor {
		return math.MaxInt
	}
	return maxResults * factor
}
