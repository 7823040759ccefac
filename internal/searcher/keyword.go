package searcher

import (
	"context"
	"fmt"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// symbolReader is the part of the store the tiers query
type symbolReader interface {
	FindSymbolsByPattern(ctx context.Context, pattern string, limit int) ([]*types.Symbol, error)
	GetSymbol(ctx context.Context, id string) (*types.Symbol, error)
	GetRelationshipsToSymbols(ctx context.Context, ids []string) ([]*types.Relationship, error)
}

// keywordTier issues one lexical query per keyword. Every hit gets the flat
// keyword base score. A store failure stops the tier; the hits gathered so
// far are returned with the error.
func keywordTier(ctx context.Context, store symbolReader, kws []string, w Weights) (Pool, error) {
	pool := make(Pool, 0)
	for _, kw := range kws {
		symbols, err := store.FindSymbolsByPattern(ctx, kw, w.MaxKeywordResults)
		if err != nil {
			return pool, fmt.Errorf("keyword %q: %w", kw, err)
		}
		for _, sym := range symbols {
			pool = append(pool, types.NewCandidate(sym, w.KeywordBase))
		}
	}
	return pool, nil
}
