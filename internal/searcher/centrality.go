package searcher

import (
	"context"
	"math"
)

// centralityTier boosts candidates by the log of their incoming relationship
// count. The whole pool is resolved with a single batched lookup.
func centralityTier(ctx context.Context, store symbolReader, pool Pool, w Weights) error {
	if len(pool) == 0 {
		return nil
	}

	rels, err := store.GetRelationshipsToSymbols(ctx, pool.ids())
	if err != nil {
		return err
	}

	refs := make(map[string]int, len(pool))
	for _, rel := range rels {
		refs[rel.ToSymbolID]++
	}

	for _, c := range pool {
		if n := refs[c.ID()]; n > 0 {
			c.Boost(math.Log(float64(n)) * w.CentralityMultiplier)
		}
	}
	return nil
}
