// Package vectorindex provides approximate nearest-neighbour search over
// stored symbol embeddings.
//
// An Index holds an HNSW graph for a single embedding model. It is built from
// the store on demand:
//
//	idx := vectorindex.New(vectorindex.Config{})
//	if err := idx.Build(ctx, store, engine.Model()); err != nil {
//	    return err
//	}
//	if idx.HasIndex() {
//	    matches, err := idx.SearchSimilar(ctx, store, queryVec, 30, 0.2, engine.Model())
//	}
//
// The graph nominates candidates only. SearchSimilar fetches their vectors
// from the store in one call and ranks them by exact cosine similarity.
package vectorindex
