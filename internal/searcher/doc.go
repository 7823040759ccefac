// Package searcher finds the symbols most likely to implement a business
// concept such as "payment processing".
//
// # Basic Usage
//
//	ws, _ := workspace.Open(dbPath)
//	s := searcher.NewSearcher(ws)
//
//	resp, err := s.FindLogic(ctx, searcher.LogicRequest{
//	    Domain:     "payment processing",
//	    MaxResults: 20,
//	    MinScore:   0.3,
//	})
//	for _, r := range resp.Results {
//	    fmt.Printf("[%d] %.2f %s (%s)\n", r.Rank, r.Confidence, r.Symbol.Name, r.Layer)
//	}
//
// # Tiers
//
// FindLogic runs five tiers in sequence over one candidate pool:
//
//  1. Keyword: one FTS query per domain word, flat base score 0.5
//  2. Pattern: keyword+Suffix classes (0.8, tagged with the suffix) and
//     prefix+Keyword functions (0.7)
//  3. Path: re-scores by file path (services +0.25, domain +0.20,
//     controllers +0.15, repositories +0.10, utils -0.30, tests -0.50)
//  4. Semantic: embeds the domain as a synthetic symbol and adds the nearest
//     neighbours, scored by raw cosine similarity
//  5. Centrality: +ln(incoming refs) x 0.05, from one batched lookup
//
// Before tier 5 the pool is deduplicated, filtered by MinScore and capped at
// the best MaxGraphCandidates. Fusion then deduplicates by id and scores
//
//	final = clamp(prior x 0.7 + keywordOverlap x 0.3)
//
// where keywordOverlap sums 0.5 per keyword in the name, 0.2 in the path,
// 0.2 in the doc comment and 0.1 in the signature, capped at 1.
//
// # Failure Handling
//
// A failing tier contributes nothing (keyword keeps what it found before the
// failure) and leaves a line in LogicResponse.Insights. Only a missing
// workspace is an error.
//
// # Tuning
//
// All constants live in Weights and can be loaded from the config file:
//
//	s := searcher.NewSearcher(ws, searcher.WithWeights(cfg.Search))
package searcher
