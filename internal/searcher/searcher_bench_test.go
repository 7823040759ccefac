package searcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/dshills/codelogic-mcp/internal/embedder"
	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/internal/workspace"
	"github.com/dshills/codelogic-mcp/pkg/types"
)

var benchLayers = []string{"services", "domain", "controllers", "repositories", "utils", "test"}

// setupBenchSearcher indexes n symbols with local embeddings and a sparse call graph
func setupBenchSearcher(b *testing.B, n int) *Searcher {
	b.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		b.Fatal(err)
	}
	provider, err := embedder.NewLocalProvider(embedder.NewCache(n))
	if err != nil {
		b.Fatal(err)
	}
	engine := embedder.NewEngine(provider)

	nouns := []string{"Payment", "Order", "Invoice", "Customer", "Shipment", "Refund"}
	suffixes := []string{"Service", "Repository", "Controller", "Validator", "Handler", ""}
	for i := 0; i < n; i++ {
		noun := nouns[i%len(nouns)]
		sym := &types.Symbol{
			ID:       fmt.Sprintf("sym-%05d", i),
			Name:     fmt.Sprintf("%s%s%d", noun, suffixes[(i/len(nouns))%len(suffixes)], i),
			Kind:     types.KindClass,
			Language: "go",
			FilePath: fmt.Sprintf("src/%s/%s.go", benchLayers[i%len(benchLayers)], noun),
		}
		if err := store.UpsertSymbol(ctx, sym); err != nil {
			b.Fatal(err)
		}

		vec, err := engine.EmbedSymbol(ctx, sym, embedder.CodeContext{})
		if err != nil {
			b.Fatal(err)
		}
		if err := store.UpsertEmbedding(ctx, &storage.Embedding{SymbolID: sym.ID, Vector: vec, Provider: engine.Provider(), Model: engine.Model()}); err != nil {
			b.Fatal(err)
		}

		if i > 0 {
			rel := &types.Relationship{
				ID:           fmt.Sprintf("rel-%05d", i),
				FromSymbolID: sym.ID,
				ToSymbolID:   fmt.Sprintf("sym-%05d", i%10),
				Kind:         types.RelCalls,
				Confidence:   1,
			}
			if err := store.UpsertRelationship(ctx, rel); err != nil {
				b.Fatal(err)
			}
		}
	}

	ws, err := workspace.New(store, workspace.WithEmbedderFactory(func() (embedder.Embedder, error) {
		return embedder.NewLocalProvider(embedder.NewCache(100))
	}))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = ws.Close() })

	return NewSearcher(ws)
}

func BenchmarkFindLogic(b *testing.B) {
	for _, n := range []int{100, 1000} {
		b.Run(fmt.Sprintf("symbols-%d", n), func(b *testing.B) {
			s := setupBenchSearcher(b, n)
			ctx := context.Background()
			req := LogicRequest{Domain: "payment processing", MaxResults: 20}

			// Warm the lazily built engine and index
			if _, err := s.FindLogic(ctx, req); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.FindLogic(ctx, req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFindLogicCached(b *testing.B) {
	s := setupBenchSearcher(b, 500)
	ctx := context.Background()
	req := LogicRequest{Domain: "order validation", MaxResults: 20, UseCache: true}

	if _, err := s.FindLogic(ctx, req); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.FindLogic(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFuse(b *testing.B) {
	w := DefaultWeights()
	kws := []string{"payment", "service"}
	base := make(Pool, 0, 300)
	for i := 0; i < 300; i++ {
		base = append(base, types.NewCandidate(&types.Symbol{
			ID:       fmt.Sprintf("s%03d", i%150),
			Name:     fmt.Sprintf("PaymentThing%d", i),
			FilePath: "src/services/payment.go",
		}, 0.5))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool := make(Pool, len(base))
		for j, c := range base {
			cp := *c
			pool[j] = &cp
		}
		_ = fuse(pool, kws, w)
	}
}
