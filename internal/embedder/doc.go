// Package embedder generates vector embeddings for code symbols using various providers.
//
// The embedder supports multiple embedding providers (Jina AI, OpenAI, a local
// hashing model) and provides batching, caching, and retry for production use.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	engine := embedder.NewEngine(emb)
//	vec, err := engine.EmbedSymbol(ctx, symbol, embedder.CodeContext{})
//
// # One Vector Space
//
// Engine.EmbedSymbol renders a symbol with SymbolText and embeds the result.
// Queries go through the same path: QueryRecord wraps a free-text domain in a
// synthetic symbol so that query and symbol vectors are directly comparable.
// Vectors are normalized to unit length.
//
// # Provider Selection
//
// The embedder selects a provider based on environment variables:
//
//  1. If CODELOGIC_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if JINA_API_KEY is set → use Jina AI
//  3. Else if OPENAI_API_KEY is set → use OpenAI
//  4. Else → fallback to local provider (offline mode)
//
// Provider comparison:
//
//	Provider  Dimensions  Model
//	jina      1024        jina-embeddings-v3
//	openai    1536        text-embedding-3-small
//	local     384         local-hash-384
//
// The local provider needs no network. It hashes identifier-aware tokens
// ("processPayment" → "process", "payment") and their character trigrams into
// a signed 384-dimension vector.
//
// # Caching
//
// Providers share an LRU cache keyed by CacheKey(model, text). Cached vectors
// are copied on the way in and out.
//
// # Error Handling
//
// HTTP providers retry transient failures with exponential backoff:
//
//	_, err := emb.GenerateBatch(ctx, req)
//	if errors.Is(err, embedder.ErrProviderFailed) {
//	    // API unavailable after retries
//	}
package embedder
