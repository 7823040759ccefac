// Package storage provides SQLite-based persistence for indexed symbol data.
//
// The storage layer manages:
//   - Tracked source files and their content hashes
//   - Extracted symbols with their location and documentation
//   - Directed relationships between symbols
//   - Vector embeddings, one per symbol and model
//   - A trigram full-text index over symbol text
//
// The extraction pipeline writes these records; the search engine only reads them.
//
// # Database Schema
//
// Tables:
//   - files: File paths, language and SHA-256 hashes
//   - symbols: Extracted symbols keyed by their stable string id
//   - symbols_fts: FTS5 trigram index over name, signature and doc comment
//   - relationships: Directed symbol edges, indexed by target id
//   - embeddings: float32 vectors keyed by (symbol_id, model)
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(".codelogic/symbols.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.UpsertSymbol(ctx, &types.Symbol{
//	    ID:       "sym_1",
//	    Name:     "PaymentService",
//	    Kind:     types.KindClass,
//	    FilePath: "src/services/PaymentService.ts",
//	})
//
// # Pattern Search
//
// FindSymbolsByPattern does a case-insensitive substring match:
//
//	symbols, err := store.FindSymbolsByPattern(ctx, "payment", 200)
//
// Patterns of three or more characters use the trigram index and are ordered by
// BM25 rank. Shorter patterns fall back to a LIKE scan in insertion order.
//
// # Batched Lookups
//
// GetRelationshipsToSymbols, GetRelationshipsAmong and GetEmbeddings accept any
// number of ids and split them into bounded IN clauses internally, so callers
// make one call per candidate set rather than one per symbol.
//
// # Transactions
//
// Use transactions for atomic operations:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertSymbol(ctx, symbol)
//	_ = tx.UpsertRelationship(ctx, rel)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (cgo_sqlite tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires the sqlite_fts5 tag and a C compiler
//
//     CGO_ENABLED=1 go build -tags "cgo_sqlite,sqlite_fts5" ./...
package storage
