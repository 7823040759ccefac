package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidEmbedding is returned when an embedding has no symbol, model or vector
	ErrInvalidEmbedding = errors.New("invalid embedding")
)

// maxBatchParams bounds the number of bound parameters in one IN (...) clause.
// Older SQLite builds cap host parameters at 999.
const maxBatchParams = 500

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return m, nil
}

// File operations

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	if file.Path == "" {
		return errors.New("file path is required")
	}

	query := `
		INSERT INTO files (path, language, content_hash, size_bytes, mod_time, last_indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			mod_time = excluded.mod_time,
			last_indexed_at = excluded.last_indexed_at
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		file.Path, file.Language, file.ContentHash[:], file.SizeBytes, file.ModTime, now)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

func scanFile(row rowScanner) (*File, error) {
	var file File
	var hash []byte
	var modTime, indexedAt sql.NullTime
	if err := row.Scan(&file.Path, &file.Language, &hash, &file.SizeBytes, &modTime, &indexedAt); err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	if modTime.Valid {
		file.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		file.LastIndexedAt = indexedAt.Time
	}
	return &file, nil
}

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, path string) (*File, error) {
	query := `
		SELECT path, language, content_hash, size_bytes, mod_time, last_indexed_at
		FROM files
		WHERE path = ?
	`
	file, err := scanFile(q.QueryRowContext(ctx, query, path))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *SQLiteStorage) GetFile(ctx context.Context, path string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), path)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier) ([]*File, error) {
	query := `
		SELECT path, language, content_hash, size_bytes, mod_time, last_indexed_at
		FROM files
		ORDER BY path
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier())
}

// deleteFileWithQuerier removes the file together with its symbols
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, path string) error {
	if err := s.deleteSymbolsByFileWithQuerier(ctx, q, path); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, path string) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), path)
}

// Symbol operations

const symbolColumns = `s.id, s.name, s.kind, s.language, s.file_path,
	s.start_line, s.start_col, s.end_line, s.end_col, s.start_byte, s.end_byte,
	s.signature, s.doc_comment, s.visibility, s.parent_id, s.metadata`

func scanSymbol(row rowScanner) (*types.Symbol, error) {
	var sym types.Symbol
	var kind, visibility, metadata string
	err := row.Scan(
		&sym.ID, &sym.Name, &kind, &sym.Language, &sym.FilePath,
		&sym.StartLine, &sym.StartColumn, &sym.EndLine, &sym.EndColumn, &sym.StartByte, &sym.EndByte,
		&sym.Signature, &sym.DocComment, &visibility, &sym.ParentID, &metadata,
	)
	if err != nil {
		return nil, err
	}
	sym.Kind = types.ParseSymbolKind(kind)
	sym.Visibility = types.Visibility(visibility)
	if sym.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	return &sym, nil
}

func scanSymbols(rows *sql.Rows) ([]*types.Symbol, error) {
	defer func() { _ = rows.Close() }()

	symbols := make([]*types.Symbol, 0)
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// upsertSymbolWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertSymbolWithQuerier(ctx context.Context, q querier, symbol *types.Symbol) error {
	if err := symbol.Validate(); err != nil {
		return fmt.Errorf("invalid symbol %q: %w", symbol.ID, err)
	}

	metadata, err := encodeMetadata(symbol.Metadata)
	if err != nil {
		return err
	}

	// Use atomic INSERT ... ON CONFLICT to keep seq, and so the FTS rowid, stable
	query := `
		INSERT INTO symbols (
			id, name, kind, language, file_path,
			start_line, start_col, end_line, end_col, start_byte, end_byte,
			signature, doc_comment, visibility, parent_id, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			language = excluded.language,
			file_path = excluded.file_path,
			start_line = excluded.start_line,
			start_col = excluded.start_col,
			end_line = excluded.end_line,
			end_col = excluded.end_col,
			start_byte = excluded.start_byte,
			end_byte = excluded.end_byte,
			signature = excluded.signature,
			doc_comment = excluded.doc_comment,
			visibility = excluded.visibility,
			parent_id = excluded.parent_id,
			metadata = excluded.metadata
	`
	_, err = q.ExecContext(ctx, query,
		symbol.ID, symbol.Name, string(symbol.Kind), symbol.Language, symbol.FilePath,
		symbol.StartLine, symbol.StartColumn, symbol.EndLine, symbol.EndColumn, symbol.StartByte, symbol.EndByte,
		symbol.Signature, symbol.DocComment, string(symbol.Visibility), symbol.ParentID, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert symbol: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) UpsertSymbol(ctx context.Context, symbol *types.Symbol) error {
	return s.upsertSymbolWithQuerier(ctx, s.querier(), symbol)
}

// getSymbolWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getSymbolWithQuerier(ctx context.Context, q querier, id string) (*types.Symbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM symbols s WHERE s.id = ?`
	sym, err := scanSymbol(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sym, nil
}

func (s *SQLiteStorage) GetSymbol(ctx context.Context, id string) (*types.Symbol, error) {
	return s.getSymbolWithQuerier(ctx, s.querier(), id)
}

// listSymbolsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listSymbolsByFileWithQuerier(ctx context.Context, q querier, path string) ([]*types.Symbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM symbols s WHERE s.file_path = ? ORDER BY s.start_line, s.seq`
	rows, err := q.QueryContext(ctx, query, path)
	if err != nil {
		return nil, err
	}
	return scanSymbols(rows)
}

func (s *SQLiteStorage) ListSymbolsByFile(ctx context.Context, path string) ([]*types.Symbol, error) {
	return s.listSymbolsByFileWithQuerier(ctx, s.querier(), path)
}

// deleteSymbolsByFileWithQuerier removes a file's symbols and everything hanging off them
func (s *SQLiteStorage) deleteSymbolsByFileWithQuerier(ctx context.Context, q querier, path string) error {
	statements := []string{
		`DELETE FROM relationships WHERE from_symbol_id IN (SELECT id FROM symbols WHERE file_path = ?)
			OR to_symbol_id IN (SELECT id FROM symbols WHERE file_path = ?)`,
		`DELETE FROM embeddings WHERE symbol_id IN (SELECT id FROM symbols WHERE file_path = ?)`,
		`DELETE FROM symbols WHERE file_path = ?`,
	}
	for i, stmt := range statements {
		args := []interface{}{path}
		if i == 0 {
			args = append(args, path)
		}
		if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to delete symbols for %s: %w", path, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) DeleteSymbolsByFile(ctx context.Context, path string) error {
	return s.deleteSymbolsByFileWithQuerier(ctx, s.querier(), path)
}

// findSymbolsByPatternWithQuerier performs a case-insensitive substring search over
// symbol name, signature and doc comment. Patterns too short for the trigram index
// fall back to a LIKE scan.
func (s *SQLiteStorage) findSymbolsByPatternWithQuerier(ctx context.Context, q querier, pattern string, limit int) ([]*types.Symbol, error) {
	if pattern == "" || limit <= 0 {
		return []*types.Symbol{}, nil
	}

	var rows *sql.Rows
	var err error
	if len([]rune(pattern)) < minTrigramLength {
		like := escapeLike(pattern)
		rows, err = q.QueryContext(ctx, `
			SELECT `+symbolColumns+`
			FROM symbols s
			WHERE s.name LIKE ? ESCAPE '\' OR s.signature LIKE ? ESCAPE '\' OR s.doc_comment LIKE ? ESCAPE '\'
			ORDER BY s.seq
			LIMIT ?
		`, like, like, like, limit)
	} else {
		// 'rank' is the FTS5 BM25 virtual column; lower values are better matches
		rows, err = q.QueryContext(ctx, `
			SELECT `+symbolColumns+`
			FROM symbols_fts
			JOIN symbols s ON s.seq = symbols_fts.rowid
			WHERE symbols_fts MATCH ?
			ORDER BY rank, s.seq
			LIMIT ?
		`, quoteFTSPattern(pattern), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search symbols: %w", err)
	}
	return scanSymbols(rows)
}

func (s *SQLiteStorage) FindSymbolsByPattern(ctx context.Context, pattern string, limit int) ([]*types.Symbol, error) {
	return s.findSymbolsByPatternWithQuerier(ctx, s.querier(), pattern, limit)
}

// Relationship operations

// upsertRelationshipWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertRelationshipWithQuerier(ctx context.Context, q querier, rel *types.Relationship) error {
	if err := rel.Validate(); err != nil {
		return err
	}

	metadata, err := encodeMetadata(rel.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO relationships (id, from_symbol_id, to_symbol_id, kind, file_path, line_number, confidence, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			from_symbol_id = excluded.from_symbol_id,
			to_symbol_id = excluded.to_symbol_id,
			kind = excluded.kind,
			file_path = excluded.file_path,
			line_number = excluded.line_number,
			confidence = excluded.confidence,
			metadata = excluded.metadata
	`
	_, err = q.ExecContext(ctx, query,
		rel.ID, rel.FromSymbolID, rel.ToSymbolID, string(rel.Kind),
		rel.FilePath, rel.LineNumber, rel.Confidence, metadata)
	if err != nil {
		return fmt.Errorf("failed to upsert relationship: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertRelationship(ctx context.Context, rel *types.Relationship) error {
	return s.upsertRelationshipWithQuerier(ctx, s.querier(), rel)
}

func scanRelationships(rows *sql.Rows) ([]*types.Relationship, error) {
	defer func() { _ = rows.Close() }()

	rels := make([]*types.Relationship, 0)
	for rows.Next() {
		var rel types.Relationship
		var kind, metadata string
		err := rows.Scan(&rel.ID, &rel.FromSymbolID, &rel.ToSymbolID, &kind,
			&rel.FilePath, &rel.LineNumber, &rel.Confidence, &metadata)
		if err != nil {
			return nil, err
		}
		rel.Kind = types.RelationshipKind(kind)
		if rel.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, err
		}
		rels = append(rels, &rel)
	}
	return rels, rows.Err()
}

// relationshipsByColumn fetches relationships whose column value is in ids,
// batching the IN clause so any number of ids costs one call from the caller's side.
func relationshipsByColumn(ctx context.Context, q querier, column string, ids []string) ([]*types.Relationship, error) {
	result := make([]*types.Relationship, 0)
	for start := 0; start < len(ids); start += maxBatchParams {
		end := start + maxBatchParams
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		args := make([]interface{}, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		query := `
			SELECT id, from_symbol_id, to_symbol_id, kind, file_path, line_number, confidence, metadata
			FROM relationships
			WHERE ` + column + ` IN (` + placeholders(len(batch)) + `)
		`
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query relationships: %w", err)
		}
		rels, err := scanRelationships(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rels...)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ToSymbolID != result[j].ToSymbolID {
			return result[i].ToSymbolID < result[j].ToSymbolID
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// getRelationshipsToSymbolsWithQuerier returns every relationship pointing at one of ids
func (s *SQLiteStorage) getRelationshipsToSymbolsWithQuerier(ctx context.Context, q querier, ids []string) ([]*types.Relationship, error) {
	return relationshipsByColumn(ctx, q, "to_symbol_id", ids)
}

func (s *SQLiteStorage) GetRelationshipsToSymbols(ctx context.Context, ids []string) ([]*types.Relationship, error) {
	return s.getRelationshipsToSymbolsWithQuerier(ctx, s.querier(), ids)
}

// getRelationshipsAmongWithQuerier returns relationships whose both endpoints are in ids
func (s *SQLiteStorage) getRelationshipsAmongWithQuerier(ctx context.Context, q querier, ids []string) ([]*types.Relationship, error) {
	incoming, err := relationshipsByColumn(ctx, q, "to_symbol_id", ids)
	if err != nil {
		return nil, err
	}

	members := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}

	among := make([]*types.Relationship, 0, len(incoming))
	for _, rel := range incoming {
		if _, ok := members[rel.FromSymbolID]; ok {
			among = append(among, rel)
		}
	}
	return among, nil
}

func (s *SQLiteStorage) GetRelationshipsAmong(ctx context.Context, ids []string) ([]*types.Relationship, error) {
	return s.getRelationshipsAmongWithQuerier(ctx, s.querier(), ids)
}

// Embedding operations

// upsertEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	if embedding.SymbolID == "" || embedding.Model == "" || len(embedding.Vector) == 0 {
		return ErrInvalidEmbedding
	}

	query := `
		INSERT INTO embeddings (symbol_id, model, provider, vector, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol_id, model) DO UPDATE SET
			provider = excluded.provider,
			vector = excluded.vector,
			dimension = excluded.dimension,
			created_at = excluded.created_at
	`
	now := time.Now()
	embedding.Dimension = len(embedding.Vector)
	_, err := q.ExecContext(ctx, query,
		embedding.SymbolID, embedding.Model, embedding.Provider,
		serializeVector(embedding.Vector), embedding.Dimension, now)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.querier(), embedding)
}

func scanEmbeddings(rows *sql.Rows) ([]*Embedding, error) {
	defer func() { _ = rows.Close() }()

	embeddings := make([]*Embedding, 0)
	for rows.Next() {
		var e Embedding
		var blob []byte
		var createdAt sql.NullTime
		if err := rows.Scan(&e.SymbolID, &e.Model, &e.Provider, &blob, &e.Dimension, &createdAt); err != nil {
			return nil, err
		}
		e.Vector = deserializeVector(blob)
		if createdAt.Valid {
			e.CreatedAt = createdAt.Time
		}
		embeddings = append(embeddings, &e)
	}
	return embeddings, rows.Err()
}

// getEmbeddingsWithQuerier fetches the vectors of ids under model in batched queries
func (s *SQLiteStorage) getEmbeddingsWithQuerier(ctx context.Context, q querier, ids []string, model string) ([]*Embedding, error) {
	result := make([]*Embedding, 0, len(ids))
	for start := 0; start < len(ids); start += maxBatchParams {
		end := start + maxBatchParams
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		args := make([]interface{}, 0, len(batch)+1)
		args = append(args, model)
		for _, id := range batch {
			args = append(args, id)
		}

		query := `
			SELECT symbol_id, model, provider, vector, dimension, created_at
			FROM embeddings
			WHERE model = ? AND symbol_id IN (` + placeholders(len(batch)) + `)
			ORDER BY symbol_id
		`
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query embeddings: %w", err)
		}
		embeddings, err := scanEmbeddings(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, embeddings...)
	}
	return result, nil
}

func (s *SQLiteStorage) GetEmbeddings(ctx context.Context, ids []string, model string) ([]*Embedding, error) {
	return s.getEmbeddingsWithQuerier(ctx, s.querier(), ids, model)
}

// listEmbeddingsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listEmbeddingsWithQuerier(ctx context.Context, q querier, model string) ([]*Embedding, error) {
	query := `
		SELECT symbol_id, model, provider, vector, dimension, created_at
		FROM embeddings
		WHERE model = ?
		ORDER BY symbol_id
	`
	rows, err := q.QueryContext(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	return scanEmbeddings(rows)
}

func (s *SQLiteStorage) ListEmbeddings(ctx context.Context, model string) ([]*Embedding, error) {
	return s.listEmbeddingsWithQuerier(ctx, s.querier(), model)
}

// Status operations

// getStatusWithQuerier collects row counts and health flags
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{}

	counts := []struct {
		table string
		dest  *int
	}{
		{"files", &status.FilesCount},
		{"symbols", &status.SymbolsCount},
		{"relationships", &status.RelationshipsCount},
		{"embeddings", &status.EmbeddingsCount},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	rows, err := q.QueryContext(ctx, "SELECT DISTINCT model FROM embeddings ORDER BY model")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var model string
		if err := rows.Scan(&model); err != nil {
			return nil, err
		}
		status.Models = append(status.Models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var ftsName string
	ftsErr := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='symbols_fts'").Scan(&ftsName)

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.EmbeddingsCount > 0,
		FTSIndexBuilt:       ftsErr == nil,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations delegate to the storage helpers with the tx querier

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, path string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), path)
}

func (t *sqliteTx) ListFiles(ctx context.Context) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteFile(ctx context.Context, path string) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), path)
}

func (t *sqliteTx) UpsertSymbol(ctx context.Context, symbol *types.Symbol) error {
	return t.storage.upsertSymbolWithQuerier(ctx, t.querier(), symbol)
}

func (t *sqliteTx) GetSymbol(ctx context.Context, id string) (*types.Symbol, error) {
	return t.storage.getSymbolWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListSymbolsByFile(ctx context.Context, path string) ([]*types.Symbol, error) {
	return t.storage.listSymbolsByFileWithQuerier(ctx, t.querier(), path)
}

func (t *sqliteTx) DeleteSymbolsByFile(ctx context.Context, path string) error {
	return t.storage.deleteSymbolsByFileWithQuerier(ctx, t.querier(), path)
}

func (t *sqliteTx) FindSymbolsByPattern(ctx context.Context, pattern string, limit int) ([]*types.Symbol, error) {
	return t.storage.findSymbolsByPatternWithQuerier(ctx, t.querier(), pattern, limit)
}

func (t *sqliteTx) UpsertRelationship(ctx context.Context, rel *types.Relationship) error {
	return t.storage.upsertRelationshipWithQuerier(ctx, t.querier(), rel)
}

func (t *sqliteTx) GetRelationshipsToSymbols(ctx context.Context, ids []string) ([]*types.Relationship, error) {
	return t.storage.getRelationshipsToSymbolsWithQuerier(ctx, t.querier(), ids)
}

func (t *sqliteTx) GetRelationshipsAmong(ctx context.Context, ids []string) ([]*types.Relationship, error) {
	return t.storage.getRelationshipsAmongWithQuerier(ctx, t.querier(), ids)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.storage.upsertEmbeddingWithQuerier(ctx, t.querier(), embedding)
}

func (t *sqliteTx) GetEmbeddings(ctx context.Context, ids []string, model string) ([]*Embedding, error) {
	return t.storage.getEmbeddingsWithQuerier(ctx, t.querier(), ids, model)
}

func (t *sqliteTx) ListEmbeddings(ctx context.Context, model string) ([]*Embedding, error) {
	return t.storage.listEmbeddingsWithQuerier(ctx, t.querier(), model)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
