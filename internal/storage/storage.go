package storage

import (
	"context"
	"time"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying indexed symbol data.
// Records are written by the extraction pipeline; the search engine only reads.
type Storage interface {
	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, path string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	DeleteFile(ctx context.Context, path string) error

	// Symbol operations
	UpsertSymbol(ctx context.Context, symbol *types.Symbol) error
	GetSymbol(ctx context.Context, id string) (*types.Symbol, error)
	ListSymbolsByFile(ctx context.Context, path string) ([]*types.Symbol, error)
	DeleteSymbolsByFile(ctx context.Context, path string) error
	FindSymbolsByPattern(ctx context.Context, pattern string, limit int) ([]*types.Symbol, error)

	// Relationship operations
	UpsertRelationship(ctx context.Context, rel *types.Relationship) error
	GetRelationshipsToSymbols(ctx context.Context, ids []string) ([]*types.Relationship, error)
	GetRelationshipsAmong(ctx context.Context, ids []string) ([]*types.Relationship, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbeddings(ctx context.Context, ids []string, model string) ([]*Embedding, error)
	ListEmbeddings(ctx context.Context, model string) ([]*Embedding, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// File represents a tracked source file
type File struct {
	Path          string // Relative to workspace root
	Language      string
	ContentHash   [32]byte
	SizeBytes     int64
	ModTime       time.Time
	LastIndexedAt time.Time
}

// Embedding represents a vector embedding for one symbol under one model
type Embedding struct {
	SymbolID  string
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// Status contains statistics about the indexed workspace
type Status struct {
	FilesCount         int
	SymbolsCount       int
	RelationshipsCount int
	EmbeddingsCount    int
	SizeMB             float64
	Models             []string // Embedding models present in the store
	Health             HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexBuilt       bool
}
