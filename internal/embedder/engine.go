package embedder

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// QuerySymbolID identifies the synthetic record built for a free-text query
const QuerySymbolID = "query"

// CodeContext carries optional surroundings that sharpen a symbol's embedding
type CodeContext struct {
	ParentSymbol    *types.Symbol
	SurroundingCode string
	FileContext     string
}

// Engine turns symbols into vectors. The same text rendering is used for indexed
// symbols and for query records, so both live in one vector space.
type Engine struct {
	embedder Embedder
}

// NewEngine wraps an embedder
func NewEngine(e Embedder) *Engine {
	return &Engine{embedder: e}
}

// Model identifies the vector space; stored embeddings must carry the same model
func (e *Engine) Model() string {
	return e.embedder.Model()
}

// Provider returns the underlying provider name
func (e *Engine) Provider() string {
	return e.embedder.Provider()
}

// Dimension returns the vector length
func (e *Engine) Dimension() int {
	return e.embedder.Dimension()
}

// Close releases the underlying embedder
func (e *Engine) Close() error {
	return e.embedder.Close()
}

// EmbedSymbol returns the unit-length embedding of sym seen in cc
func (e *Engine) EmbedSymbol(ctx context.Context, sym *types.Symbol, cc CodeContext) ([]float32, error) {
	if sym == nil {
		return nil, fmt.Errorf("%w: nil symbol", ErrInvalidInput)
	}

	emb, err := e.embedder.GenerateEmbedding(ctx, EmbeddingRequest{Text: SymbolText(sym, cc)})
	if err != nil {
		return nil, fmt.Errorf("embed symbol %s: %w", sym.ID, err)
	}

	if dim := e.embedder.Dimension(); dim > 0 && len(emb.Vector) != dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb.Vector), dim)
	}

	return NormalizeVector(emb.Vector), nil
}

// QueryRecord builds the synthetic symbol standing in for a free-text domain query
func (e *Engine) QueryRecord(domain string) *types.Symbol {
	return &types.Symbol{
		ID:         QuerySymbolID,
		Name:       domain,
		Kind:       types.KindFunction,
		Language:   "query",
		FilePath:   "query",
		StartLine:  1,
		EndLine:    1,
		EndColumn:  len(domain),
		EndByte:    len(domain),
		DocComment: "Business logic for: " + domain,
	}
}

// SymbolText renders a symbol and its context as embedding input
func SymbolText(sym *types.Symbol, cc CodeContext) string {
	var b strings.Builder

	b.WriteString(string(sym.Kind))
	b.WriteString(" ")
	b.WriteString(sym.Name)
	if words := Tokenize(sym.Name); len(words) > 1 {
		b.WriteString(" (")
		b.WriteString(strings.Join(words, " "))
		b.WriteString(")")
	}

	if sym.Signature != "" {
		b.WriteString("\n")
		b.WriteString(sym.Signature)
	}
	if sym.DocComment != "" {
		b.WriteString("\n")
		b.WriteString(sym.DocComment)
	}
	if cc.ParentSymbol != nil {
		b.WriteString("\nin ")
		b.WriteString(string(cc.ParentSymbol.Kind))
		b.WriteString(" ")
		b.WriteString(cc.ParentSymbol.Name)
	}
	if cc.FileContext != "" {
		b.WriteString("\n")
		b.WriteString(cc.FileContext)
	}
	if cc.SurroundingCode != "" {
		b.WriteString("\n")
		b.WriteString(cc.SurroundingCode)
	}

	return b.String()
}
