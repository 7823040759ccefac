package searcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// Architectural class suffixes, tried as keyword+suffix
var classSuffixes = []string{
	"Service", "Controller", "Handler", "Manager", "Processor",
	"Repository", "Provider", "Factory", "Builder", "Validator",
}

// Business verbs, tried as prefix+keyword
var methodPrefixes = []string{
	"process", "validate", "calculate", "execute", "handle",
	"create", "update", "delete", "get", "find", "fetch",
}

// patternTier looks up naming conventions built from each keyword. Class
// hits are tagged with their suffix; method hits keep no tag. A failing
// query is skipped and reported in the returned error.
func patternTier(ctx context.Context, store symbolReader, kws []string, w Weights) (Pool, error) {
	pool := make(Pool, 0)
	var errs []error

	for _, kw := range kws {
		for _, suffix := range classSuffixes {
			pattern := kw + suffix
			symbols, err := store.FindSymbolsByPattern(ctx, pattern, w.MaxKeywordResults)
			if err != nil {
				errs = append(errs, fmt.Errorf("pattern %q: %w", pattern, err))
				continue
			}
			tag := strings.ToLower(suffix)
			for _, sym := range symbols {
				if !sym.IsTypeDeclaration() {
					continue
				}
				c := types.NewCandidate(sym, w.PatternClassBase)
				c.Tag = tag
				pool = append(pool, c)
			}
		}

		for _, prefix := range methodPrefixes {
			pattern := prefix + kw
			symbols, err := store.FindSymbolsByPattern(ctx, pattern, w.MaxKeywordResults)
			if err != nil {
				errs = append(errs, fmt.Errorf("pattern %q: %w", pattern, err))
				continue
			}
			for _, sym := range symbols {
				if !sym.IsCallable() {
					continue
				}
				pool = append(pool, types.NewCandidate(sym, w.PatternMethodBase))
			}
		}
	}

	return pool, errors.Join(errs...)
}
