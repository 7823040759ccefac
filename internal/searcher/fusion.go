package searcher

import (
	"strings"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// fuse deduplicates the pool by id, blends each candidate's prior score with
// its keyword overlap and returns the candidates best first. Equal scores
// keep id order.
func fuse(pool Pool, kws []string, w Weights) Pool {
	fused := dedupByID(pool)
	for _, c := range fused {
		overlap := keywordOverlap(c.Symbol, kws, w)
		c.SetScore(c.Score*w.PriorWeight + overlap*w.KeywordWeight)
	}
	sortByScore(fused)
	return fused
}

// keywordOverlap scores how many keywords appear in the symbol's text fields,
// capped at 1
func keywordOverlap(sym *types.Symbol, kws []string, w Weights) float64 {
	if sym == nil {
		return 0
	}

	fields := []struct {
		text   string
		weight float64
	}{
		{strings.ToLower(sym.Name), w.NameMatch},
		{strings.ToLower(sym.FilePath), w.PathMatch},
		{strings.ToLower(sym.DocComment), w.DocMatch},
		{strings.ToLower(sym.Signature), w.SignatureMatch},
	}

	var score float64
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		for _, kw := range kws {
			if strings.Contains(f.text, kw) {
				score += f.weight
			}
		}
	}

	if score > 1 {
		return 1
	}
	return score
}
