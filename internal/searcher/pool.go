package searcher

import (
	"sort"
	"strings"

	"github.com/dshills/codelogic-mcp/pkg/types"
)

// Pool is the candidate list passed between tiers
type Pool []*types.ScoredCandidate

// keywords splits a domain on whitespace and lowercases each word
func keywords(domain string) []string {
	fields := strings.Fields(domain)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// dedupFirstSeen keeps the first candidate for each id in pool order
func dedupFirstSeen(pool Pool) Pool {
	seen := make(map[string]struct{}, len(pool))
	out := make(Pool, 0, len(pool))
	for _, c := range pool {
		if _, ok := seen[c.ID()]; ok {
			continue
		}
		seen[c.ID()] = struct{}{}
		out = append(out, c)
	}
	return out
}

// dedupByID sorts pool by id and keeps the first of each run
func dedupByID(pool Pool) Pool {
	sorted := make(Pool, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID() < sorted[j].ID()
	})

	out := make(Pool, 0, len(sorted))
	for i, c := range sorted {
		if i > 0 && sorted[i-1].ID() == c.ID() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sortByScore orders pool by descending score; ties keep their relative order
func sortByScore(pool Pool) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
}

// filterMinScore drops candidates scoring below min
func filterMinScore(pool Pool, min float64) Pool {
	if min <= 0 {
		return pool
	}
	out := pool[:0:0]
	for _, c := range pool {
		if c.Score >= min {
			out = append(out, c)
		}
	}
	return out
}

func (p Pool) ids() []string {
	ids := make([]string, len(p))
	for i, c := range p {
		ids[i] = c.ID()
	}
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
