package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/internal/workspace"
	"github.com/dshills/codelogic-mcp/pkg/types"
)

// ErrNoWorkspace is returned when the searcher has no workspace or store to query
var ErrNoWorkspace = errors.New("no workspace available")

// DefaultCacheTTL is applied when a cached request gives no TTL
const DefaultCacheTTL = time.Hour

// DefaultCacheSize is the response cache capacity when none is configured
const DefaultCacheSize = 1000

// LogicRequest contains parameters for a business-logic query
type LogicRequest struct {
	Domain     string        // Free text, split on whitespace into keywords
	MaxResults int           // Result count; also sizes the semantic over-fetch
	MinScore   float64       // Candidates below this are dropped
	UseCache   bool          // Whether to use the response cache
	CacheTTL   time.Duration // Defaults to DefaultCacheTTL
}

// LogicResponse contains the ranked results and query metadata
type LogicResponse struct {
	Domain        string
	Results       []types.LogicResult
	Relationships []*types.Relationship // Edges with both ends in Results
	Insights      []string              // One line per tier outcome
	Duration      time.Duration
	CacheHit      bool
}

// LayerGroup is a set of results sharing a layer tag
type LayerGroup struct {
	Layer   string
	Results []types.LogicResult
}

// Layers groups results by layer in order of each layer's best result
func (r *LogicResponse) Layers() []LayerGroup {
	groups := make([]LayerGroup, 0)
	index := make(map[string]int)
	for _, res := range r.Results {
		i, ok := index[res.Layer]
		if !ok {
			i = len(groups)
			index[res.Layer] = i
			groups = append(groups, LayerGroup{Layer: res.Layer})
		}
		groups[i].Results = append(groups[i].Results, res)
	}
	return groups
}

type cacheEntry struct {
	response  *LogicResponse
	expiresAt time.Time
}

// Option configures a Searcher
type Option func(*Searcher)

// WithWeights replaces the default ranking constants
func WithWeights(w Weights) Option {
	return func(s *Searcher) {
		s.weights = w
	}
}

// WithLogger sets the logger used for tier outcomes
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithCacheSize sets the response cache capacity. Non-positive sizes keep
// DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(s *Searcher) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// Searcher runs the tiered business-logic ranking pipeline over one workspace
type Searcher struct {
	ws        *workspace.Workspace
	weights   Weights
	logger    *slog.Logger
	cacheSize int
	cache     *lru.Cache[[32]byte, *cacheEntry]
	cacheMu   sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(ws *workspace.Workspace, opts ...Option) *Searcher {
	s := &Searcher{
		ws:        ws,
		weights:   DefaultWeights(),
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// lru.New only fails on a non-positive size
	s.cache, _ = lru.New[[32]byte, *cacheEntry](s.cacheSize)

	return s
}

// Weights returns the ranking constants in use
func (s *Searcher) Weights() Weights {
	return s.weights
}

// FindLogic returns the symbols most likely to implement req.Domain, best
// first. Tier failures only reduce what the tier contributes; the sole error
// is ErrNoWorkspace, or the context's error once ctx is done.
func (s *Searcher) FindLogic(ctx context.Context, req LogicRequest) (*LogicResponse, error) {
	startTime := time.Now()

	if s == nil || !s.ws.HasStore() {
		return nil, ErrNoWorkspace
	}

	normalizeRequest(&req)

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	response := s.run(ctx, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	response.Duration = time.Since(startTime)

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

func normalizeRequest(req *LogicRequest) {
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}
	req.MinScore = types.Clamp01(req.MinScore)
	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}
}

// run executes the tiers in order
func (s *Searcher) run(ctx context.Context, req LogicRequest) *LogicResponse {
	response := &LogicResponse{
		Domain:        req.Domain,
		Results:       make([]types.LogicResult, 0),
		Relationships: make([]*types.Relationship, 0),
		Insights:      make([]string, 0),
	}

	kws := keywords(req.Domain)
	if len(kws) == 0 {
		response.Insights = append(response.Insights, "No keywords in domain")
		return response
	}

	pool := make(Pool, 0)

	// Tier 1
	var tierPool Pool
	err := s.ws.WithStore(ctx, func(store storage.Storage) error {
		var err error
		tierPool, err = keywordTier(ctx, store, kws, s.weights)
		return err
	})
	pool = append(pool, tierPool...)
	response.Insights = append(response.Insights, s.tierOutcome("keyword", "Keyword search", len(tierPool), err))

	// Tier 2
	tierPool = nil
	err = s.ws.WithStore(ctx, func(store storage.Storage) error {
		var err error
		tierPool, err = patternTier(ctx, store, kws, s.weights)
		return err
	})
	pool = append(pool, tierPool...)
	response.Insights = append(response.Insights, s.tierOutcome("pattern", "Architectural patterns", len(tierPool), err))

	// Tier 3
	pathTier(pool, s.weights)
	response.Insights = append(response.Insights, fmt.Sprintf("Path analysis: %d candidates", len(pool)))

	// Tier 4
	semanticPool, err := s.semanticTier(ctx, req.Domain, req.MaxResults)
	if err != nil {
		s.logger.Debug("tier failed", slog.String("tier", "semantic"), slog.String("error", err.Error()))
		response.Insights = append(response.Insights, "Semantic search: unavailable")
	} else {
		pool = append(pool, semanticPool...)
		response.Insights = append(response.Insights, fmt.Sprintf("Semantic search: %d matches", len(semanticPool)))
	}

	// Bound the pool entering graph analysis
	pool = s.capForGraph(pool, req.MinScore)

	// Tier 5
	err = s.ws.WithStore(ctx, func(store storage.Storage) error {
		return centralityTier(ctx, store, pool, s.weights)
	})
	if err != nil {
		s.logger.Debug("tier failed", slog.String("tier", "centrality"), slog.String("error", err.Error()))
		response.Insights = append(response.Insights, "Graph analysis: unavailable")
	} else {
		response.Insights = append(response.Insights, "Graph analysis: complete")
	}

	ranked := filterMinScore(fuse(pool, kws, s.weights), req.MinScore)
	if len(ranked) > req.MaxResults {
		ranked = ranked[:req.MaxResults]
	}

	for i, c := range ranked {
		layer := c.Tag
		if layer == "" {
			layer = LayerOther
		}
		response.Results = append(response.Results, types.LogicResult{
			Rank:       i + 1,
			Symbol:     c.Symbol,
			Confidence: c.Score,
			Layer:      layer,
		})
	}

	response.Relationships = s.relationshipsAmong(ctx, ranked)

	s.logger.Debug("find logic complete",
		slog.String("domain", req.Domain),
		slog.Int("results", len(response.Results)),
		slog.Int("relationships", len(response.Relationships)))

	return response
}

// tierOutcome logs a tier failure and formats the tier's insight line
func (s *Searcher) tierOutcome(tier, label string, n int, err error) string {
	if err == nil {
		return fmt.Sprintf("%s: %d matches", label, n)
	}
	s.logger.Debug("tier failed", slog.String("tier", tier), slog.String("error", err.Error()))
	if n == 0 {
		return label + ": unavailable"
	}
	return fmt.Sprintf("%s: %d matches (partial)", label, n)
}

// capForGraph deduplicates, drops low scores and keeps the best
// MaxGraphCandidates candidates
func (s *Searcher) capForGraph(pool Pool, minScore float64) Pool {
	capped := filterMinScore(dedupFirstSeen(pool), minScore)
	if len(capped) <= s.weights.MaxGraphCandidates {
		return capped
	}

	sortByScore(capped)
	s.logger.Debug("capped candidates for graph analysis",
		slog.Int("from", len(capped)),
		slog.Int("to", s.weights.MaxGraphCandidates))
	return capped[:s.weights.MaxGraphCandidates]
}

// relationshipsAmong loads edges whose endpoints are both in ranked
func (s *Searcher) relationshipsAmong(ctx context.Context, ranked Pool) []*types.Relationship {
	rels := make([]*types.Relationship, 0)
	if len(ranked) == 0 {
		return rels
	}

	err := s.ws.WithStore(ctx, func(store storage.Storage) error {
		found, err := store.GetRelationshipsAmong(ctx, ranked.ids())
		if err != nil {
			return err
		}
		rels = append(rels, found...)
		return nil
	})
	if err != nil {
		s.logger.Debug("failed to load business relationships", slog.String("error", err.Error()))
	}
	return rels
}

// checkCache returns a copy of a live cached response, or nil
func (s *Searcher) checkCache(req LogicRequest) *LogicResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}

	response := copyLogicResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

func (s *Searcher) storeInCache(req LogicRequest, response *LogicResponse) {
	entry := &cacheEntry{
		response:  copyLogicResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// InvalidateCache drops every cached response
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}

func copyLogicResponse(src *LogicResponse) *LogicResponse {
	if src == nil {
		return nil
	}

	dst := &LogicResponse{
		Domain:        src.Domain,
		Duration:      src.Duration,
		CacheHit:      src.CacheHit,
		Results:       make([]types.LogicResult, len(src.Results)),
		Relationships: make([]*types.Relationship, len(src.Relationships)),
		Insights:      append([]string(nil), src.Insights...),
	}

	for i, res := range src.Results {
		dst.Results[i] = res
		dst.Results[i].Symbol = res.Symbol.Clone()
	}

	for i, rel := range src.Relationships {
		relCopy := *rel
		if rel.Metadata != nil {
			relCopy.Metadata = make(map[string]string, len(rel.Metadata))
			for k, v := range rel.Metadata {
				relCopy.Metadata[k] = v
			}
		}
		dst.Relationships[i] = &relCopy
	}

	return dst
}

// computeQueryHash computes a unique hash for a logic request
func computeQueryHash(req LogicRequest) [32]byte {
	var data strings.Builder
	data.WriteString(strings.Join(keywords(req.Domain), " "))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.MaxResults))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%.4f", req.MinScore))

	return sha256.Sum256([]byte(data.String()))
}
