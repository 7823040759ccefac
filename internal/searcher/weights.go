package searcher

import (
	"errors"
	"fmt"
)

// Weights holds every tunable constant of the ranking pipeline
type Weights struct {
	// Base confidences
	KeywordBase       float64 `yaml:"keyword_base"`
	PatternClassBase  float64 `yaml:"pattern_class_base"`
	PatternMethodBase float64 `yaml:"pattern_method_base"`

	// Path heuristics
	ServicePathBoost    float64 `yaml:"service_path_boost"`
	DomainPathBoost     float64 `yaml:"domain_path_boost"`
	ControllerPathBoost float64 `yaml:"controller_path_boost"`
	RepositoryPathBoost float64 `yaml:"repository_path_boost"`
	UtilityPathPenalty  float64 `yaml:"utility_path_penalty"`
	TestPathPenalty     float64 `yaml:"test_path_penalty"`

	// Fusion
	PriorWeight   float64 `yaml:"prior_weight"`
	KeywordWeight float64 `yaml:"keyword_weight"`

	// Keyword overlap, per keyword found
	NameMatch      float64 `yaml:"name_match"`
	PathMatch      float64 `yaml:"path_match"`
	DocMatch       float64 `yaml:"doc_match"`
	SignatureMatch float64 `yaml:"signature_match"`

	// Semantic tier
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	OverFetchFactor     int     `yaml:"over_fetch_factor"`

	// Centrality tier
	CentralityMultiplier float64 `yaml:"centrality_multiplier"`
	MaxGraphCandidates   int     `yaml:"max_graph_candidates"`

	// Rows fetched per lexical store query
	MaxKeywordResults int `yaml:"max_keyword_results"`
}

const (
	// DefaultMaxResults is used when a request asks for no particular count
	DefaultMaxResults = 50
	// MaxGraphAnalysisCandidates bounds the pool entering centrality analysis
	MaxGraphAnalysisCandidates = 100
	// MaxKeywordResults bounds each lexical store query
	MaxKeywordResults = 200
)

// DefaultWeights returns the stock ranking constants
func DefaultWeights() Weights {
	return Weights{
		KeywordBase:       0.5,
		PatternClassBase:  0.8,
		PatternMethodBase: 0.7,

		ServicePathBoost:    0.25,
		DomainPathBoost:     0.20,
		ControllerPathBoost: 0.15,
		RepositoryPathBoost: 0.10,
		UtilityPathPenalty:  -0.30,
		TestPathPenalty:     -0.50,

		PriorWeight:   0.7,
		KeywordWeight: 0.3,

		NameMatch:      0.5,
		PathMatch:      0.2,
		DocMatch:       0.2,
		SignatureMatch: 0.1,

		SimilarityThreshold: 0.2,
		OverFetchFactor:     3,

		CentralityMultiplier: 0.05,
		MaxGraphCandidates:   MaxGraphAnalysisCandidates,

		MaxKeywordResults: MaxKeywordResults,
	}
}

// ErrInvalidWeights is returned by Validate
var ErrInvalidWeights = errors.New("invalid search weights")

// Validate rejects weights outside [-1, 1] and non-positive factors or caps
func (w Weights) Validate() error {
	unit := map[string]float64{
		"keyword_base":          w.KeywordBase,
		"pattern_class_base":    w.PatternClassBase,
		"pattern_method_base":   w.PatternMethodBase,
		"service_path_boost":    w.ServicePathBoost,
		"domain_path_boost":     w.DomainPathBoost,
		"controller_path_boost": w.ControllerPathBoost,
		"repository_path_boost": w.RepositoryPathBoost,
		"utility_path_penalty":  w.UtilityPathPenalty,
		"test_path_penalty":     w.TestPathPenalty,
		"prior_weight":          w.PriorWeight,
		"keyword_weight":        w.KeywordWeight,
		"name_match":            w.NameMatch,
		"path_match":            w.PathMatch,
		"doc_match":             w.DocMatch,
		"signature_match":       w.SignatureMatch,
		"similarity_threshold":  w.SimilarityThreshold,
		"centrality_multiplier": w.CentralityMultiplier,
	}
	for _, name := range sortedKeys(unit) {
		if v := unit[name]; v < -1 || v > 1 {
			return fmt.Errorf("%w: %s = %v is outside [-1, 1]", ErrInvalidWeights, name, v)
		}
	}

	if w.OverFetchFactor < 1 {
		return fmt.Errorf("%w: over_fetch_factor must be >= 1", ErrInvalidWeights)
	}
	if w.MaxGraphCandidates < 1 {
		return fmt.Errorf("%w: max_graph_candidates must be >= 1", ErrInvalidWeights)
	}
	if w.MaxKeywordResults < 1 {
		return fmt.Errorf("%w: max_keyword_results must be >= 1", ErrInvalidWeights)
	}
	return nil
}
