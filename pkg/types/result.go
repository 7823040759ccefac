package types

// ScoredCandidate wraps a symbol with query-scoped ranking state.
// Score and Tag exist only for the duration of one query and are never persisted.
type ScoredCandidate struct {
	Symbol *Symbol
	Score  float64
	Tag    string // Classification assigned by the last tier that set one; empty when none
}

// NewCandidate creates a candidate with a clamped initial score
func NewCandidate(sym *Symbol, score float64) *ScoredCandidate {
	return &ScoredCandidate{Symbol: sym, Score: Clamp01(score)}
}

// ID returns the identity of the wrapped symbol
func (c *ScoredCandidate) ID() string {
	if c.Symbol == nil {
		return ""
	}
	return c.Symbol.ID
}

// Boost adds delta to the score and clamps the result to [0, 1]
func (c *ScoredCandidate) Boost(delta float64) {
	c.Score = Clamp01(c.Score + delta)
}

// SetScore replaces the score, clamped to [0, 1]
func (c *ScoredCandidate) SetScore(score float64) {
	c.Score = Clamp01(score)
}

// LogicResult is one ranked entry returned by a business-logic query
type LogicResult struct {
	Rank       int // Position in result set (1-based)
	Symbol     *Symbol
	Confidence float64
	Layer      string // Architectural layer tag, "other" when no tier assigned one
}

// Validate checks if the result is valid
func (r *LogicResult) Validate() error {
	if r.Symbol == nil {
		return ErrMissingSymbol
	}

	if r.Rank < 1 {
		return ErrInvalidRank
	}

	if r.Confidence < 0 || r.Confidence > 1 {
		return ErrInvalidConfidence
	}

	return nil
}

// Clamp01 limits v to the closed interval [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
