package types

import "errors"

// RelationshipKind represents the kind of directed edge between two symbols
type RelationshipKind string

const (
	RelCalls        RelationshipKind = "calls"
	RelImplements   RelationshipKind = "implements"
	RelExtends      RelationshipKind = "extends"
	RelReferences   RelationshipKind = "references"
	RelJoins        RelationshipKind = "joins"
	RelImports      RelationshipKind = "imports"
	RelUses         RelationshipKind = "uses"
	RelInstantiates RelationshipKind = "instantiates"
	RelOverrides    RelationshipKind = "overrides"
	RelReturns      RelationshipKind = "returns"
	RelParameter    RelationshipKind = "parameter"
	RelContains     RelationshipKind = "contains"
)

// Relationship represents a directed edge from one symbol to another
type Relationship struct {
	ID           string
	FromSymbolID string
	ToSymbolID   string
	Kind         RelationshipKind
	FilePath     string // Where the relationship occurs
	LineNumber   int    // 1-based
	Confidence   float64
	Metadata     map[string]string
}

// Validate checks if the relationship is well formed
func (r *Relationship) Validate() error {
	if r.ID == "" {
		return errors.New("relationship id is required")
	}

	if r.FromSymbolID == "" || r.ToSymbolID == "" {
		return errors.New("relationship endpoints are required")
	}

	if r.Kind == "" {
		return errors.New("relationship kind is required")
	}

	if r.Confidence < 0 || r.Confidence > 1 {
		return errors.New("relationship confidence must be between 0 and 1")
	}

	return nil
}
