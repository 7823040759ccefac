package types

import (
	"errors"
	"strings"
)

// SymbolKind represents the type of an extracted code symbol
type SymbolKind string

const (
	KindFunction    SymbolKind = "function"
	KindMethod      SymbolKind = "method"
	KindConstructor SymbolKind = "constructor"
	KindClass       SymbolKind = "class"
	KindStruct      SymbolKind = "struct"
	KindInterface   SymbolKind = "interface"
	KindTrait       SymbolKind = "trait"
	KindEnum        SymbolKind = "enum"
	KindEnumMember  SymbolKind = "enum_member"
	KindModule      SymbolKind = "module"
	KindNamespace   SymbolKind = "namespace"
	KindType        SymbolKind = "type"
	KindProperty    SymbolKind = "property"
	KindField       SymbolKind = "field"
	KindVariable    SymbolKind = "variable"
	KindConstant    SymbolKind = "constant"
	KindImport      SymbolKind = "import"
	KindExport      SymbolKind = "export"
	KindEvent       SymbolKind = "event"
	KindDelegate    SymbolKind = "delegate"
)

var validKinds = map[SymbolKind]struct{}{
	KindFunction: {}, KindMethod: {}, KindConstructor: {}, KindClass: {}, KindStruct: {},
	KindInterface: {}, KindTrait: {}, KindEnum: {}, KindEnumMember: {}, KindModule: {},
	KindNamespace: {}, KindType: {}, KindProperty: {}, KindField: {}, KindVariable: {},
	KindConstant: {}, KindImport: {}, KindExport: {}, KindEvent: {}, KindDelegate: {},
}

// ParseSymbolKind converts a stored kind string, accepting any letter case
func ParseSymbolKind(s string) SymbolKind {
	kind := SymbolKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validKinds[kind]; ok {
		return kind
	}
	return SymbolKind(s)
}

// Visibility represents the declared access level of a symbol
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// Symbol represents one indexed code entity as persisted by the extraction pipeline.
// Symbols are read-only facts: ranking state lives in ScoredCandidate, never here.
type Symbol struct {
	// Identification
	ID       string // Unique and stable within a workspace
	Name     string
	Kind     SymbolKind
	Language string

	// Location
	FilePath    string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
	StartByte   int
	EndByte     int

	// Content
	Signature  string // Empty when the extractor produced none
	DocComment string

	// Scope
	Visibility Visibility
	ParentID   string // Owning scope; empty for top-level symbols

	Metadata map[string]string
}

// ValidateKind checks if the symbol kind is valid
func (s *Symbol) ValidateKind() error {
	if _, ok := validKinds[s.Kind]; !ok {
		return errors.New("invalid symbol kind")
	}
	return nil
}

// Validate performs comprehensive validation of the symbol
func (s *Symbol) Validate() error {
	if s.ID == "" {
		return errors.New("symbol id is required")
	}

	if s.Name == "" {
		return errors.New("symbol name is required")
	}

	if err := s.ValidateKind(); err != nil {
		return err
	}

	if s.FilePath == "" {
		return errors.New("file path is required")
	}

	if s.ParentID == s.ID {
		return errors.New("symbol cannot be its own parent")
	}

	// Position validation
	if s.StartLine < 0 || s.EndLine < 0 {
		return errors.New("invalid position: line numbers must not be negative")
	}

	if s.EndLine > 0 && s.StartLine > s.EndLine {
		return errors.New("invalid position: start line must be before or equal to end line")
	}

	return nil
}

// IsTypeDeclaration reports whether the symbol declares a class-like type
func (s *Symbol) IsTypeDeclaration() bool {
	return s.Kind == KindClass || s.Kind == KindStruct
}

// IsCallable reports whether the symbol is a function or method
func (s *Symbol) IsCallable() bool {
	return s.Kind == KindFunction || s.Kind == KindMethod
}

// Clone returns a copy that shares no mutable state with s
func (s *Symbol) Clone() *Symbol {
	if s == nil {
		return nil
	}
	c := *s
	if s.Metadata != nil {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
