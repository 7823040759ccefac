// Package types provides shared type definitions for the CodeLogic MCP server.
//
// This package defines the domain types used across the store, the ranking
// engine and the tool layer: symbols, relationships, scored candidates and
// ranked results.
//
// # Core Types
//
// Symbol represents one code entity extracted by a language extractor and
// persisted in the symbol store:
//
//	symbol := &types.Symbol{
//	    ID:        "sym_8f2c",
//	    Name:      "PaymentService",
//	    Kind:      types.KindClass,
//	    Language:  "typescript",
//	    FilePath:  "src/services/PaymentService.ts",
//	}
//
// Relationship is a directed edge between two symbols (calls, implements,
// extends, ...). Incoming relationships drive the centrality boost.
//
// # Persisted Facts vs Ranking State
//
// Symbols are never used as ranking scratch space. Every tier of the
// business-logic search works on ScoredCandidate values, which wrap a symbol
// together with a query-scoped score and classification tag:
//
//	c := types.NewCandidate(symbol, 0.5)
//	c.Boost(0.25) // clamped to [0, 1]
//	c.Tag = "service"
//
// # Results
//
// LogicResult is one ranked entry of a business-logic query. Confidence is
// always within [0, 1], higher values indicating stronger evidence that the
// symbol implements the queried concept.
package types
