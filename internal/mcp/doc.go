// Package mcp implements the Model Context Protocol (MCP) server for codelogic.
//
// The server exposes two tools to AI coding assistants:
//   - find_logic: Rank the symbols implementing a business domain concept
//   - get_status: Report store statistics and search engine state
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Basic Usage
//
//	codelogic serve --db ./.codelogic/symbols.db
//
// # Tool: find_logic
//
//	Request:
//	{
//	  "name": "find_logic",
//	  "arguments": {
//	    "domain": "payment processing",
//	    "max_results": 50,
//	    "min_business_score": 0.3,
//	    "group_by_layer": true
//	  }
//	}
//
//	Response:
//	{
//	  "tool": "find_logic",
//	  "found_count": 2,
//	  "intelligence_layers": [
//	    "Keyword search: 14 matches",
//	    "Architectural patterns: 3 matches",
//	    "Path analysis: 17 candidates",
//	    "Semantic search: 9 matches",
//	    "Graph analysis: complete"
//	  ],
//	  "business_symbols": [
//	    {"rank": 1, "name": "PaymentService", "layer": "service", "confidence": 0.91, ...}
//	  ],
//	  "relationships": [{"from": "...", "to": "...", "kind": "calls"}],
//	  "layers": [{"layer": "service", "count": 1, "symbols": ["..."]}],
//	  "summary": "Found 2 business logic components for 'payment processing'\nTop: PaymentService, PaymentRepository"
//	}
//
// A tier that fails or is not ready contributes nothing and reports
// "unavailable" in intelligence_layers; the query still succeeds.
//
// # Error Codes
//
//	-32602: Invalid params (max_results outside 1-500, min_business_score outside 0-1)
//	-32603: Internal error
//	-32003: No symbol store open
//	-32004: Empty domain
package mcp
