package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codelogic-mcp/internal/searcher"
)

const (
	// MaxResultsLimit bounds the max_results parameter
	MaxResultsLimit = 500
	// DefaultMinBusinessScore is the tool's default score floor
	DefaultMinBusinessScore = 0.3
)

// findLogicTool returns the tool definition for find_logic
func findLogicTool() mcp.Tool {
	return mcp.Tool{
		Name: "find_logic",
		Description: "Find the symbols that implement a business domain concept, ranked by keyword, " +
			"architectural pattern, path, semantic similarity and call-graph centrality",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Business domain in free text, e.g. \"payment processing\"",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-500)",
					"default":     searcher.DefaultMaxResults,
					"minimum":     1,
					"maximum":     MaxResultsLimit,
				},
				"min_business_score": map[string]interface{}{
					"type":        "number",
					"description": "Drop candidates scoring below this confidence (0-1)",
					"default":     DefaultMinBusinessScore,
					"minimum":     0,
					"maximum":     1,
				},
				"group_by_layer": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, also group results by architectural layer",
					"default":     true,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, serve repeated queries from the response cache",
					"default":     true,
				},
			},
			Required: []string{"domain"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report symbol store statistics, embedding engine and vector index state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
