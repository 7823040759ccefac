package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codelogic-mcp/internal/searcher"
	"github.com/dshills/codelogic-mcp/internal/workspace"
	"github.com/dshills/codelogic-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotIndexed    = -32003 // No symbol store is open for the workspace
	ErrorCodeEmptyQuery    = -32004 // Domain parameter is empty
)

// summaryTopCount is how many symbol names the summary line lists
const summaryTopCount = 5

// handleFindLogic handles the find_logic tool invocation
func (s *Server) handleFindLogic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	domain := strings.TrimSpace(getStringDefault(args, "domain", ""))
	if domain == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "domain parameter is required and cannot be empty", map[string]interface{}{
			"param":  "domain",
			"reason": "missing or empty",
		})
	}

	maxResults := getIntDefault(args, "max_results", searcher.DefaultMaxResults)
	if maxResults < 1 || maxResults > MaxResultsLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("max_results must be between 1 and %d", MaxResultsLimit), map[string]interface{}{
			"param": "max_results",
			"value": maxResults,
		})
	}

	minScore := getFloatDefault(args, "min_business_score", DefaultMinBusinessScore)
	if minScore < 0 || minScore > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "min_business_score must be between 0 and 1", map[string]interface{}{
			"param": "min_business_score",
			"value": minScore,
		})
	}

	groupByLayer := getBoolDefault(args, "group_by_layer", true)
	useCache := getBoolDefault(args, "use_cache", true)

	resp, err := s.searcher.FindLogic(ctx, searcher.LogicRequest{
		Domain:     domain,
		MaxResults: maxResults,
		MinScore:   minScore,
		UseCache:   useCache,
	})
	if errors.Is(err, searcher.ErrNoWorkspace) {
		return nil, newMCPError(ErrorCodeNotIndexed, "no symbol store is open for this workspace", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "find_logic failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Debug("find_logic",
		slog.String("domain", domain),
		slog.Int("results", len(resp.Results)),
		slog.Bool("cache_hit", resp.CacheHit),
		slog.Duration("duration", resp.Duration))

	response := map[string]interface{}{
		"tool":                "find_logic",
		"domain":              domain,
		"found_count":         len(resp.Results),
		"max_results":         maxResults,
		"min_business_score":  minScore,
		"group_by_layer":      groupByLayer,
		"cache_hit":           resp.CacheHit,
		"duration_ms":         resp.Duration.Milliseconds(),
		"intelligence_layers": resp.Insights,
		"business_symbols":    formatResults(resp.Results),
		"relationships":       formatRelationships(resp.Relationships),
		"summary":             formatSummary(domain, resp.Results),
	}
	if groupByLayer {
		response["layers"] = formatLayers(resp.Layers())
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.Params.Arguments != nil {
		if _, ok := request.Params.Arguments.(map[string]interface{}); !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
		}
	}

	status, err := s.ws.Status(ctx)
	if errors.Is(err, workspace.ErrStoreUnavailable) {
		response := map[string]interface{}{
			"indexed": false,
			"message": "No symbol store is open. Set workspace.db_path or CODELOGIC_DB_PATH.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": status.Store.SymbolsCount > 0,
		"statistics": map[string]interface{}{
			"files_count":         status.Store.FilesCount,
			"symbols_count":       status.Store.SymbolsCount,
			"relationships_count": status.Store.RelationshipsCount,
			"embeddings_count":    status.Store.EmbeddingsCount,
			"index_size_mb":       fmt.Sprintf("%.2f", status.Store.SizeMB),
			"embedding_models":    status.Store.Models,
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Store.Health.DatabaseAccessible,
			"embeddings_available": status.Store.Health.EmbeddingsAvailable,
			"fts_indexes_built":    status.Store.Health.FTSIndexBuilt,
			"vector_index_ready":   status.VectorIndexReady,
			"guard_poisoned":       status.GuardPoisoned,
		},
		"engine": map[string]interface{}{
			"provider":     status.EngineProvider,
			"model":        status.EngineModel,
			"vector_count": status.VectorCount,
		},
		"cache_entries": s.searcher.CacheLen(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

func formatResults(results []types.LogicResult) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"rank":       r.Rank,
			"id":         r.Symbol.ID,
			"name":       r.Symbol.Name,
			"kind":       string(r.Symbol.Kind),
			"language":   r.Symbol.Language,
			"file_path":  r.Symbol.FilePath,
			"start_line": r.Symbol.StartLine,
			"end_line":   r.Symbol.EndLine,
			"confidence": r.Confidence,
			"layer":      r.Layer,
		}
		if r.Symbol.Signature != "" {
			entry["signature"] = r.Symbol.Signature
		}
		out = append(out, entry)
	}
	return out
}

func formatRelationships(rels []*types.Relationship) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rels))
	for _, rel := range rels {
		out = append(out, map[string]interface{}{
			"from":      rel.FromSymbolID,
			"to":        rel.ToSymbolID,
			"kind":      string(rel.Kind),
			"file_path": rel.FilePath,
			"line":      rel.LineNumber,
		})
	}
	return out
}

func formatLayers(groups []searcher.LayerGroup) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		ids := make([]string, 0, len(g.Results))
		for _, r := range g.Results {
			ids = append(ids, r.Symbol.ID)
		}
		out = append(out, map[string]interface{}{
			"layer":   g.Layer,
			"count":   len(g.Results),
			"symbols": ids,
		})
	}
	return out
}

func formatSummary(domain string, results []types.LogicResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No business logic found for domain '%s'\nTry lowering min_business_score or different keywords", domain)
	}

	top := make([]string, 0, summaryTopCount)
	for i := 0; i < len(results) && i < summaryTopCount; i++ {
		top = append(top, results[i].Symbol.Name)
	}
	return fmt.Sprintf("Found %d business logic components for '%s'\nTop: %s", len(results), domain, strings.Join(top, ", "))
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a numeric parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	switch val := args[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
