package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/codelogic-mcp/internal/mcp"
	"github.com/dshills/codelogic-mcp/internal/searcher"
)

// findOutput is the JSON printed by the find command
type findOutput struct {
	Domain     string        `json:"domain"`
	Count      int           `json:"count"`
	DurationMS int64         `json:"duration_ms"`
	Insights   []string      `json:"insights"`
	Results    []findResult  `json:"results"`
	Edges      []findEdge    `json:"relationships"`
	Layers     []layerOutput `json:"layers,omitempty"`
}

type findResult struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	FilePath   string  `json:"file_path"`
	StartLine  int     `json:"start_line"`
	Confidence float64 `json:"confidence"`
	Layer      string  `json:"layer"`
}

type findEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type layerOutput struct {
	Layer   string   `json:"layer"`
	Symbols []string `json:"symbols"`
}

func newFindCmd(opts *globalOptions) *cobra.Command {
	var (
		maxResults int
		minScore   float64
		group      bool
	)

	cmd := &cobra.Command{
		Use:   "find <domain>...",
		Short: "Run a business-logic query and print the ranked results as JSON",
		Example: `  codelogic find payment processing
  codelogic find --max-results 10 --min-score 0.3 order validation`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults < 1 || maxResults > mcp.MaxResultsLimit {
				return fmt.Errorf("--max-results must be between 1 and %d, got %d", mcp.MaxResultsLimit, maxResults)
			}

			ws, srch, _, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()

			resp, err := srch.FindLogic(cmd.Context(), searcher.LogicRequest{
				Domain:     strings.Join(args, " "),
				MaxResults: maxResults,
				MinScore:   minScore,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(newFindOutput(resp, group))
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max-results", "n", searcher.DefaultMaxResults, "Maximum number of results")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Drop candidates scoring below this confidence")
	cmd.Flags().BoolVar(&group, "group", false, "Include results grouped by layer")

	return cmd
}

func newFindOutput(resp *searcher.LogicResponse, group bool) findOutput {
	out := findOutput{
		Domain:     resp.Domain,
		Count:      len(resp.Results),
		DurationMS: resp.Duration.Milliseconds(),
		Insights:   resp.Insights,
		Results:    make([]findResult, 0, len(resp.Results)),
		Edges:      make([]findEdge, 0, len(resp.Relationships)),
	}

	for _, r := range resp.Results {
		out.Results = append(out.Results, findResult{
			Rank:       r.Rank,
			ID:         r.Symbol.ID,
			Name:       r.Symbol.Name,
			Kind:       string(r.Symbol.Kind),
			FilePath:   r.Symbol.FilePath,
			StartLine:  r.Symbol.StartLine,
			Confidence: r.Confidence,
			Layer:      r.Layer,
		})
	}
	for _, rel := range resp.Relationships {
		out.Edges = append(out.Edges, findEdge{From: rel.FromSymbolID, To: rel.ToSymbolID, Kind: string(rel.Kind)})
	}

	if group {
		for _, g := range resp.Layers() {
			ids := make([]string, 0, len(g.Results))
			for _, r := range g.Results {
				ids = append(ids, r.Symbol.ID)
			}
			out.Layers = append(out.Layers, layerOutput{Layer: g.Layer, Symbols: ids})
		}
	}

	return out
}
