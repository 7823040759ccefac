package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/codelogic-mcp/internal/workspace"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show symbol store statistics and search engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, _, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()

			if warm {
				// Engine or index failures show up as "not ready" below
				_, _ = ws.VectorIndex(cmd.Context())
			}

			status, err := ws.Status(cmd.Context())
			if err != nil {
				return err
			}

			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", false, "Initialise the embedding engine and vector index before reporting")

	return cmd
}

func printStatus(w io.Writer, s *workspace.Status) {
	fmt.Fprintf(w, "Files:          %d\n", s.Store.FilesCount)
	fmt.Fprintf(w, "Symbols:        %d\n", s.Store.SymbolsCount)
	fmt.Fprintf(w, "Relationships:  %d\n", s.Store.RelationshipsCount)
	fmt.Fprintf(w, "Embeddings:     %d\n", s.Store.EmbeddingsCount)
	fmt.Fprintf(w, "Size:           %.2f MB\n", s.Store.SizeMB)
	if len(s.Store.Models) > 0 {
		fmt.Fprintf(w, "Models:         %s\n", strings.Join(s.Store.Models, ", "))
	}
	fmt.Fprintf(w, "FTS index:      %s\n", yesNo(s.Store.Health.FTSIndexBuilt))
	if s.EngineModel != "" {
		fmt.Fprintf(w, "Engine:         %s/%s\n", s.EngineProvider, s.EngineModel)
	}
	fmt.Fprintf(w, "Vector index:   %s (%d vectors)\n", readyLabel(s.VectorIndexReady), s.VectorCount)
	if s.GuardPoisoned {
		fmt.Fprintln(w, "Warning:        an earlier query panicked; results may be stale")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func readyLabel(b bool) string {
	if b {
		return "ready"
	}
	return "not ready"
}
