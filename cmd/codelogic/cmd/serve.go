package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/codelogic-mcp/internal/mcp"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve find_logic and get_status over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, srch, logger, err := opts.openWorkspace()
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(ws, srch, mcp.WithLogger(logger), mcp.WithVersion(Version))
			if err != nil {
				_ = ws.Close()
				return err
			}

			err = server.Serve(cmd.Context())
			if errors.Is(err, context.Canceled) {
				logger.Info("server stopped")
				return nil
			}
			if err != nil {
				logger.Error("server error", slog.String("error", err.Error()))
			}
			return err
		},
	}
}
