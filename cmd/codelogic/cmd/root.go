// Package cmd provides the CLI commands for codelogic.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/codelogic-mcp/internal/config"
	"github.com/dshills/codelogic-mcp/internal/logging"
	"github.com/dshills/codelogic-mcp/internal/searcher"
	"github.com/dshills/codelogic-mcp/internal/storage"
	"github.com/dshills/codelogic-mcp/internal/workspace"
)

// Set at build time with -ldflags "-X ...cmd.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

// NewRootCmd creates the root command for the codelogic CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "codelogic",
		Short: "Business-logic search over an indexed codebase",
		Long: `codelogic ranks the symbols that implement a business domain concept by
combining keyword, architectural pattern, path, semantic and call-graph signals.

It reads a symbol store produced by an extraction pipeline and serves
queries over the Model Context Protocol or from the command line.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate(fmt.Sprintf("codelogic version {{.Version}}\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\n",
		BuildTime, storage.BuildMode, storage.DriverName))

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.codelogic/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Symbol store path (overrides workspace.db_path)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newFindCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))

	return cmd
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// load resolves configuration, applies flag overrides and installs the logger.
func (o *globalOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	if o.dbPath != "" {
		cfg.Workspace.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, nil, err
		}
	}

	return cfg, logging.Setup(cfg.Logging), nil
}

// openWorkspace opens the configured store and builds a searcher over it.
func (o *globalOptions) openWorkspace() (*workspace.Workspace, *searcher.Searcher, *slog.Logger, error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, nil, nil, err
	}

	dbPath := cfg.DBPath()
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	ws, err := workspace.Open(dbPath,
		workspace.WithLogger(logger),
		workspace.WithPoolSize(cfg.Pool.Size),
		workspace.WithEmbedderConfig(cfg.EmbedderConfig()),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("workspace opened", slog.String("db_path", dbPath))

	srch := searcher.NewSearcher(ws,
		searcher.WithWeights(cfg.Search),
		searcher.WithCacheSize(cfg.Responses.CacheSize),
		searcher.WithLogger(logger),
	)
	return ws, srch, logger, nil
}
