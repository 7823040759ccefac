package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/codelogic-mcp/internal/searcher"
	"github.com/dshills/codelogic-mcp/internal/workspace"
)

const (
	// ServerName is the MCP server name
	ServerName = "codelogic-mcp"
	// ServerVersion is the current server version
	ServerVersion = "0.3.0"
)

// ErrNilWorkspace is returned by NewServer when no workspace is given
var ErrNilWorkspace = errors.New("workspace is required")

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	ws       *workspace.Workspace
	searcher *searcher.Searcher
	logger   *slog.Logger
	version  string
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server's logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion overrides the version reported to clients
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// NewServer creates a new MCP server over an opened workspace.
// A nil searcher gets one with default weights.
func NewServer(ws *workspace.Workspace, srch *searcher.Searcher, opts ...Option) (*Server, error) {
	if ws == nil {
		return nil, ErrNilWorkspace
	}

	s := &Server{
		ws:       ws,
		searcher: srch,
		logger:   slog.Default(),
		version:  ServerVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.searcher == nil {
		s.searcher = searcher.NewSearcher(ws, searcher.WithLogger(s.logger))
	}

	s.mcp = server.NewMCPServer(
		ServerName,
		s.version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
// The workspace is closed when Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.ws.Close(); err != nil {
			s.logger.Warn("failed to close workspace", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("serving MCP over stdio", slog.String("name", ServerName), slog.String("version", s.version))
	errCh := make(chan error, 1)
	go func() { errCh <- server.ServeStdio(s.mcp) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(findLogicTool(), s.handleFindLogic)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
