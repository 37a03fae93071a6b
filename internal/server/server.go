// Package server exposes the batch operations as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mj1618/figma-batch/internal/batch"
	"github.com/mj1618/figma-batch/internal/version"
)

// Transports supported by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Joiner joins a relay channel so later batches reach the Figma plugin.
type Joiner interface {
	Join(ctx context.Context, channel string) error
}

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wraps the MCP server with the batch runner and relay connection.
type Server struct {
	runner   *batch.Runner
	joiner   Joiner
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	mcp      *mcpserver.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves metrics from g at /metrics on the HTTP transport.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the server's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an MCP server with the figma-batch tools registered.
func NewServer(runner *batch.Runner, joiner Joiner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		joiner:   joiner,
		gatherer: prometheus.DefaultGatherer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcp = mcpserver.NewMCPServer("figma-batch", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve runs the server on the configured transport until ctx is done or the
// transport fails.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "", TransportStdio:
		s.logger.Info().Str("transport", TransportStdio).Msg("MCP server starting")
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		return s.serveHTTP(ctx, cfg.Port)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// Handler returns the HTTP routes for the streamable-http transport.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) serveHTTP(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("transport", TransportHTTP).Str("address", httpServer.Addr).Msg("MCP server listening")
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info().Msg("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(batchCreateElementsTool(), s.handleBatchCreateElements)
	s.mcp.AddTool(executeBundledCommandsTool(), s.handleExecuteBundledCommands)
	s.mcp.AddTool(joinChannelTool(), s.handleJoinChannel)
}
