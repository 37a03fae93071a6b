package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mj1618/figma-batch/internal/batch"
	"github.com/mj1618/figma-batch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the batch tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the Figma batch
tools: batch_create_elements, execute_bundled_commands and join_channel.

The relay is dialed lazily. Call join_channel first, or pass --channel to join
at startup.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport at /mcp, metrics at /metrics

Examples:
  figma-batch serve
  figma-batch serve --channel abc123
  figma-batch serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http (env FIGMA_BATCH_TRANSPORT)")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http transport (env FIGMA_BATCH_PORT)")
	serveCmd.Flags().String("channel", "", "Join this relay channel at startup (env FIGMA_BATCH_CHANNEL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	srvCfg := server.Config{Transport: cfg.Transport, Port: cfg.Port}
	if cmd.Flags().Changed("transport") {
		srvCfg.Transport, _ = cmd.Flags().GetString("transport")
	}
	if cmd.Flags().Changed("port") {
		srvCfg.Port, _ = cmd.Flags().GetInt("port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newRelayClient()
	defer client.Close()

	if channel := channelFlag(cmd); channel != "" {
		if err := client.Join(ctx, channel); err != nil {
			// The agent can still call join_channel once the plugin is up.
			logger.Warn().Err(err).Str("channel", channel).Msg("could not join channel at startup")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	runner := batch.NewRunner(client,
		batch.WithMetrics(batch.NewMetrics(reg)),
		batch.WithLogger(logger),
	)

	srv := server.NewServer(runner, client,
		server.WithGatherer(reg),
		server.WithLogger(logger),
	)
	if err := srv.Serve(ctx, srvCfg); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}
