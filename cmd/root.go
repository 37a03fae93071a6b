package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mj1618/figma-batch/internal/config"
	"github.com/mj1618/figma-batch/internal/output"
	"github.com/mj1618/figma-batch/internal/version"
)

// Settings resolved by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "figma-batch",
	Short: "Create Figma elements and run Figma commands in batches",
	Long: `figma-batch sends many Figma operations in a single round trip through the
"talk to figma" WebSocket relay, and reports per-operation outcomes.

Run "figma-batch serve" to expose the batch tools to an MCP client, or pipe a
YAML batch into "create-elements" or "bundle".`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: text, yaml, json (default text)")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("relay-url", "", "Figma relay WebSocket URL (env FIGMA_BATCH_RELAY_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout, extended by progress updates (env FIGMA_BATCH_TIMEOUT)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env FIGMA_BATCH_LOG_LEVEL)")
	rootCmd.PersistentPreRunE = setup
}

// setup loads the environment configuration and applies any flags the user
// set explicitly on top of it.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("relay-url") {
		loaded.RelayURL, _ = flags.GetString("relay-url")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		if timeout <= 0 {
			return fmt.Errorf("--timeout must be positive, got %s", timeout)
		}
		loaded.Timeout = timeout
	}
	if flags.Changed("log-level") {
		loaded.LogLevel, _ = flags.GetString("log-level")
	}
	cfg = loaded
	logger = config.NewLogger(cfg.LogLevel)

	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")
	return nil
}

// requestTimeout bounds a whole CLI invocation: connect, join, and one batch.
func requestTimeout() time.Duration {
	return 3*cfg.Timeout + 5*time.Second
}
