package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mj1618/figma-batch/internal/batch"
	"github.com/mj1618/figma-batch/internal/model"
	"github.com/mj1618/figma-batch/internal/output"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Execute many Figma commands in one round trip",
	Long: `Execute a list of Figma plugin commands from YAML on stdin.

Each entry has a command name, optional params and an optional priority
(high, normal, low). Commands run high priority first; equal priorities keep
their order. Results are reported in the order given.

Input is a YAML list, or a mapping with "commands" and "stopOnError".
--stop-on-error overrides the file.

Example:
  figma-batch bundle --channel abc123 --stop-on-error <<'EOF'
  - command: create_frame
    params: { x: 0, y: 0, width: 400, height: 300, name: Card }
    priority: high
  - command: create_text
    params: { x: 24, y: 24, text: Hello }
  - command: create_rectangle
    params: { x: 24, y: 80, width: 120, height: 40 }
    priority: low
  EOF`,
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	addBatchFlags(bundleCmd)
	bundleCmd.Flags().Bool("stop-on-error", false, "Stop at the first failed command")
}

func runBundle(cmd *cobra.Command, args []string) error {
	bf, err := readBatchFile(cmd, "commands")
	if err != nil {
		return err
	}
	commands, err := model.DecodeCommands(bf.Items)
	if err != nil {
		return err
	}
	if err := model.ValidateCommands(commands); err != nil {
		return err
	}
	stopOnError := bf.StopOnError != nil && *bf.StopOnError
	if cmd.Flags().Changed("stop-on-error") {
		stopOnError, _ = cmd.Flags().GetBool("stop-on-error")
	}
	if len(commands) == 0 {
		return output.PrintResult(cmd.OutOrStdout(), batch.Result{Operation: batch.OpBundledCommands, Termination: batch.AllAttempted})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	client, err := joinedClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := batch.NewRunner(client, batch.WithLogger(logger)).ExecuteBundle(ctx, commands, stopOnError)
	if err != nil {
		return err
	}
	return output.PrintResult(cmd.OutOrStdout(), res)
}
