package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mj1618/figma-batch/internal/batch"
	"github.com/mj1618/figma-batch/internal/model"
	"github.com/mj1618/figma-batch/internal/output"
)

var createElementsCmd = &cobra.Command{
	Use:   "create-elements",
	Short: "Create many Figma elements in one round trip",
	Long: `Create rectangles, frames and text nodes from a YAML list on stdin.

Every element needs type, x and y. Elements may reference an earlier element's
node id with parentId. The whole list is validated before anything is sent.

Example:
  figma-batch create-elements --channel abc123 <<'EOF'
  - { type: frame, x: 0, y: 0, width: 400, height: 300, name: Card, styles: { fillColor: white } }
  - { type: text, x: 24, y: 24, text: "Hello", styles: { fontSize: 24, fillColor: "#1e1e1e" } }
  - { type: rectangle, x: 24, y: 80, width: 120, height: 40, styles: { cornerRadius: 8, fillColor: cornflowerblue } }
  EOF`,
	RunE: runCreateElements,
}

func init() {
	rootCmd.AddCommand(createElementsCmd)
	addBatchFlags(createElementsCmd)
}

func runCreateElements(cmd *cobra.Command, args []string) error {
	bf, err := readBatchFile(cmd, "elements")
	if err != nil {
		return err
	}
	elements, err := model.DecodeElements(bf.Items)
	if err != nil {
		return err
	}
	// Reject bad input before touching the relay.
	if err := model.ValidateElements(elements); err != nil {
		return err
	}
	if len(elements) == 0 {
		return output.PrintResult(cmd.OutOrStdout(), batch.Result{Operation: batch.OpCreateElements, Termination: batch.AllAttempted})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	client, err := joinedClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := batch.NewRunner(client, batch.WithLogger(logger)).CreateElements(ctx, elements)
	if err != nil {
		return err
	}
	return output.PrintResult(cmd.OutOrStdout(), res)
}
