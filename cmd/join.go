package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Check that the relay is reachable and the channel can be joined",
	Example: `  figma-batch join --channel abc123
  FIGMA_BATCH_RELAY_URL=ws://figma-host:3055 figma-batch join --channel abc123`,
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().String("channel", "", "Relay channel the Figma plugin joined (env FIGMA_BATCH_CHANNEL)")
}

func runJoin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	client, err := joinedClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Successfully joined channel: %s\n", client.Channel())
	return err
}
