package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/figma-batch/internal/relay"
)

var errNoChannel = errors.New("no channel given: pass --channel or set FIGMA_BATCH_CHANNEL")

// batchFile is a YAML batch: either a bare list of items, or a mapping that
// holds the list under key plus batch options.
type batchFile struct {
	Items       any
	StopOnError *bool
}

// readBatchFile reads a YAML batch from --file, or stdin when no file is given.
func readBatchFile(cmd *cobra.Command, key string) (batchFile, error) {
	var (
		data []byte
		err  error
	)
	if path, _ := cmd.Flags().GetString("file"); path != "" && path != "-" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return batchFile{}, fmt.Errorf("failed to read batch: %w", err)
	}
	return parseBatchFile(data, key)
}

func parseBatchFile(data []byte, key string) (batchFile, error) {
	if len(data) == 0 {
		return batchFile{}, fmt.Errorf("no %s provided: pipe a YAML list on stdin or pass --file", key)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return batchFile{}, fmt.Errorf("failed to parse YAML batch: %w", err)
	}

	switch v := doc.(type) {
	case nil:
		return batchFile{Items: []any{}}, nil
	case []any:
		return batchFile{Items: v}, nil
	case map[string]any:
		items, ok := v[key]
		if !ok {
			return batchFile{}, fmt.Errorf("batch mapping has no %q key", key)
		}
		bf := batchFile{Items: items}
		if raw, ok := v["stopOnError"]; ok {
			b, ok := raw.(bool)
			if !ok {
				return batchFile{}, fmt.Errorf("stopOnError must be true or false, got %v", raw)
			}
			bf.StopOnError = &b
		}
		return bf, nil
	default:
		return batchFile{}, fmt.Errorf("expected a YAML list of %s or a mapping with a %q key", key, key)
	}
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the YAML batch from this file instead of stdin")
	cmd.Flags().String("channel", "", "Relay channel the Figma plugin joined (env FIGMA_BATCH_CHANNEL)")
}

func channelFlag(cmd *cobra.Command) string {
	if cmd.Flags().Changed("channel") {
		channel, _ := cmd.Flags().GetString("channel")
		return channel
	}
	return cfg.Channel
}

func newRelayClient() *relay.Client {
	return relay.NewClient(cfg.RelayURL,
		relay.WithTimeout(cfg.Timeout),
		relay.WithLogger(logger),
	)
}

// joinedClient connects to the relay and joins the channel for cmd.
func joinedClient(ctx context.Context, cmd *cobra.Command) (*relay.Client, error) {
	channel := channelFlag(cmd)
	if channel == "" {
		return nil, errNoChannel
	}
	client := newRelayClient()
	if err := client.Join(ctx, channel); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
