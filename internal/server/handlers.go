package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mj1618/figma-batch/internal/batch"
	"github.com/mj1618/figma-batch/internal/model"
)

// Prefixes of batch-level failure messages returned to the agent.
const (
	createElementsErrorPrefix  = "Error creating elements in batch: "
	bundledCommandsErrorPrefix = "Error executing bundled commands: "
)

func (s *Server) handleBatchCreateElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	raw, ok := params["elements"]
	if !ok {
		return mcp.NewToolResultError("elements parameter is required"), nil
	}

	elements, err := model.DecodeElements(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.runner.CreateElements(ctx, elements)
	if err != nil {
		return errorResult(createElementsErrorPrefix, err), nil
	}
	return mcp.NewToolResultText(batch.Format(res)), nil
}

func (s *Server) handleExecuteBundledCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	raw, ok := params["commands"]
	if !ok {
		return mcp.NewToolResultError("commands parameter is required"), nil
	}
	stopOnError := boolParam(params, "stopOnError", false)

	commands, err := model.DecodeCommands(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.runner.ExecuteBundle(ctx, commands, stopOnError)
	if err != nil {
		return errorResult(bundledCommandsErrorPrefix, err), nil
	}
	return mcp.NewToolResultText(batch.Format(res)), nil
}

func (s *Server) handleJoinChannel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channel := stringParam(request.GetArguments(), "channel", "")
	if channel == "" {
		return mcp.NewToolResultError("channel parameter is required"), nil
	}
	if s.joiner == nil {
		return mcp.NewToolResultError("no relay connection configured"), nil
	}

	if err := s.joiner.Join(ctx, channel); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error joining channel: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully joined channel: %s", channel)), nil
}

// errorResult reports a rejected or failed batch. Validation problems are
// listed as-is; transport failures carry the operation's prefix and the
// underlying cause.
func errorResult(prefix string, err error) *mcp.CallToolResult {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(verr.Error())
	}
	var terr *batch.TransportError
	if errors.As(err, &terr) {
		err = terr.Err
	}
	return mcp.NewToolResultError(prefix + err.Error())
}

func stringParam(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return def
}
