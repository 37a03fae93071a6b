package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/figma-batch/internal/batch"
)

type fakeExecutor struct {
	reply    string
	err      error
	commands []string
	params   []any
}

func (f *fakeExecutor) Execute(_ context.Context, command string, params any) (json.RawMessage, error) {
	f.commands = append(f.commands, command)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.reply), nil
}

type fakeJoiner struct {
	err     error
	channel string
}

func (f *fakeJoiner) Join(_ context.Context, channel string) error {
	f.channel = channel
	return f.err
}

func newTestServer(exec *fakeExecutor, joiner Joiner) *Server {
	return NewServer(batch.NewRunner(exec), joiner, WithGatherer(prometheus.NewRegistry()))
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func TestHandleBatchCreateElements(t *testing.T) {
	exec := &fakeExecutor{reply: `{"success": true, "createdCount": 2, "failedCount": 0, "results": [
		{"success": true, "nodeId": "1:2", "type": "frame"},
		{"success": true, "nodeId": "1:3", "type": "text"}]}`}
	s := newTestServer(exec, nil)

	res, err := s.handleBatchCreateElements(context.Background(), callTool("batch_create_elements", map[string]any{
		"elements": []any{
			map[string]any{"type": "frame", "x": 0, "y": 0, "width": 200, "height": 100, "styles": map[string]any{"fillColor": "white"}},
			map[string]any{"type": "text", "x": 10, "y": 10, "text": "Hello", "parentId": "1:2"},
		},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "2 of 2 elements created successfully")
	assert.Contains(t, text, "- frame (1:2)")
	assert.Equal(t, []string{"batch_create_elements"}, exec.commands)
}

func TestHandleBatchCreateElements_Errors(t *testing.T) {
	t.Run("missing elements", func(t *testing.T) {
		exec := &fakeExecutor{}
		res, err := newTestServer(exec, nil).handleBatchCreateElements(context.Background(), callTool("batch_create_elements", nil))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Empty(t, exec.commands)
	})

	t.Run("invalid element", func(t *testing.T) {
		exec := &fakeExecutor{}
		res, err := newTestServer(exec, nil).handleBatchCreateElements(context.Background(), callTool("batch_create_elements", map[string]any{
			"elements": []any{map[string]any{"type": "ellipse", "x": 0, "y": 0}},
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "elements[0]")
		assert.Empty(t, exec.commands)
	})

	t.Run("transport failure", func(t *testing.T) {
		exec := &fakeExecutor{err: errors.New("relay unreachable")}
		res, err := newTestServer(exec, nil).handleBatchCreateElements(context.Background(), callTool("batch_create_elements", map[string]any{
			"elements": []any{map[string]any{"type": "rectangle", "x": 1, "y": 2}},
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Error creating elements in batch: relay unreachable", resultText(t, res))
	})
}

func TestHandleBatchCreateElements_Empty(t *testing.T) {
	exec := &fakeExecutor{}
	res, err := newTestServer(exec, nil).handleBatchCreateElements(context.Background(), callTool("batch_create_elements", map[string]any{
		"elements": []any{},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, batch.NoElementsMessage, resultText(t, res))
	assert.Empty(t, exec.commands, "empty batches never reach the executor")
}

func TestHandleExecuteBundledCommands(t *testing.T) {
	exec := &fakeExecutor{reply: `{"success": false, "completedCount": 2, "failedCount": 1, "results": [
		{"command": "create_frame", "success": true},
		{"command": "create_text", "success": true},
		{"command": "create_rectangle", "success": false, "error": "Parent node not found"}]}`}
	s := newTestServer(exec, nil)

	res, err := s.handleExecuteBundledCommands(context.Background(), callTool("execute_bundled_commands", map[string]any{
		"commands": []any{
			map[string]any{"command": "create_frame", "params": map[string]any{"x": 0}, "priority": "high"},
			map[string]any{"command": "create_text", "params": map[string]any{"text": "Hi"}},
			map[string]any{"command": "create_rectangle", "priority": "low"},
		},
		"stopOnError": true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError, "per-item failures are reported as data")

	text := resultText(t, res)
	assert.Contains(t, text, "2 of 3 commands executed successfully")
	assert.Contains(t, text, "- create_rectangle: Parent node not found")

	require.Len(t, exec.params, 1)
	b, err := json.Marshal(exec.params[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"stopOnError":true`)
}

func TestHandleExecuteBundledCommands_Errors(t *testing.T) {
	t.Run("bad priority", func(t *testing.T) {
		exec := &fakeExecutor{}
		res, err := newTestServer(exec, nil).handleExecuteBundledCommands(context.Background(), callTool("execute_bundled_commands", map[string]any{
			"commands": []any{map[string]any{"command": "create_frame", "priority": "urgent"}},
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Empty(t, exec.commands)
	})

	t.Run("not an array", func(t *testing.T) {
		res, err := newTestServer(&fakeExecutor{}, nil).handleExecuteBundledCommands(context.Background(), callTool("execute_bundled_commands", map[string]any{
			"commands": "create_frame",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("malformed reply", func(t *testing.T) {
		exec := &fakeExecutor{reply: `"ok"`}
		res, err := newTestServer(exec, nil).handleExecuteBundledCommands(context.Background(), callTool("execute_bundled_commands", map[string]any{
			"commands": []any{map[string]any{"command": "create_frame"}},
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.True(t, strings.HasPrefix(resultText(t, res), "Error executing bundled commands: "))
	})
}

func TestHandleJoinChannel(t *testing.T) {
	joiner := &fakeJoiner{}
	s := newTestServer(&fakeExecutor{}, joiner)

	res, err := s.handleJoinChannel(context.Background(), callTool("join_channel", map[string]any{"channel": "abc123"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "abc123", joiner.channel)
	assert.Equal(t, "Successfully joined channel: abc123", resultText(t, res))

	res, err = s.handleJoinChannel(context.Background(), callTool("join_channel", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	joiner.err = errors.New("relay down")
	res, err = s.handleJoinChannel(context.Background(), callTool("join_channel", map[string]any{"channel": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "relay down")
}

func TestRegisteredTools(t *testing.T) {
	s := newTestServer(&fakeExecutor{}, &fakeJoiner{})
	tools := s.MCP().ListTools()
	for _, name := range []string{"batch_create_elements", "execute_bundled_commands", "join_channel"} {
		assert.Contains(t, tools, name)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := batch.NewMetrics(reg)
	exec := &fakeExecutor{reply: `{"createdCount": 1, "results": [{"success": true, "type": "frame"}]}`}
	s := NewServer(batch.NewRunner(exec, batch.WithMetrics(metrics)), nil, WithGatherer(reg))

	_, err := s.handleBatchCreateElements(context.Background(), callTool("batch_create_elements", map[string]any{
		"elements": []any{map[string]any{"type": "frame", "x": 0, "y": 0}},
	}))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `figma_batch_batches_total{operation="batch_create_elements",outcome="ok"} 1`)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	err := newTestServer(&fakeExecutor{}, nil).Serve(context.Background(), Config{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unsupported transport")
}
