package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/mj1618/figma-batch/internal/relay"
)

// figmaStub is a relay that answers every command with a canned reply and
// remembers what it was sent.
type figmaStub struct {
	replies map[string]string

	mu   sync.Mutex
	sent []relay.Message
}

func (f *figmaStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg relay.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		reply := relay.Message{Type: "system", Channel: msg.Channel, Message: &relay.Payload{ID: msg.ID, Result: json.RawMessage(`"joined"`)}}
		if msg.Type == relay.TypeMessage {
			f.mu.Lock()
			f.sent = append(f.sent, msg)
			f.mu.Unlock()
			reply = relay.Message{Type: "broadcast", Channel: msg.Channel, Message: &relay.Payload{ID: msg.Message.ID, Result: json.RawMessage(f.replies[msg.Message.Command])}}
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (f *figmaStub) commands() []relay.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]relay.Message(nil), f.sent...)
}

func startStub(t *testing.T, replies map[string]string) (*figmaStub, string) {
	t.Helper()
	stub := &figmaStub{replies: replies}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// run executes the root command with args and stdin, returning what the
// command printed.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCreateElementsCommand(t *testing.T) {
	stub, url := startStub(t, map[string]string{
		"batch_create_elements": `{"success": true, "createdCount": 3, "failedCount": 0, "results": [
			{"success": true, "nodeId": "1:1", "type": "rectangle"},
			{"success": true, "nodeId": "1:2", "type": "frame"},
			{"success": true, "nodeId": "1:3", "type": "text"}]}`,
	})

	out, err := run(t, `
- { type: rectangle, x: 0, y: 0, width: 100, height: 50, styles: { fillColor: red } }
- { type: frame, x: 10, y: 10, width: 300, height: 200 }
- { type: text, x: 20, y: 20, text: Hello }
`, "create-elements", "--format", "text", "--relay-url", url, "--channel", "design", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "3 of 3 elements created successfully") {
		t.Errorf("unexpected report:\n%s", out)
	}
	sent := stub.commands()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one round trip, got %d", len(sent))
	}
	if sent[0].Channel != "design" || sent[0].Message.Command != "batch_create_elements" {
		t.Errorf("unexpected request: %+v", sent[0])
	}
}

func TestCreateElementsCommand_InvalidInputNeverConnects(t *testing.T) {
	stub, url := startStub(t, nil)

	_, err := run(t, `- { type: circle, x: 0, y: 0 }`,
		"create-elements", "--format", "text", "--relay-url", url, "--channel", "design", "--log-level", "error")
	if err == nil || !strings.Contains(err.Error(), "elements[0]") {
		t.Fatalf("expected a validation error for elements[0], got %v", err)
	}
	if n := len(stub.commands()); n != 0 {
		t.Errorf("expected no round trip, got %d", n)
	}
}

func TestBundleCommand_StopOnError(t *testing.T) {
	stub, url := startStub(t, map[string]string{
		"execute_bundled_commands": `{"success": false, "completedCount": 1, "failedCount": 1, "results": [
			{"command": "create_frame", "success": true},
			{"command": "create_text", "success": false, "error": "Font not loaded"}]}`,
	})

	out, err := run(t, `
- command: create_rectangle
  priority: low
- command: create_text
- command: create_frame
  priority: high
`, "bundle", "--format", "text", "--relay-url", url, "--channel", "design", "--stop-on-error", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"1 of 3 commands executed successfully",
		"- create_text: Font not loaded",
		"1 commands not attempted (stopped on first error)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	sent := stub.commands()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one round trip, got %d", len(sent))
	}
	params, _ := sent[0].Message.Params.(map[string]any)
	if params["stopOnError"] != true {
		t.Errorf("stopOnError not sent: %v", params)
	}
	cmds, _ := params["commands"].([]any)
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands on the wire, got %v", params["commands"])
	}
	first, _ := cmds[0].(map[string]any)
	if first["command"] != "create_frame" {
		t.Errorf("high priority command should run first, got %v", first["command"])
	}
}

func TestBundleCommand_EmptyBatchSkipsRelay(t *testing.T) {
	out, err := run(t, "[]", "bundle", "--format", "text", "--relay-url", "ws://127.0.0.1:1", "--channel", "design", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "No commands provided to execute" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestJoinCommand(t *testing.T) {
	_, url := startStub(t, nil)

	out, err := run(t, "", "join", "--format", "text", "--relay-url", url, "--channel", "abc123", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Successfully joined channel: abc123") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestJoinCommand_RequiresChannel(t *testing.T) {
	t.Setenv("FIGMA_BATCH_CHANNEL", "")
	joinCmd.Flags().Lookup("channel").Changed = false

	_, err := run(t, "", "join", "--format", "text", "--log-level", "error")
	if err != errNoChannel {
		t.Errorf("expected errNoChannel, got %v", err)
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "", "join", "--format", "agent", "--channel", "x", "--log-level", "error")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}
