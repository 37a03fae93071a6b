package relay

import (
	"encoding/json"
	"strings"
)

// Relay message types.
const (
	TypeJoin     = "join"
	TypeMessage  = "message"
	TypeProgress = "progress_update"
)

// Message is the envelope exchanged with the relay server.
type Message struct {
	ID      string   `json:"id,omitempty"`
	Type    string   `json:"type"`
	Channel string   `json:"channel,omitempty"`
	Message *Payload `json:"message,omitempty"`
}

// Payload is the body routed between this client and the Figma plugin.
// Requests carry Command and Params; replies carry Result or Error under the
// same ID.
type Payload struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

func (p *Payload) isReply() bool {
	return p != nil && p.ID != "" && (len(p.Result) > 0 || p.hasError())
}

func (p *Payload) hasError() bool {
	return len(p.Error) > 0 && string(p.Error) != "null"
}

// errorText renders a plugin error, which may be a string or any JSON value.
func (p *Payload) errorText() string {
	var s string
	if err := json.Unmarshal(p.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(p.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return strings.TrimSpace(string(p.Error))
}

// RemoteError is an error reported by the Figma plugin for a whole command.
type RemoteError struct {
	Command string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Command + ": figma reported an error"
	}
	return e.Message
}

// withCommandID adds commandId to params the way the plugin expects. Params
// that do not encode to a JSON object are sent unchanged.
func withCommandID(params any, id string) any {
	b, err := json.Marshal(params)
	if err != nil {
		return params
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		if string(b) == "null" {
			return map[string]any{"commandId": id}
		}
		return params
	}
	m["commandId"] = id
	return m
}
