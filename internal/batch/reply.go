package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedReply is returned when the executor's reply is not a JSON
// object of the expected shape.
var ErrMalformedReply = errors.New("malformed reply from Figma")

// ElementReply is the executor's reply to batch_create_elements with every
// missing field defaulted.
type ElementReply struct {
	Success      bool
	Message      string
	CreatedCount int
	FailedCount  int
	HasCounts    bool // false when the reply carried neither counter
	Results      []ElementItemResult
}

// ElementItemResult is one entry of an ElementReply.
type ElementItemResult struct {
	Success bool   `json:"success"`
	NodeID  string `json:"nodeId,omitempty"`
	Type    string `json:"type,omitempty"`
	Error   string `json:"error,omitempty"`
	Index   *int   `json:"index,omitempty"`
}

// CommandReply is the executor's reply to execute_bundled_commands with
// every missing field defaulted.
type CommandReply struct {
	Success        bool
	Message        string
	CompletedCount int
	FailedCount    int
	HasCounts      bool
	Results        []CommandItemResult
}

// CommandItemResult is one entry of a CommandReply, in execution order.
type CommandItemResult struct {
	Command string `json:"command,omitempty"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Index   *int   `json:"index,omitempty"`
}

// ParseElementReply decodes a batch_create_elements reply.
func ParseElementReply(raw json.RawMessage) (ElementReply, error) {
	var wire struct {
		Success      bool                `json:"success"`
		Message      string              `json:"message"`
		CreatedCount *float64            `json:"createdCount"`
		FailedCount  *float64            `json:"failedCount"`
		Results      []ElementItemResult `json:"results"`
	}
	if err := decodeReply(raw, &wire); err != nil {
		return ElementReply{}, err
	}
	return ElementReply{
		Success:      wire.Success,
		Message:      wire.Message,
		CreatedCount: count(wire.CreatedCount),
		FailedCount:  count(wire.FailedCount),
		HasCounts:    wire.CreatedCount != nil || wire.FailedCount != nil,
		Results:      wire.Results,
	}, nil
}

// ParseCommandReply decodes an execute_bundled_commands reply.
func ParseCommandReply(raw json.RawMessage) (CommandReply, error) {
	var wire struct {
		Success        bool                `json:"success"`
		Message        string              `json:"message"`
		CompletedCount *float64            `json:"completedCount"`
		FailedCount    *float64            `json:"failedCount"`
		Results        []CommandItemResult `json:"results"`
	}
	if err := decodeReply(raw, &wire); err != nil {
		return CommandReply{}, err
	}
	return CommandReply{
		Success:        wire.Success,
		Message:        wire.Message,
		CompletedCount: count(wire.CompletedCount),
		FailedCount:    count(wire.FailedCount),
		HasCounts:      wire.CompletedCount != nil || wire.FailedCount != nil,
		Results:        wire.Results,
	}, nil
}

func decodeReply(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrMalformedReply)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

func count(v *float64) int {
	if v == nil || *v < 0 {
		return 0
	}
	return int(*v)
}
