package model

// Priority orders bundled commands before they are sent for execution.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// priorityRank maps each priority class to its execution rank.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityNormal: 1,
	PriorityLow:    2,
}

// Valid reports whether p is empty or a known priority class.
func (p Priority) Valid() bool {
	if p == "" {
		return true
	}
	_, ok := priorityRank[p]
	return ok
}

// OrDefault returns p, or PriorityNormal when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}

// Rank returns the sort rank of p; lower ranks run first.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p.OrDefault()]; ok {
		return r
	}
	return priorityRank[PriorityLow]
}

// CommandDescriptor is one named remote command in a bundle. Params are
// opaque here; the executor owns their shape.
type CommandDescriptor struct {
	Command  string   `json:"command"            yaml:"command"`
	Params   any      `json:"params,omitempty"   yaml:"params,omitempty"`
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Label is the short name used for this command in reports.
func (c CommandDescriptor) Label() string {
	return c.Command
}
