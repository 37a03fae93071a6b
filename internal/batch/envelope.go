package batch

import (
	"github.com/mj1618/figma-batch/internal/model"
)

// Operation names the remote batch command an envelope is sent as.
type Operation string

const (
	OpCreateElements  Operation = "batch_create_elements"
	OpBundledCommands Operation = "execute_bundled_commands"
)

// IndexedElement pairs an element descriptor with its submission index.
type IndexedElement struct {
	Index   int
	Element model.ElementDescriptor
}

// IndexedCommand pairs a command descriptor with its submission index.
type IndexedCommand struct {
	Index   int
	Command model.CommandDescriptor
}

// ElementEnvelope is one batch_create_elements round trip.
type ElementEnvelope struct {
	Items []IndexedElement
}

// NewElementEnvelope copies elements into a new envelope. Later changes to
// the caller's slice do not affect the request.
func NewElementEnvelope(elements []model.ElementDescriptor) ElementEnvelope {
	items := make([]IndexedElement, len(elements))
	for i, el := range elements {
		items[i] = IndexedElement{Index: i, Element: el}
	}
	return ElementEnvelope{Items: items}
}

// Empty reports whether there is nothing to send.
func (e ElementEnvelope) Empty() bool { return len(e.Items) == 0 }

// Len is the number of submitted elements.
func (e ElementEnvelope) Len() int { return len(e.Items) }

type elementRequest struct {
	Elements []model.ElementDescriptor `json:"elements"`
}

// Request returns the wire payload, in submission order.
func (e ElementEnvelope) Request() any {
	elements := make([]model.ElementDescriptor, len(e.Items))
	for i, it := range e.Items {
		elements[i] = it.Element
	}
	return elementRequest{Elements: elements}
}

// CommandEnvelope is one execute_bundled_commands round trip.
type CommandEnvelope struct {
	Items       []IndexedCommand // submission order
	Sequenced   []IndexedCommand // execution order
	StopOnError bool
}

// NewCommandEnvelope copies commands into a new envelope and computes the
// execution sequence.
func NewCommandEnvelope(commands []model.CommandDescriptor, stopOnError bool) CommandEnvelope {
	items := make([]IndexedCommand, len(commands))
	for i, c := range commands {
		items[i] = IndexedCommand{Index: i, Command: c}
	}
	return CommandEnvelope{
		Items:       items,
		Sequenced:   Sequence(items),
		StopOnError: stopOnError,
	}
}

// Empty reports whether there is nothing to send.
func (e CommandEnvelope) Empty() bool { return len(e.Items) == 0 }

// Len is the number of submitted commands.
func (e CommandEnvelope) Len() int { return len(e.Items) }

type wireCommand struct {
	Command  string         `json:"command"`
	Params   any            `json:"params"`
	Priority model.Priority `json:"priority"`
	Index    int            `json:"index"`
}

type commandRequest struct {
	Commands    []wireCommand `json:"commands"`
	StopOnError bool          `json:"stopOnError"`
}

// Request returns the wire payload in execution order. Each command carries
// its submission index so the executor can echo it back.
func (e CommandEnvelope) Request() any {
	commands := make([]wireCommand, len(e.Sequenced))
	for i, it := range e.Sequenced {
		params := it.Command.Params
		if params == nil {
			params = map[string]any{}
		}
		commands[i] = wireCommand{
			Command:  it.Command.Command,
			Params:   params,
			Priority: it.Command.Priority.OrDefault(),
			Index:    it.Index,
		}
	}
	return commandRequest{Commands: commands, StopOnError: e.StopOnError}
}
