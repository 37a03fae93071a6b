package batch

import (
	"fmt"
	"strings"
)

// Messages returned for empty input.
const (
	NoElementsMessage = "No elements provided to create"
	NoCommandsMessage = "No commands provided to execute"
)

// FormatElements renders a batch_create_elements Result as text.
func FormatElements(r Result) string {
	if r.Total == 0 {
		return NoElementsMessage
	}

	var b strings.Builder
	b.WriteString("Batch element creation complete:\n")
	fmt.Fprintf(&b, "- %d of %d elements created successfully\n", r.Succeeded, r.Total)
	fmt.Fprintf(&b, "- %d elements failed to create\n", r.Failed)

	if created := r.SucceededItems(); len(created) > 0 {
		b.WriteString("\nCreated Elements:\n")
		for _, o := range created {
			if o.NodeID != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", o.Label, o.NodeID)
			} else {
				fmt.Fprintf(&b, "- %s\n", o.Label)
			}
		}
	}
	if failed := r.FailedItems(); len(failed) > 0 {
		b.WriteString("\nFailed Elements:\n")
		for _, o := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", o.Label, o.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCommands renders an execute_bundled_commands Result as text.
func FormatCommands(r Result) string {
	if r.Total == 0 {
		return NoCommandsMessage
	}

	var b strings.Builder
	b.WriteString("Bundled commands execution complete:\n")
	fmt.Fprintf(&b, "- %d of %d commands executed successfully\n", r.Succeeded, r.Total)
	fmt.Fprintf(&b, "- %d commands failed\n", r.Failed)
	if r.Termination == StoppedEarly {
		fmt.Fprintf(&b, "- %d commands not attempted (stopped on first error)\n", r.NotAttempted)
	}

	if ok := r.SucceededItems(); len(ok) > 0 {
		b.WriteString("\nSuccessful Commands:\n")
		for _, o := range ok {
			fmt.Fprintf(&b, "- %s\n", o.Label)
		}
	}
	if failed := r.FailedItems(); len(failed) > 0 {
		b.WriteString("\nFailed Commands:\n")
		for _, o := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", o.Label, o.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Format renders r with the formatter for its operation.
func Format(r Result) string {
	if r.Operation == OpBundledCommands {
		return FormatCommands(r)
	}
	return FormatElements(r)
}
