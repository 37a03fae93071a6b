// Package output prints command results in the format chosen with --format.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/figma-batch/internal/batch"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat maps a --format value to a Format. Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use text, yaml, or json)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat = FormatText

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// PrintResult writes a batch result to w. Text output is the same report the
// MCP tools return.
func PrintResult(w io.Writer, res batch.Result) error {
	if OutputFormat == FormatText {
		_, err := fmt.Fprintln(w, batch.Format(res))
		return err
	}
	return Print(w, res)
}

// Print serializes v to w in the current output format. Text falls back to
// YAML for structured values.
func Print(w io.Writer, v any) error {
	switch OutputFormat {
	case FormatJSON:
		return PrintJSON(w, v, PrettyOutput)
	case FormatYAML, FormatText:
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v as JSON, indented when pretty is set.
func PrintJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v as YAML.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
