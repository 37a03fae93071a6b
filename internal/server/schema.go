package server

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mj1618/figma-batch/internal/model"
)

func number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func unitInterval() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 1}
}

// colorSchema accepts {r,g,b,a} with channels in [0,1], or a CSS color name
// or #rrggbb / #rrggbbaa string.
func colorSchema(description string) map[string]any {
	return map[string]any{
		"description": description,
		"anyOf": []any{
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"r": unitInterval(),
					"g": unitInterval(),
					"b": unitInterval(),
					"a": unitInterval(),
				},
				"required": []string{"r", "g", "b"},
			},
			map[string]any{
				"type":        "string",
				"description": "CSS color name or #rrggbb / #rrggbbaa",
			},
		},
	}
}

func elementItemSchema() map[string]any {
	kinds := make([]string, len(model.ElementKinds))
	for i, k := range model.ElementKinds {
		kinds[i] = string(k)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":     map[string]any{"type": "string", "enum": kinds, "description": "Type of element to create"},
			"x":        number("X position"),
			"y":        number("Y position"),
			"width":    number("Width of the element"),
			"height":   number("Height of the element"),
			"text":     map[string]any{"type": "string", "description": "Text content for text elements"},
			"name":     map[string]any{"type": "string", "description": "Optional name for the element"},
			"parentId": map[string]any{"type": "string", "description": "Optional parent node ID, possibly created earlier in the same batch"},
			"styles": map[string]any{
				"type":        "object",
				"description": "Styling options for the element",
				"properties": map[string]any{
					"fillColor":    colorSchema("Fill color"),
					"strokeColor":  colorSchema("Stroke color"),
					"strokeWeight": map[string]any{"type": "number", "exclusiveMinimum": 0, "description": "Stroke weight"},
					"cornerRadius": map[string]any{"type": "number", "minimum": 0, "description": "Corner radius"},
					"fontSize":     map[string]any{"type": "number", "exclusiveMinimum": 0, "description": "Font size"},
					"fontWeight":   number("Font weight"),
				},
			},
		},
		"required": []string{"type", "x", "y"},
	}
}

func commandItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{"type": "string", "description": "The Figma command to execute"},
			"params":  map[string]any{"type": "object", "description": "Parameters for the command"},
			"priority": map[string]any{
				"type":        "string",
				"enum":        []string{string(model.PriorityHigh), string(model.PriorityNormal), string(model.PriorityLow)},
				"description": "Command priority (default normal)",
			},
		},
		"required": []string{"command"},
	}
}

func batchCreateElementsTool() mcp.Tool {
	return mcp.NewTool("batch_create_elements",
		mcp.WithDescription("Create multiple elements (rectangles, frames, text) in Figma in a single round trip. Each element needs type, x and y; width, height, text, name, parentId and styles are optional."),
		mcp.WithArray("elements",
			mcp.Description("Array of elements to create"),
			mcp.Required(),
			mcp.Items(elementItemSchema()),
		),
	)
}

func executeBundledCommandsTool() mcp.Tool {
	return mcp.NewTool("execute_bundled_commands",
		mcp.WithDescription("Execute multiple Figma commands in a single round trip. Commands run high priority first, then normal, then low; equal priorities keep their submission order."),
		mcp.WithArray("commands",
			mcp.Description("Array of commands to execute"),
			mcp.Required(),
			mcp.Items(commandItemSchema()),
		),
		mcp.WithBoolean("stopOnError", mcp.Description("Stop executing at the first failed command (default: false)")),
	)
}

func joinChannelTool() mcp.Tool {
	return mcp.NewTool("join_channel",
		mcp.WithDescription("Join the relay channel the Figma plugin is listening on. Required before running batches."),
		mcp.WithString("channel", mcp.Description("Channel name shown in the Figma plugin"), mcp.Required()),
	)
}
