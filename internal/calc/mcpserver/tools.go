package mcpserver

import (
	"encoding/json"
)

// ToolPrefix is the prefix for all llm-calc tools
const ToolPrefix = "llm_calc_"

// ToolDefinition defines a tool for the MCP SDK
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// GetToolDefinitions returns tool definitions for the official MCP SDK
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolPrefix + "calculate",
			Description: "Apply one operation to two numbers. Built-in operations are ADD, SUBTRACT, MULTIPLY and DIVIDE (case-insensitive; + - * / accepted). DIVIDE fails when b is zero. Use llm_calc_operations to list configured extras.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"operation": {
						"type": "string",
						"description": "Operation name, e.g. ADD or DIVIDE"
					},
					"a": {
						"type": "number",
						"description": "Left operand"
					},
					"b": {
						"type": "number",
						"description": "Right operand"
					},
					"min": {
						"type": "boolean",
						"description": "Minimal output - token-optimized format (default: true)"
					}
				},
				"required": ["operation", "a", "b"]
			}`),
		},
		{
			Name:        ToolPrefix + "chain",
			Description: "Start an accumulator and apply operations in order, each using the accumulator as the left operand. A failing step stops the chain.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"start": {
						"type": "number",
						"description": "Initial accumulator value"
					},
					"steps": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"op": {"type": "string"},
								"value": {"type": "number"}
							},
							"required": ["op", "value"]
						},
						"description": "Steps such as [{\"op\":\"ADD\",\"value\":3},{\"op\":\"MULTIPLY\",\"value\":2}]"
					},
					"min": {
						"type": "boolean",
						"description": "Minimal output - token-optimized format (default: true)"
					}
				},
				"required": ["start", "steps"]
			}`),
		},
		{
			Name:        ToolPrefix + "batch",
			Description: "Evaluate many independent calculations concurrently. Each line is \"<op> <a> <b>\"; blank lines and lines starting with # are ignored. Results keep input order.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"lines": {
						"type": "string",
						"description": "Newline-separated calculations, e.g. \"ADD 2 3\\nDIVIDE 9 3\""
					},
					"concurrency": {
						"type": "integer",
						"description": "Parallel calculations (default from config or 4)"
					},
					"min": {
						"type": "boolean",
						"description": "Minimal output - token-optimized format (default: true)"
					}
				},
				"required": ["lines"]
			}`),
		},
		{
			Name:        ToolPrefix + "operations",
			Description: "List the registered operations, including formula operations declared in the config file.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"min": {
						"type": "boolean",
						"description": "Minimal output - token-optimized format (default: true)"
					}
				}
			}`),
		},
	}
}
