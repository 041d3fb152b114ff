package main

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// argString/argFloat/argBool read an optional tool argument with a
// default, the same Require-then-fall-back-on-error shape the pack's
// reference MCP server uses since CallToolRequest has no built-in
// getter that accepts a default.
func argString(req mcp.CallToolRequest, name, defaultVal string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return defaultVal
}

func argFloat(req mcp.CallToolRequest, name string, defaultVal float64) float64 {
	if v, err := req.RequireFloat(name); err == nil {
		return v
	}
	return defaultVal
}

func argBool(req mcp.CallToolRequest, name string, defaultVal bool) bool {
	if v, err := req.RequireBool(name); err == nil {
		return v
	}
	return defaultVal
}

// jsonToolResult marshals any handler result to indented JSON and wraps it
// as a text tool result, the shape every tool in this server returns.
func jsonToolResult(v interface{}) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// resultText extracts the text payload jsonToolResult produced, for reuse
// inside a resource handler's ResourceContents.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
