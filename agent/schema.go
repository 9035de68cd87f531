// Tool schema conversion for native tool calling.

package agent

import (
	"docsmith/llm"
	"docsmith/tools"
)

// Definitions converts the registry's tool metadata into JSON Schema
// tool definitions, in name order.
func Definitions(registry *tools.Registry) []llm.ToolDefinition {
	names := registry.Names()
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool, ok := registry.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, definition(tool.Metadata()))
	}
	return defs
}

func definition(meta tools.ToolMetadata) llm.ToolDefinition {
	properties := make(map[string]interface{}, len(meta.Parameters))
	var required []string

	for _, p := range meta.Parameters {
		prop := map[string]interface{}{
			"type":        schemaType(p.ParamType),
			"description": p.Description,
		}
		// Array parameters carry string items throughout the tool set.
		if prop["type"] == "array" {
			prop["items"] = map[string]interface{}{"type": "string"}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	parameters := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		parameters["required"] = required
	}

	return llm.ToolDefinition{
		Name:        meta.Name,
		Description: meta.Description,
		Parameters:  parameters,
	}
}

func schemaType(paramType string) string {
	switch paramType {
	case "string", "integer", "number", "boolean", "array", "object":
		return paramType
	default:
		return "string"
	}
}
