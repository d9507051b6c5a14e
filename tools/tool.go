// Package tools provides the fixed tool catalog offered to the agent.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Input and output schemas hidden in implementations
// - URL policy enforcement internalized in the fetch tool
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richinex/modelgate/llm"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string   `json:"name"`
	ParamType   string   `json:"param_type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Schema renders the parameters as a JSON schema object.
func (m ToolMetadata) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(m.Parameters))
	required := []string{}

	for _, p := range m.Parameters {
		prop := map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Definition converts the metadata into the form offered to a model.
func (m ToolMetadata) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        m.Name,
		Description: m.Description,
		Parameters:  m.Schema(),
	}
}

// Policy is the per-run security policy handed to every tool execution.
type Policy struct {
	Allowlist Allowlist
}

// Tool is the interface that all tools must implement.
//
// Information Hiding: Tool implementations hide their internal execution logic,
// data structures, and error handling strategies behind this interface.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Validate checks arguments against the input schema.
	Validate(args json.RawMessage) error

	// Execute runs the tool. The returned value is a typed output struct
	// that serializes to the tool's output schema.
	Execute(ctx context.Context, args json.RawMessage, policy Policy) (any, error)
}

// Config holds tool construction settings.
// The zero value is safe: the HTTP timeout defaults to 30s.
type Config struct {
	HTTPTimeoutSecs uint32
}

// HTTPTimeout returns the configured fetch timeout, defaulting to 30 seconds if zero.
func (c Config) HTTPTimeout() uint32 {
	if c.HTTPTimeoutSecs == 0 {
		return DefaultHTTPTimeout
	}
	return c.HTTPTimeoutSecs
}

// DefaultHTTPTimeout is the fetch timeout in seconds.
const DefaultHTTPTimeout = 30
