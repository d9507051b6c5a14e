// Package tools provides tool lookup over the fixed catalog.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Catalog composition fixed at construction

package tools

import (
	"fmt"
	"strings"

	"github.com/richinex/modelgate/llm"
)

// Registry is an immutable name -> Tool mapping. It is safe for concurrent use
// because nothing mutates it after Catalog returns.
type Registry struct {
	tools map[string]Tool
	order []string
}

// Catalog builds the full tool set: now, math, random_int, echo,
// extract_title and http_fetch.
func Catalog(cfg Config) *Registry {
	return newRegistry(
		NewNowTool(),
		NewMathTool(),
		NewRandomIntTool(),
		NewEchoTool(),
		NewExtractTitleTool(),
		NewHTTPFetchTool(cfg.HTTPTimeout()),
	)
}

func newRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Metadata().Name
		if _, exists := r.tools[name]; exists {
			panic(fmt.Sprintf("tool '%s' registered twice", name))
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	_, exists := r.tools[name]
	return exists
}

// Names returns all tool names in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns metadata for all tools in catalog order.
func (r *Registry) List() []ToolMetadata {
	metadata := make([]ToolMetadata, 0, len(r.order))
	for _, name := range r.order {
		metadata = append(metadata, r.tools[name].Metadata())
	}
	return metadata
}

// Definitions returns the tool set in the form offered to a model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Metadata().Definition())
	}
	return defs
}

// Description returns a formatted description of all tools.
func (r *Registry) Description() string {
	var descriptions []string
	for _, meta := range r.List() {
		var params []string
		for _, p := range meta.Parameters {
			required := "optional"
			if p.Required {
				required = "required"
			}
			params = append(params, fmt.Sprintf("  - %s (%s): %s [%s]",
				p.Name, p.ParamType, p.Description, required))
		}

		paramStr := "  (none)"
		if len(params) > 0 {
			paramStr = strings.Join(params, "\n")
		}
		descriptions = append(descriptions, fmt.Sprintf(
			"Tool: %s\nDescription: %s\nParameters:\n%s",
			meta.Name, meta.Description, paramStr))
	}

	return strings.Join(descriptions, "\n\n")
}
