// Package model provides domain types shared across packages.
package model

// ToolInvocation records one tool call made during an agent run.
// Records are appended in call order and never mutated afterwards.
type ToolInvocation struct {
	Name  string  `json:"name"`
	Args  string  `json:"args"`
	OK    bool    `json:"ok"`
	Error *string `json:"error,omitempty"`
}

// Succeeded creates a record for a successful call.
func Succeeded(name, args string) ToolInvocation {
	return ToolInvocation{Name: name, Args: args, OK: true}
}

// Failed creates a record for a failed call.
func Failed(name, args string, err error) ToolInvocation {
	msg := err.Error()
	return ToolInvocation{Name: name, Args: args, OK: false, Error: &msg}
}

// Run is the outcome of one agent run.
type Run struct {
	ID         string           `json:"id"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model"`
	Output     string           `json:"output"`
	ToolCalls  []ToolInvocation `json:"toolCalls"`
	DurationMs int64            `json:"durationMs"`
}
