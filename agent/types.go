// Package agent provides the bounded tool-using agent runtime.
//
// Contains the request type accepted by a run.
package agent

// Request is one agent run.
type Request struct {
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model" validate:"required"`
	Prompt       string   `json:"prompt" validate:"required"`
	URLAllowlist []string `json:"urlAllowlist,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"maxTokens,omitempty" validate:"omitempty,min=1"`
}
