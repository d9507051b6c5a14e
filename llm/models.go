// Package llm provides shared data models for LLM providers.
package llm

import "encoding/json"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a chat message with role and content.
type ChatMessage struct {
	Role       string     `json:"role" validate:"required,oneof=system user assistant"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant messages with tool calls
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages
}

// ToolCall represents a tool call from the LLM.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition defines a tool that the LLM can call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// ToolResultMessage creates a tool result message answering the given call.
func ToolResultMessage(callID, content string) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: content, ToolCallID: callID}
}

// CallOptions are the sampling parameters forwarded with every call.
// Nil fields are left to the upstream default.
type CallOptions struct {
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// LLMResponse represents a response from an LLM provider.
type LLMResponse struct {
	ID        string
	Model     string
	Content   string
	Reasoning *string
	ToolCalls []ToolCall // Tool calls requested by the LLM
	Usage     *TokenUsage
}

// TokenUsage contains token usage statistics.
// Each counter is nil when the upstream did not report it.
type TokenUsage struct {
	PromptTokens     *int `json:"promptTokens"`
	CompletionTokens *int `json:"completionTokens"`
	TotalTokens      *int `json:"totalTokens"`
}

// newTokenUsage builds usage from raw counters, treating zero as unreported.
// Returns nil when no counter was reported.
func newTokenUsage(prompt, completion, total int64) *TokenUsage {
	usage := &TokenUsage{
		PromptTokens:     reported(prompt),
		CompletionTokens: reported(completion),
		TotalTokens:      reported(total),
	}
	if usage.PromptTokens == nil && usage.CompletionTokens == nil && usage.TotalTokens == nil {
		return nil
	}
	return usage
}

func reported(n int64) *int {
	if n <= 0 {
		return nil
	}
	v := int(n)
	return &v
}

// ChatRequest is a single-shot chat completion request.
type ChatRequest struct {
	Provider    string        `json:"provider,omitempty"`
	Model       string        `json:"model" validate:"required"`
	Messages    []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"maxTokens,omitempty" validate:"omitempty,min=1"`
}

// Options returns the sampling parameters of the request.
func (r ChatRequest) Options() CallOptions {
	return CallOptions{Model: r.Model, Temperature: r.Temperature, MaxTokens: r.MaxTokens}
}

// ChatResult is the normalized answer to a ChatRequest.
type ChatResult struct {
	ID        string       `json:"id"`
	Provider  ProviderType `json:"provider"`
	Model     string       `json:"model"`
	Content   string       `json:"content"`
	Reasoning *string      `json:"reasoning"`
	Usage     *TokenUsage  `json:"usage"`
}

// EmbeddingRequest asks for one vector per input string.
type EmbeddingRequest struct {
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model" validate:"required"`
	Input    []string `json:"input" validate:"required,min=1"`
}

// Embedding is a single vector with the index of the input it belongs to.
type Embedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingResult holds vectors ordered by input index.
type EmbeddingResult struct {
	Provider ProviderType `json:"provider"`
	Model    string       `json:"model"`
	Data     []Embedding  `json:"data"`
	Usage    *TokenUsage  `json:"usage"`
}

// ModelDescriptor is an entry of the curated model catalog.
type ModelDescriptor struct {
	ID       string       `json:"id"`
	Provider ProviderType `json:"provider"`
	Label    string       `json:"label,omitempty"`
}
