// Package llm provides LLM provider abstractions.
//
// LLM Provider interface - the abstract interface for LLM providers.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Reasoning trace and usage extraction
// - Provider-specific error handling

package llm

import (
	"context"
	"fmt"
)

// Provider defines the abstract interface for LLM providers.
// Implementations hide provider-specific details while exposing
// a consistent interface for chat completions and embeddings.
type Provider interface {
	// Type returns the provider identity.
	Type() ProviderType

	// Chat sends a chat completion request.
	Chat(ctx context.Context, messages []ChatMessage, opts CallOptions) (LLMResponse, error)

	// ChatWithTools sends a chat completion request with tool definitions.
	// The LLM may respond with tool calls in LLMResponse.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, opts CallOptions) (LLMResponse, error)

	// Embeddings returns one vector per input, each tagged with its input index.
	Embeddings(ctx context.Context, model string, input []string) (EmbeddingResult, error)
}

// callFailed wraps an upstream error so callers can match ErrProviderCallFailed.
func callFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrProviderCallFailed, op, err)
}
