// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for OpenAI Chat Completions and Embeddings APIs
// - reasoning_content extraction for OpenAI-compatible reasoning models

package llm

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI and any
// OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client       *openai.Client
	providerType ProviderType
}

// NewOpenAIProvider creates a new OpenAI provider.
// An empty baseURL uses the public OpenAI endpoint.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	return newOpenAICompatible(ProviderOpenAI, apiKey, baseURL)
}

func newOpenAICompatible(providerType ProviderType, apiKey, baseURL string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(config),
		providerType: providerType,
	}
}

// Type returns the provider identity.
func (p *OpenAIProvider) Type() ProviderType {
	return p.providerType
}

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []ChatMessage, opts CallOptions) (LLMResponse, error) {
	return p.complete(ctx, buildOpenAIRequest(messages, nil, opts))
}

// ChatWithTools sends a chat completion request with tool definitions.
func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, opts CallOptions) (LLMResponse, error) {
	return p.complete(ctx, buildOpenAIRequest(messages, tools, opts))
}

func (p *OpenAIProvider) complete(ctx context.Context, req openai.ChatCompletionRequest) (LLMResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return LLMResponse{}, callFailed("chat completion", err)
	}

	out := LLMResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: newTokenUsage(
			int64(resp.Usage.PromptTokens),
			int64(resp.Usage.CompletionTokens),
			int64(resp.Usage.TotalTokens),
		),
	}

	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		out.Content = msg.Content
		if msg.ReasoningContent != "" {
			reasoning := msg.ReasoningContent
			out.Reasoning = &reasoning
		}
		// Convert OpenAI tool calls to our format
		for _, tc := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			})
		}
	}

	return out, nil
}

// Embeddings creates one embedding per input string.
func (p *OpenAIProvider) Embeddings(ctx context.Context, model string, input []string) (EmbeddingResult, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: input,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return EmbeddingResult{}, callFailed("embeddings", err)
	}

	data := make([]Embedding, 0, len(resp.Data))
	for _, d := range resp.Data {
		data = append(data, Embedding{Index: d.Index, Embedding: d.Embedding})
	}

	return EmbeddingResult{
		Provider: p.providerType,
		Model:    string(resp.Model),
		Data:     data,
		Usage: newTokenUsage(
			int64(resp.Usage.PromptTokens),
			int64(resp.Usage.CompletionTokens),
			int64(resp.Usage.TotalTokens),
		),
	}, nil
}

func buildOpenAIRequest(messages []ChatMessage, tools []ToolDefinition, opts CallOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    opts.Model,
		Messages: convertToOpenAIMessages(messages),
	}
	if opts.Temperature != nil {
		req.Temperature = openAITemperature(*opts.Temperature)
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if len(tools) > 0 {
		req.Tools = convertToOpenAITools(tools)
	}
	return req
}

// openAITemperature keeps an explicit zero on the wire; the request field is
// omitempty, so 0 would silently become the server default of 1.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// convertToOpenAIMessages handles plain messages, tool calls and tool responses.
func convertToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}

		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}

		result[i] = oaiMsg
	}
	return result
}

// convertToOpenAITools converts tool definitions to OpenAI format.
func convertToOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
