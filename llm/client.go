// LLMClient - normalizing wrapper around providers.
//
// Information Hiding:
// - Response id and model name fallbacks
// - Embedding ordering by input index
// - Tracing, metrics and logging of every upstream call

package llm

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/richinex/modelgate/observe"
)

// Client wraps a Provider with the uniform result contract.
type Client struct {
	provider Provider
	obs      *observe.Observer
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider, obs *observe.Observer) *Client {
	if obs == nil {
		obs = observe.Discard()
	}
	return &Client{provider: provider, obs: obs}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Chat sends a chat request and normalizes the answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	resp, err := c.call(ctx, "chat", req.Model, func(ctx context.Context) (LLMResponse, error) {
		return c.provider.Chat(ctx, req.Messages, req.Options())
	})
	if err != nil {
		return ChatResult{}, err
	}

	id := resp.ID
	if id == "" {
		id = uuid.NewString()
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return ChatResult{
		ID:        id,
		Provider:  c.provider.Type(),
		Model:     model,
		Content:   resp.Content,
		Reasoning: resp.Reasoning,
		Usage:     resp.Usage,
	}, nil
}

// ChatWithTools sends a tool-enabled chat request. The raw response is
// returned so the caller can act on tool calls.
func (c *Client) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, opts CallOptions) (LLMResponse, error) {
	return c.call(ctx, "chat_with_tools", opts.Model, func(ctx context.Context) (LLMResponse, error) {
		return c.provider.ChatWithTools(ctx, messages, tools, opts)
	})
}

// Embeddings requests vectors and returns them sorted by input index.
func (c *Client) Embeddings(ctx context.Context, req EmbeddingRequest) (EmbeddingResult, error) {
	ctx, span := c.obs.StartSpan(ctx, "llm.embeddings")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider.Type().String()),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.inputs", len(req.Input)),
	)

	start := time.Now()
	result, err := c.provider.Embeddings(ctx, req.Model, req.Input)
	if err != nil {
		c.failed(span, "embeddings", req.Model, start, err)
		return EmbeddingResult{}, err
	}
	recordRequest("embeddings", c.provider.Type(), req.Model, "success", time.Since(start))
	recordTokens("embeddings", c.provider.Type(), req.Model, result.Usage)

	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})
	result.Provider = c.provider.Type()
	if result.Model == "" {
		result.Model = req.Model
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, method, model string, fn func(context.Context) (LLMResponse, error)) (LLMResponse, error) {
	ctx, span := c.obs.StartSpan(ctx, "llm."+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.provider.Type().String()),
		attribute.String("llm.model", model),
	)

	start := time.Now()
	resp, err := fn(ctx)
	if err != nil {
		c.failed(span, method, model, start, err)
		return LLMResponse{}, err
	}

	recordRequest(method, c.provider.Type(), model, "success", time.Since(start))
	recordTokens(method, c.provider.Type(), model, resp.Usage)
	c.obs.Log().Debug().
		Str("provider", c.provider.Type().String()).
		Str("model", model).
		Str("method", method).
		Int("tool_calls", len(resp.ToolCalls)).
		Msg("provider call complete")
	return resp, nil
}

func (c *Client) failed(span trace.Span, method, model string, start time.Time, err error) {
	recordRequest(method, c.provider.Type(), model, "error", time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.obs.Log().Warn().
		Str("provider", c.provider.Type().String()).
		Str("model", model).
		Str("method", method).
		Err(err).
		Msg("provider call failed")
}
