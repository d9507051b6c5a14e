// Package gateway implements the boundary operations: chat, embeddings,
// model listing, agent runs and code review.
//
// Information Hiding:
// - Per-request provider resolution and construction
// - Request validation
// - Error wrapping, tracing, logging and the optional run audit
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/richinex/modelgate/agent"
	"github.com/richinex/modelgate/config"
	"github.com/richinex/modelgate/llm"
	"github.com/richinex/modelgate/model"
	"github.com/richinex/modelgate/observe"
	"github.com/richinex/modelgate/review"
	"github.com/richinex/modelgate/storage"
	"github.com/richinex/modelgate/tools"
)

// ErrInvalidRequest is returned when a request fails validation.
var ErrInvalidRequest = errors.New("invalid request")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Service is the entry point shared by the HTTP server and the CLI.
// It holds no per-request state.
type Service struct {
	registry *llm.Registry
	catalog  *tools.Registry
	agentCfg agent.Config
	audit    storage.RunStore
	obs      *observe.Observer
}

// Option configures a Service.
type Option func(*Service)

// WithAudit records every finished agent run in store.
func WithAudit(store storage.RunStore) Option {
	return func(s *Service) {
		s.audit = store
	}
}

// New creates a service over a settings snapshot.
func New(settings config.Settings, obs *observe.Observer, opts ...Option) *Service {
	if obs == nil {
		obs = observe.Discard()
	}
	s := &Service{
		registry: llm.NewRegistry(settings),
		catalog:  tools.Catalog(tools.Config{HTTPTimeoutSecs: settings.Tools.HTTPTimeoutSecs}),
		agentCfg: agent.FromSettings(settings.Agent),
		obs:      obs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat runs a single chat completion.
func (s *Service) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error) {
	if err := check(req); err != nil {
		return llm.ChatResult{}, err
	}

	ctx, span := s.begin(ctx, "chat", req.Provider, req.Model)
	defer span.End()

	client, err := s.client(req.Provider)
	if err != nil {
		return llm.ChatResult{}, s.fail(span, "chat", req.Model, err)
	}
	result, err := client.Chat(ctx, req)
	if err != nil {
		return llm.ChatResult{}, s.fail(span, "chat", req.Model, err)
	}
	return result, nil
}

// Embeddings returns one vector per input, each tagged with its input index.
func (s *Service) Embeddings(ctx context.Context, req llm.EmbeddingRequest) (llm.EmbeddingResult, error) {
	if err := check(req); err != nil {
		return llm.EmbeddingResult{}, err
	}

	ctx, span := s.begin(ctx, "embeddings", req.Provider, req.Model)
	defer span.End()

	client, err := s.client(req.Provider)
	if err != nil {
		return llm.EmbeddingResult{}, s.fail(span, "embeddings", req.Model, err)
	}
	result, err := client.Embeddings(ctx, req)
	if err != nil {
		return llm.EmbeddingResult{}, s.fail(span, "embeddings", req.Model, err)
	}
	return result, nil
}

// ListModels returns the static catalog for a provider. It needs no credential.
func (s *Service) ListModels(provider string) ([]llm.ModelDescriptor, error) {
	p, err := llm.ParseProviderType(provider)
	if err != nil {
		return nil, fmt.Errorf("models failed: %w", err)
	}
	return llm.Models(p), nil
}

// Tools lists the tool catalog offered to agents.
func (s *Service) Tools() []tools.ToolMetadata {
	return s.catalog.List()
}

// RunAgent performs one bounded agent run.
func (s *Service) RunAgent(ctx context.Context, req agent.Request) (model.Run, error) {
	if err := check(req); err != nil {
		return model.Run{}, err
	}

	ctx, span := s.begin(ctx, "agent", req.Provider, req.Model)
	defer span.End()

	client, err := s.client(req.Provider)
	if err != nil {
		return model.Run{}, s.fail(span, "agent", req.Model, err)
	}

	runner := agent.NewRunner(s.agentCfg, client, tools.NewExecutor(s.catalog, s.obs), s.obs)
	run, err := runner.Run(ctx, req)
	if err != nil {
		return model.Run{}, s.fail(span, "agent", req.Model, err)
	}

	if s.audit != nil {
		if err := s.audit.SaveRun(ctx, run, req.Prompt); err != nil {
			s.obs.Log().Warn().Str("run_id", run.ID).Err(err).Msg("run audit failed")
		}
	}
	return run, nil
}

// Review asks the model for a structured code review.
func (s *Service) Review(ctx context.Context, req review.Request) (review.Result, error) {
	if err := check(req); err != nil {
		return review.Result{}, err
	}

	ctx, span := s.begin(ctx, "code_review", req.Provider, req.Model)
	defer span.End()

	client, err := s.client(req.Provider)
	if err != nil {
		return review.Result{}, s.fail(span, "code_review", req.Model, err)
	}
	result, err := review.Review(ctx, client, req)
	if err != nil {
		return review.Result{}, s.fail(span, "code_review", req.Model, err)
	}
	return result, nil
}

// client resolves a fresh provider for one request.
func (s *Service) client(selector string) (*llm.Client, error) {
	creds, err := s.registry.Resolve(selector)
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(creds)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider, s.obs), nil
}

func (s *Service) begin(ctx context.Context, op, provider, modelName string) (context.Context, trace.Span) {
	ctx, span := s.obs.StartSpan(ctx, "gateway."+op)
	span.SetAttributes(
		attribute.String("gateway.operation", op),
		attribute.String("llm.provider_selector", provider),
		attribute.String("llm.model", modelName),
	)
	s.obs.Log().Info().
		Str("operation", op).
		Str("provider", provider).
		Str("model", modelName).
		Msg("request started")
	return ctx, span
}

func (s *Service) fail(span trace.Span, op, modelName string, err error) error {
	wrapped := fmt.Errorf("%s failed: %w", op, err)
	span.RecordError(wrapped)
	span.SetStatus(codes.Error, wrapped.Error())
	s.obs.Log().Error().
		Str("operation", op).
		Str("model", modelName).
		Err(err).
		Msg("request failed")
	return wrapped
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
