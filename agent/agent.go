// Bounded tool-calling loop.
//
// Information Hiding:
// - Conversation assembly hidden
// - Tool execution coordination hidden
// - Step accounting and termination hidden

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/richinex/modelgate/llm"
	"github.com/richinex/modelgate/model"
	"github.com/richinex/modelgate/observe"
	"github.com/richinex/modelgate/tools"
)

// Runner executes one-shot agent runs against a model client.
type Runner struct {
	config   Config
	client   *llm.Client
	executor *tools.Executor
	obs      *observe.Observer
}

// NewRunner creates a runner. The full tool catalog of the executor is
// offered to the model on every turn.
func NewRunner(config Config, client *llm.Client, executor *tools.Executor, obs *observe.Observer) *Runner {
	if obs == nil {
		obs = observe.Discard()
	}
	if config.MaxSteps < 1 {
		config.MaxSteps = DefaultMaxSteps
	}
	return &Runner{
		config:   config,
		client:   client,
		executor: executor,
		obs:      obs,
	}
}

// Run drives the model/tool loop until the model answers without tool calls
// or the step cap is reached. Tool failures are recorded and reported back to
// the model; provider failures abort the run.
func (r *Runner) Run(ctx context.Context, req Request) (model.Run, error) {
	start := time.Now()
	runID := "run_" + uuid.NewString()

	ctx, span := r.obs.StartSpan(ctx, "agent.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("agent.run_id", runID),
		attribute.String("llm.model", req.Model),
	)

	allowlist := tools.NewAllowlist(r.config.Allowlist(req.URLAllowlist))
	policy := tools.Policy{Allowlist: allowlist}
	definitions := r.executor.Registry().Definitions()

	opts := llm.CallOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if opts.Temperature == nil {
		t := r.config.Temperature
		opts.Temperature = &t
	}

	conversation := []llm.ChatMessage{
		llm.SystemMessage(r.systemPrompt(allowlist)),
		llm.UserMessage(req.Prompt),
	}

	records := []model.ToolInvocation{}
	var output string
	steps := 0

	for steps < r.config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return model.Run{}, fmt.Errorf("run cancelled: %w", err)
		}
		steps++

		resp, err := r.client.ChatWithTools(ctx, conversation, definitions, opts)
		if err != nil {
			span.RecordError(err)
			return model.Run{}, err
		}
		output = resp.Content

		if len(resp.ToolCalls) == 0 {
			break
		}

		turn := llm.AssistantMessage(resp.Content)
		turn.ToolCalls = resp.ToolCalls
		conversation = append(conversation, turn)

		for _, call := range resp.ToolCalls {
			record, result := r.executeTool(ctx, call, policy)
			records = append(records, record)
			conversation = append(conversation, llm.ToolResultMessage(call.ID, result))
		}
	}

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("agent.steps", steps),
		attribute.Int("agent.tool_calls", len(records)),
	)
	r.obs.Log().Info().
		Str("run_id", runID).
		Str("model", req.Model).
		Int("steps", steps).
		Int("tool_calls", len(records)).
		Int("duration_ms", int(elapsed.Milliseconds())).
		Msg("agent run complete")

	return model.Run{
		ID:         runID,
		Provider:   r.client.Provider().Type().String(),
		Model:      req.Model,
		Output:     output,
		ToolCalls:  records,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// executeTool runs one call and returns its record plus the message fed back
// to the model.
func (r *Runner) executeTool(ctx context.Context, call llm.ToolCall, policy tools.Policy) (model.ToolInvocation, string) {
	args := string(call.Arguments)
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	out, err := r.executor.Execute(ctx, call.Name, json.RawMessage(args), policy)
	if err != nil {
		return model.Failed(call.Name, args, err), errorPayload(err)
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return model.Failed(call.Name, args, err), errorPayload(err)
	}
	return model.Succeeded(call.Name, args), string(encoded)
}

func (r *Runner) systemPrompt(allowlist tools.Allowlist) string {
	hosts := allowlist.String()
	if hosts == "" {
		hosts = "(none)"
	}
	return fmt.Sprintf("%s\n\nURL allowlist: %s", r.config.SystemPrompt, hosts)
}

func errorPayload(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
