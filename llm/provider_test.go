package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonServer(t *testing.T, wantPath, body string, capture *map[string]interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && !strings.HasSuffix(r.URL.Path, wantPath) {
			t.Errorf("unexpected path %q, want suffix %q", r.URL.Path, wantPath)
		}
		if capture != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, capture)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func floatPtr(f float32) *float32 { return &f }

func TestOpenAIChatNormalizesResponse(t *testing.T) {
	var sent map[string]interface{}
	server := jsonServer(t, "/chat/completions", `{
		"id": "chatcmpl-1",
		"model": "deepseek-reasoner-0528",
		"choices": [{"message": {"role": "assistant", "content": "4", "reasoning_content": "2+2 is 4"}}],
		"usage": {"prompt_tokens": 10, "total_tokens": 12}
	}`, &sent)

	p := NewDeepSeekProvider("test-key", server.URL)
	if p.Type() != ProviderDeepSeek {
		t.Fatalf("expected DEEPSEEK, got %v", p.Type())
	}

	resp, err := p.Chat(context.Background(), []ChatMessage{UserMessage("2+2?")}, CallOptions{
		Model:       ModelDeepSeekReasoner,
		Temperature: floatPtr(0),
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.ID != "chatcmpl-1" || resp.Model != "deepseek-reasoner-0528" {
		t.Errorf("unexpected id/model: %q %q", resp.ID, resp.Model)
	}
	if resp.Content != "4" {
		t.Errorf("expected content '4', got %q", resp.Content)
	}
	if resp.Reasoning == nil || *resp.Reasoning != "2+2 is 4" {
		t.Errorf("expected reasoning trace, got %v", resp.Reasoning)
	}
	if resp.Usage == nil {
		t.Fatal("expected usage")
	}
	if resp.Usage.PromptTokens == nil || *resp.Usage.PromptTokens != 10 {
		t.Errorf("expected 10 prompt tokens, got %v", resp.Usage.PromptTokens)
	}
	if resp.Usage.CompletionTokens != nil {
		t.Errorf("expected unreported completion tokens to be nil, got %d", *resp.Usage.CompletionTokens)
	}
	if _, ok := sent["temperature"]; !ok {
		t.Error("expected explicit zero temperature to be sent")
	}
}

func TestOpenAIChatEmptyChoices(t *testing.T) {
	server := jsonServer(t, "/chat/completions", `{"id": "x", "choices": []}`, nil)

	resp, err := NewOpenAIProvider("test-key", server.URL).Chat(context.Background(),
		[]ChatMessage{UserMessage("hi")}, CallOptions{Model: ModelOpenAIGPT4oMini})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "" || resp.Reasoning != nil || resp.Usage != nil {
		t.Errorf("expected empty content, nil reasoning and nil usage, got %+v", resp)
	}
}

func TestOpenAIChatWithToolCalls(t *testing.T) {
	var sent map[string]interface{}
	server := jsonServer(t, "/chat/completions", `{
		"id": "chatcmpl-2",
		"choices": [{"message": {"role": "assistant", "content": "", "tool_calls": [
			{"id": "call_1", "type": "function", "function": {"name": "now", "arguments": "{}"}}
		]}}]
	}`, &sent)

	tools := []ToolDefinition{{
		Name:        "now",
		Description: "current time",
		Parameters:  map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
	}}
	resp, err := NewOpenAIProvider("test-key", server.URL).ChatWithTools(context.Background(),
		[]ChatMessage{UserMessage("what time is it")}, tools, CallOptions{Model: ModelOpenAIGPT4o})
	if err != nil {
		t.Fatalf("ChatWithTools failed: %v", err)
	}

	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "now" || resp.ToolCalls[0].ID != "call_1" {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if toolsSent, _ := sent["tools"].([]interface{}); len(toolsSent) != 1 {
		t.Errorf("expected one tool in request, got %v", sent["tools"])
	}
}

func TestOpenAIEmbeddings(t *testing.T) {
	server := jsonServer(t, "/embeddings", `{
		"object": "list",
		"model": "text-embedding-3-small",
		"data": [
			{"object": "embedding", "index": 1, "embedding": [0.3, 0.4]},
			{"object": "embedding", "index": 0, "embedding": [0.1, 0.2]}
		],
		"usage": {"prompt_tokens": 4, "total_tokens": 4}
	}`, nil)

	client := NewClient(NewOpenAIProvider("test-key", server.URL), nil)
	result, err := client.Embeddings(context.Background(), EmbeddingRequest{
		Model: ModelOpenAIEmbedding3Small,
		Input: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Embeddings failed: %v", err)
	}

	if len(result.Data) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(result.Data))
	}
	if result.Data[0].Index != 0 || result.Data[0].Embedding[0] != 0.1 {
		t.Errorf("expected vectors sorted by index, got %+v", result.Data)
	}
	if result.Provider != ProviderOpenAI {
		t.Errorf("expected OPENAI, got %v", result.Provider)
	}
	if result.Usage == nil || result.Usage.CompletionTokens != nil {
		t.Errorf("expected usage with nil completion tokens, got %+v", result.Usage)
	}
}

func TestAnthropicChatThinkingAndUsage(t *testing.T) {
	var sent map[string]interface{}
	server := jsonServer(t, "/v1/messages", `{
		"id": "msg_123",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [
			{"type": "thinking", "thinking": "considering", "signature": "sig"},
			{"type": "text", "text": "answer"}
		],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 5, "output_tokens": 10}
	}`, &sent)

	p := NewAnthropicProvider("test-key", server.URL)
	resp, err := p.Chat(context.Background(), []ChatMessage{
		SystemMessage("be brief"),
		UserMessage("question"),
	}, CallOptions{Model: ModelAnthropicClaudeSonnet4})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Content != "answer" {
		t.Errorf("expected 'answer', got %q", resp.Content)
	}
	if resp.Reasoning == nil || *resp.Reasoning != "considering" {
		t.Errorf("expected thinking as reasoning, got %v", resp.Reasoning)
	}
	if resp.Usage == nil || *resp.Usage.PromptTokens != 5 || *resp.Usage.CompletionTokens != 10 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.Usage.TotalTokens != nil {
		t.Errorf("expected no synthesized total, got %d", *resp.Usage.TotalTokens)
	}
	if sent["max_tokens"] == nil {
		t.Error("expected default max_tokens in request")
	}
}

func TestAnthropicToolUse(t *testing.T) {
	server := jsonServer(t, "/v1/messages", `{
		"id": "msg_456",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [
			{"type": "text", "text": "checking"},
			{"type": "tool_use", "id": "tc_1", "name": "echo", "input": {"text": "hi"}}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 5, "output_tokens": 10}
	}`, nil)

	resp, err := NewAnthropicProvider("test-key", server.URL).ChatWithTools(context.Background(),
		[]ChatMessage{UserMessage("echo hi")},
		[]ToolDefinition{{Name: "echo", Description: "echo text", Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"text": map[string]interface{}{"type": "string"}},
			"required":   []string{"text"},
		}}},
		CallOptions{Model: ModelAnthropicClaudeSonnet4})
	if err != nil {
		t.Fatalf("ChatWithTools failed: %v", err)
	}

	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "echo" {
		t.Fatalf("unexpected tool calls %+v", resp.ToolCalls)
	}
	var args map[string]string
	if err := json.Unmarshal(resp.ToolCalls[0].Arguments, &args); err != nil || args["text"] != "hi" {
		t.Errorf("unexpected arguments %s", resp.ToolCalls[0].Arguments)
	}
}

func TestAnthropicEmbeddingsUnsupported(t *testing.T) {
	_, err := NewAnthropicProvider("test-key", "").Embeddings(context.Background(), "any", []string{"a"})
	if !errors.Is(err, ErrProviderCallFailed) || !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected unsupported provider call failure, got %v", err)
	}
}

func TestGeminiChatThoughtParts(t *testing.T) {
	server := jsonServer(t, ":generateContent", `{
		"responseId": "resp-1",
		"modelVersion": "gemini-2.5-flash",
		"candidates": [{"content": {"role": "model", "parts": [
			{"text": "pondering", "thought": true},
			{"text": "hello"}
		]}}],
		"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
	}`, nil)

	resp, err := NewGeminiProvider("test-key", server.URL).Chat(context.Background(),
		[]ChatMessage{UserMessage("hi")}, CallOptions{Model: ModelGeminiFlash25})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Content != "hello" {
		t.Errorf("expected 'hello', got %q", resp.Content)
	}
	if resp.Reasoning == nil || *resp.Reasoning != "pondering" {
		t.Errorf("expected thought part as reasoning, got %v", resp.Reasoning)
	}
	if resp.ID != "resp-1" || resp.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected id/model %q %q", resp.ID, resp.Model)
	}
	if resp.Usage == nil || *resp.Usage.TotalTokens != 5 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

// Upstream auth failures must not echo the API key back to callers.
func TestProviderErrorNoAPIKeyLeak(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key", "type": "authentication_error"}}`))
	}))
	defer server.Close()

	testKey := "sk-test-invalid-key-12345xyz"
	providers := []Provider{
		NewOpenAIProvider(testKey, server.URL),
		NewDeepSeekProvider(testKey, server.URL),
		NewAnthropicProvider(testKey, server.URL),
	}

	for _, p := range providers {
		t.Run(p.Type().String(), func(t *testing.T) {
			_, err := p.Chat(context.Background(), []ChatMessage{UserMessage("test")}, CallOptions{Model: "m"})
			if err == nil {
				t.Fatal("expected error from 401 response")
			}
			if !errors.Is(err, ErrProviderCallFailed) {
				t.Errorf("expected ErrProviderCallFailed, got %v", err)
			}
			if strings.Contains(err.Error(), testKey) {
				t.Errorf("error message leaked API key: %v", err)
			}
		})
	}
}
