package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richinex/modelgate/config"
	"github.com/richinex/modelgate/gateway"
)

func upstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okChat = `{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":"pong"}}]}`

func newTestServer(t *testing.T, settings config.Settings) *Server {
	t.Helper()
	s, err := New(settings.Server, gateway.New(settings, nil), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func withOpenAI(baseURL string) config.Settings {
	settings := config.Defaults()
	settings.Providers = config.ProvidersConfig{"openai": {APIKey: "sk-test", BaseURL: baseURL}}
	return settings
}

func do(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", rec.Body.String())
	}
	msg, ok := body["error"]
	if !ok {
		t.Fatalf("expected error field, got %q", rec.Body.String())
	}
	return msg
}

func TestNewRequiresService(t *testing.T) {
	if _, err := New(config.Defaults().Server, nil, nil); err == nil {
		t.Error("expected error for nil service")
	}
}

func TestAllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    string
	}{
		{"empty list", "https://x.dev", nil, "*"},
		{"empty list no origin", "", nil, "*"},
		{"no origin uses first", "", []string{"https://a.dev", "*"}, "https://a.dev"},
		{"wildcard", "https://x.dev", []string{"https://a.dev", "*"}, "*"},
		{"listed origin echoed", "https://b.dev", []string{"https://a.dev", "https://b.dev"}, "https://b.dev"},
		{"unlisted gets first", "https://x.dev", []string{"https://a.dev", "https://b.dev"}, "https://a.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allowedOrigin(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("allowedOrigin(%q, %v) = %q, want %q", tt.origin, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	settings := config.Defaults()
	settings.Server.AllowedOrigins = []string{"https://app.example"}
	s := newTestServer(t, settings)

	rec := do(s, http.MethodOptions, "/aichat/chat", "", map[string]string{"Origin": "https://app.example"})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	h := rec.Header()
	if got := h.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("unexpected origin %q", got)
	}
	if h.Get("Access-Control-Allow-Methods") != "GET,POST,OPTIONS" ||
		h.Get("Access-Control-Allow-Headers") != "Content-Type,Authorization" ||
		h.Get("Access-Control-Max-Age") != "86400" {
		t.Errorf("unexpected CORS headers %v", h)
	}
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, config.Defaults()), http.MethodGet, "/aichat/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers must be set on every response")
	}
}

func TestChat(t *testing.T) {
	s := newTestServer(t, withOpenAI(upstream(t, http.StatusOK, okChat).URL))

	rec := do(s, http.MethodPost, "/aichat/chat",
		`{"model":"gpt-4o-mini","messages":[{"role":"user","content":"ping"}]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["content"] != "pong" || result["provider"] != "OPENAI" {
		t.Errorf("unexpected result %v", result)
	}
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		method   string
		path     string
		body     string
		want     int
	}{
		{"malformed body", config.Defaults(), http.MethodPost, "/aichat/chat", `{"model":`, http.StatusBadRequest},
		{"empty body", config.Defaults(), http.MethodPost, "/aichat/chat", ``, http.StatusBadRequest},
		{"trailing data", config.Defaults(), http.MethodPost, "/aichat/chat", `{} {}`, http.StatusBadRequest},
		{"missing model", config.Defaults(), http.MethodPost, "/aichat/chat",
			`{"messages":[{"role":"user","content":"x"}]}`, http.StatusBadRequest},
		{"unknown provider", withOpenAI("http://unused"), http.MethodPost, "/aichat/chat",
			`{"provider":"mistral","model":"m","messages":[{"role":"user","content":"x"}]}`, http.StatusBadRequest},
		{"missing credential", config.Defaults(), http.MethodPost, "/aichat/chat",
			`{"model":"m","messages":[{"role":"user","content":"x"}]}`, http.StatusInternalServerError},
		{"unknown models provider", config.Defaults(), http.MethodGet, "/aichat/models?provider=bogus", ``, http.StatusBadRequest},
		{"no route", config.Defaults(), http.MethodGet, "/aichat/nope", ``, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(t, tt.settings), tt.method, tt.path, tt.body, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if msg := errorMessage(t, rec); msg == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	failing := upstream(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`)
	s := newTestServer(t, withOpenAI(failing.URL))

	rec := do(s, http.MethodPost, "/aichat/chat",
		`{"model":"m","messages":[{"role":"user","content":"x"}]}`, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	msg := errorMessage(t, rec)
	if !strings.HasPrefix(msg, "chat failed: ") || strings.Contains(msg, "sk-test") {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestModelsAndTools(t *testing.T) {
	s := newTestServer(t, config.Defaults())

	rec := do(s, http.MethodGet, "/aichat/models?provider=deepseek", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"provider":"DEEPSEEK"`) {
		t.Errorf("unexpected models response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(s, http.MethodGet, "/aichat/tools", "", nil)
	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Tools) != 6 || body.Tools[0].Name != "now" {
		t.Errorf("unexpected tools %+v", body.Tools)
	}
}

func TestAgentRunAndReview(t *testing.T) {
	s := newTestServer(t, withOpenAI(upstream(t, http.StatusOK, okChat).URL))

	rec := do(s, http.MethodPost, "/aichat/agent/run", `{"model":"m","prompt":"hi"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("agent run: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"output":"pong"`) || !strings.Contains(rec.Body.String(), `"toolCalls":[]`) {
		t.Errorf("unexpected run %s", rec.Body.String())
	}

	rec = do(s, http.MethodPost, "/aichat/code-review", `{"model":"m","code":"x := 1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"severity":"INFO"`) {
		t.Errorf("expected fallback finding, got %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(t, config.Defaults()), http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
