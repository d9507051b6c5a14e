package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modelgate_llm_request_duration_seconds",
		Help:    "LLM request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "provider", "model", "status"})

	llmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelgate_llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"method", "provider", "model", "status"})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelgate_llm_tokens_total",
		Help: "Total number of tokens reported by upstream providers",
	}, []string{"method", "provider", "model", "token_type"})
)

func recordRequest(method string, provider ProviderType, model, status string, duration time.Duration) {
	llmRequestDuration.WithLabelValues(method, provider.String(), model, status).Observe(duration.Seconds())
	llmRequestsTotal.WithLabelValues(method, provider.String(), model, status).Inc()
}

func recordTokens(method string, provider ProviderType, model string, usage *TokenUsage) {
	if usage == nil {
		return
	}
	add := func(tokenType string, n *int) {
		if n != nil {
			llmTokensTotal.WithLabelValues(method, provider.String(), model, tokenType).Add(float64(*n))
		}
	}
	add("prompt", usage.PromptTokens)
	add("completion", usage.CompletionTokens)
	add("total", usage.TotalTokens)
}
