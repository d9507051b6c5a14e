// LLM Provider Factory - maps a resolved credential set to a concrete provider.
//
// Quick Start:
//
//	registry := llm.NewRegistry(settings)
//	creds, err := registry.Resolve("deepseek")   // fails fast without DEEPSEEK_API_KEY
//	provider, err := llm.NewProvider(creds)
//	result, err := llm.NewClient(provider, obs).Chat(ctx, req)

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richinex/modelgate/config"
)

// ProviderType represents supported LLM providers.
// The zero value is the default provider.
type ProviderType int

const (
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI ProviderType = iota
	// ProviderDeepSeek is the DeepSeek provider (OpenAI-compatible API).
	ProviderDeepSeek
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
)

// DefaultProvider is used when a request names no provider.
const DefaultProvider = ProviderOpenAI

// AllProviders lists every supported provider in catalog order.
var AllProviders = []ProviderType{ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini}

// String returns the wire identity of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI"
	case ProviderDeepSeek:
		return "DEEPSEEK"
	case ProviderAnthropic:
		return "ANTHROPIC"
	case ProviderGemini:
		return "GEMINI"
	default:
		return "UNKNOWN"
	}
}

// Key returns the lower-case name used for configuration lookups.
func (p ProviderType) Key() string {
	return strings.ToLower(p.String())
}

// EnvVar returns the environment variable name for this provider's API key.
func (p ProviderType) EnvVar() string {
	return config.APIKeyEnv(p.Key())
}

// DefaultBaseURL returns the endpoint used when no override is configured.
// Empty means the SDK default.
func (p ProviderType) DefaultBaseURL() string {
	if p == ProviderDeepSeek {
		return deepseekBaseURL
	}
	return ""
}

// ParseProviderType parses a provider from string (case-insensitive).
// An empty selector yields the default provider.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultProvider, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// MarshalJSON encodes the provider as its wire identity.
func (p ProviderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts any selector understood by ParseProviderType.
func (p *ProviderType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseProviderType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// NewProvider builds the provider variant for resolved credentials.
func NewProvider(creds Credentials) (Provider, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredential, creds.Provider.EnvVar())
	}

	switch creds.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(creds.APIKey, creds.BaseURL), nil
	case ProviderDeepSeek:
		return NewDeepSeekProvider(creds.APIKey, creds.BaseURL), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(creds.APIKey, creds.BaseURL), nil
	case ProviderGemini:
		return NewGeminiProvider(creds.APIKey, creds.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownProvider, creds.Provider)
	}
}

// Model identifier constants for all supported providers.

// OpenAI model identifiers
const (
	// ModelOpenAIGPT4oMini is GPT-4o mini: fast and inexpensive.
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	// ModelOpenAIGPT4o is GPT-4o.
	ModelOpenAIGPT4o = "gpt-4o"
	// ModelOpenAIGPT41Mini is GPT-4.1 mini.
	ModelOpenAIGPT41Mini = "gpt-4.1-mini"
	// ModelOpenAIEmbedding3Small is the small text embedding model.
	ModelOpenAIEmbedding3Small = "text-embedding-3-small"
)

// DeepSeek model identifiers
const (
	// ModelDeepSeekChat is the general chat model.
	ModelDeepSeekChat = "deepseek-chat"
	// ModelDeepSeekReasoner is R1: reasoning model that returns reasoning_content.
	ModelDeepSeekReasoner = "deepseek-reasoner"
)

// Anthropic model identifiers
const (
	// ModelAnthropicClaudeOpus45 is Claude Opus 4.5: flagship, best for coding/agents.
	ModelAnthropicClaudeOpus45 = "claude-opus-4-5-20251101"
	// ModelAnthropicClaudeSonnet4 is Claude Sonnet 4: balanced performance.
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
)

// Gemini model identifiers
const (
	// ModelGeminiFlash25 is Gemini 2.5 Flash: speed optimized.
	ModelGeminiFlash25 = "gemini-2.5-flash"
	// ModelGeminiPro25 is Gemini 2.5 Pro: advanced reasoning.
	ModelGeminiPro25 = "gemini-2.5-pro"
	// ModelGeminiEmbedding is the Gemini text embedding model.
	ModelGeminiEmbedding = "text-embedding-004"
)
