// DeepSeek Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses OpenAI-compatible API with different base URL
// - deepseek-reasoner returns its chain of thought as reasoning_content

package llm

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements the Provider interface for DeepSeek.
type DeepSeekProvider struct {
	*OpenAIProvider
}

// NewDeepSeekProvider creates a new DeepSeek provider.
// An empty baseURL uses the public DeepSeek endpoint.
func NewDeepSeekProvider(apiKey, baseURL string) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return &DeepSeekProvider{
		OpenAIProvider: newOpenAICompatible(ProviderDeepSeek, apiKey, baseURL),
	}
}

// Verify DeepSeekProvider implements Provider
var _ Provider = (*DeepSeekProvider)(nil)
