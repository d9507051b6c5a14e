// Provider Registry - resolves a provider selector to connection parameters.
//
// Information Hiding:
// - Where credentials come from (settings snapshot)
// - Default endpoints per provider

package llm

import (
	"fmt"

	"github.com/richinex/modelgate/config"
)

// Credentials are the connection parameters for one request.
// They are produced per request and must never be logged.
type Credentials struct {
	Provider ProviderType
	APIKey   string
	BaseURL  string
}

// String masks the API key.
func (c Credentials) String() string {
	return fmt.Sprintf("%s(base=%q, key=***)", c.Provider, c.BaseURL)
}

// Registry resolves provider selectors against an immutable settings snapshot.
type Registry struct {
	settings config.Settings
}

// NewRegistry creates a registry over the provider section of the settings.
func NewRegistry(settings config.Settings) *Registry {
	snapshot := make(config.ProvidersConfig, len(settings.Providers))
	for name, p := range settings.Providers {
		snapshot[name] = p
	}
	settings.Providers = snapshot
	return &Registry{settings: settings}
}

// Resolve maps a selector to credentials. An empty selector resolves to the
// default provider. It never falls back to a different provider: a missing key
// for the selected one is ErrMissingCredential.
func (r *Registry) Resolve(selector string) (Credentials, error) {
	provider, err := ParseProviderType(selector)
	if err != nil {
		return Credentials{}, err
	}

	cfg := r.settings.Provider(provider.Key())
	if cfg.APIKey == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set", ErrMissingCredential, provider.EnvVar())
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL()
	}

	return Credentials{
		Provider: provider,
		APIKey:   cfg.APIKey,
		BaseURL:  baseURL,
	}, nil
}
