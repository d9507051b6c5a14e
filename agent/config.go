// Agent configuration types.
//
// Information Hiding:
// - Default values hidden
// - Mapping from process settings hidden

package agent

import (
	"github.com/richinex/modelgate/config"
)

// DefaultSystemPrompt is the instruction every run starts with.
const DefaultSystemPrompt = "You are a helpful agent. Use tools only when needed. " +
	"If a URL is not in the allowlist, do not fetch it and answer without fetching."

// Default run limits.
const (
	DefaultMaxSteps    = 2
	DefaultTemperature = 0.3
)

// Config holds agent configuration.
type Config struct {
	// SystemPrompt guides the agent's behavior. The run's allowlist is appended to it.
	SystemPrompt string

	// MaxSteps bounds the number of model turns per run.
	MaxSteps int

	// Temperature is used when a request does not set one.
	Temperature float32

	// DefaultAllowlist is used when a request supplies no allowlist.
	DefaultAllowlist []string
}

// DefaultConfig returns the stock agent configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:     DefaultSystemPrompt,
		MaxSteps:         DefaultMaxSteps,
		Temperature:      DefaultTemperature,
		DefaultAllowlist: []string{"example.com", "developer.mozilla.org", "api.github.com"},
	}
}

// FromSettings maps the agent section of the process settings.
func FromSettings(s config.AgentConfig) Config {
	return NewBuilder().
		MaxSteps(s.MaxSteps).
		Temperature(float32(s.Temperature)).
		DefaultAllowlist(s.DefaultAllowlist).
		Build()
}

// Allowlist picks the request allowlist when it is non-empty, otherwise the
// configured default.
func (c Config) Allowlist(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return c.DefaultAllowlist
}
