// Agent builder for fluent configuration.
//
// Information Hiding:
// - Builder state management hidden
// - Default value application hidden

package agent

// Builder provides fluent configuration for creating agent configs.
// Unset fields fall back to DefaultConfig.
type Builder struct {
	systemPrompt     string
	maxSteps         int
	temperature      *float32
	defaultAllowlist []string
}

// NewBuilder creates a new agent builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SystemPrompt sets the agent's system prompt.
func (b *Builder) SystemPrompt(prompt string) *Builder {
	b.systemPrompt = prompt
	return b
}

// MaxSteps sets the model turn cap. Values below one are ignored.
func (b *Builder) MaxSteps(n int) *Builder {
	b.maxSteps = n
	return b
}

// Temperature sets the default sampling temperature.
func (b *Builder) Temperature(t float32) *Builder {
	b.temperature = &t
	return b
}

// DefaultAllowlist sets the hosts used when a request names none.
func (b *Builder) DefaultAllowlist(hosts []string) *Builder {
	b.defaultAllowlist = hosts
	return b
}

// Build creates the agent configuration.
func (b *Builder) Build() Config {
	cfg := DefaultConfig()
	if b.systemPrompt != "" {
		cfg.SystemPrompt = b.systemPrompt
	}
	if b.maxSteps > 0 {
		cfg.MaxSteps = b.maxSteps
	}
	if b.temperature != nil {
		cfg.Temperature = *b.temperature
	}
	if len(b.defaultAllowlist) > 0 {
		cfg.DefaultAllowlist = b.defaultAllowlist
	}
	return cfg
}
