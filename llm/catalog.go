package llm

// catalog is the curated model list per provider. Listing never contacts
// an upstream and needs no credential.
var catalog = map[ProviderType][]ModelDescriptor{
	ProviderOpenAI: {
		{ID: ModelOpenAIGPT4oMini, Provider: ProviderOpenAI, Label: "GPT-4o mini"},
		{ID: ModelOpenAIGPT4o, Provider: ProviderOpenAI, Label: "GPT-4o"},
		{ID: ModelOpenAIGPT41Mini, Provider: ProviderOpenAI, Label: "GPT-4.1 mini"},
	},
	ProviderDeepSeek: {
		{ID: ModelDeepSeekChat, Provider: ProviderDeepSeek, Label: "DeepSeek Chat"},
		{ID: ModelDeepSeekReasoner, Provider: ProviderDeepSeek, Label: "DeepSeek Reasoner (R1)"},
	},
	ProviderAnthropic: {
		{ID: ModelAnthropicClaudeSonnet4, Provider: ProviderAnthropic, Label: "Claude Sonnet 4"},
		{ID: ModelAnthropicClaudeOpus45, Provider: ProviderAnthropic, Label: "Claude Opus 4.5"},
	},
	ProviderGemini: {
		{ID: ModelGeminiFlash25, Provider: ProviderGemini, Label: "Gemini 2.5 Flash"},
		{ID: ModelGeminiPro25, Provider: ProviderGemini, Label: "Gemini 2.5 Pro"},
	},
}

// Models returns the curated catalog for a provider. The returned slice is a
// copy and may be modified by the caller.
func Models(p ProviderType) []ModelDescriptor {
	models := catalog[p]
	out := make([]ModelDescriptor, len(models))
	copy(out, models)
	return out
}
