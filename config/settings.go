// Package config provides application settings loaded from environment variables.
//
// Settings are created via Load() which handles:
// - Default value application
// - Optional YAML overlay for server, agent and tool settings
// - Environment variable parsing with validation
//
// Provider credentials are only ever read from the environment.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds all application configuration.
type Settings struct {
	Providers ProvidersConfig `yaml:"-"`
	Server    ServerConfig    `yaml:"server"`
	Agent     AgentConfig     `yaml:"agent"`
	Tools     ToolsConfig     `yaml:"tools"`
	Log       LogConfig       `yaml:"log"`
	AuditDB   string          `yaml:"audit_db"`
}

// ProvidersConfig holds per-provider connection parameters keyed by
// canonical provider name (openai, deepseek, anthropic, gemini).
type ProvidersConfig map[string]ProviderConfig

// ProviderConfig captures authentication and endpoint info for a provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AgentConfig holds agent execution configuration.
type AgentConfig struct {
	MaxSteps         int      `yaml:"max_steps"`
	Temperature      float64  `yaml:"temperature"`
	DefaultAllowlist []string `yaml:"default_allowlist"`
}

// ToolsConfig holds tool execution configuration.
type ToolsConfig struct {
	HTTPTimeoutSecs uint32 `yaml:"http_timeout_secs"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Verbose reports whether info and debug records should be emitted.
func (c LogConfig) Verbose() bool {
	switch strings.ToLower(c.Level) {
	case "debug", "info":
		return true
	}
	return false
}

// providerInfo holds environment keys for a specific LLM provider.
type providerInfo struct {
	apiKeyEnv  string
	baseURLEnv string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_API_KEY", "OPENAI_BASE_URL"},
	"deepseek":  {"DEEPSEEK_API_KEY", "DEEPSEEK_BASE_URL"},
	"anthropic": {"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL"},
	"gemini":    {"GEMINI_API_KEY", "GEMINI_BASE_URL"},
}

// Defaults returns settings with every default applied and no credentials.
func Defaults() Settings {
	return Settings{
		Providers: ProvidersConfig{},
		Server: ServerConfig{
			Port: 8787,
		},
		Agent: AgentConfig{
			MaxSteps:         2,
			Temperature:      0.3,
			DefaultAllowlist: []string{"example.com", "developer.mozilla.org", "api.github.com"},
		},
		Tools: ToolsConfig{
			HTTPTimeoutSecs: 30,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load builds settings from defaults, an optional YAML file and the environment,
// in that order of precedence (environment wins).
// An empty path skips the file overlay.
func Load(path string) (Settings, error) {
	settings := Defaults()

	if path != "" {
		if err := overlayFile(&settings, path); err != nil {
			return Settings{}, err
		}
	}

	if err := overlayEnv(&settings); err != nil {
		return Settings{}, err
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// MustLoad loads settings without a config file.
// Panics if environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustLoad() Settings {
	settings, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Validate performs sanity checks on the configuration.
func (s Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server port must be a valid TCP port, got %d", s.Server.Port)
	}
	if s.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent max steps must be at least 1, got %d", s.Agent.MaxSteps)
	}
	if s.Tools.HTTPTimeoutSecs == 0 {
		return fmt.Errorf("tool http timeout must be positive")
	}
	return nil
}

func overlayFile(settings *Settings, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", absPath, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("parse config file %q: %w", absPath, err)
	}
	return nil
}

func overlayEnv(settings *Settings) error {
	if settings.Providers == nil {
		settings.Providers = ProvidersConfig{}
	}
	for name, info := range providers {
		settings.Providers[name] = ProviderConfig{
			APIKey:  strings.TrimSpace(os.Getenv(info.apiKeyEnv)),
			BaseURL: strings.TrimSpace(os.Getenv(info.baseURLEnv)),
		}
	}

	var err error
	if settings.Server.Port, err = getEnvInt("PORT", settings.Server.Port); err != nil {
		return err
	}
	settings.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", settings.Server.AllowedOrigins)

	if settings.Agent.MaxSteps, err = getEnvInt("AGENT_MAX_STEPS", settings.Agent.MaxSteps); err != nil {
		return err
	}
	if settings.Agent.Temperature, err = getEnvFloat64("AGENT_TEMPERATURE", settings.Agent.Temperature); err != nil {
		return err
	}
	settings.Agent.DefaultAllowlist = getEnvList("AGENT_DEFAULT_ALLOWLIST", settings.Agent.DefaultAllowlist)

	if settings.Tools.HTTPTimeoutSecs, err = getEnvUint32("TOOL_HTTP_TIMEOUT", settings.Tools.HTTPTimeoutSecs); err != nil {
		return err
	}

	settings.Log.Level = getEnvString("LOG_LEVEL", settings.Log.Level)
	settings.Log.Format = getEnvString("LOG_FORMAT", settings.Log.Format)
	settings.AuditDB = getEnvString("AUDIT_DB", settings.AuditDB)
	return nil
}

// Provider returns the connection parameters for a canonical provider name.
// The zero value is returned for providers with nothing configured.
func (s Settings) Provider(name string) ProviderConfig {
	return s.Providers[strings.ToLower(name)]
}

// APIKeyEnv returns the environment variable holding the API key for a provider.
func APIKeyEnv(provider string) string {
	return providers[strings.ToLower(provider)].apiKeyEnv
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return defaultVal
	}
	var result []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
