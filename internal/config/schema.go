package config

// Config holds tianji configuration.
// Stored at: ~/.tianji/config.yaml
type Config struct {
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Session      SessionCfg                `mapstructure:"session" yaml:"session"`
	Memory       MemoryCfg                 `mapstructure:"memory" yaml:"memory"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`       // "openai"
	Model          string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selection.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"`
}

// SessionCfg configures session persistence.
type SessionCfg struct {
	// TTLSeconds is the sliding expiry applied on every save.
	TTLSeconds int `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
	// DatabasePath overrides the default ~/.tianji/data/tianji.db location.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// MemoryCfg configures the conversation memory kept for paid sessions.
type MemoryCfg struct {
	// MaxTurns is how many user turns accumulate before memory is cleared.
	MaxTurns int `mapstructure:"max_turns" yaml:"max_turns"`
	// ContextSize is how many recent memories feed each interpretation call.
	ContextSize int `mapstructure:"context_size" yaml:"context_size"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: 8080,
		},
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 60,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openai",
		},
		Session: SessionCfg{
			TTLSeconds: 43200,
		},
		Memory: MemoryCfg{
			MaxTurns:    50,
			ContextSize: 5,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
