package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry holds references to LLM clients.
// It supports config-driven instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu          sync.RWMutex
	llmClients  map[string]LLMClient
	defaultName string
	logger      *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.defaultName == "" {
		r.defaultName = name
	}
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// UnregisterLLM removes an LLM client by name.
func (r *Registry) UnregisterLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.llmClients, name)
	if r.logger != nil {
		r.logger.Info("unregistered LLM client", "name", name)
	}
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// DefaultLLM returns the configured default client.
func (r *Registry) DefaultLLM() (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, fmt.Errorf("no default LLM client configured")
	}
	client, ok := r.llmClients[r.defaultName]
	if !ok {
		return nil, fmt.Errorf("default LLM client not registered: %s", r.defaultName)
	}
	return client, nil
}

// ListLLM returns all registered LLM client names.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// HasLLM checks if an LLM client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.llmClients[name]
	return ok
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// LLMProviders maps provider names to their config
	LLMProviders map[string]LLMProviderConfig

	// Default names the provider served by DefaultLLM.
	Default string
}

// LLMProviderConfig matches config.LLMProviderCfg with resolved API key.
type LLMProviderConfig struct {
	Type           string // "openai"
	Model          string // Model name
	APIKey         string // Resolved API key
	BaseURL        string
	TimeoutSeconds int
	Enabled        bool
}

// NewRegistryFromConfig creates a registry with providers based on configuration.
// Only enabled providers with valid API keys will be registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.applyConfig(cfg)
	return r
}

// Reload updates the registry based on new configuration.
// Providers no longer configured are unregistered.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		want[name] = true

		_, hasExisting := r.llmClients[name]
		client := createLLMClient(provCfg)
		if client != nil {
			r.llmClients[name] = client
			if r.logger != nil {
				if hasExisting {
					r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
				} else {
					r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
				}
			}
		}
	}

	for name := range r.llmClients {
		if !want[name] {
			delete(r.llmClients, name)
			if r.logger != nil {
				r.logger.Info("unregistered LLM client", "name", name)
			}
		}
	}

	if cfg.Default != "" {
		r.defaultName = cfg.Default
	}
}

// applyConfig applies configuration without locking (used during init).
func (r *Registry) applyConfig(cfg RegistryConfig) {
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		client := createLLMClient(provCfg)
		if client != nil {
			r.llmClients[name] = client
		}
	}
	r.defaultName = cfg.Default
}

// createLLMClient creates an LLM client based on provider type.
func createLLMClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	default:
		return nil
	}
}

// DynamicLLM resolves the registry's current default client on every
// call, so provider hot reloads take effect without rewiring callers.
type DynamicLLM struct {
	registry *Registry
}

// Dynamic returns an LLMClient backed by the registry's default provider.
func (r *Registry) Dynamic() *DynamicLLM {
	return &DynamicLLM{registry: r}
}

func (d *DynamicLLM) Name() string { return "default" }

func (d *DynamicLLM) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	client, err := d.registry.DefaultLLM()
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, req)
}

var _ LLMClient = (*DynamicLLM)(nil)
