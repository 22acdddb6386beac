package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

const (
	perplexityBaseURL = "https://api.perplexity.ai"
	ollamaBaseURL     = "http://localhost:11434/v1"
)

// NewProvider creates a provider based on configuration. Every supported
// provider speaks the OpenAI chat completions protocol.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "perplexity", "":
		if config.BaseURL == "" {
			config.BaseURL = perplexityBaseURL
		}
		if config.Model == "" {
			config.Model = "sonar-pro"
		}
		return newNamedProvider("perplexity", config)

	case "openai":
		return newNamedProvider("openai", config)

	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = ollamaBaseURL
		}
		if config.APIKey == "" {
			// Ollama ignores the key but the client requires one
			config.APIKey = "ollama"
		}
		return newNamedProvider("ollama", config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: perplexity, openai, ollama)", config.Provider)
	}
}

func newNamedProvider(name string, config Config) (Provider, error) {
	p, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	p.name = name
	return p, nil
}

// ConfigFromModel converts model.LLMConfig and the service proxy settings
// to llm.Config
func ConfigFromModel(cfg model.LLMConfig, proxy model.ServiceConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  proxy.HTTPProxy,
		HTTPSProxy: proxy.HTTPSProxy,
		NoProxy:    proxy.NoProxy,
	}
}
