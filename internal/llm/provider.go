package llm

import "context"

// Provider defines the interface for chat model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one user message and returns the model's reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a single-turn chat request
type CompletionRequest struct {
	// Prompt is the user message text
	Prompt string

	// ImageURL attaches an image (http(s) URL or data URI) to the message
	ImageURL string

	// MaxTokens limits the response length; 0 uses the provider default
	MaxTokens int
}

// CompletionResponse is the model's reply
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "perplexity", "openai", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL overrides the provider's default endpoint
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "perplexity",
		Model:     "sonar-pro",
		Timeout:   30,
		MaxTokens: 500,
	}
}
