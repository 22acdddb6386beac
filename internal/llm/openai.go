package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factlens/internal/util"
)

const maxAttempts = 3

// retrySleepFunc is replaced in tests
var retrySleepFunc = time.Sleep

// OpenAIProvider implements Provider for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	name   string
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: util.NewTransport(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}

	return &OpenAIProvider{
		name:   "openai",
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends a chat completion, retrying rate limits and upstream
// server errors
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 500
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  []openai.ChatCompletionMessage{userMessage(req)},
		MaxTokens: maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			retrySleepFunc(time.Duration(1200*attempt) * time.Millisecond)
		}

		resp, err := p.createWithTimeout(ctx, chatReq, timeout)
		if err == nil {
			if len(resp.Choices) == 0 {
				return nil, fmt.Errorf("no response from %s", p.name)
			}
			return &CompletionResponse{
				Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
				Model:      resp.Model,
				TokensUsed: resp.Usage.TotalTokens,
			}, nil
		}

		lastErr = err
		if ctx.Err() != nil || !isRetryable(err) {
			break
		}
	}

	return nil, fmt.Errorf("%s API error: %w", p.name, lastErr)
}

func (p *OpenAIProvider) createWithTimeout(ctx context.Context, req openai.ChatCompletionRequest, timeout time.Duration) (openai.ChatCompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.client.CreateChatCompletion(ctx, req)
}

func userMessage(req CompletionRequest) openai.ChatCompletionMessage {
	if req.ImageURL == "" {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}
	}

	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: req.ImageURL}},
		},
	}
}

// StatusCode extracts the upstream HTTP status from a provider error, or 0
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch code := StatusCode(err); {
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 504:
		return true
	case code == 0:
		// Network failures carry no status
		return !errors.Is(err, context.DeadlineExceeded)
	default:
		return false
	}
}
