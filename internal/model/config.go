package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds the complete factlens configuration
type Config struct {
	Backend     string            `yaml:"backend" mapstructure:"backend"` // "service" or "direct"
	Service     ServiceConfig     `yaml:"service" mapstructure:"service"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Prefs       PrefsConfig       `yaml:"prefs" mapstructure:"prefs"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// ServiceConfig configures the remote fact-checking service client
type ServiceConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	TextPath     string        `yaml:"text_path" mapstructure:"text_path"`
	ImagePath    string        `yaml:"image_path" mapstructure:"image_path"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"` // 0 means no timeout
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig configures the direct backend's chat model
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // perplexity, openai, ollama
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxClaims      int    `yaml:"max_claims" mapstructure:"max_claims"`
	MaxImageClaims int    `yaml:"max_image_claims" mapstructure:"max_image_claims"`
	MaxImages      int    `yaml:"max_images" mapstructure:"max_images"`
}

// FetchConfig configures page fetching for URL inputs in the direct backend
type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes          int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// InputConfig configures input classification and validation
type InputConfig struct {
	ScanEmbeddedURLs bool  `yaml:"scan_embedded_urls" mapstructure:"scan_embedded_urls"`
	MaxImageBytes    int64 `yaml:"max_image_bytes" mapstructure:"max_image_bytes"`
}

// PrefsConfig configures the durable preference store
type PrefsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ConcurrencyConfig configures worker counts
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// ServerConfig configures the local web UI
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// MaxImageBytes is the upload bound for image submissions (5 MB)
const MaxImageBytes = 5 * 1024 * 1024

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: "service",
		Service: ServiceConfig{
			BaseURL:      "http://localhost:5000",
			TextPath:     "/api/fact-check",
			ImagePath:    "/api/fact-check-image",
			MaxBodyBytes: 10_000_000,
			UserAgent:    "factlens/0.3 (+https://github.com/ppiankov/factlens)",
		},
		LLM: LLMConfig{
			Provider:       "perplexity",
			Model:          "sonar-pro",
			Timeout:        30,
			MaxTokens:      500,
			MaxClaims:      6,
			MaxImageClaims: 4,
			MaxImages:      1,
		},
		Fetch: FetchConfig{
			Timeout:           12 * time.Second,
			UserAgent:         "Mozilla/5.0 (compatible; factlens/0.3; +https://github.com/ppiankov/factlens)",
			MaxBytes:          2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Input: InputConfig{
			ScanEmbeddedURLs: false,
			MaxImageBytes:    MaxImageBytes,
		},
		Prefs: PrefsConfig{
			Dir: defaultPrefsDir(),
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

func defaultPrefsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".factlens"
	}
	return filepath.Join(home, ".factlens", "prefs")
}
