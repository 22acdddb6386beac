package cli

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/model"
)

func TestResultFilename(t *testing.T) {
	tests := []struct {
		input      string
		wantPrefix string
	}{
		{"https://example.com/a b?c=1", "https-example.com-a-b-c-1-"},
		{"The moon is made of cheese", "The-moon-is-made-of-cheese-"},
		{"///", ""},
	}

	for _, tt := range tests {
		got := resultFilename(tt.input)
		if !strings.HasPrefix(got, tt.wantPrefix) || !strings.HasSuffix(got, ".json") {
			t.Errorf("resultFilename(%q) = %q, want prefix %q", tt.input, got, tt.wantPrefix)
		}
		if strings.ContainsAny(got, "/ ?:") {
			t.Errorf("resultFilename(%q) = %q contains unsafe characters", tt.input, got)
		}
	}

	if resultFilename("a") == resultFilename("b") {
		t.Error("distinct inputs must get distinct names")
	}
	if len(resultFilename(strings.Repeat("x", 500))) > 80 {
		t.Error("long inputs must be shortened")
	}
}

func TestDefaultConfigFile_RoundTrips(t *testing.T) {
	data, err := defaultConfigFile()
	if err != nil {
		t.Fatalf("defaultConfigFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# factlens configuration") {
		t.Error("missing header comment")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Backend != want.Backend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, want.Backend)
	}
	if cfg.LLM.Model != want.LLM.Model {
		t.Errorf("LLM.Model = %q, want %q", cfg.LLM.Model, want.LLM.Model)
	}
	if cfg.Fetch.Timeout != want.Fetch.Timeout {
		t.Errorf("Fetch.Timeout = %v, want %v", cfg.Fetch.Timeout, want.Fetch.Timeout)
	}
}

func TestNewBackend_SelectsImplementation(t *testing.T) {
	cfg := model.DefaultConfig()
	log := logger.NewNop()

	backend, err := newBackend(cfg, log)
	if err != nil {
		t.Fatalf("newBackend(service) error = %v", err)
	}
	if backend == nil {
		t.Fatal("newBackend(service) returned nil")
	}

	cfg.Backend = "direct"
	cfg.LLM.APIKey = ""
	if _, err := newBackend(cfg, log); err == nil {
		t.Error("direct backend without an API key should fail")
	}

	cfg.LLM.APIKey = "test-key"
	if _, err := newBackend(cfg, log); err != nil {
		t.Errorf("newBackend(direct) error = %v", err)
	}
}
