package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/daniel5812/brain-dump-server/pkg/provider/llm"
)

// ── buildParams ───────────────────────────────────────────────────────────────

// TestBuildParams_SystemPrompt checks that the system prompt becomes the first message.
func TestBuildParams_SystemPrompt(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You extract intents.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "מחר בשש"}},
	})
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("expected first role system, got %q", params.Messages[0].Role)
	}
	if params.Messages[1].ContentString() != "מחר בשש" {
		t.Errorf("unexpected user content: %q", params.Messages[1].ContentString())
	}
}

// TestBuildParams_Temperature checks that an explicit zero temperature is forwarded.
func TestBuildParams_Temperature(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	zero := 0.0
	params := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature: &zero,
	})
	if params.Temperature == nil || *params.Temperature != 0 {
		t.Fatalf("expected temperature 0 to be forwarded, got %v", params.Temperature)
	}
}

// TestBuildParams_DefaultTemperature checks that a nil temperature stays unset.
func TestBuildParams_DefaultTemperature(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if params.Temperature != nil {
		t.Fatalf("expected nil temperature, got %v", *params.Temperature)
	}
}

// TestBuildParams_MaxTokens checks MaxTokens forwarding.
func TestBuildParams_MaxTokens(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(llm.CompletionRequest{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		MaxTokens: 256,
	})
	if params.MaxTokens == nil || *params.MaxTokens != 256 {
		t.Fatalf("expected max tokens 256, got %v", params.MaxTokens)
	}
}

// ── Constructor ───────────────────────────────────────────────────────────────

// TestNew_EmptyProviderName checks that an empty provider name returns an error.
func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected error for empty providerName")
	}
}

// TestNew_EmptyModel checks that an empty model name returns an error.
func TestNew_EmptyModel(t *testing.T) {
	_, err := New("openai", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_UnsupportedProvider checks that an unsupported provider returns an error.
func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("fakecloud", "some-model", anyllmlib.WithAPIKey("dummy"))
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestNew_OpenAI_WithAPIKey checks that OpenAI provider constructs successfully with an API key.
func TestNew_OpenAI_WithAPIKey(t *testing.T) {
	p, err := New("openai", "gpt-4o-mini", anyllmlib.WithAPIKey("sk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
	if p.model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", p.model)
	}
}

// TestNew_OpenAI_MissingAPIKey checks that OpenAI returns an error when no API key is available.
// This relies on OPENAI_API_KEY not being set in the test environment.
func TestNew_OpenAI_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "") // Ensure env var is clear.
	_, err := New("openai", "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

// TestNew_LocalBackends checks that local-server backends construct without
// an API key, the way the provider registry builds them.
func TestNew_LocalBackends(t *testing.T) {
	tests := []struct {
		backend string
		model   string
	}{
		{"ollama", "llama3"},
		{"llamacpp", "llama3"},
		{"llamafile", "llama3"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			p, err := New(tt.backend, tt.model)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil || p.model != tt.model {
				t.Fatalf("provider = %+v", p)
			}
		})
	}
}
