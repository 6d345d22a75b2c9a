package openai

import (
	"testing"

	"github.com/daniel5812/brain-dump-server/pkg/provider/llm"
)

// TestConvertMessage_System checks that system role is converted correctly.
func TestConvertMessage_System(t *testing.T) {
	msg := llm.Message{Role: llm.RoleSystem, Content: "You are helpful."}
	param, err := convertMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfSystem == nil {
		t.Fatal("expected OfSystem to be set")
	}
}

// TestConvertMessage_User checks that user role is converted correctly.
func TestConvertMessage_User(t *testing.T) {
	msg := llm.Message{Role: llm.RoleUser, Content: "שלום!"}
	param, err := convertMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfUser == nil {
		t.Fatal("expected OfUser to be set")
	}
}

// TestConvertMessage_Assistant checks that assistant role is converted.
func TestConvertMessage_Assistant(t *testing.T) {
	msg := llm.Message{Role: llm.RoleAssistant, Content: "Hi there!"}
	param, err := convertMessage(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.OfAssistant == nil {
		t.Fatal("expected OfAssistant to be set")
	}
}

// TestConvertMessage_UnknownRole checks that unknown roles are rejected.
func TestConvertMessage_UnknownRole(t *testing.T) {
	msg := llm.Message{Role: "tool", Content: "result"}
	if _, err := convertMessage(msg); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

// TestNew_Validation checks constructor argument validation.
func TestNew_Validation(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for empty apiKey")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
	p, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

// TestBuildParams_Temperature checks that explicit zero temperature is forwarded.
func TestBuildParams_Temperature(t *testing.T) {
	p, err := New("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zero := 0.0
	params, err := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You extract intents.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "מחר בשש"}},
		Temperature:  &zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0 {
		t.Fatalf("expected temperature 0 to be forwarded, got %+v", params.Temperature)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(params.Messages))
	}
}
