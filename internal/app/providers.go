package app

import (
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/daniel5812/brain-dump-server/internal/config"
	"github.com/daniel5812/brain-dump-server/pkg/provider/llm"
	"github.com/daniel5812/brain-dump-server/pkg/provider/llm/anyllm"
	"github.com/daniel5812/brain-dump-server/pkg/provider/llm/openai"
)

// anyllmBackends lists the backend names served through any-llm-go.
var anyllmBackends = []string{
	"openai", "anthropic", "gemini", "ollama",
	"deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// NewProviderRegistry returns a registry with every built-in LLM backend
// registered. "openai" and friends go through any-llm-go; "openai-native"
// uses the official OpenAI SDK for deployments that need it.
func NewProviderRegistry() *config.Registry {
	reg := config.NewRegistry()

	for _, name := range anyllmBackends {
		reg.RegisterLLM(name, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(entry.Name, entry.Model, opts...)
		})
	}

	reg.RegisterLLM("openai-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	return reg
}
