// Package extract turns free-form Hebrew utterances into raw intent
// hypotheses using an LLM provider.
//
// The model is used strictly as a signal extractor: it classifies the
// utterance and echoes time expressions back verbatim, and is explicitly
// forbidden from inventing calendar dates. All date and time interpretation
// happens deterministically downstream.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daniel5812/brain-dump-server/internal/intent"
	"github.com/daniel5812/brain-dump-server/pkg/provider/llm"
)

const systemPrompt = `
You are an intent signal extractor for a voice-based assistant.

Your job is to extract semantic signals from the user's text.
You are NOT responsible for final decisions or actions.

CRITICAL RULES:
- NEVER guess or infer calendar dates.
- If the user does NOT explicitly mention a calendar date
  (e.g. "24 October", "2026-01-15"),
  then:
  - start = null
  - end = null
  - hasDate = false
  - relativeTime MUST contain the original time expression as spoken.

Interpretation guidance:
- If the user describes something they want to DO, WORK ON, or ACCOMPLISH
  (even if abstract or long-term),
  treat it as an actionable intent, not just an idea.
- If the user describes a concept, thought, or inspiration without intent to act,
  treat it as an idea.
- Do NOT require explicit words like "task" or "todo" to infer action.
- Voice commands may be informal, incomplete, or abstract.

Return ONE JSON object with this exact schema:

{
  "hypothesis": "task" | "meeting" | "idea",
  "title": string,
  "start": string | null,
  "end": string | null,
  "due": string | null,
  "relativeTime": string | null,
  "confidence": number,
  "signals": {
    "hasDate": boolean,
    "hasTime": boolean,
    "hasTimeRange": boolean
  }
}

Additional rules:
- Relative expressions like "tomorrow", weekdays, or phrases like "next week"
  are NOT dates.
- Do NOT convert relative time into ISO dates.
- Do NOT explain anything.
- Output JSON only.
`

// Deterministic decoding: the extractor must produce the same signals for the
// same utterance.
var extractionTemperature = 0.0

// Extractor asks an LLM provider to classify one utterance per call.
type Extractor struct {
	provider llm.Provider
}

// New returns an [Extractor] backed by the given provider.
func New(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract classifies text into a raw intent hypothesis. Any failure — the
// provider call, a reply without a JSON object, or undecodable JSON — is
// returned as an error so the caller can degrade to its "didn't understand"
// reply.
func (e *Extractor) Extract(ctx context.Context, text string) (intent.Raw, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: text}},
		Temperature:  &extractionTemperature,
	})
	if err != nil {
		return intent.Raw{}, fmt.Errorf("extract: completion: %w", err)
	}

	payload, err := extractJSON(resp.Content)
	if err != nil {
		return intent.Raw{}, err
	}

	var raw intent.Raw
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return intent.Raw{}, fmt.Errorf("extract: decode intent: %w", err)
	}
	return raw, nil
}

// extractJSON cuts the first-{ to last-} span out of the model reply. Models
// occasionally wrap the object in prose or a markdown fence despite the
// prompt.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("extract: no JSON object in model output")
	}
	return raw[start : end+1], nil
}
