package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/llm"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
	"github.com/smit333/Oracle-Agent-Ex/internal/plan"
)

const responderSystem = `You are a helpful assistant for Oracle HCM users. You will receive the user's
original query and raw API results. Produce a concise, accurate, and polite
natural language answer. If results are empty, state what was attempted and any
next steps or checks.`

const responderUser = `User query:
%s

Executed results (JSON snippets):
%s

Provide a final answer suitable for display in a chat UI.`

const (
	responderTemperature = 0.3
	// responseSnippetLimit bounds how much of each API payload reaches the
	// prompt.
	responseSnippetLimit = 1200
)

// Responder turns execution results into the final natural-language answer
// with one free-text language-model call.
type Responder struct {
	client  llm.Client
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewResponder builds a responder over the given backend.
func NewResponder(client llm.Client, metrics *observability.Metrics) *Responder {
	return &Responder{
		client:  client,
		logger:  logging.NewComponentLogger("responder"),
		metrics: metrics,
	}
}

// Respond summarizes the results, asks the model for an answer, and returns
// the model's text verbatim.
func (r *Responder) Respond(ctx context.Context, userQuery string, results []plan.ExecutionResult) (string, error) {
	req := llm.Request{
		System:      responderSystem,
		User:        fmt.Sprintf(responderUser, userQuery, summarizeResults(results)),
		Temperature: responderTemperature,
	}

	start := time.Now()
	answer, err := r.client.GenerateText(ctx, req)
	if r.metrics != nil {
		r.metrics.ObserveLLM("respond", time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("responder model call: %w", err)
	}
	return answer, nil
}

// summarizeResults renders one bounded line block per result so prompt size
// stays proportional to call count, not payload size.
func summarizeResults(results []plan.ExecutionResult) string {
	if len(results) == 0 {
		return "(no results - no API calls were executed)"
	}

	parts := make([]string, 0, len(results))
	for _, result := range results {
		errNote := ""
		if result.Failed() {
			errNote = " error=" + result.Error
		}
		body := result.Call.Body
		if body == nil {
			body = map[string]any{}
		}
		snippet := fmt.Sprintf("%v", result.Response)
		if len(snippet) > responseSnippetLimit {
			snippet = snippet[:responseSnippetLimit]
		}
		parts = append(parts, fmt.Sprintf("- %s %s%s\n  params=%v\n  body=%v\n  resp_snippet=%s",
			result.Call.Method, result.Call.Path, errNote, result.Call.Params, body, snippet))
	}
	return strings.Join(parts, "\n")
}
