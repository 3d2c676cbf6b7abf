// Package llm provides the language-model clients used by the planner and
// responder. Backends are selected by a configured provider identifier and
// expose the same capability surface, so pipeline code never knows which
// transport it is talking to.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Request carries one prompt to a backend.
type Request struct {
	System      string
	User        string
	Temperature float64
}

// Client is the capability contract both backends implement.
//
// GenerateStructured asks the model for a JSON document (the caller supplies
// the schema inside the prompt and decodes the result strictly).
// GenerateText asks for free-form prose returned verbatim.
type Client interface {
	GenerateStructured(ctx context.Context, req Request) (string, error)
	GenerateText(ctx context.Context, req Request) (string, error)
	Model() string
}

// Config selects and configures a backend.
type Config struct {
	Provider string // "gemini" or "azure"

	// Gemini (SaaS).
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string // override for gateways and tests; default is the public API

	// Azure OpenAI (enterprise gateway).
	AzureEndpoint   string
	AzureAPIKey     string
	AzureAPIVersion string
	AzureDeployment string

	// Timeout bounds each model call; zero means the backend default.
	Timeout time.Duration
}

// APIError is a non-2xx reply from a model backend.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, body)
}
