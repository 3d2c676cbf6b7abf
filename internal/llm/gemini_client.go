package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/httpclient"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// geminiClient speaks the Google Generative Language generateContent API.
type geminiClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewGeminiClient constructs the SaaS Gemini backend.
func NewGeminiClient(config Config) (Client, error) {
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini provider requires GOOGLE_API_KEY")
	}

	model := config.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}

	baseURL := strings.TrimRight(config.GeminiBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	timeout := 120 * time.Second
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	logger := logging.NewComponentLogger("llm.gemini")
	return &geminiClient{
		model:      model,
		apiKey:     config.GeminiAPIKey,
		baseURL:    baseURL,
		httpClient: httpclient.New(timeout, logger),
		logger:     logger,
	}, nil
}

func (c *geminiClient) Model() string {
	return c.model
}

func (c *geminiClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	// responseMimeType pins the reply to a bare JSON document, which keeps
	// the downstream repair pass mostly idle.
	return c.generate(ctx, req, "application/json")
}

func (c *geminiClient) GenerateText(ctx context.Context, req Request) (string, error) {
	return c.generate(ctx, req, "")
}

func (c *geminiClient) generate(ctx context.Context, req Request, responseMimeType string) (string, error) {
	generationConfig := map[string]any{
		"temperature": req.Temperature,
	}
	if responseMimeType != "" {
		generationConfig["responseMimeType"] = responseMimeType
	}

	payload := map[string]any{
		"contents": []any{
			map[string]any{
				"role": "user",
				"parts": []any{
					map[string]any{"text": req.User},
				},
			},
		},
		"generationConfig": generationConfig,
	}
	if req.System != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []any{
				map[string]any{"text": req.System},
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("POST %s model=%s", endpoint, c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadBody(resp.Body, 8<<20)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("gemini candidate had no text (finish reason %q)", decoded.Candidates[0].FinishReason)
	}
	return text, nil
}
