package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/httpclient"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
)

const defaultAzureAPIVersion = "2024-06-01"

// azureClient speaks the Azure OpenAI chat completions API behind an
// enterprise gateway endpoint.
type azureClient struct {
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string
	httpClient *http.Client
	logger     logging.Logger
}

// NewAzureClient constructs the enterprise-gateway backend.
func NewAzureClient(config Config) (Client, error) {
	if config.AzureEndpoint == "" {
		return nil, fmt.Errorf("azure provider requires AZURE_OPENAI_ENDPOINT")
	}
	if config.AzureAPIKey == "" {
		return nil, fmt.Errorf("azure provider requires AZURE_OPENAI_API_KEY")
	}
	if config.AzureDeployment == "" {
		return nil, fmt.Errorf("azure provider requires AZURE_OPENAI_CHAT_DEPLOYMENT")
	}

	apiVersion := config.AzureAPIVersion
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}

	timeout := 120 * time.Second
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	logger := logging.NewComponentLogger("llm.azure")
	return &azureClient{
		endpoint:   strings.TrimRight(config.AzureEndpoint, "/"),
		apiKey:     config.AzureAPIKey,
		apiVersion: apiVersion,
		deployment: config.AzureDeployment,
		httpClient: httpclient.New(timeout, logger),
		logger:     logger,
	}, nil
}

func (c *azureClient) Model() string {
	return c.deployment
}

func (c *azureClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	return c.complete(ctx, req, true)
}

func (c *azureClient) GenerateText(ctx context.Context, req Request) (string, error) {
	return c.complete(ctx, req, false)
}

func (c *azureClient) complete(ctx context.Context, req Request, wantJSON bool) (string, error) {
	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.User})

	payload := map[string]any{
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if wantJSON {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal azure request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(c.deployment), url.QueryEscape(c.apiVersion))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	c.logger.Debug("POST %s deployment=%s", endpoint, c.deployment)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("azure request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadBody(resp.Body, 8<<20)
	if err != nil {
		return "", fmt.Errorf("read azure response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Provider: "azure", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode azure response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("azure returned no choices")
	}
	content := decoded.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("azure choice had no content (finish reason %q)", decoded.Choices[0].FinishReason)
	}
	return content, nil
}
