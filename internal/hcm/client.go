// Package hcm implements the Oracle Fusion Cloud HCM REST transport:
// authenticated JSON requests plus the limit/offset pagination helper the
// executor relies on for GET calls.
package hcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/config"
	"github.com/smit333/Oracle-Agent-Ex/internal/httpclient"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
)

const (
	requestTimeout  = 60 * time.Second
	connectTimeout  = 15 * time.Second
	defaultPageSize = 100
	maxPages        = 10
	maxBodyBytes    = 32 << 20
)

// APIError is a non-2xx reply from the HCM API. The status code and body
// text travel with it so the responder can reflect the failure.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HCM API error %d for %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

// Client talks to one HCM instance. Safe for concurrent use: the underlying
// transport is built once, lazily, and shared by all in-flight requests.
type Client struct {
	cfg    config.HCMConfig
	logger logging.Logger

	once sync.Once
	http *http.Client
}

// NewClient validates the connection config eagerly and returns a client.
// The transport itself is not dialed until the first request.
func NewClient(cfg config.HCMConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		logger: logging.NewComponentLogger("hcm"),
	}, nil
}

// BaseURL returns the configured instance base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// BuildURL joins the base URL with a request path.
func (c *Client) BuildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + path
}

func (c *Client) transport() *http.Client {
	c.once.Do(func() {
		c.http = httpclient.NewWithConnectTimeout(requestTimeout, connectTimeout, c.logger)
	})
	return c.http
}

// Close releases idle transport connections. Called once at shutdown; the
// client is not reusable afterward.
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
}

// RequestJSON performs one HTTP call and decodes the reply.
//
// JSON replies are returned as a generic mapping. A 2xx reply that is not
// JSON is wrapped as {"status": code, "content": text}. Any non-2xx status
// is an *APIError.
func (c *Client) RequestJSON(ctx context.Context, method, path string, params map[string]any, body map[string]any) (map[string]any, error) {
	method = strings.ToUpper(method)
	fullURL := c.BuildURL(path)

	var reqBody []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = data
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	if len(params) > 0 {
		query := req.URL.Query()
		for key, value := range params {
			query.Set(key, fmt.Sprint(value))
		}
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.transport().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP error calling HCM %s: %w", fullURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read HCM response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        fullURL,
			Body:       string(respBody),
		}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded map[string]any
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, fmt.Errorf("decode HCM response: %w", err)
		}
		return decoded, nil
	}
	return map[string]any{"status": resp.StatusCode, "content": string(respBody)}, nil
}

func (c *Client) authorize(req *http.Request) error {
	switch c.cfg.AuthMethod {
	case "basic":
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	case "oauth":
		if c.cfg.OAuthToken == "" {
			return &config.Error{Field: "HCM_OAUTH_TOKEN", Reason: "is required for oauth auth"}
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.OAuthToken)
	}
	return nil
}

// GetPaginated fetches up to maxPages pages of a GET listing via the limit
// and offset query parameters, stopping early when a page comes back short
// or a reply carries no list-valued "items".
//
// The aggregate is {"items": all, "pages": perPagePayloads}; when no page
// ever produced an items list, only "pages" is returned.
func (c *Client) GetPaginated(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	var (
		allItems []any
		pages    []map[string]any
	)

	for pageIndex := 0; pageIndex < maxPages; pageIndex++ {
		pageParams := make(map[string]any, len(params)+2)
		for key, value := range params {
			pageParams[key] = value
		}
		if _, ok := pageParams["limit"]; !ok {
			pageParams["limit"] = strconv.Itoa(defaultPageSize)
		}
		pageParams["offset"] = strconv.Itoa(pageIndex * defaultPageSize)

		data, err := c.RequestJSON(ctx, http.MethodGet, path, pageParams, nil)
		if err != nil {
			return nil, err
		}

		items, ok := data["items"].([]any)
		if !ok {
			// No standard items field; treat as a single, final page.
			pages = append(pages, data)
			break
		}

		allItems = append(allItems, items...)
		pages = append(pages, data)
		if len(items) < defaultPageSize {
			break
		}
	}

	if len(allItems) > 0 {
		return map[string]any{"items": allItems, "pages": pages}, nil
	}
	return map[string]any{"pages": pages}, nil
}
