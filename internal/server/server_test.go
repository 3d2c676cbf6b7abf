package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smit333/Oracle-Agent-Ex/internal/agent"
	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/config"
	"github.com/smit333/Oracle-Agent-Ex/internal/hcm"
	"github.com/smit333/Oracle-Agent-Ex/internal/llm"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
)

// newTestServer wires a full pipeline over a scripted model and a stub HCM
// backend.
func newTestServer(t *testing.T, mock *llm.MockClient, hcmHandler http.Handler) *Server {
	t.Helper()

	backend := httptest.NewServer(hcmHandler)
	t.Cleanup(backend.Close)

	hcmClient, err := hcm.NewClient(config.HCMConfig{
		BaseURL:    backend.URL,
		AuthMethod: "basic",
		Username:   "svc",
		Password:   "pw",
	})
	require.NoError(t, err)
	t.Cleanup(hcmClient.Close)

	cat := catalog.Default()
	metrics := observability.Default()
	pipeline := agent.New(
		agent.NewPlanner(mock, cat, metrics),
		agent.NewExecutor(hcmClient, metrics),
		agent.NewResponder(mock, metrics),
	)

	return New(Config{Port: 0}, pipeline, hcmClient, cat, metrics)
}

func userAccountsBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [
			{"Username": "JDOE", "PersonNumber": "1001", "PersonId": 300000001, "GUID": "ABC-123", "SuspendedFlag": false}
		]}`)
	})
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestChatRejectsBlankQueryBeforePlanning(t *testing.T) {
	mock := &llm.MockClient{}
	srv := newTestServer(t, mock, userAccountsBackend())

	for _, body := range []string{`{"query": ""}`, `{"query": "   "}`, `{}`} {
		resp := doJSON(t, srv, http.MethodPost, "/chat", body)
		require.Equal(t, http.StatusBadRequest, resp.Code, "body %s", body)
	}
	require.Empty(t, mock.StructuredCalls, "the planner must never run for a blank query")
}

func TestChatHappyPath(t *testing.T) {
	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `{
				"intent": "List user accounts",
				"api_calls": [{
					"description": "list users",
					"method": "GET",
					"path": "/hcmRestApi/resources/latest/userAccounts",
					"params": {"filter": "should be stripped"}
				}]
			}`, nil
		},
		TextFunc: func(ctx context.Context, req llm.Request) (string, error) {
			require.Contains(t, req.User, "GET /hcmRestApi/resources/11.13.18.05/userAccounts")
			return "There is one user: JDOE.", nil
		},
	}
	srv := newTestServer(t, mock, userAccountsBackend())

	resp := doJSON(t, srv, http.MethodPost, "/chat", `{"query": "list users", "user_context": {"PersonId": "300000001"}}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body ChatResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "There is one user: JDOE.", body.Answer)
	require.NotNil(t, body.Plan)
	require.Len(t, body.Plan.APICalls, 1)
	require.Equal(t, "/hcmRestApi/resources/11.13.18.05/userAccounts", body.Plan.APICalls[0].Path)
	require.Empty(t, body.Plan.APICalls[0].Params, "invented params must be clamped away")
}

func TestChatPlanningFailureIsBadGateway(t *testing.T) {
	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "definitely not json", nil
		},
	}
	srv := newTestServer(t, mock, userAccountsBackend())

	resp := doJSON(t, srv, http.MethodPost, "/chat", `{"query": "list users"}`)
	require.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestChatAbsorbsExecutionFailures(t *testing.T) {
	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `{"intent": "list", "api_calls": [{"description": "list", "method": "GET", "path": "/hcmRestApi/resources/latest/userAccounts"}]}`, nil
		},
		TextFunc: func(ctx context.Context, req llm.Request) (string, error) {
			require.Contains(t, req.User, "error=")
			return "The HCM API is unavailable right now.", nil
		},
	}
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	})
	srv := newTestServer(t, mock, failing)

	// A failed call is reflected in the answer, not in the HTTP status.
	resp := doJSON(t, srv, http.MethodPost, "/chat", `{"query": "list users"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body ChatResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "The HCM API is unavailable right now.", body.Answer)
}

func TestUsersReshapesItems(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{}, userAccountsBackend())

	resp := doJSON(t, srv, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Items []UserOption `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	require.Equal(t, "JDOE", body.Items[0].Username)
	require.Equal(t, "ABC-123", body.Items[0].GUID)
	require.Equal(t, "JDOE - 1001", body.Items[0].Label)
}

func TestUsersBackendFailureIsServerError(t *testing.T) {
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := newTestServer(t, &llm.MockClient{}, failing)

	resp := doJSON(t, srv, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, resp.Body.String(), "403")
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{}, userAccountsBackend())

	resp := doJSON(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Oracle HCM AI Agent")

	resp = doJSON(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	srv := newTestServer(t, &llm.MockClient{}, userAccountsBackend())

	resp := doJSON(t, srv, http.MethodGet, "/healthz", "")
	require.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}
