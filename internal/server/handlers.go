package server

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smit333/Oracle-Agent-Ex/internal/agent"
	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
	"github.com/smit333/Oracle-Agent-Ex/internal/plan"
)

//go:embed index.html
var indexHTML string

type handler struct {
	agent     *agent.Agent
	hcm       agent.HCMCaller
	catalog   *catalog.Catalog
	metrics   *observability.Metrics
	logger    logging.Logger
	usersPath string
}

func newHandler(ag *agent.Agent, hcmClient agent.HCMCaller, cat *catalog.Catalog, metrics *observability.Metrics) *handler {
	return &handler{
		agent:     ag,
		hcm:       hcmClient,
		catalog:   cat,
		metrics:   metrics,
		logger:    logging.NewComponentLogger("http"),
		usersPath: cat.RenderPath("/hcmRestApi/resources/{version}/userAccounts", nil),
	}
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Query       string         `json:"query"`
	UserContext map[string]any `json:"user_context,omitempty"`
}

// ChatResponse mirrors the original service: the answer plus the validated
// plan that produced it.
type ChatResponse struct {
	Answer string     `json:"answer"`
	Plan   *plan.Plan `json:"plan"`
}

// Index serves the static chat page.
func (h *handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// Health reports liveness.
func (h *handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Chat runs the full pipeline for one query. A blank query is rejected
// before the planner is ever invoked.
func (h *handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ChatRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		h.metrics.ChatRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	state := &agent.State{UserQuery: query, UserContext: req.UserContext}
	if err := h.agent.Run(c.Request.Context(), state); err != nil {
		var planErr *plan.PlanError
		if errors.As(err, &planErr) {
			h.metrics.ChatRequest("plan_error")
			h.logger.Warn("planning failed: %v", planErr)
			c.JSON(http.StatusBadGateway, gin.H{"error": planErr.Error()})
			return
		}
		h.metrics.ChatRequest("error")
		h.logger.Error("pipeline failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.metrics.ChatRequest("ok")
	c.JSON(http.StatusOK, ChatResponse{Answer: state.Answer, Plan: state.Plan})
}

// UserOption is one entry of the chat page's user picker.
type UserOption struct {
	Username     any    `json:"Username"`
	PersonNumber any    `json:"PersonNumber"`
	PersonID     any    `json:"PersonId"`
	GUID         any    `json:"GUID"`
	Label        string `json:"label"`
}

// Users proxies the fixed list-user-accounts catalog call and reshapes each
// item for the picker.
func (h *handler) Users(c *gin.Context) {
	data, err := h.hcm.RequestJSON(c.Request.Context(), http.MethodGet, h.usersPath, nil, nil)
	if err != nil {
		h.logger.Error("list users failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items, _ := data["items"].([]any)
	options := make([]UserOption, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		options = append(options, UserOption{
			Username:     item["Username"],
			PersonNumber: item["PersonNumber"],
			PersonID:     item["PersonId"],
			GUID:         item["GUID"],
			Label:        fmt.Sprintf("%v - %v", item["Username"], item["PersonNumber"]),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": options})
}
