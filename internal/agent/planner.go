package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/llm"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
	"github.com/smit333/Oracle-Agent-Ex/internal/plan"
)

const plannerSystem = `You are a planning assistant that maps natural language Oracle HCM questions to
concrete REST calls. You MUST use ONLY the endpoints from the provided catalog
and only the allowed query parameters for each endpoint. Do NOT invent paths or
parameters. Use version %s in all paths.

Rules:
- Allowed endpoints are given in a JSON catalog. Use only those.
- Allowed query params are those listed for the chosen endpoint. If none are
  listed, do not include any params.
- Do not include fields/expand/limit unless they are explicitly listed for that
  endpoint.
- If multiple steps are needed, return multiple calls in order.`

const plannerUser = `User query:
%s

User context (identifiers that MAY be used for allowed query params):
%s

Use ONLY this endpoint catalog (JSON):
%s

Return a Plan with intent and one or more api_calls.
Paths MUST use version %s, e.g. "/hcmRestApi/resources/%s/workers".
Include only allowed query params for the chosen endpoint; otherwise omit params.
If user_context contains an allowed param key (e.g., PersonNumber, PersonId), you MAY use it.

Format strictly as a single JSON object matching this schema:
%s`

const plannerTemperature = 0.2

// Planner turns a user query into a clamped Plan with one structured
// language-model call.
type Planner struct {
	client  llm.Client
	catalog *catalog.Catalog
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewPlanner builds a planner over the given backend and catalog.
func NewPlanner(client llm.Client, cat *catalog.Catalog, metrics *observability.Metrics) *Planner {
	return &Planner{
		client:  client,
		catalog: cat,
		logger:  logging.NewComponentLogger("planner"),
		metrics: metrics,
	}
}

// Plan asks the model for an API-call sequence, decodes it strictly, and
// clamps it against the catalog. A decode failure is fatal for the request
// (*plan.PlanError); clamping never fails.
func (p *Planner) Plan(ctx context.Context, userQuery string, userContext map[string]any) (plan.Plan, error) {
	schema, err := plan.SchemaJSON()
	if err != nil {
		return plan.Plan{}, err
	}

	catalogJSON, err := json.Marshal(p.catalog)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("serialize catalog: %w", err)
	}

	contextJSON := []byte("{}")
	if len(userContext) > 0 {
		if data, err := json.Marshal(userContext); err == nil {
			contextJSON = data
		}
	}

	version := p.catalog.Version()
	req := llm.Request{
		System:      fmt.Sprintf(plannerSystem, version),
		User:        fmt.Sprintf(plannerUser, userQuery, contextJSON, catalogJSON, version, version, schema),
		Temperature: plannerTemperature,
	}

	start := time.Now()
	raw, err := p.client.GenerateStructured(ctx, req)
	if p.metrics != nil {
		p.metrics.ObserveLLM("plan", time.Since(start))
	}
	if err != nil {
		return plan.Plan{}, fmt.Errorf("planner model call: %w", err)
	}

	proposed, err := plan.Decode(raw)
	if err != nil {
		return plan.Plan{}, err
	}

	clamped, stats := plan.Clamp(proposed, p.catalog)
	if p.metrics != nil {
		p.metrics.Clamped("version", stats.VersionRewrites)
		p.metrics.Clamped("param", stats.ParamsDropped)
		p.metrics.Clamped("body", stats.BodiesCleared)
		p.metrics.Clamped("unmatched", stats.UnmatchedPaths)
	}
	if stats != (plan.ClampStats{}) {
		p.logger.Debug("clamped plan: %+v", stats)
	}
	p.logger.Info("planned %d call(s) for intent %q", len(clamped.APICalls), clamped.Intent)

	return clamped, nil
}
