// Package agent wires the three pipeline stages: plan, execute, respond.
package agent

import "github.com/smit333/Oracle-Agent-Ex/internal/plan"

// State is the single mutable record threaded through one request.
//
// Each stage is the sole writer of its field: the planner sets Plan, the
// executor sets Results, the responder sets Answer. Nothing rewrites a field
// owned by an earlier stage.
type State struct {
	UserQuery   string                 `json:"user_query"`
	UserContext map[string]any         `json:"user_context,omitempty"`
	Plan        *plan.Plan             `json:"plan,omitempty"`
	Results     []plan.ExecutionResult `json:"results,omitempty"`
	Answer      string                 `json:"answer,omitempty"`
}
