// Package plan defines the planning data model and the deterministic
// validator that clamps a proposed plan to the endpoint catalog.
package plan

import (
	"fmt"
	"strings"
)

// APICall is one planned HTTP request against the HCM REST API.
type APICall struct {
	// Description states the purpose of the call in plain language.
	Description string `json:"description" jsonschema:"description=Short purpose of this call,required"`
	// Method is one of GET, POST, PATCH, DELETE.
	Method string `json:"method" jsonschema:"description=HTTP method: GET POST PATCH or DELETE,required"`
	// Path is a relative HCM REST path, e.g. /hcmRestApi/resources/11.13.18.05/workers.
	Path string `json:"path" jsonschema:"description=Relative Oracle HCM REST path,required"`
	// Params holds query string parameters; after clamping only
	// catalog-allowed keys survive.
	Params map[string]any `json:"params,omitempty" jsonschema:"description=Query string parameters"`
	// Body is the JSON payload for non-GET methods. Always nil for GET
	// after clamping.
	Body map[string]any `json:"body,omitempty" jsonschema:"description=JSON payload for non-GET methods"`
}

// IsGet reports whether the call's method is GET, case-insensitively.
func (c APICall) IsGet() bool {
	return strings.EqualFold(c.Method, "GET")
}

// Plan is the planner's output: a stated intent and the ordered calls that
// realize it. Order is execution order.
type Plan struct {
	Intent   string    `json:"intent" jsonschema:"description=One sentence describing user intent,required"`
	APICalls []APICall `json:"api_calls,omitempty" jsonschema:"description=Ordered list of API calls to execute"`
}

// ExecutionResult records the outcome of one executed call. Created once by
// the executor and never mutated afterward.
type ExecutionResult struct {
	Call APICall `json:"call"`
	// Response is the aggregated JSON payload; empty map when the call failed.
	Response map[string]any `json:"response"`
	// Error carries the failure message; empty means the call succeeded.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the call produced an error.
func (r ExecutionResult) Failed() bool {
	return r.Error != ""
}

// PlanError is a planning failure: the language model produced output that
// does not decode into a valid Plan. Fatal for the request, never retried.
type PlanError struct {
	Stage string // repair, schema, decode
	Err   error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan %s failed: %v", e.Stage, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}
