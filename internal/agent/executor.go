package agent

import (
	"context"

	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
	"github.com/smit333/Oracle-Agent-Ex/internal/plan"
)

// HCMCaller is the transport surface the executor needs. *hcm.Client
// satisfies it; tests substitute fakes.
type HCMCaller interface {
	RequestJSON(ctx context.Context, method, path string, params map[string]any, body map[string]any) (map[string]any, error)
	GetPaginated(ctx context.Context, path string, params map[string]any) (map[string]any, error)
}

// Executor runs a validated plan's calls strictly in order.
type Executor struct {
	client  HCMCaller
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewExecutor builds an executor over the HCM transport.
func NewExecutor(client HCMCaller, metrics *observability.Metrics) *Executor {
	return &Executor{
		client:  client,
		logger:  logging.NewComponentLogger("executor"),
		metrics: metrics,
	}
}

// Execute performs every call and records a result per call, in order.
//
// Failures are absorbed: an error on call i becomes results[i].Error and the
// batch continues, so the responder always sees the complete picture. The
// executor itself never returns an error for call failures.
func (e *Executor) Execute(ctx context.Context, calls []plan.APICall) []plan.ExecutionResult {
	results := make([]plan.ExecutionResult, 0, len(calls))

	for i, call := range calls {
		e.logger.Info("call %d/%d: %s %s params=%v", i+1, len(calls), call.Method, call.Path, call.Params)

		var (
			response map[string]any
			err      error
		)
		if call.IsGet() {
			response, err = e.client.GetPaginated(ctx, call.Path, call.Params)
		} else {
			response, err = e.client.RequestJSON(ctx, call.Method, call.Path, call.Params, call.Body)
		}

		result := plan.ExecutionResult{Call: call, Response: response}
		if err != nil {
			result.Response = map[string]any{}
			result.Error = err.Error()
			e.logger.Warn("call %d failed: %v", i+1, err)
			if e.metrics != nil {
				e.metrics.HCMCall(call.Method, "error")
			}
		} else if e.metrics != nil {
			e.metrics.HCMCall(call.Method, "ok")
		}
		results = append(results, result)
	}

	return results
}
