package agent

import (
	"context"

	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
)

// Agent drives one request through plan -> execute -> respond. There is no
// branching, retry, or replanning: each stage runs exactly once, in order,
// and a planning failure aborts the request before any call executes.
type Agent struct {
	planner   *Planner
	executor  *Executor
	responder *Responder
	logger    logging.Logger
}

// New assembles the pipeline from its stages.
func New(planner *Planner, executor *Executor, responder *Responder) *Agent {
	return &Agent{
		planner:   planner,
		executor:  executor,
		responder: responder,
		logger:    logging.NewComponentLogger("agent"),
	}
}

// Run executes the pipeline over state. On success state carries the plan,
// per-call results, and the final answer; on error state holds whatever the
// completed stages produced.
func (a *Agent) Run(ctx context.Context, state *State) error {
	a.logger.Info("planning query: %s", state.UserQuery)
	p, err := a.planner.Plan(ctx, state.UserQuery, state.UserContext)
	if err != nil {
		return err
	}
	state.Plan = &p

	state.Results = a.executor.Execute(ctx, p.APICalls)

	answer, err := a.responder.Respond(ctx, state.UserQuery, state.Results)
	if err != nil {
		return err
	}
	state.Answer = answer
	return nil
}
