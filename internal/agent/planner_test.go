package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/llm"
	"github.com/smit333/Oracle-Agent-Ex/internal/plan"
)

func plannerCatalog() *catalog.Catalog {
	return catalog.New("11.13.18.05", map[string]map[string]catalog.Entry{
		"Users": {
			"listUserAccounts": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts",
				Description: "List user accounts.",
				QueryParams: []string{},
			},
			"getUserAccountByGUID": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts/{GUID}",
				Description: "Get a user account by GUID.",
				QueryParams: []string{},
			},
		},
	})
}

func TestPlanClampsInventedParamsAndVersion(t *testing.T) {
	t.Parallel()

	// The model proposes a "latest" path and an invented filter parameter;
	// both must be silently corrected before the plan is returned.
	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `{
				"intent": "Find the user with GUID ABC-123",
				"api_calls": [{
					"description": "List users filtered by GUID",
					"method": "GET",
					"path": "/hcmRestApi/resources/latest/userAccounts",
					"params": {"filter": "GUID eq ABC-123"}
				}]
			}`, nil
		},
	}

	planner := NewPlanner(mock, plannerCatalog(), nil)
	p, err := planner.Plan(context.Background(), "list all workers with GUID ABC-123", nil)
	require.NoError(t, err)

	require.Len(t, p.APICalls, 1)
	call := p.APICalls[0]
	require.Equal(t, "/hcmRestApi/resources/11.13.18.05/userAccounts", call.Path)
	require.Empty(t, call.Params)
}

func TestPlanPromptCarriesCatalogContextAndSchema(t *testing.T) {
	t.Parallel()

	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `{"intent": "noop", "api_calls": []}`, nil
		},
	}

	planner := NewPlanner(mock, plannerCatalog(), nil)
	_, err := planner.Plan(context.Background(), "who am I", map[string]any{"PersonId": "300000001"})
	require.NoError(t, err)

	require.Len(t, mock.StructuredCalls, 1)
	prompt := mock.StructuredCalls[0]
	require.Contains(t, prompt.System, "11.13.18.05")
	require.Contains(t, prompt.User, "who am I")
	require.Contains(t, prompt.User, "listUserAccounts")
	require.Contains(t, prompt.User, "300000001")
	require.Contains(t, prompt.User, `"api_calls"`, "prompt must embed the output schema")
	require.InDelta(t, 0.2, prompt.Temperature, 1e-9)
}

func TestPlanModelGarbageIsPlanError(t *testing.T) {
	t.Parallel()

	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "I cannot help with that.", nil
		},
	}

	planner := NewPlanner(mock, plannerCatalog(), nil)
	_, err := planner.Plan(context.Background(), "hello", nil)
	require.Error(t, err)

	var planErr *plan.PlanError
	require.True(t, errors.As(err, &planErr))
}

func TestPlanBackendFailureSurfaces(t *testing.T) {
	t.Parallel()

	mock := &llm.MockClient{
		StructuredFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "", errors.New("backend down")
		},
	}

	planner := NewPlanner(mock, plannerCatalog(), nil)
	_, err := planner.Plan(context.Background(), "hello", nil)
	require.ErrorContains(t, err, "backend down")
}
