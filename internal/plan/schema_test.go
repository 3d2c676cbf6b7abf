package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const validPlanJSON = `{
  "intent": "List all user accounts",
  "api_calls": [
    {
      "description": "Fetch user accounts",
      "method": "GET",
      "path": "/hcmRestApi/resources/11.13.18.05/userAccounts",
      "params": {}
    }
  ]
}`

func TestSchemaJSONIsGenerated(t *testing.T) {
	t.Parallel()

	schema, err := SchemaJSON()
	require.NoError(t, err)
	require.Contains(t, schema, `"intent"`)
	require.Contains(t, schema, `"api_calls"`)
}

func TestDecodeValidPlan(t *testing.T) {
	t.Parallel()

	p, err := Decode(validPlanJSON)
	require.NoError(t, err)
	require.Equal(t, "List all user accounts", p.Intent)
	require.Len(t, p.APICalls, 1)
	require.Equal(t, "GET", p.APICalls[0].Method)
	require.NotNil(t, p.APICalls[0].Params)
}

func TestDecodeStripsCodeFence(t *testing.T) {
	t.Parallel()

	p, err := Decode("```json\n" + validPlanJSON + "\n```")
	require.NoError(t, err)
	require.Len(t, p.APICalls, 1)
}

func TestDecodeRepairsSloppyJSON(t *testing.T) {
	t.Parallel()

	// Trailing comma and single quotes: typical model sloppiness the
	// repair pass handles before strict validation.
	sloppy := `{'intent': 'List users', 'api_calls': [{'description': 'list', 'method': 'GET', 'path': '/hcmRestApi/resources/latest/userAccounts',},],}`
	p, err := Decode(sloppy)
	require.NoError(t, err)
	require.Equal(t, "List users", p.Intent)
}

func TestDecodeMissingIntentIsPlanError(t *testing.T) {
	t.Parallel()

	_, err := Decode(`{"api_calls": []}`)
	require.Error(t, err)

	var planErr *PlanError
	require.True(t, errors.As(err, &planErr))
	require.Equal(t, "schema", planErr.Stage)
}

func TestDecodeUnknownFieldIsPlanError(t *testing.T) {
	t.Parallel()

	_, err := Decode(`{"intent": "x", "api_calls": [], "surprise": true}`)
	require.Error(t, err)

	var planErr *PlanError
	require.True(t, errors.As(err, &planErr))
}

func TestDecodeEmptyOutputIsPlanError(t *testing.T) {
	t.Parallel()

	_, err := Decode("   ")
	var planErr *PlanError
	require.True(t, errors.As(err, &planErr))
	require.Equal(t, "decode", planErr.Stage)
}

func TestDecodeProseAroundJSON(t *testing.T) {
	t.Parallel()

	p, err := Decode("Here is the plan you asked for:\n" + validPlanJSON + "\nLet me know if you need more.")
	require.NoError(t, err)
	require.Equal(t, "List all user accounts", p.Intent)
}
