package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New("11.13.18.05", map[string]map[string]catalog.Entry{
		"Users": {
			"listUserAccounts": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts",
				QueryParams: []string{},
			},
			"getUserAccountByGUID": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts/{GUID}",
				QueryParams: []string{},
			},
		},
		"Workers": {
			"listWorkers": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/workers",
				QueryParams: []string{"PersonNumber", "PersonId"},
			},
		},
	})
}

func TestClampForcesVersionIncludingLatestSentinel(t *testing.T) {
	t.Parallel()

	p := Plan{APICalls: []APICall{
		{Method: "GET", Path: "/hcmRestApi/resources/latest/workers", Params: map[string]any{}},
		{Method: "GET", Path: "/hcmRestApi/resources/99.99.99/workers", Params: map[string]any{}},
	}}

	clamped, stats := Clamp(p, testCatalog())

	for _, call := range clamped.APICalls {
		require.Equal(t, "/hcmRestApi/resources/11.13.18.05/workers", call.Path)
	}
	require.Equal(t, 2, stats.VersionRewrites)
}

func TestClampStripsDisallowedParams(t *testing.T) {
	t.Parallel()

	p := Plan{APICalls: []APICall{{
		Method: "GET",
		Path:   "/hcmRestApi/resources/11.13.18.05/workers",
		Params: map[string]any{"PersonNumber": "123", "filter": "x", "expand": "all"},
	}}}

	clamped, stats := Clamp(p, testCatalog())

	require.Equal(t, map[string]any{"PersonNumber": "123"}, clamped.APICalls[0].Params)
	require.Equal(t, 2, stats.ParamsDropped)
}

func TestClampEmptyAllowListClearsParams(t *testing.T) {
	t.Parallel()

	// An invented filter on an endpoint that allows no
	// query parameters must be stripped, leaving params empty.
	p := Plan{APICalls: []APICall{{
		Description: "list all workers with GUID ABC-123",
		Method:      "GET",
		Path:        "/hcmRestApi/resources/11.13.18.05/userAccounts",
		Params:      map[string]any{"filter": "GUID eq ABC-123"},
	}}}

	clamped, _ := Clamp(p, testCatalog())

	require.NotNil(t, clamped.APICalls[0].Params)
	require.Empty(t, clamped.APICalls[0].Params)
}

func TestClampUnmatchedPathKeepsEverythingButParams(t *testing.T) {
	t.Parallel()

	body := map[string]any{"AbsenceType": "Vacation"}
	p := Plan{APICalls: []APICall{{
		Method: "POST",
		Path:   "/hcmRestApi/resources/latest/absenceRecords",
		Params: map[string]any{"limit": 10},
		Body:   body,
	}}}

	clamped, stats := Clamp(p, testCatalog())

	call := clamped.APICalls[0]
	require.Equal(t, "/hcmRestApi/resources/11.13.18.05/absenceRecords", call.Path)
	require.Equal(t, "POST", call.Method)
	require.Equal(t, body, call.Body)
	require.Empty(t, call.Params)
	require.Equal(t, 1, stats.UnmatchedPaths)
}

func TestClampClearsBodyOnGet(t *testing.T) {
	t.Parallel()

	p := Plan{APICalls: []APICall{
		{Method: "get", Path: "/hcmRestApi/resources/latest/workers", Body: map[string]any{"x": 1}},
		{Method: "POST", Path: "/hcmRestApi/resources/latest/workers", Body: map[string]any{"x": 1}},
	}}

	clamped, stats := Clamp(p, testCatalog())

	require.Nil(t, clamped.APICalls[0].Body)
	require.NotNil(t, clamped.APICalls[1].Body)
	require.Equal(t, 1, stats.BodiesCleared)
}

func TestClampPreservesCallOrder(t *testing.T) {
	t.Parallel()

	p := Plan{APICalls: []APICall{
		{Description: "first", Method: "GET", Path: "/hcmRestApi/resources/latest/userAccounts"},
		{Description: "second", Method: "GET", Path: "/hcmRestApi/resources/latest/userAccounts/ABC"},
		{Description: "third", Method: "GET", Path: "/hcmRestApi/resources/latest/workers"},
	}}

	clamped, _ := Clamp(p, testCatalog())

	require.Len(t, clamped.APICalls, 3)
	require.Equal(t, "first", clamped.APICalls[0].Description)
	require.Equal(t, "second", clamped.APICalls[1].Description)
	require.Equal(t, "third", clamped.APICalls[2].Description)
}
