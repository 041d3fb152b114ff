package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

func buildTestEngine(t *testing.T) *Engine {
	t.Helper()

	idx := searchindex.NewIndex(searchindex.DefaultFieldWeights(), 10)
	docs := []searchindex.Document{
		{
			ID:               "get /pets",
			EndpointPath:     "/pets",
			Method:           "GET",
			ResourceName:     "pet",
			OperationSummary: "List all pets",
			OperationID:      "listPets",
			SearchableText:   "list all pets in the store",
			Tags:             []string{"pets"},
			StatusCodes:      []string{"200"},
			ContentTypes:     []string{"application/json"},
		},
		{
			ID:               "get /pets/{petId}",
			EndpointPath:     "/pets/{petId}",
			Method:           "GET",
			ResourceName:     "pet",
			OperationSummary: "Get a pet by id",
			OperationID:      "getPet",
			SearchableText:   "fetch a single pet by its identifier",
			Tags:             []string{"pets"},
			StatusCodes:      []string{"200", "404"},
			ContentTypes:     []string{"application/json"},
		},
		{
			ID:               "post /pets",
			EndpointPath:     "/pets",
			Method:           "POST",
			ResourceName:     "pet",
			OperationSummary: "Create a pet",
			OperationID:      "createPet",
			SearchableText:   "create a new pet entry",
			Tags:             []string{"pets"},
			StatusCodes:      []string{"201"},
			ContentTypes:     []string{"application/json"},
			SecuritySchemes:  []string{"apiKeyAuth"},
			HasRequestBody:   true,
		},
	}
	for _, d := range docs {
		require.NoError(t, idx.AddDocument(d))
	}
	require.NoError(t, idx.Optimize())

	endpoints := map[string]*normalize.Endpoint{
		"get /pets": {
			ID: "get /pets", Path: "/pets", Method: normalize.MethodGet,
			OperationID: "listPets", Tags: []string{"pets"},
			Responses: map[string]normalize.Response{"200": {}},
		},
		"get /pets/{petId}": {
			ID: "get /pets/{petId}", Path: "/pets/{petId}", Method: normalize.MethodGet,
			OperationID: "getPet", Tags: []string{"pets"},
			Parameters: []normalize.Parameter{{Name: "petId", Location: normalize.LocationPath, Required: true}},
			Responses:  map[string]normalize.Response{"200": {}, "404": {}},
		},
		"post /pets": {
			ID: "post /pets", Path: "/pets", Method: normalize.MethodPost,
			OperationID: "createPet", Tags: []string{"pets"},
			Security:   []normalize.SecurityRequirement{{SchemeName: "apiKeyAuth"}},
			Responses:  map[string]normalize.Response{"201": {}},
		},
	}

	return NewEngine(idx, endpoints, "gen-1", DefaultConfig())
}

func TestSearchFieldScopingReturnsOnlyMatchingMethod(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "method:GET", PerPage: 10}, time.Now())
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		require.Equal(t, "GET", r.Method)
	}
}

func TestSearchBooleanANDNarrowsResults(t *testing.T) {
	e := buildTestEngine(t)
	single, err := e.Search(Request{Query: "pet", PerPage: 10}, time.Now())
	require.NoError(t, err)

	anded, err := e.Search(Request{Query: "pet AND create", PerPage: 10}, time.Now())
	require.NoError(t, err)

	require.LessOrEqual(t, len(anded.Results), len(single.Results))
}

func TestSearchBooleanORWidensOrMatchesResults(t *testing.T) {
	e := buildTestEngine(t)
	single, err := e.Search(Request{Query: "pet", PerPage: 10}, time.Now())
	require.NoError(t, err)

	ored, err := e.Search(Request{Query: "pet OR store", PerPage: 10}, time.Now())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(ored.Results), len(single.Results))
}

func TestSearchNotExcludesMatchingTerm(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "pet NOT create", PerPage: 10}, time.Now())
	require.NoError(t, err)
	for _, r := range resp.Results {
		require.NotEqual(t, "createPet", r.OperationID)
	}
}

func TestSearchIdempotentAcrossRepeatedCalls(t *testing.T) {
	e := buildTestEngine(t)
	first, err := e.Search(Request{Query: "pet", PerPage: 10}, time.Now())
	require.NoError(t, err)
	second, err := e.Search(Request{Query: "pet", PerPage: 10}, time.Now())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSearchEmptyQueryReturnsNoResultsNoError(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "", PerPage: 10}, time.Now())
	require.NoError(t, err)
	require.Empty(t, resp.Results)
}

func TestSearchMethodFilterMatchesCaller(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "*", Filters: Filters{Methods: []string{"POST"}}, PerPage: 10}, time.Now())
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "POST", resp.Results[0].Method)
}

func TestSearchEnrichesAuthRequirement(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "create", PerPage: 10}, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	require.True(t, resp.Results[0].Enrichment.Auth.Required)
	require.Contains(t, resp.Results[0].Enrichment.Auth.Schemes, "apiKeyAuth")
}

func TestSearchClustersByMethod(t *testing.T) {
	e := buildTestEngine(t)
	resp, err := e.Search(Request{Query: "pet", PerPage: 10}, time.Now())
	require.NoError(t, err)
	found := false
	for _, c := range resp.Clusters {
		if c.Kind == "method" && c.Key == "GET" {
			found = true
		}
	}
	require.True(t, found)
}
