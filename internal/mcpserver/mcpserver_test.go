package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
	"github.com/salacoste/swagger-mcp-server/internal/query"
	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

func buildTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	idx := searchindex.NewIndex(searchindex.DefaultFieldWeights(), 10)
	docs := []searchindex.Document{
		{
			ID: "get /pets", EndpointPath: "/pets", Method: "GET", ResourceName: "pet",
			OperationSummary: "List all pets", OperationID: "listPets",
			SearchableText: "list all pets in the store", Tags: []string{"pets"},
			StatusCodes: []string{"200"}, ContentTypes: []string{"application/json"},
		},
		{
			ID: "post /pets", EndpointPath: "/pets", Method: "POST", ResourceName: "pet",
			OperationSummary: "Create a pet", OperationID: "createPet",
			SearchableText: "create a new pet entry", Tags: []string{"pets"},
			StatusCodes: []string{"201"}, ContentTypes: []string{"application/json"},
			SecuritySchemes: []string{"apiKeyAuth"}, HasRequestBody: true,
		},
	}
	for _, d := range docs {
		require.NoError(t, idx.AddDocument(d))
	}
	require.NoError(t, idx.Optimize())

	petSchema := &normalize.Schema{
		Name: "Pet", Type: normalize.SchemaTypeObject,
		Required: []string{"id", "name"},
		Properties: map[string]*normalize.Schema{
			"id":   {Name: "id", Type: normalize.SchemaTypeInteger},
			"name": {Name: "name", Type: normalize.SchemaTypeString, Example: "Fido"},
		},
	}
	nodeSchema := &normalize.Schema{
		Name: "Node", Type: normalize.SchemaTypeObject,
		Properties:   map[string]*normalize.Schema{},
		PropertyRefs: map[string]string{"next": "Node"},
		Dependencies: []string{"Node"},
	}

	endpoints := map[string]*normalize.Endpoint{
		"get /pets": {
			ID: "get /pets", Path: "/pets", Method: normalize.MethodGet,
			OperationID: "listPets", Summary: "List all pets", Tags: []string{"pets"},
			Responses: map[string]normalize.Response{"200": {}},
		},
		"post /pets": {
			ID: "post /pets", Path: "/pets", Method: normalize.MethodPost,
			OperationID: "createPet", Summary: "Create a pet", Tags: []string{"pets"},
			Security:  []normalize.SecurityRequirement{{SchemeName: "apiKeyAuth"}},
			Responses: map[string]normalize.Response{"201": {}},
			RequestBody: &normalize.RequestBody{
				Required:     true,
				ContentTypes: map[string]string{"application/json": "Pet"},
			},
		},
	}

	return &Catalog{
		Document: normalize.Document{Title: "Petstore", Version: "1.0.0", Dialect: normalize.DialectOpenAPI3},
		Endpoints: endpoints,
		Schemas: map[string]*normalize.Schema{
			"Pet":  petSchema,
			"Node": nodeSchema,
		},
		SecuritySchemes: map[string]*normalize.SecurityScheme{
			"apiKeyAuth": {Name: "apiKeyAuth", Type: normalize.SecurityTypeAPIKey, KeyName: "X-API-Key", KeyLocation: normalize.LocationHeader},
		},
		Engine:     query.NewEngine(idx, endpoints, "gen-1", query.DefaultConfig()),
		Index:      idx,
		Generation: "gen-1",
		StartedAt:  time.Now(),
	}
}

func TestSearchEndpointsReturnsFlattenedResults(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.SearchEndpoints(context.Background(), SearchEndpointsArgs{Query: "pet", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
	for _, r := range result.Results {
		require.NotEmpty(t, r.ID)
		require.NotEmpty(t, r.Path)
	}
}

func TestSearchEndpointsAppliesMethodFilter(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.SearchEndpoints(context.Background(), SearchEndpointsArgs{Query: "*", Method: "POST", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	require.Equal(t, "POST", result.Results[0].Method)
	require.Equal(t, 1, result.Summary.ResultsByMethod["POST"])
}

func TestSearchEndpointsDefaultsLimitToTen(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.SearchEndpoints(context.Background(), SearchEndpointsArgs{Query: "pet"})
	require.NoError(t, err)
	require.Equal(t, 10, result.Page.PerPage)
}

func TestSearchEndpointsClampsOversizedLimit(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.SearchEndpoints(context.Background(), SearchEndpointsArgs{Query: "pet", Limit: 500})
	require.NoError(t, err)
	require.Equal(t, maxSearchLimit, result.Page.PerPage)
}

func TestGetSchemaReturnsDefinition(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetSchema(context.Background(), GetSchemaArgs{SchemaName: "Pet"})
	require.NoError(t, err)
	require.Equal(t, "Pet", result.Name)
	require.Equal(t, []string{"id", "name"}, result.RequiredFields)
	require.Equal(t, 2, result.PropertiesCount)
}

func TestGetSchemaIsCaseInsensitive(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetSchema(context.Background(), GetSchemaArgs{SchemaName: "pet"})
	require.NoError(t, err)
	require.Equal(t, "Pet", result.Name)
}

func TestGetSchemaNotFoundForAbsentSchema(t *testing.T) {
	c := buildTestCatalog(t)
	_, err := c.GetSchema(context.Background(), GetSchemaArgs{SchemaName: "Ghost"})
	require.Error(t, err)
}

func TestGetSchemaResolvesCyclicSchemaWithoutStackOverflow(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetSchema(context.Background(), GetSchemaArgs{SchemaName: "Node", ResolveRefs: true})
	require.NoError(t, err)
	require.Equal(t, "Node", result.Name)
}

func TestGetSchemaIncludesExamples(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetSchema(context.Background(), GetSchemaArgs{SchemaName: "Pet", IncludeExamples: true})
	require.NoError(t, err)
	require.Contains(t, result.Examples, "Fido")
}

func TestGetExampleRendersCurlByDefault(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetExample(context.Background(), GetExampleArgs{EndpointID: "post /pets"})
	require.NoError(t, err)
	require.Equal(t, "curl", result.Language)
	require.Contains(t, result.Example, "POST")
	require.Contains(t, result.Example, "/pets")
}

func TestGetExampleIncludesAuthHeaderWhenRequested(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetExample(context.Background(), GetExampleArgs{EndpointID: "post /pets", IncludeAuth: true})
	require.NoError(t, err)
	require.Contains(t, result.Example, "Authorization")
}

func TestGetExampleRendersPython(t *testing.T) {
	c := buildTestCatalog(t)
	result, err := c.GetExample(context.Background(), GetExampleArgs{EndpointID: "get /pets", Language: "python"})
	require.NoError(t, err)
	require.Contains(t, result.Example, "import requests")
}

func TestGetExampleNotFoundForAbsentEndpoint(t *testing.T) {
	c := buildTestCatalog(t)
	_, err := c.GetExample(context.Background(), GetExampleArgs{EndpointID: "delete /ghosts"})
	require.Error(t, err)
}

func TestGetExampleRejectsUnsupportedLanguage(t *testing.T) {
	c := buildTestCatalog(t)
	_, err := c.GetExample(context.Background(), GetExampleArgs{EndpointID: "get /pets", Language: "ruby"})
	require.Error(t, err)
}

func TestAPIInfoMentionsTitleAndEndpointCount(t *testing.T) {
	c := buildTestCatalog(t)
	info, err := c.APIInfo(context.Background())
	require.NoError(t, err)
	require.Contains(t, info, "Petstore")
	require.Contains(t, info, "Endpoints: 2")
}

func TestHealthReportsStatusAndGeneration(t *testing.T) {
	c := buildTestCatalog(t)
	health, err := c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "gen-1", health.IndexGeneration)
	require.Equal(t, 2, health.Endpoints)
}
