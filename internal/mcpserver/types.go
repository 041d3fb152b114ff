// Package mcpserver implements the three MCP tools and two MCP resources
// this system exposes: searchEndpoints, getSchema, getExample, and the
// swagger://api-info / swagger://health resources. Handlers here are plain
// Go functions taking and returning this package's own types; translating
// to and from the wire-level mcp-go request/result types is the job of
// the cmd/swagger-mcp-server package (main.go and respond.go), which is the
// only place that package is imported.
package mcpserver

import (
	"database/sql"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
	"github.com/salacoste/swagger-mcp-server/internal/query"
	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

// Catalog is the in-memory handle every handler runs against: the
// normalized API graph held resident for the server's lifetime, the query
// engine over the built keyword index, and a read-only handle to the
// relational store for the health resource's table counts.
type Catalog struct {
	Document        normalize.Document
	Endpoints       map[string]*normalize.Endpoint // keyed by Endpoint.ID
	Schemas         map[string]*normalize.Schema
	SecuritySchemes map[string]*normalize.SecurityScheme

	Engine *query.Engine
	Index  *searchindex.Index
	DB     *sql.DB
	DBPath string

	Generation string
	StartedAt  time.Time
}

// SearchEndpointsArgs is searchEndpoints's argument set, spec.md §6:
// `{query: string, method?: enum, limit?: int[1..100]=10}`.
type SearchEndpointsArgs struct {
	Query  string
	Method string
	Limit  int
	Page   int
}

// EndpointSummary is one entry of SearchEndpointsResult.Results.
type EndpointSummary struct {
	ID          string   `json:"id"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	OperationID string   `json:"operationId"`
	Tags        []string `json:"tags"`
	Parameters  int      `json:"parameters"`
	Responses   int      `json:"responses"`
}

// SearchEndpointsResult is searchEndpoints's full return shape, carrying
// the query engine's pagination, summary, clustering, and suggestion
// output alongside the flattened result list spec.md §6 names.
type SearchEndpointsResult struct {
	Results     []EndpointSummary `json:"results"`
	Page        query.PageInfo    `json:"page"`
	Summary     query.Summary     `json:"summary"`
	Clusters    []query.Cluster   `json:"clusters,omitempty"`
	Suggestions []query.Suggestion `json:"suggestions,omitempty"`
	Warning     string            `json:"warning,omitempty"`
}

// GetSchemaArgs is getSchema's argument set, spec.md §6:
// `{schema_name: string, include_examples?: bool=true, resolve_refs?: bool=true}`.
type GetSchemaArgs struct {
	SchemaName      string
	IncludeExamples bool
	ResolveRefs     bool
}

// GetSchemaResult is getSchema's return shape.
type GetSchemaResult struct {
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	Definition      *normalize.Schema `json:"definition"`
	Description     string        `json:"description"`
	RequiredFields  []string      `json:"required_fields"`
	PropertiesCount int           `json:"properties_count"`
	Examples        []interface{} `json:"examples,omitempty"`
}

// GetExampleArgs is getExample's argument set, spec.md §6:
// `{endpoint_id: string, language?: enum{curl, javascript, python, typescript}=curl, include_auth?: bool=true}`.
type GetExampleArgs struct {
	EndpointID  string
	Language    string
	IncludeAuth bool
}

// GetExampleResult is getExample's return shape.
type GetExampleResult struct {
	EndpointID  string `json:"endpoint_id"`
	Language    string `json:"language"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Example     string `json:"example"`
	Description string `json:"description"`
}

// HealthResult is the swagger://health resource payload: table counts
// plus the on-disk database file size.
type HealthResult struct {
	Status        string         `json:"status"`
	APIs          int            `json:"apis"`
	Endpoints     int            `json:"endpoints"`
	Schemas       int            `json:"schemas"`
	SecuritySchemes int          `json:"security_schemes"`
	IndexGeneration string       `json:"index_generation"`
	DatabaseBytes int64          `json:"database_bytes"`
	UptimeSeconds float64        `json:"uptime_seconds"`
}
