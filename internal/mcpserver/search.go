package mcpserver

import (
	"context"
	"strings"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/query"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// SearchEndpoints runs the query pipeline and flattens its response into
// the shape spec.md §6 names for the searchEndpoints tool.
func (c *Catalog) SearchEndpoints(ctx context.Context, args SearchEndpointsArgs) (SearchEndpointsResult, error) {
	if c.Engine == nil {
		return SearchEndpointsResult{}, apperr.Index(nil, "query engine is not available")
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	page := args.Page
	if page <= 0 {
		page = 1
	}

	req := query.Request{
		Query:   buildSearchQuery(args.Query, args.Method),
		Page:    page,
		PerPage: limit,
	}
	if args.Method != "" {
		req.Filters.Methods = []string{strings.ToUpper(args.Method)}
	}

	resp, err := c.Engine.Search(req, time.Now())
	if err != nil {
		return SearchEndpointsResult{}, err
	}

	out := SearchEndpointsResult{
		Page:        resp.Page,
		Summary:     resp.Summary,
		Clusters:    resp.Clusters,
		Suggestions: resp.Suggestions,
		Warning:     resp.Warning,
	}
	for _, item := range resp.Results {
		out.Results = append(out.Results, EndpointSummary{
			ID:          item.ID,
			Path:        item.Path,
			Method:      item.Method,
			Summary:     item.Summary,
			Description: item.Description,
			OperationID: item.OperationID,
			Tags:        item.Tags,
			Parameters:  item.ParameterCount,
			Responses:   item.ResponseCount,
		})
	}
	return out, nil
}

// buildSearchQuery folds a method filter into the query-language string
// when the caller didn't already write one, so a bare "method:GET" with
// no free text still reaches the pipeline as a field-specific query.
func buildSearchQuery(q, method string) string {
	q = strings.TrimSpace(q)
	if method == "" || strings.Contains(strings.ToLower(q), "method:") {
		return q
	}
	if q == "" {
		return "method:" + method
	}
	return q
}
