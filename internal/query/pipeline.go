package query

import (
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

// Config bounds the pipeline's pagination, pooling, and cache behavior.
type Config struct {
	DefaultPerPage int
	MaxPerPage     int
	PoolSize       int
	CacheSize      int
	CacheTTL       time.Duration
}

// DefaultConfig returns the pinned pipeline defaults from spec.md §4.4/§6.
func DefaultConfig() Config {
	return Config{
		DefaultPerPage: 10,
		MaxPerPage:     100,
		PoolSize:       1000,
		CacheSize:      defaultCacheSize,
		CacheTTL:       defaultCacheTTL,
	}
}

// Engine runs the twelve-step query pipeline over a built index and its
// backing endpoint graph. One Engine is constructed per index generation;
// rebuilding the index means constructing a new Engine with a fresh
// generation stamp, which alone invalidates the cache.
type Engine struct {
	index      *searchindex.Index
	endpoints  map[string]*normalize.Endpoint
	generation string
	config     Config
	cache      *resultCache
}

// NewEngine wires an index and its endpoint graph into a query engine
// tagged with generation (the index-generation stamp used to invalidate
// stale cache entries after a rebuild).
func NewEngine(idx *searchindex.Index, endpoints map[string]*normalize.Endpoint, generation string, cfg Config) *Engine {
	return &Engine{
		index:      idx,
		endpoints:  endpoints,
		generation: generation,
		config:     cfg,
		cache:      newResultCache(cfg.CacheSize, cfg.CacheTTL),
	}
}

// Search runs the full pipeline for req. Query parsing never fails the
// request: unrecognized field qualifiers are searched as free text and a
// dangling boolean operator is dropped, with no warning recorded for
// either; a warning is recorded only for an empty or stop-word-only query.
func (e *Engine) Search(req Request, now time.Time) (Response, error) {
	key := cacheKey(req, e.generation)
	if cached, ok := e.cache.get(key, now); ok {
		return cached, nil
	}

	start := now
	resp, err := e.run(req)
	if err != nil {
		return Response{}, err
	}
	resp.ProcessingTime = timeSince(start, now)
	resp.Summary.ProcessingTime = resp.ProcessingTime

	e.cache.put(key, resp, now)
	return resp, nil
}

func timeSince(start, now time.Time) time.Duration {
	if now.After(start) {
		return now.Sub(start)
	}
	return 0
}

func (e *Engine) run(req Request) (Response, error) {
	if e.index == nil {
		return Response{}, apperr.Index(nil, "query index is not available")
	}

	var warning string

	parsed := parse(req.Query)
	normalized := normalizeQuery(parsed)

	// Empty query, or a query consisting only of stop-words: spec.md
	// treats both as "0 results with a warning", never an error, and
	// never reaches the index.
	isEmpty := len(normalized.Terms) == 0 && len(parsed.FieldTerms) == 0 && len(parsed.ExcludedTerms) == 0
	if isEmpty {
		page, pageInfo := paginate(nil, req.Page, req.PerPage, e.config.MaxPerPage)
		return Response{
			Results: page,
			Page:    pageInfo,
			Summary: assembleSummary(nil, 0),
			Warning: "empty query",
		}, nil
	}

	expanded := expandQuery(normalized)
	compiled := compile(expanded)

	hits := execute(e.index, compiled, e.config.PoolSize)
	hits = applyStructuredFilters(hits, e.index, req.Filters)

	results := make([]ResultItem, 0, len(hits))
	for _, h := range hits {
		doc, ok := e.index.Document(h.DocID)
		if !ok {
			continue
		}
		item := ResultItem{
			ID:             doc.ID,
			Path:           doc.EndpointPath,
			Method:         doc.Method,
			Summary:        doc.OperationSummary,
			Description:    doc.OperationDescription,
			OperationID:    doc.OperationID,
			Tags:           doc.Tags,
			Score:          h.Score,
			ParameterCount: len(doc.ParameterNames),
			ResponseCount:  len(doc.StatusCodes),
			Deprecated:     doc.Deprecated,
		}
		if ep, ok := e.endpoints[doc.ID]; ok {
			item.Enrichment = enrichEndpoint(ep)
		}
		results = append(results, item)
	}

	results = filterByComplexity(results, req.Filters.ComplexityLevel)

	clusters := organize(results)

	page, pageInfo := paginate(results, req.Page, req.PerPage, e.config.MaxPerPage)

	summary := assembleSummary(results, 0)

	var suggestions []Suggestion
	if len(results) < suggestionThreshold {
		suggestions = generateSuggestions(e.index, normalized, len(results))
	}

	return Response{
		Results:     page,
		Page:        pageInfo,
		Summary:     summary,
		Clusters:    clusters,
		Suggestions: suggestions,
		Warning:     warning,
	}, nil
}
