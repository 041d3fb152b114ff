// Package query implements the twelve-step query pipeline behind the
// searchEndpoints MCP tool: parse, normalize, expand, classify, compile,
// filter, execute, enrich, organize, paginate, summarize, cache.
package query

import "time"

// Request is one searchEndpoints call, the caller-facing shape before any
// pipeline processing.
type Request struct {
	Query   string
	Filters Filters
	Page    int
	PerPage int
}

// Filters are the caller-supplied structured constraints applied in
// filters.go, independent of anything parsed out of the query string.
type Filters struct {
	Methods            []string
	AuthRequired       *bool
	AuthSchemes        []string
	RequiredParamsOnly bool
	ParamNames         []string
	MaxParamCount      int
	RequiresFileUpload *bool
	ContentTypes       []string
	ComplexityLevel    string
	Tags               []string
	IncludeDeprecated  bool
}

// queryType is the classification assigned in classify.go.
type queryType string

const (
	queryTypeSimple         queryType = "simple"
	queryTypeBoolean        queryType = "boolean"
	queryTypeFieldSpecific  queryType = "field_specific"
	queryTypeNaturalLanguage queryType = "natural_language"
)

// fieldTerm is one `field:value` qualifier extracted during parsing.
type fieldTerm struct {
	Field string
	Value string
}

// parsedQuery is parse.go's output: the query string broken into its
// structural pieces, still containing raw (unstemmed) text.
type parsedQuery struct {
	FreeText      []string
	FieldTerms    []fieldTerm
	ExcludedTerms []string
	HasBooleanOps bool
	Original      string

	// requireAll is true when free-text tokens default-AND-join (no
	// explicit OR was present): all tokens must match, though the score
	// is still the additive OR-style BM25F sum.
	requireAll bool
}

// normalizedQuery is normalize.go's output: free-text tokens lowercased,
// stop-worded, and stemmed, alongside the untouched field terms.
type normalizedQuery struct {
	parsed parsedQuery
	Terms  []string // normalized free-text terms
	Raw    []string // pre-stem tokens, for suggestion generation
}

// expandedQuery is expand.go's output: Terms with synonym and
// plural/singular variants folded in, capped at 3 variants per token.
type expandedQuery struct {
	normalizedQuery
	ExpandedTerms []string
}

// compiledQuery is compile.go's output: the shape execute.go hands to the
// index.
type compiledQuery struct {
	Type          queryType
	FreeText      []string // OR-group terms (post-expansion)
	Must          map[string][]string
	MustNot       map[string][]string
	Wildcards     []fieldTerm
	FuzzyFallback bool

	// RequireAll and RequiredTerms implement the default AND-join of
	// free-text tokens (no explicit OR present): every term in
	// RequiredTerms (the original, pre-expansion stemmed terms) must
	// appear in a matching document, even though the OR-group above still
	// supplies the ranking score.
	RequireAll    bool
	RequiredTerms []string
}

// ParameterSummary is the enrichment computed for an endpoint's
// parameters.
type ParameterSummary struct {
	Total           int
	Required        int
	Optional        int
	TypeHistogram   map[string]int
	HasFileUpload   bool
	HasComplexTypes bool
	CommonNames     []string
}

// AuthSummary is the enrichment computed for an endpoint's security
// requirements.
type AuthSummary struct {
	Required bool
	Schemes  []string
	Scopes   []string
}

// ResponseSummary is the enrichment computed for an endpoint's responses.
type ResponseSummary struct {
	StatusCodes    []string
	ContentTypes   []string
	Complexity     string
}

// Enrichment bundles everything step 8 attaches to a hit.
type Enrichment struct {
	Parameters    ParameterSummary
	Auth          AuthSummary
	Responses     ResponseSummary
	Complexity    string
	ResourceGroup string
	OperationType string
}

// ResultItem is one ranked, enriched hit in a Response.
type ResultItem struct {
	ID             string
	Path           string
	Method         string
	Summary        string
	Description    string
	OperationID    string
	Tags           []string
	Score          float64
	ParameterCount int
	ResponseCount  int
	Deprecated     bool
	Enrichment     Enrichment
}

// Cluster is one named grouping view over a result list, produced by
// organize.go.
type Cluster struct {
	Key       string
	Kind      string // tag, resource_group, complexity, method, operation_type, auth
	ResultIDs []string
}

// PageInfo is the pagination metadata computed in paginate.go.
type PageInfo struct {
	Page         int
	PerPage      int
	TotalResults int
	TotalPages   int
	HasPrevious  bool
	HasNext      bool
	PreviousPage int
	NextPage     int
}

// Summary is the assemble-summary step's output.
type Summary struct {
	ResultsByMethod     map[string]int
	ResultsByAuth       map[string]int
	ResultsByComplexity map[string]int
	AverageScore        float64
	ProcessingTime      time.Duration
}

// Suggestion is one entry of the suggestions list returned when the
// result count is below threshold.
type Suggestion struct {
	Query    string
	Category string // typo_fix, broader_query, similar_term, field_scoped, api_pattern
	Score    float64
}

// Response is the full searchEndpoints result.
type Response struct {
	Results        []ResultItem
	Page           PageInfo
	Summary        Summary
	Clusters       []Cluster
	Suggestions    []Suggestion
	Warning        string
	ProcessingTime time.Duration
}
