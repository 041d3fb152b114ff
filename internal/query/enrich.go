package query

import (
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

// enrichEndpoint computes the step-8 metadata bundle for one endpoint:
// parameter summary, auth summary, response summary, complexity level,
// resource group, and operation type.
func enrichEndpoint(ep *normalize.Endpoint) Enrichment {
	return Enrichment{
		Parameters:    parameterSummary(ep),
		Auth:          authSummary(ep),
		Responses:     responseSummary(ep),
		Complexity:    complexityLevel(ep),
		ResourceGroup: resourceGroup(ep),
		OperationType: operationType(ep),
	}
}

func parameterSummary(ep *normalize.Endpoint) ParameterSummary {
	s := ParameterSummary{TypeHistogram: map[string]int{}}
	s.Total = len(ep.Parameters)
	for _, p := range ep.Parameters {
		if p.Required {
			s.Required++
		} else {
			s.Optional++
		}
		typ := "unknown"
		if p.Schema != nil {
			typ = string(p.Schema.Type)
			if p.Schema.Type == normalize.SchemaTypeObject || p.Schema.Type == normalize.SchemaTypeArray {
				s.HasComplexTypes = true
			}
		}
		s.TypeHistogram[typ]++
		s.CommonNames = append(s.CommonNames, p.Name)
	}
	if ep.RequestBody != nil {
		for ct := range ep.RequestBody.ContentTypes {
			if ct == "multipart/form-data" {
				s.HasFileUpload = true
			}
		}
	}
	return s
}

func authSummary(ep *normalize.Endpoint) AuthSummary {
	a := AuthSummary{Required: len(ep.Security) > 0}
	for _, req := range ep.Security {
		a.Schemes = append(a.Schemes, req.SchemeName)
		a.Scopes = append(a.Scopes, req.Scopes...)
	}
	return a
}

func responseSummary(ep *normalize.Endpoint) ResponseSummary {
	r := ResponseSummary{}
	seenContentType := map[string]bool{}
	for status, resp := range ep.Responses {
		r.StatusCodes = append(r.StatusCodes, status)
		for ct := range resp.ContentTypes {
			if !seenContentType[ct] {
				seenContentType[ct] = true
				r.ContentTypes = append(r.ContentTypes, ct)
			}
		}
	}
	r.Complexity = responseComplexity(len(r.StatusCodes), len(r.ContentTypes))
	return r
}

func responseComplexity(statusCount, contentTypeCount int) string {
	switch {
	case statusCount <= 1 && contentTypeCount <= 1:
		return "simple"
	case statusCount <= 3:
		return "moderate"
	default:
		return "complex"
	}
}

// complexityLevel scores simple/moderate/complex from parameter count,
// response complexity, and composition depth (distinct schema
// dependencies the endpoint reaches).
func complexityLevel(ep *normalize.Endpoint) string {
	score := len(ep.Parameters) + len(ep.SchemaDependencies)
	if ep.RequestBody != nil {
		score += 2
	}
	switch responseComplexity(len(ep.Responses), len(ep.ContentTypes)) {
	case "moderate":
		score += 2
	case "complex":
		score += 4
	}
	switch {
	case score <= 3:
		return "simple"
	case score <= 8:
		return "moderate"
	default:
		return "complex"
	}
}

// resourceGroup is the first path segment that is neither empty nor a
// {placeholder}; unlike the categorization engine's path heuristic it does
// not skip "api", version or single-letter segments.
func resourceGroup(ep *normalize.Endpoint) string {
	for _, seg := range strings.Split(ep.Path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		return seg
	}
	return "uncategorized"
}

var uploadKeywords = []string{"upload", "download", "export", "import"}

var actionKeywords = []string{
	"activate", "deactivate", "cancel", "confirm",
	"send", "approve", "reject", "search",
}

// operationType classifies an endpoint as one of the CRUD verbs or an
// upload/action operation, based on its method and a keyword scan of its
// path and operation ID.
func operationType(ep *normalize.Endpoint) string {
	haystack := strings.ToLower(ep.Path + " " + ep.OperationID + " " + ep.Summary)
	for _, keyword := range uploadKeywords {
		if strings.Contains(haystack, keyword) {
			return "upload"
		}
	}
	for _, keyword := range actionKeywords {
		if strings.Contains(haystack, keyword) {
			return "action"
		}
	}
	switch ep.Method {
	case normalize.MethodGet:
		return "read"
	case normalize.MethodPost:
		return "create"
	case normalize.MethodPut, normalize.MethodPatch:
		return "update"
	case normalize.MethodDelete:
		return "delete"
	default:
		return "action"
	}
}
