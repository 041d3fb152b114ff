package query

import (
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

// applyStructuredFilters narrows hits by the caller-supplied Filters
// struct. Method, content-type, and tag constraints are OR-within-
// category; every non-empty category is ANDed with the others.
// Complexity-level filtering happens later, in organize.go, once
// enrichment has computed each hit's complexity.
func applyStructuredFilters(hits []searchindex.Hit, idx *searchindex.Index, f Filters) []searchindex.Hit {
	out := hits[:0:0]
	for _, h := range hits {
		doc, ok := idx.Document(h.DocID)
		if !ok {
			continue
		}
		if !matchesFilters(doc, f) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func matchesFilters(doc *searchindex.Document, f Filters) bool {
	if len(f.Methods) > 0 && !containsFold(f.Methods, doc.Method) {
		return false
	}
	if f.AuthRequired != nil {
		hasAuth := len(doc.SecuritySchemes) > 0
		if *f.AuthRequired != hasAuth {
			return false
		}
	}
	if len(f.AuthSchemes) > 0 && !anyContainsFold(f.AuthSchemes, doc.SecuritySchemes) {
		return false
	}
	if f.RequiredParamsOnly && len(doc.RequiredParameterNames) == 0 {
		return false
	}
	if len(f.ParamNames) > 0 && !anyContainsFold(f.ParamNames, doc.ParameterNames) {
		return false
	}
	if f.MaxParamCount > 0 && len(doc.ParameterNames) > f.MaxParamCount {
		return false
	}
	if f.RequiresFileUpload != nil {
		hasUpload := containsFold(doc.ContentTypes, "multipart/form-data")
		if *f.RequiresFileUpload != hasUpload {
			return false
		}
	}
	if len(f.ContentTypes) > 0 && !anyContainsFold(f.ContentTypes, doc.ContentTypes) {
		return false
	}
	if len(f.Tags) > 0 && !anyContainsFold(f.Tags, doc.Tags) {
		return false
	}
	if !f.IncludeDeprecated && doc.Deprecated {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func anyContainsFold(wanted, have []string) bool {
	for _, w := range wanted {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}
