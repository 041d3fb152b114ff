package query

import "strings"

// fieldToFilter maps a query-language field qualifier to the index's own
// filter-field name. "path" has no exact-match filter counterpart (paths
// are free text, not an enumerable set) so it is folded into the
// free-text OR-group instead, scored through the heavily-weighted
// endpoint_path field.
var fieldToFilter = map[string]string{
	"method":   "method",
	"auth":     "security_scheme",
	"param":    "param",
	"response": "status_code",
	"status":   "status_code",
	"tag":      "tag",
	"type":     "content_type",
	"format":   "content_type",
}

// compile builds the index-facing query: field-specific terms become
// exact-match filter clauses, free-text terms form the OR-group, excluded
// terms become NOT clauses, and wildcard tokens are set aside for
// execute.go to expand against the index vocabulary.
func compile(e expandedQuery) compiledQuery {
	c := compiledQuery{
		Type:    classifyQuery(e),
		Must:    map[string][]string{},
		MustNot: map[string][]string{},
	}

	for _, ft := range e.parsed.FieldTerms {
		if isWildcard(ft.Value) {
			c.Wildcards = append(c.Wildcards, ft)
			continue
		}
		if ft.Field == "path" {
			c.FreeText = append(c.FreeText, ft.Value)
			continue
		}
		filterField := fieldToFilter[ft.Field]
		c.Must[filterField] = append(c.Must[filterField], ft.Value)
	}

	for _, term := range e.ExpandedTerms {
		if isWildcard(term) {
			c.Wildcards = append(c.Wildcards, fieldTerm{Field: "", Value: term})
			continue
		}
		c.FreeText = append(c.FreeText, term)
	}

	for _, excluded := range e.parsed.ExcludedTerms {
		if field, value, ok := splitFieldQualifier(excluded); ok {
			filterField := fieldToFilter[field]
			if filterField != "" {
				c.MustNot[filterField] = append(c.MustNot[filterField], value)
				continue
			}
		}
		c.MustNot["__text__"] = append(c.MustNot["__text__"], excluded)
	}

	if len(e.parsed.FreeText) == 1 && len(e.parsed.FreeText[0]) > 3 {
		c.FuzzyFallback = true
	}

	c.RequireAll = e.parsed.requireAll
	for _, term := range e.Terms {
		if !isWildcard(term) {
			c.RequiredTerms = append(c.RequiredTerms, term)
		}
	}

	return c
}

func isWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}
