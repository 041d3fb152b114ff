package query

// classifyQuery assigns a query type, recorded on compiledQuery.Type.
func classifyQuery(e expandedQuery) queryType {
	switch {
	case len(e.parsed.FieldTerms) > 0 && len(e.parsed.FreeText) == 0:
		return queryTypeFieldSpecific
	case e.parsed.HasBooleanOps:
		return queryTypeBoolean
	case len(e.parsed.FreeText) > 3:
		return queryTypeNaturalLanguage
	default:
		return queryTypeSimple
	}
}
