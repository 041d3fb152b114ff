package query

import "strings"

var recognizedFields = map[string]bool{
	"path": true, "method": true, "auth": true, "param": true,
	"response": true, "status": true, "tag": true, "type": true, "format": true,
}

// parse extracts field qualifiers, boolean operators, and excluded terms
// from raw, leaving the free-text remainder. An explicit OR anywhere in
// the query relaxes the default AND-join of free-text tokens to a union;
// NOT negates the single token that follows it.
func parse(raw string) parsedQuery {
	tokens := strings.Fields(raw)
	out := parsedQuery{Original: raw}

	sawOR := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "AND":
			out.HasBooleanOps = true
			continue
		case "OR":
			out.HasBooleanOps = true
			sawOR = true
			continue
		case "NOT":
			out.HasBooleanOps = true
			if i+1 < len(tokens) {
				i++
				if field, value, ok := splitFieldQualifier(tokens[i]); ok {
					out.ExcludedTerms = append(out.ExcludedTerms, field+":"+value)
				} else {
					out.ExcludedTerms = append(out.ExcludedTerms, tokens[i])
				}
			}
			continue
		}

		if field, value, ok := splitFieldQualifier(tok); ok {
			out.FieldTerms = append(out.FieldTerms, fieldTerm{Field: field, Value: value})
			continue
		}

		out.FreeText = append(out.FreeText, tok)
	}

	if sawOR {
		out.HasBooleanOps = true
	}
	out.requireAll = !sawOR
	return out
}

func splitFieldQualifier(tok string) (field, value string, ok bool) {
	idx := strings.IndexByte(tok, ':')
	if idx <= 0 || idx == len(tok)-1 {
		return "", "", false
	}
	field = strings.ToLower(tok[:idx])
	if !recognizedFields[field] {
		return "", "", false
	}
	return field, tok[idx+1:], true
}
