package query

import (
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

// normalizeQuery lowercases, tokenizes, drops stop-words, and stems each
// free-text token, reusing the index's own analyzer so a query term and
// an indexed term are stemmed identically. Wildcard tokens (containing *
// or ?) pass through unstemmed, since compile.go and execute.go handle
// those separately. Raw holds the lowercased tokens before stemming, for
// synonym lookup and suggestion generation.
func normalizeQuery(p parsedQuery) normalizedQuery {
	var terms, raw []string
	for _, tok := range p.FreeText {
		if isWildcard(tok) {
			terms = append(terms, strings.ToLower(tok))
			continue
		}
		for _, word := range searchindex.Tokenize(tok) {
			if stopWord(word) {
				continue
			}
			raw = append(raw, word)
			terms = append(terms, searchindex.Stem(word))
		}
	}
	return normalizedQuery{parsed: p, Terms: terms, Raw: raw}
}

func joinTokens(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

var commonStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "into": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "with": true,
}

func stopWord(tok string) bool {
	return commonStopWords[tok]
}
