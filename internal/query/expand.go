package query

import (
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

// apiSynonyms is the small API-domain synonym table: common pairs a user
// might use interchangeably when searching endpoint text. Keyed on the
// raw (unstemmed) lowercase word.
var apiSynonyms = map[string][]string{
	"user":     {"customer", "account"},
	"customer": {"user", "client"},
	"account":  {"user", "profile"},
	"get":      {"retrieve", "fetch"},
	"retrieve": {"get", "fetch"},
	"fetch":    {"get", "retrieve"},
	"list":     {"index", "all"},
	"index":    {"list"},
	"create":   {"add", "new"},
	"add":      {"create"},
	"remove":   {"delete"},
	"delete":   {"remove"},
	"update":   {"modify", "edit"},
	"modify":   {"update"},
	"edit":     {"update", "modify"},
	"order":    {"purchase"},
	"purchase": {"order"},
	"item":     {"product"},
	"product":  {"item"},
	"auth":     {"authentication", "login"},
	"login":    {"auth", "signin"},
}

const maxVariantsPerToken = 3

// expandQuery adds synonym and simple plural/singular variants for each
// raw query token, bounded to maxVariantsPerToken additions per token to
// cap query fanout. Every emitted term, original or variant, is stemmed
// so the result lines up with how the index itself was analyzed.
func expandQuery(n normalizedQuery) expandedQuery {
	seen := map[string]bool{}
	var out []string
	add := func(stemmed string) {
		if stemmed == "" || seen[stemmed] {
			return
		}
		seen[stemmed] = true
		out = append(out, stemmed)
	}

	for _, term := range n.Terms {
		add(term)
	}

	for _, raw := range n.Raw {
		added := 0
		for _, variant := range apiSynonyms[raw] {
			if added >= maxVariantsPerToken {
				break
			}
			add(searchindex.Stem(variant))
			added++
		}
		if added < maxVariantsPerToken {
			if plural, ok := pluralSingularVariant(raw); ok {
				add(searchindex.Stem(plural))
			}
		}
	}

	return expandedQuery{normalizedQuery: n, ExpandedTerms: out}
}

// pluralSingularVariant adds the other member of a simple plural/singular
// pair: trailing "s" is stripped, or appended if absent.
func pluralSingularVariant(term string) (string, bool) {
	if strings.HasSuffix(term, "s") && len(term) > 3 {
		return term[:len(term)-1], true
	}
	return term + "s", true
}
