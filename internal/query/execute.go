package query

import (
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

const defaultPoolSize = 1000

// execute runs the compiled query against the index using its BM25F-family
// scorer. Wildcard tokens are expanded against the index vocabulary into
// concrete terms before scoring, since the index itself only matches
// exact stems. When the first pass returns few hits and the query
// allows it, a bounded fuzzy variant is appended per long free-text term.
func execute(idx *searchindex.Index, c compiledQuery, poolSize int) []searchindex.Hit {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	freeText := append([]string{}, c.FreeText...)
	for _, w := range c.Wildcards {
		freeText = append(freeText, expandWildcard(idx, w.Value)...)
	}

	must := cloneFilterMap(c.Must)
	mustNot := cloneFilterMap(c.MustNot)
	delete(mustNot, "__text__")

	hits := idx.Search(freeText, must, mustNot, poolSize)

	if c.FuzzyFallback && len(hits) < fuzzyFallbackThreshold {
		for _, term := range c.FreeText {
			if len(term) <= 3 {
				continue
			}
			for _, candidate := range fuzzyMatches(idx.Vocabulary(), term, 2, 3) {
				freeText = append(freeText, candidate)
			}
		}
		hits = idx.Search(dedupe(freeText), must, mustNot, poolSize)
	}

	hits = excludeTextTerms(hits, idx, c.MustNot["__text__"])

	if c.RequireAll && len(c.RequiredTerms) > 1 {
		hits = requireAllTerms(hits, idx, c.RequiredTerms)
	}

	return hits
}

// requireAllTerms keeps only hits whose document contains every term in
// required, implementing the default AND-join of free-text tokens.
func requireAllTerms(hits []searchindex.Hit, idx *searchindex.Index, required []string) []searchindex.Hit {
	out := hits[:0:0]
	for _, h := range hits {
		matchesAll := true
		for _, term := range required {
			if !idx.ContainsTerm(h.DocID, term) {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			out = append(out, h)
		}
	}
	return out
}

const fuzzyFallbackThreshold = 5

func cloneFilterMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		if k == "__text__" {
			continue
		}
		out[k] = v
	}
	return out
}

func dedupe(terms []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// expandWildcard matches pattern (containing * and/or ?) against every
// stemmed term in the index vocabulary.
func expandWildcard(idx *searchindex.Index, pattern string) []string {
	var out []string
	for _, term := range idx.Vocabulary() {
		if globMatch(strings.ToLower(pattern), term) {
			out = append(out, term)
		}
	}
	return out
}

func globMatch(pattern, s string) bool {
	return globMatchRunes([]rune(pattern), []rune(s))
}

func globMatchRunes(pattern, s []rune) bool {
	if len(pattern) == 0 {
		return len(s) == 0
	}
	switch pattern[0] {
	case '*':
		if globMatchRunes(pattern[1:], s) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if globMatchRunes(pattern[1:], s[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if len(s) == 0 {
			return false
		}
		return globMatchRunes(pattern[1:], s[1:])
	default:
		if len(s) == 0 || s[0] != pattern[0] {
			return false
		}
		return globMatchRunes(pattern[1:], s[1:])
	}
}

// excludeTextTerms drops any hit whose searchable text contains one of the
// free-text excluded terms (a `NOT word` clause that isn't a recognized
// field qualifier).
func excludeTextTerms(hits []searchindex.Hit, idx *searchindex.Index, excluded []string) []searchindex.Hit {
	if len(excluded) == 0 {
		return hits
	}
	out := hits[:0:0]
	for _, h := range hits {
		doc, ok := idx.Document(h.DocID)
		if !ok {
			continue
		}
		blocked := false
		lowered := strings.ToLower(doc.SearchableText)
		for _, term := range excluded {
			if strings.Contains(lowered, strings.ToLower(term)) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, h)
		}
	}
	return out
}
