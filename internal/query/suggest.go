package query

import (
	"sort"

	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
)

const maxSuggestions = 5

// damerauLevenshtein computes the Damerau-Levenshtein edit distance
// between a and b (insertions, deletions, substitutions, and adjacent
// transpositions each cost 1).
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min3(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min2(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[la][lb]
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int {
	return min2(min2(a, b), c)
}

// fuzzyMatches scans vocabulary for terms within maxDistance of term,
// capped at limit results, closest first.
func fuzzyMatches(vocabulary []string, term string, maxDistance, limit int) []string {
	type scored struct {
		term string
		dist int
	}
	var candidates []scored
	for _, v := range vocabulary {
		if v == term {
			continue
		}
		if dist := damerauLevenshtein(term, v); dist <= maxDistance {
			candidates = append(candidates, scored{v, dist})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].term < candidates[j].term
	})
	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[i].term
	}
	return out
}

// suggestionThreshold is the result count below which suggestions are
// generated.
const suggestionThreshold = 3

// generateSuggestions builds up to maxSuggestions candidates: typo fixes,
// a broader query (drop the most specific token), similar terms
// (substring matches), field-scoped rewrites, and API-pattern
// suggestions.
func generateSuggestions(idx *searchindex.Index, n normalizedQuery, resultCount int) []Suggestion {
	if resultCount >= suggestionThreshold {
		return nil
	}

	vocabulary := idx.Vocabulary()
	var out []Suggestion

	for _, raw := range n.Raw {
		if len(raw) <= 3 {
			continue
		}
		matches := fuzzyMatches(vocabulary, searchindex.Stem(raw), 2, 1)
		if len(matches) > 0 {
			out = append(out, Suggestion{Query: matches[0], Category: "typo_fix", Score: 0.9})
		}
	}

	if len(n.parsed.FreeText) > 1 {
		mostSpecific := longestToken(n.parsed.FreeText)
		broader := removeToken(n.parsed.FreeText, mostSpecific)
		out = append(out, Suggestion{Query: joinTokens(broader), Category: "broader_query", Score: 0.6})
	}

	for _, raw := range n.Raw {
		for _, term := range vocabulary {
			if term != raw && len(term) > 2 && containsSubstring(term, raw) {
				out = append(out, Suggestion{Query: term, Category: "similar_term", Score: 0.5})
				break
			}
		}
	}

	for _, raw := range n.Raw {
		switch raw {
		case "get", "post", "put", "delete", "patch":
			out = append(out, Suggestion{Query: "method:" + upper(raw), Category: "field_scoped", Score: 0.7})
		case "bearer", "oauth", "apikey":
			out = append(out, Suggestion{Query: "auth:" + raw, Category: "field_scoped", Score: 0.7})
		}
	}

	if len(n.Raw) > 0 {
		out = append(out, Suggestion{Query: "path:" + n.Raw[0], Category: "api_pattern", Score: 0.4})
		out = append(out, Suggestion{Query: "auth:bearer", Category: "api_pattern", Score: 0.3})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func longestToken(tokens []string) string {
	longest := ""
	for _, t := range tokens {
		if len(t) > len(longest) {
			longest = t
		}
	}
	return longest
}

func removeToken(tokens []string, drop string) []string {
	var out []string
	for _, t := range tokens {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}

func containsSubstring(term, substr string) bool {
	if len(substr) < 3 {
		return false
	}
	return len(term) >= len(substr) && indexOf(term, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}
