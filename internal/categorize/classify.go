package categorize

import (
	"sort"
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

// Categorize assigns every endpoint in api a category key and group (first
// match wins: tag, then operationId resource noun, then path segment,
// finally "uncategorized"), and returns the ordered catalog. Categorization
// never fails the overall conversion: classification errors are impossible
// by construction (every rule falls through to uncategorized), so the
// error return exists only for symmetry with the other component
// contracts and is always nil today.
func Categorize(api *normalize.NormalizedAPI) (*Catalog, error) {
	tagDisplay := make(map[string]string, len(api.Tags))
	for _, t := range api.Tags {
		tagDisplay[t.Name] = t.Description
	}
	tagGroup := reverseTagGroups(api.TagGroups)
	anyGroupDefined := len(api.TagGroups) > 0

	counts := map[string]*Category{}
	order := make([]string, 0)

	for _, ep := range api.Endpoints {
		key, display := classifyEndpoint(ep)
		if len(ep.Tags) > 0 && tagDisplay[ep.Tags[0]] != "" {
			display = tagDisplay[ep.Tags[0]]
		}
		ep.CategoryKey = key

		group := tagGroup[key]
		if group == "" && anyGroupDefined {
			group = "Other"
		}
		ep.CategoryGroup = group

		cat, ok := counts[key]
		if !ok {
			cat = &Category{Key: key, DisplayName: display, Group: group, MethodDistribution: map[string]int{}}
			counts[key] = cat
			order = append(order, key)
		}
		cat.EndpointCount++
		cat.MethodDistribution[string(ep.Method)]++
	}

	cats := make([]Category, 0, len(order))
	for _, key := range order {
		cats = append(cats, *counts[key])
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].EndpointCount != cats[j].EndpointCount {
			return cats[i].EndpointCount > cats[j].EndpointCount
		}
		return cats[i].Key < cats[j].Key
	})

	return &Catalog{Categories: cats}, nil
}

// classifyEndpoint applies the first-match-wins rule chain and returns the
// category key and its display name.
func classifyEndpoint(ep *normalize.Endpoint) (key, display string) {
	if len(ep.Tags) > 0 {
		tag := ep.Tags[0]
		return slugify(tag), tag
	}
	if noun, ok := resourceNounFromOperationID(ep.OperationID); ok {
		return slugify(noun), strings.Title(noun)
	}
	if segs := pathResourceSegments(ep.Path); len(segs) > 0 {
		seg := segs[0]
		return slugify(seg), strings.Title(seg)
	}
	return "uncategorized", "Uncategorized"
}

// resourceNounFromOperationID splits operationId on hyphen/underscore
// (and, since operationIds are often camelCase, on case boundaries too)
// and returns the longest matching resource noun.
func resourceNounFromOperationID(operationID string) (string, bool) {
	if operationID == "" {
		return "", false
	}
	tokens := splitOperationID(operationID)
	best := ""
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if n, ok := matchResourceNoun(lower); ok && len(n) > len(best) {
			best = n
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// matchResourceNoun checks a token against the pinned noun list, also
// trying the simple singular form (trailing 's' stripped) so that plural
// operationId tokens like "orders" still match "order".
func matchResourceNoun(token string) (string, bool) {
	if resourceNounSet[token] {
		return token, true
	}
	if strings.HasSuffix(token, "s") {
		singular := token[:len(token)-1]
		if resourceNounSet[singular] {
			return singular, true
		}
	}
	return "", false
}

// splitOperationID tokenizes an operationId on '-', '_', and camelCase
// boundaries.
func splitOperationID(id string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(id)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z'):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// reverseTagGroups inverts normalize.TagGroup (group -> tags) into a
// tag -> group lookup for category assignment.
func reverseTagGroups(groups []normalize.TagGroup) map[string]string {
	out := map[string]string{}
	for _, g := range groups {
		for _, tag := range g.Tags {
			out[slugify(tag)] = g.Name
		}
	}
	return out
}

// slugify lowercases s and collapses non-alphanumeric runs to a single
// '-', trimming leading/trailing '-'. Deterministic and idempotent.
func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	return out
}

// pathResourceSegments returns the path's resource segments, skipping empty
// segments, {placeholders}, "api", version segments (v followed by digits)
// and single-letter segments.
func pathResourceSegments(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || seg == "api" {
			continue
		}
		if isVersionSegment(seg) || len(seg) == 1 {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
