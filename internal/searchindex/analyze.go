package searchindex

import "strings"

// analyzeFreeText lowercases, tokenizes on non-alphanumeric runs, drops
// stop words, and stems the remainder. Used for the free-text fields in
// freeTextFields.
func analyzeFreeText(text string) []string {
	var out []string
	for _, tok := range tokenize(text) {
		if stopWords[tok] {
			continue
		}
		out = append(out, stem(tok))
	}
	return out
}

// analyzeIdentifier lowercases and splits on every non-alphanumeric
// character (camelCase is not split) without stemming, for identifier-shaped fields like
// endpoint paths and operation IDs when used as exact-ish tokens.
func analyzeIdentifier(text string) []string {
	return tokenize(text)
}

// analyzeKeyword treats the whole value as a single exact-match token,
// lowercased, for filter fields (method, content types, status codes,
// security scheme names, deprecation, etc).
func analyzeKeyword(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// AnalyzeFreeText is the exported form of analyzeFreeText. The query
// engine's normalize step does not call it: it uses Tokenize and Stem with
// its own stop-word list.
func AnalyzeFreeText(text string) []string {
	return analyzeFreeText(text)
}

// Stem is the exported form of stem.
func Stem(word string) string {
	return stem(word)
}

// Tokenize is the exported form of tokenize.
func Tokenize(text string) []string {
	return tokenize(text)
}

func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "into": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "with": true,
}
