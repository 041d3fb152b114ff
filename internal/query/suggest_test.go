package query

import "testing"

func TestDamerauLevenshteinIdentical(t *testing.T) {
	if d := damerauLevenshtein("authentication", "authentication"); d != 0 {
		t.Fatalf("distance = %d, want 0", d)
	}
}

func TestDamerauLevenshteinTypo(t *testing.T) {
	if d := damerauLevenshtein("autentication", "authentication"); d > 2 {
		t.Fatalf("distance = %d, want <= 2", d)
	}
}

func TestDamerauLevenshteinTransposition(t *testing.T) {
	if d := damerauLevenshtein("teh", "the"); d != 1 {
		t.Fatalf("distance(teh, the) = %d, want 1 (adjacent transposition)", d)
	}
}

func TestFuzzyMatchesFindsTypoCorrection(t *testing.T) {
	vocabulary := []string{"authentication", "authorization", "pet", "order"}
	matches := fuzzyMatches(vocabulary, "autentication", 2, 5)
	if len(matches) == 0 || matches[0] != "authentication" {
		t.Fatalf("matches = %v, want authentication first", matches)
	}
}

func TestFuzzyMatchesRespectsLimit(t *testing.T) {
	vocabulary := []string{"cat", "bat", "hat", "mat", "rat"}
	matches := fuzzyMatches(vocabulary, "cat", 1, 2)
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
}
