package searchindex

import "testing"

func TestStemHandlesClassicCases(t *testing.T) {
	cases := map[string]string{
		"caresses":  "caress",
		"ponies":    "poni",
		"ties":      "ti",
		"caress":    "caress",
		"cats":      "cat",
		"agreed":    "agre",
		"plastered": "plaster",
		"bled":      "bled",
		"motoring":  "motor",
		"sing":      "sing",
		"conflated": "conflat",
		"troubled":  "troubl",
		"sized":     "size",
		"hopping":   "hop",
		"tanned":    "tan",
		"falling":   "fall",
		"hissing":   "hiss",
		"fizzed":    "fizz",
		"failing":   "fail",
		"filing":    "file",
		"happy":     "happi",
		"sky":       "sky",
	}
	for in, want := range cases {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStemShortWordsPassThrough(t *testing.T) {
	for _, w := range []string{"a", "an", "go"} {
		if got := stem(w); got != w {
			t.Errorf("stem(%q) = %q, want unchanged", w, got)
		}
	}
}

func TestAnalyzeFreeTextDropsStopWordsAndStems(t *testing.T) {
	got := analyzeFreeText("List all the Orders for a customer")
	want := []string{"list", "all", "order", "custom"}
	if len(got) != len(want) {
		t.Fatalf("analyzeFreeText = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("analyzeFreeText = %v, want %v", got, want)
		}
	}
}

func TestAnalyzeIdentifierPreservesTokensWithoutStemming(t *testing.T) {
	got := analyzeIdentifier("/pets/{petId}/orders")
	want := []string{"pets", "petid", "orders"}
	if len(got) != len(want) {
		t.Fatalf("analyzeIdentifier = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("analyzeIdentifier = %v, want %v", got, want)
		}
	}
}

func TestAnalyzeKeywordNormalizesCase(t *testing.T) {
	if got := analyzeKeyword("  Application/JSON  "); got != "application/json" {
		t.Fatalf("analyzeKeyword = %q", got)
	}
}
