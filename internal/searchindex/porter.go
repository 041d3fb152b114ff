package searchindex

import "strings"

// stem reduces word to its Porter stem (M. F. Porter, "An algorithm for
// suffix stripping", 1980). No off-the-shelf Go stemmer was wired
// anywhere in the corpus, so this follows the classic reference
// algorithm's five-step structure directly, adapted to Go idiom.
func stem(word string) string {
	w := strings.ToLower(word)
	if len(w) <= 2 {
		return w
	}
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return w
}

func isConsonant(w string, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure computes m, the number of consonant-vowel sequences in the
// stem, per the paper's definition of [C](VC){m}[V].
func measure(w string) int {
	m := 0
	i := 0
	n := len(w)
	for i < n && isConsonant(w, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(w, i) {
			i++
		}
		if i >= n {
			break
		}
		for i < n && isConsonant(w, i) {
			i++
		}
		m++
	}
	return m
}

func containsVowel(w string) bool {
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

// endsDoubleConsonant reports whether w ends in a double consonant (e.g.
// "tt", "ss").
func endsDoubleConsonant(w string) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	return w[n-1] == w[n-2] && isConsonant(w, n-1)
}

// endsCVC reports whether w ends consonant-vowel-consonant where the
// final consonant is not w, x, or y.
func endsCVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !isConsonant(w, n-3) || isConsonant(w, n-2) || !isConsonant(w, n-1) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w, suffix string) bool {
	return len(w) >= len(suffix) && w[len(w)-len(suffix):] == suffix
}

func trimSuffix(w, suffix string) string {
	return w[:len(w)-len(suffix)]
}

func replaceSuffix(w, suffix, repl string, minMeasure int) string {
	stemPart := trimSuffix(w, suffix)
	if measure(stemPart) >= minMeasure {
		return stemPart + repl
	}
	return w
}

func step1a(w string) string {
	switch {
	case hasSuffix(w, "sses"):
		return trimSuffix(w, "sses") + "ss"
	case hasSuffix(w, "ies"):
		return trimSuffix(w, "ies") + "i"
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s"):
		return trimSuffix(w, "s")
	}
	return w
}

func step1b(w string) string {
	switch {
	case hasSuffix(w, "eed"):
		stemPart := trimSuffix(w, "eed")
		if measure(stemPart) > 0 {
			return stemPart + "ee"
		}
		return w
	case hasSuffix(w, "ed") && containsVowel(trimSuffix(w, "ed")):
		w = trimSuffix(w, "ed")
		return step1bCleanup(w)
	case hasSuffix(w, "ing") && containsVowel(trimSuffix(w, "ing")):
		w = trimSuffix(w, "ing")
		return step1bCleanup(w)
	}
	return w
}

func step1bCleanup(w string) string {
	switch {
	case hasSuffix(w, "at"), hasSuffix(w, "bl"), hasSuffix(w, "iz"):
		return w + "e"
	case endsDoubleConsonant(w) && !hasSuffix(w, "l") && !hasSuffix(w, "s") && !hasSuffix(w, "z"):
		return w[:len(w)-1]
	case measure(w) == 1 && endsCVC(w):
		return w + "e"
	}
	return w
}

func step1c(w string) string {
	if hasSuffix(w, "y") && containsVowel(trimSuffix(w, "y")) {
		return trimSuffix(w, "y") + "i"
	}
	return w
}

var step2Suffixes = []struct{ from, to string }{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
}

func step2(w string) string {
	for _, s := range step2Suffixes {
		if hasSuffix(w, s.from) {
			return replaceSuffix(w, s.from, s.to, 1)
		}
	}
	return w
}

var step3Suffixes = []struct{ from, to string }{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func step3(w string) string {
	for _, s := range step3Suffixes {
		if hasSuffix(w, s.from) {
			return replaceSuffix(w, s.from, s.to, 1)
		}
	}
	return w
}

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement",
	"ment", "ent", "ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(w string) string {
	for _, suffix := range step4Suffixes {
		if !hasSuffix(w, suffix) {
			continue
		}
		stemPart := trimSuffix(w, suffix)
		if suffix == "ion" && !(hasSuffix(stemPart, "s") || hasSuffix(stemPart, "t")) {
			continue
		}
		if measure(stemPart) > 1 {
			return stemPart
		}
		return w
	}
	return w
}

func step5a(w string) string {
	if !hasSuffix(w, "e") {
		return w
	}
	stemPart := trimSuffix(w, "e")
	m := measure(stemPart)
	if m > 1 || (m == 1 && !endsCVC(stemPart)) {
		return stemPart
	}
	return w
}

func step5b(w string) string {
	if measure(w) > 1 && endsDoubleConsonant(w) && hasSuffix(w, "l") {
		return w[:len(w)-1]
	}
	return w
}
