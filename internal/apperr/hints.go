package apperr

import "strings"

// hintRule maps a lowercase substring of an error message to a short,
// actionable suggestion. Matched in order; first match wins.
type hintRule struct {
	substring  string
	suggestion string
}

var hintRules = []hintRule{
	{"no such file", "check that the path is correct and the file exists"},
	{"not found", "check that the path is correct and the file exists"},
	{"permission denied", "check file permissions for the process user"},
	{"yaml", "validate the file's YAML syntax"},
	{"json", "validate the file's JSON syntax"},
	{"unmarshal", "check the specification matches the expected OpenAPI/Swagger shape"},
	{"memory", "try converting a smaller specification file"},
	{"too large", "try converting a smaller specification file"},
	{"database is locked", "another process may be writing to the store; retry shortly"},
	{"unresolvable reference", "check the $ref target exists in components"},
}

// Hint returns a suggestion for msg, derived from a small fixed rule table
// keyed on error substring, or "" if nothing matches.
func Hint(msg string) string {
	lower := strings.ToLower(msg)
	for _, r := range hintRules {
		if strings.Contains(lower, r.substring) {
			return r.suggestion
		}
	}
	return ""
}

// UserMessage composes the short cause line, hint, and correlation id into
// the user-visible failure message described by the error handling design.
func UserMessage(err error, correlationID string) string {
	msg := err.Error()
	var b strings.Builder
	b.WriteString(msg)
	if hint := Hint(msg); hint != "" {
		b.WriteString(" (suggestion: ")
		b.WriteString(hint)
		b.WriteString(")")
	}
	if correlationID != "" {
		b.WriteString(" [correlation_id=")
		b.WriteString(correlationID)
		b.WriteString("]")
	}
	return b.String()
}
