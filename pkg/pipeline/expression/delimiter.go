package expression

import "strings"

// delimiterStart marks the beginning of an expression placeholder.
const delimiterStart = "${"

// ContainsExpression reports whether value holds at least one expression
// placeholder. Literal strings short-circuit evaluation entirely.
func ContainsExpression(value string) bool {
	return value != "" && strings.Contains(value, delimiterStart)
}

// placeholderSpan locates the first placeholder in s starting at offset,
// returning the index of "${" and the index just past the matching "}".
// Braces nest, so map and ternary literals inside a placeholder are handled.
// Returns ok=false when no complete placeholder exists at or after offset.
func placeholderSpan(s string, offset int) (start, end int, ok bool) {
	rel := strings.Index(s[offset:], delimiterStart)
	if rel < 0 {
		return 0, 0, false
	}
	start = offset + rel

	depth := 0
	for i := start + len(delimiterStart); i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return start, i + 1, true
			}
			depth--
		}
	}
	return 0, 0, false
}
