package expression

import (
	"strings"
)

// isDottedPath reports whether a placeholder body is a plain reference like
// "trigger.buildInfo.number": dot-separated identifiers with no operators,
// calls, or literals.
func isDottedPath(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// resolvePath navigates a dot-separated reference through nested mappings.
// Example: "trigger.buildInfo.number" => env["trigger"]["buildInfo"]["number"].
// The second return reports whether every segment resolved.
func resolvePath(path string, env map[string]any) (any, bool) {
	var current any = env
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
