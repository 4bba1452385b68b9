package config

import "strings"

// splitPairs splits a "key=value;key=value" connection string on its
// separators, tolerating trailing semicolons and blank segments.
func splitPairs(s string) []string {
	raw := strings.Split(s, ";")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cutPair splits a single "key=value" segment on its first '='.
func cutPair(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// normalizeKey lowercases a connection-string key so callers can match
// against SQL Server's case-insensitive, alias-heavy keyword set
// ("Server" / "server" / "Data Source" all mean the same thing).
func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// isTruthy parses the handful of spellings SQL Server connection strings
// accept for a boolean flag (True/False, yes/no).
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
