package urlnorm

import "strings"

// Normalize shapes user-entered URLs into the form the Web Risk API expects:
// whitespace trimmed, https:// prepended when no scheme is given, trailing
// slashes stripped. An existing http:// or https:// scheme is left untouched.
func Normalize(raw string) string {
	u := strings.TrimSpace(raw)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}
