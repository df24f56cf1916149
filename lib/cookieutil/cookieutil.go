// Package cookieutil works on raw Set-Cookie header values, in the order
// they were received and without any deduplication.
package cookieutil

import (
	"regexp"
	"strings"
)

// Pair returns the "name=value" portion of a raw Set-Cookie value,
// which is everything before the first semicolon.
func Pair(raw string) string {
	pair, _, _ := strings.Cut(raw, ";")
	return strings.TrimSpace(pair)
}

// BuildHeader joins the name=value pairs of the given Set-Cookie values
// into a single Cookie request header. Duplicate names are kept.
func BuildHeader(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, raw := range setCookies {
		pair := Pair(raw)
		if pair == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, "; ")
}

// FindValue returns the value of the first cookie called name, the value
// ends at a semicolon or at the end of the string.
func FindValue(setCookies []string, name string) (string, bool) {
	pattern := regexp.MustCompile(`(?:^|[;\s])` + regexp.QuoteMeta(name) + `=([^;]*)`)
	for _, raw := range setCookies {
		groups := pattern.FindStringSubmatch(raw)
		if len(groups) < 2 {
			continue
		}
		return groups[1], true
	}
	return "", false
}
