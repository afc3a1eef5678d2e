package textutil

import "strings"

// SanitizeFileName makes a source's configured file name safe to use as a
// single path element in the raw zone and dataset cache. Separators and
// colons become dashes; quoting and wildcard characters are dropped.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(name)))
}

// SanitizeToken turns a source name or dataset reference such as
// "owner/name" into a lowercase directory token. Returns "unknown" when
// nothing usable remains.
func SanitizeToken(value string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(value))
	if token = strings.Trim(token, "_-"); token == "" {
		return "unknown"
	}
	return token
}
