package normalize

import "strings"

var nullTokens = map[string]struct{}{
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"null": {},
	"none": {},
}

// IsNullToken reports whether s is one of the dataset null spellings: empty
// after trimming, or n/a, na, nan, null, none in any case.
func IsNullToken(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	_, ok := nullTokens[strings.ToLower(trimmed)]
	return ok
}

// Text returns the trimmed value, or nil for a null token.
func Text(s string) *string {
	if IsNullToken(s) {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	return &trimmed
}

// FirstToken returns the first comma-separated element of s, trimmed, or nil
// when s is null or that element is empty.
func FirstToken(s string) *string {
	if IsNullToken(s) {
		return nil
	}
	first, _, _ := strings.Cut(s, ",")
	return Text(first)
}
