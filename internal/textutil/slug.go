package textutil

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nonWordRun matches runs of characters outside the ASCII word class.
var nonWordRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Slug lowercases value and collapses every run of non-word characters into a
// single underscore. Word characters are ASCII only, so accented letters fold
// into the surrounding run: "Björk" becomes "bj_rk". Leading and trailing
// underscores are preserved, so "J. R. R. Tolkien" becomes "j_r_r_tolkien".
// Safe for concurrent use.
func Slug(value string) string {
	return nonWordRun.ReplaceAllString(cases.Lower(language.Und).String(value), "_")
}
