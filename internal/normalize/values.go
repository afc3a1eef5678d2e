package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Bool maps true/1/yes/y and false/0/no/n, case-insensitively. Anything else,
// including null tokens, is nil.
func Bool(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		v = true
	case "false", "0", "no", "n":
		v = false
	default:
		return nil
	}
	return &v
}

// Date parses strings that begin with a YYYY-MM-DD date, interpreting them in
// UTC. Other layouts are rejected even when they would parse.
func Date(s string) *time.Time {
	if IsNullToken(s) {
		return nil
	}
	text := strings.TrimSpace(s)
	if !isoDatePrefix.MatchString(text) {
		return nil
	}
	parsed, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}

// Sentiment maps the aggregator review state onto 1 (fresh) or 0 (rotten).
func Sentiment(s string) *int64 {
	var v int64
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fresh":
		v = 1
	case "rotten":
		v = 0
	default:
		return nil
	}
	return &v
}
