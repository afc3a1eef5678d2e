package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
	firstNumber    = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
	firstDigits    = regexp.MustCompile(`\d+`)
)

// letterGradePoints is the 4.0 scale used for letter-graded reviews.
var letterGradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
}

// parseDecimal accepts plain decimal notation with an optional exponent and
// rejects anything that does not produce a finite value.
func parseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Currency parses box-office style amounts: "$1.2M", "950K", "$12,345".
// Thousands separators and the dollar sign are dropped and a trailing M or K
// scales the value.
func Currency(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	value := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	multiplier := 1.0
	switch {
	case strings.HasSuffix(value, "M"):
		multiplier = 1_000_000
		value = strings.TrimSuffix(value, "M")
	case strings.HasSuffix(value, "K"):
		multiplier = 1_000
		value = strings.TrimSuffix(value, "K")
	}
	value = strings.ReplaceAll(value, "$", "")
	parsed := parseDecimal(value)
	if parsed == nil {
		return nil
	}
	scaled := *parsed * multiplier
	if math.IsInf(scaled, 0) {
		return nil
	}
	return &scaled
}

// Runtime returns the first run of digits in s as minutes: "142 min" is 142.
func Runtime(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	match := firstDigits.FindString(s)
	if match == "" {
		return nil
	}
	return parseDecimal(match)
}

// RuntimeStrict concatenates every digit and dot in s and parses the result,
// so "2h 15m" yields 215. Used for columns that carry a single number with
// decoration around it.
func RuntimeStrict(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	return parseDecimal(b.String())
}

// ReviewScore maps critic scores onto a ratio where possible. Text containing a
// slash is split on the first one and both sides must parse as numbers
// ("7 / 10" is 0.7, "3/5 stars" is null). Letter grades ("A-") map onto a 4.0
// scale divided by 4 and bare numbers ("85") pass through unscaled.
func ReviewScore(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	text := strings.TrimSpace(s)
	if numText, denText, ok := strings.Cut(text, "/"); ok {
		num := parseDecimal(numText)
		den := parseDecimal(denText)
		if num == nil || den == nil || *den == 0 {
			return nil
		}
		ratio := *num / *den
		return &ratio
	}
	if points, ok := letterGradePoints[text]; ok {
		ratio := points / 4.0
		return &ratio
	}
	return parseDecimal(text)
}

// Number extracts the first signed decimal number embedded in s.
func Number(s string) *float64 {
	if IsNullToken(s) {
		return nil
	}
	match := firstNumber.FindString(strings.TrimSpace(s))
	if match == "" {
		return nil
	}
	return parseDecimal(match)
}

// Votes parses vote counts written with thousands separators: "1,234,567".
func Votes(s string) *float64 {
	return Number(strings.ReplaceAll(s, ",", ""))
}

// FormatFloat renders v so that every numeric normalizer parses it back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
