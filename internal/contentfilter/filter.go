// Package contentfilter rejects chat text containing blocked terms.
//
// Matching is a case-insensitive substring check with no word boundaries,
// so "skills" is rejected because it contains "kill". This over-broad
// policy is intentional and covered by tests.
package contentfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RejectionMessage is returned to callers whose text is blocked.
const RejectionMessage = "Your message contains inappropriate content. Please revise and try again."

var blockedTerms = []string{
	"terror",
	"terrorist",
	"bomb",
	"kill",
	"murder",
	"hate",
	"abuse",
	"drugs",
	"weapon",
	"attack",
}

var (
	lower    = cases.Lower(language.Und)
	maskExpr []*regexp.Regexp
)

func init() {
	maskExpr = make([]*regexp.Regexp, len(blockedTerms))
	for i, term := range blockedTerms {
		maskExpr[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	}
}

func normalize(text string) string {
	return strings.TrimSpace(lower.String(text))
}

// ContainsBlockedTerms reports whether text contains any blocked term.
func ContainsBlockedTerms(text string) bool {
	normalized := normalize(text)
	for _, term := range blockedTerms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

// Validate returns RejectionMessage for blocked text and "" otherwise.
func Validate(text string) string {
	if ContainsBlockedTerms(text) {
		return RejectionMessage
	}
	return ""
}

// Mask replaces every blocked term with asterisks of the same length.
// The input is not modified.
func Mask(text string) string {
	masked := text
	for i, re := range maskExpr {
		stars := strings.Repeat("*", len(blockedTerms[i]))
		masked = re.ReplaceAllLiteralString(masked, stars)
	}
	return masked
}
