// Package validation sanitizes free-text input before it is stored or
// rendered. Every function is pure.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxListNameLength = 100
	MaxItemNameLength = 200
	MaxChatTextLength = 500
	ShareCodeLength   = 6
)

var (
	allowedPattern   = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?()&{}\[\]^:;"']+$`)
	alphanumeric     = regexp.MustCompile(`[a-zA-Z0-9]`)
	shareCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
	)
)

// Result is the outcome of validating one field.
type Result struct {
	IsValid        bool   `json:"is_valid"`
	SanitizedValue string `json:"sanitized_value,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil when the value is valid.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("%s", r.Error)
}

func invalid(msg string) Result {
	return Result{IsValid: false, Error: msg}
}

type field struct {
	label     string
	maxLength int
}

func (f field) validate(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return invalid(f.label + " cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > f.maxLength {
		return invalid(fmt.Sprintf("%s cannot be longer than %d characters", f.label, f.maxLength))
	}
	if !allowedPattern.MatchString(trimmed) {
		return invalid(f.label + " can only contain letters, numbers, spaces, and basic punctuation")
	}
	if !alphanumeric.MatchString(trimmed) {
		return invalid(f.label + " must contain at least one letter or number")
	}
	return Result{IsValid: true, SanitizedValue: EscapeHTML(trimmed)}
}

var (
	listName = field{label: "List name", maxLength: MaxListNameLength}
	itemName = field{label: "Item name", maxLength: MaxItemNameLength}
	chatText = field{label: "Message", maxLength: MaxChatTextLength}
)

func ValidateListName(name string) Result {
	return listName.validate(name)
}

func ValidateItemName(name string) Result {
	return itemName.validate(name)
}

func ValidateChatText(text string) Result {
	return chatText.validate(text)
}

// ValidateShareCode normalizes a share code for lookup. Codes are never
// rendered, so no escaping is applied.
func ValidateShareCode(code string) Result {
	processed := strings.ToUpper(strings.TrimSpace(code))
	if !shareCodePattern.MatchString(processed) {
		return invalid(fmt.Sprintf("Share code must be %d characters long and contain only uppercase letters and numbers", ShareCodeLength))
	}
	return Result{IsValid: true, SanitizedValue: processed}
}

// EscapeHTML replaces the five HTML-significant characters with entities.
// It is applied exactly once; already-escaped input is escaped again.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
