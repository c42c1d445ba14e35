// Package validation provides input validation for search requests and
// seed data.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation error types for specific error handling.
var (
	ErrEmptyValue       = errors.New("value cannot be empty")
	ErrTooLong          = errors.New("value exceeds maximum length")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrControlCharacter = errors.New("value contains control characters")
)

// MaxNameLength bounds seeded team, player and position names.
const MaxNameLength = 255

// keywordPattern matches ASCII letters and digits only.
var keywordPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// KeywordError provides detailed keyword validation error information.
type KeywordError struct {
	Keyword string
	Reason  string
	Err     error
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("invalid keyword %q: %s", truncate(e.Keyword, 50), e.Reason)
}

func (e *KeywordError) Unwrap() error {
	return e.Err
}

// NameError provides detailed name validation error information.
type NameError struct {
	Name   string
	Reason string
	Err    error
}

func (e *NameError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid name %q: %s", truncate(e.Name, 50), e.Reason)
	}
	return fmt.Sprintf("invalid name %q: %v", truncate(e.Name, 50), e.Err)
}

func (e *NameError) Unwrap() error {
	return e.Err
}

// ValidateKeyword checks a search keyword: present and made of ASCII letters
// and digits only. The keyword is not trimmed, so surrounding whitespace makes
// it invalid like any other non-alphanumeric character. Length is not
// limited here; the HTTP server's header limits bound it.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return &KeywordError{Keyword: keyword, Reason: "cannot be empty", Err: ErrEmptyValue}
	}
	if !keywordPattern.MatchString(keyword) {
		return &KeywordError{Keyword: keyword, Reason: "must contain only letters and digits", Err: ErrInvalidFormat}
	}
	return nil
}

// ValidateName validates a team, player or position name.
// It checks for:
// - Non-empty (after trimming whitespace)
// - Not exceeding maximum length
// - No control characters
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &NameError{Name: name, Reason: "cannot be empty", Err: ErrEmptyValue}
	}

	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return &NameError{Name: name, Reason: "contains control characters", Err: ErrControlCharacter}
	}

	if len(name) > MaxNameLength {
		return &NameError{
			Name:   name,
			Reason: fmt.Sprintf("exceeds maximum length of %d characters", MaxNameLength),
			Err:    ErrTooLong,
		}
	}

	return nil
}

// truncate shortens a string for error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
