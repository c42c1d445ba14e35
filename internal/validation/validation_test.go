package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		wantErr error
	}{
		// Valid keywords
		{name: "letters", keyword: "Lakers", wantErr: nil},
		{name: "digits", keyword: "23", wantErr: nil},
		{name: "mixed", keyword: "Player23", wantErr: nil},
		{name: "single char", keyword: "J", wantErr: nil},
		{name: "long keyword", keyword: strings.Repeat("a", 4096), wantErr: nil},

		// Empty
		{name: "empty string", keyword: "", wantErr: ErrEmptyValue},

		// Not alphanumeric
		{name: "inner space", keyword: "Los Angeles", wantErr: ErrInvalidFormat},
		{name: "leading space", keyword: " Lakers", wantErr: ErrInvalidFormat},
		{name: "whitespace only", keyword: "   ", wantErr: ErrInvalidFormat},
		{name: "hyphen", keyword: "Jean-Luc", wantErr: ErrInvalidFormat},
		{name: "apostrophe", keyword: "O'Neal", wantErr: ErrInvalidFormat},
		{name: "sql wildcard", keyword: "a%", wantErr: ErrInvalidFormat},
		{name: "underscore", keyword: "a_b", wantErr: ErrInvalidFormat},
		{name: "accented letter", keyword: "Dončić", wantErr: ErrInvalidFormat},
		{name: "emoji", keyword: "ball🏀", wantErr: ErrInvalidFormat},
		{name: "null byte", keyword: "a\x00b", wantErr: ErrInvalidFormat},
		{name: "injection", keyword: "x' OR '1'='1", wantErr: ErrInvalidFormat},

		// Length does not rescue an invalid character
		{name: "long with space", keyword: strings.Repeat("a", 4096) + " b", wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeyword(tt.keyword)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKeyword(%q) = %v, want nil", tt.keyword, err)
				}
				return
			}
			if err == nil {
				t.Errorf("ValidateKeyword(%q) = nil, want error wrapping %v", tt.keyword, tt.wantErr)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKeyword(%q) = %v, want error wrapping %v", tt.keyword, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		// Valid names
		{name: "simple name", input: "Los Angeles Lakers", wantErr: nil},
		{name: "short name", input: "A", wantErr: nil},
		{name: "name with punctuation", input: "Shaquille O'Neal", wantErr: nil},
		{name: "name with unicode", input: "Luka Dončić", wantErr: nil},
		{name: "name with whitespace trimmed", input: "  Center  ", wantErr: nil},

		// Empty/whitespace
		{name: "empty string", input: "", wantErr: ErrEmptyValue},
		{name: "whitespace only", input: "   ", wantErr: ErrEmptyValue},
		{name: "tabs only", input: "\t\t", wantErr: ErrEmptyValue},

		// Control characters
		{name: "contains tab", input: "Point\tGuard", wantErr: ErrControlCharacter},
		{name: "contains newline", input: "Point\nGuard", wantErr: ErrControlCharacter},
		{name: "contains null byte", input: "Point\x00Guard", wantErr: ErrControlCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if err == nil {
				t.Errorf("ValidateName(%q) = nil, want error wrapping %v", tt.input, tt.wantErr)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want error wrapping %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName_TooLong(t *testing.T) {
	err := ValidateName(strings.Repeat("x", MaxNameLength+1))
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestKeywordError(t *testing.T) {
	err := ValidateKeyword(strings.Repeat("é", 60))
	var kerr *KeywordError
	if !errors.As(err, &kerr) {
		t.Fatalf("expected *KeywordError, got %T", err)
	}
	if !strings.Contains(err.Error(), "invalid keyword") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if len(err.Error()) > 200 {
		t.Errorf("KeywordError.Error() should truncate long keywords: len=%d", len(err.Error()))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcd", 3, "abc"}, // maxLen too small for "...", just truncate
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
