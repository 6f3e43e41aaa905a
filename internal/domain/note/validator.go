package note

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxTitleLen   = 200
	maxContentLen = 1 << 20
)

// SanitizeTitle strips control characters and trims surrounding whitespace.
func SanitizeTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, title)
	return strings.TrimSpace(cleaned)
}

// ValidateTitle checks an already sanitized title.
func ValidateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("title must be at most %d characters", maxTitleLen)
	}
	return nil
}

func ValidateContent(content string) error {
	if len(content) > maxContentLen {
		return fmt.Errorf("content must be at most %d bytes", maxContentLen)
	}
	return nil
}
