package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds display names edited through the properties panel.
const MaxNameLength = 64

// ValidateBitWidth checks that a gate bit-width is a positive integer.
func ValidateBitWidth(width int) error {
	if width < 1 {
		return New(ErrCodeInvalidInput, "bit width must be at least 1, got %d", width)
	}
	return nil
}

// ValidateName validates a display name for an element or gate.
//
// Names may be empty (elements fall back to their kind), but must not contain
// control characters or line breaks, since they are drawn on a single line.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "name must not start or end with whitespace")
	}
	return nil
}

// ValidateSize checks that a box has a positive width and height.
func ValidateSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidInput, "size must be positive, got %dx%d", w, h)
	}
	return nil
}
