package errors

import (
	"strings"
	"testing"
)

func TestValidateBitWidth(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"one bit", 1, false},
		{"byte", 8, false},
		{"wide bus", 64, false},
		{"zero", 0, true},
		{"negative", -4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBitWidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBitWidth(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateBitWidth(%d) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "and", false},
		{"with spaces", "half adder", false},
		{"unicode", "überhang", false},

		{"too long", strings.Repeat("a", MaxNameLength+1), true},
		{"newline", "a\nb", true},
		{"tab", "a\tb", true},
		{"null byte", "a\x00b", true},
		{"leading space", " and", true},
		{"trailing space", "and ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"default box", 100, 60, false},
		{"unit", 1, 1, false},
		{"zero width", 0, 60, true},
		{"zero height", 100, 0, true},
		{"negative", -5, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSize(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSize(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}
