package utils_test

import (
	"testing"

	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

func TestFormatInt64(t *testing.T) {
	if got := utils.FormatInt64(-42); got != "-42" {
		t.Errorf("FormatInt64() = %v, want %v", got, "-42")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exact", 5, "exact"},
		{"truncated", "a much longer description", 10, "a much ..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"multibyte", "señor señora", 8, "señor..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "u**r@example.com"},
		{"ab@example.com", "ab@example.com"},
		{"not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := utils.MaskEmail(tt.input); got != tt.want {
				t.Errorf("MaskEmail() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsString(t *testing.T) {
	slice := []string{"spam", "threats"}

	if !utils.ContainsString(slice, "spam") {
		t.Error("ContainsString() should find spam")
	}
	if utils.ContainsString(slice, "other") {
		t.Error("ContainsString() should not find other")
	}
}
