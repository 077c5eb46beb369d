// ABOUTME: Tests for shared CLI utility functions
// ABOUTME: Covers truncation edge cases and flag validation

package commands

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncate_MultiByte(t *testing.T) {
	got := truncate("日本語のテキストです", 6)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncate() = %q, want ... suffix", got)
	}
	if strings.Contains(got, "�") {
		t.Errorf("truncate() split a rune: %q", got)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt(5, "limit"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validatePositiveInt(0, "limit"); err == nil {
		t.Error("expected error for zero")
	}
	if err := validatePositiveInt(-3, "limit"); err == nil {
		t.Error("expected error for negative")
	}
}
