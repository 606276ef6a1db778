// ABOUTME: Tests for shared CLI helper functions
// ABOUTME: Verifies string truncation including multibyte input
package commands

import (
	"testing"
	"unicode/utf8"
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
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multibyte within limit", "héllo", 10, "héllo"},
		{"multibyte truncated", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncate_TinyLimitKeepsRunesIntact(t *testing.T) {
	// A multibyte rune at the cut point must not be split into garbage bytes
	got := truncate("日本語のテスト", 2)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate() = %q, not valid UTF-8", got)
	}
	if got != "日本" {
		t.Errorf("truncate() = %q, want %q", got, "日本")
	}
}
