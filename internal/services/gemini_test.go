package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short input untouched", input: "résumé", limit: 40, want: "résumé"},
		{name: "ascii cut", input: "abcdef", limit: 3, want: "abc"},
		{name: "cut inside two-byte rune backs off", input: "aé", limit: 2, want: "a"},
		{name: "cut inside four-byte rune backs off", input: "ok🙂", limit: 4, want: "ok"},
		{name: "cut on rune boundary", input: "éé", limit: 2, want: "é"},
		{name: "zero limit", input: "abc", limit: 0, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := truncateUTF8(tt.input, tt.limit)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result is not valid UTF-8: %q", got)
			}
		})
	}
}

func TestTruncateUTF8EmbeddingLimit(t *testing.T) {
	t.Parallel()

	// 'é' is two bytes, so an odd-length prefix would end mid-character
	text := "x" + strings.Repeat("é", maxEmbeddingBytes)
	got := truncateUTF8(text, maxEmbeddingBytes)
	if len(got) > maxEmbeddingBytes || !utf8.ValidString(got) {
		t.Fatalf("unexpected truncation: %d bytes, valid=%v", len(got), utf8.ValidString(got))
	}
	if len(got) != maxEmbeddingBytes-1 {
		t.Fatalf("expected %d bytes, got %d", maxEmbeddingBytes-1, len(got))
	}
}
