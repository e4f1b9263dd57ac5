package services

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		max     int
		overlap int
		want    []string
	}{
		{
			name: "empty text",
			text: "  \n\n ",
			max:  100,
		},
		{
			name: "fits in one chunk",
			text: "Hello world.",
			max:  100,
			want: []string{"Hello world."},
		},
		{
			name: "packs paragraphs",
			text: "aaa\n\nbbb\n\nccc",
			max:  7,
			want: []string{"aaa bbb", "ccc"},
		},
		{
			name: "splits long paragraphs into sentences",
			text: "One two. Three four! Five?",
			max:  10,
			want: []string{"One two.", "Three", "four!", "Five?"},
		},
		{
			name:    "carries overlap on word boundary",
			text:    "alpha beta\n\ngamma delta",
			max:     11,
			overlap: 5,
			want:    []string{"alpha beta", "beta gamma delta"},
		},
		{
			name: "cuts words longer than the limit",
			text: "abcdefghij",
			max:  4,
			want: []string{"abcd", "efgh", "ij"},
		},
	}

	chunker := NewTextChunker()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := chunker.ChunkText(tt.text, tt.max, tt.overlap)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestChunkTextRespectsLimitWithoutOverlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Candidates are scored on skills, experience and impact. ", 40) +
		"\n\n" + strings.Repeat("Évaluer la communication. ", 30)

	for _, chunk := range NewTextChunker().ChunkText(text, 120, 0) {
		if n := utf8.RuneCountInString(chunk); n > 120 {
			t.Fatalf("chunk of %d runes exceeds limit: %q", n, chunk)
		}
	}
}

func TestLastWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		n    int
		want string
	}{
		{text: "alpha beta", n: 5, want: "beta"},
		{text: "alpha beta", n: 4, want: "beta"},
		{text: "alpha beta", n: 3, want: ""},
		{text: "short", n: 10, want: "short"},
		{text: "anything", n: 0, want: ""},
	}

	for _, tt := range tests {
		if got := lastWords(tt.text, tt.n); got != tt.want {
			t.Fatalf("lastWords(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
