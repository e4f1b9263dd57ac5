package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes, not
// counting the overlap carried over from the previous chunk. Paragraphs that
// are too long are split into sentences, and sentences into words.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			pieces = append(pieces, para)
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			pieces = append(pieces, splitLong(sentence, maxChunkSize)...)
		}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	flush := func() {
		if size == 0 {
			return
		}
		chunks = append(chunks, current.String())
		tail := lastWords(current.String(), overlap)
		current.Reset()
		size = 0
		if tail != "" {
			current.WriteString(tail)
			current.WriteString(" ")
		}
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if size > 0 && size+n+1 > maxChunkSize {
			flush()
		}
		if size > 0 {
			current.WriteString(" ")
			size++
		}
		current.WriteString(piece)
		size += n
	}

	if size > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var (
		result []string
		start  int
	)

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			result = append(result, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}

	return result
}

// splitLong breaks s on word boundaries into parts of at most limit runes. A
// single word longer than limit is cut.
func splitLong(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var (
		parts []string
		line  []rune
	)
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > limit {
			if len(line) > 0 {
				parts = append(parts, string(line))
				line = nil
			}
			parts = append(parts, string(w[:limit]))
			w = w[limit:]
		}
		if len(line) > 0 && len(line)+1+len(w) > limit {
			parts = append(parts, string(line))
			line = nil
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	if len(line) > 0 {
		parts = append(parts, string(line))
	}

	return parts
}

// lastWords returns at most n trailing runes of text, starting on a word.
func lastWords(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	tail := runes[len(runes)-n:]
	if !unicode.IsSpace(runes[len(runes)-n-1]) {
		for i, r := range tail {
			if unicode.IsSpace(r) {
				tail = tail[i+1:]
				break
			}
			if i == len(tail)-1 {
				tail = nil
			}
		}
	}

	return strings.TrimSpace(string(tail))
}
