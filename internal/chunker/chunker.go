package chunker

import (
	"strings"

	"ragsum/internal/domain"
	"ragsum/internal/tokenize"
)

const previewLength = 100

// TextChunker splits text into fixed-size character chunks with overlap,
// preferring to cut after a period, newline or space.
type TextChunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewTextChunker requires 0 <= chunkOverlap < chunkSize.
func NewTextChunker(chunkSize, chunkOverlap int) (*TextChunker, error) {
	if err := Validate(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	return &TextChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Validate checks chunking parameters.
func Validate(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return domain.ConfigError("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return domain.ConfigError("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return domain.ConfigError("chunk overlap (%d) must be smaller than chunk size (%d)", chunkOverlap, chunkSize)
	}
	return nil
}

// span is a half-open range of rune offsets.
type span struct {
	start, end int
}

// Chunk splits text into ordered chunks. Text that fits in one chunk is
// returned whole and untrimmed.
func (c *TextChunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}
	var chunks []string
	for _, s := range c.spans(runes) {
		if chunk := strings.TrimSpace(string(runes[s.start:s.end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func (c *TextChunker) spans(runes []rune) []span {
	var out []span
	start := 0
	for start < len(runes) {
		end := min(start+c.chunkSize, len(runes))
		if end < len(runes) {
			if b := lastBoundary(runes, start, end); b > start {
				end = b + 1
			}
		}
		out = append(out, span{start, end})
		if end == len(runes) {
			break
		}
		next := end - c.chunkOverlap
		if next <= start {
			// An early boundary can leave less than the overlap to step over.
			next = end
		}
		start = next
	}
	return out
}

// lastBoundary returns the rightmost '.', '\n' or ' ' in runes[start:end],
// or -1.
func lastBoundary(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		switch runes[i] {
		case '.', '\n', ' ':
			return i
		}
	}
	return -1
}

// Metadata describes each chunk in order.
func Metadata(chunks []string) []domain.ChunkMetadata {
	out := make([]domain.ChunkMetadata, 0, len(chunks))
	for i, chunk := range chunks {
		out = append(out, domain.ChunkMetadata{
			ChunkID:        i,
			CharacterCount: tokenize.CharCount(chunk),
			WordCount:      tokenize.WordCount(chunk),
			SentenceCount:  len(tokenize.Sentences(chunk)),
			Preview:        preview(chunk),
		})
	}
	return out
}

func preview(chunk string) string {
	runes := []rune(chunk)
	if len(runes) <= previewLength {
		return chunk
	}
	return string(runes[:previewLength]) + "..."
}
