package chunker

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsum/internal/domain"
)

func mustChunker(t *testing.T, size, overlap int) *TextChunker {
	t.Helper()
	c, err := NewTextChunker(size, overlap)
	require.NoError(t, err)
	return c
}

func TestNewTextChunkerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		size, overlap int
	}{
		{0, 0},
		{-5, 0},
		{10, -1},
		{10, 10},
		{10, 11},
	}
	for _, tt := range tests {
		_, err := NewTextChunker(tt.size, tt.overlap)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfig), "size=%d overlap=%d", tt.size, tt.overlap)
	}
}

func TestChunkEmpty(t *testing.T) {
	assert.Empty(t, mustChunker(t, 10, 2).Chunk(""))
}

func TestChunkShortTextReturnedWhole(t *testing.T) {
	c := mustChunker(t, 10, 2)
	assert.Equal(t, []string{"  hi  "}, c.Chunk("  hi  "))
	assert.Equal(t, []string{"0123456789"}, c.Chunk("0123456789"))
}

func TestChunkPrefersBoundaries(t *testing.T) {
	c := mustChunker(t, 10, 2)
	got := c.Chunk("aaaa bbbb cccc dddd")
	assert.Equal(t, []string{"aaaa bbbb", "b cccc", "c dddd"}, got)
}

func TestChunkHardCutWithoutBoundary(t *testing.T) {
	c := mustChunker(t, 5, 1)
	got := c.Chunk("abcdefghijklmnop")
	assert.Equal(t, []string{"abcde", "efghi", "ijklm", "mnop"}, got)
}

func TestChunkEarlyBoundaryStillAdvances(t *testing.T) {
	c := mustChunker(t, 10, 8)
	got := c.Chunk("a bcdefghij")
	assert.Equal(t, []string{"a", "bcdefghij"}, got)
}

func TestChunkCountsCharactersNotBytes(t *testing.T) {
	c := mustChunker(t, 4, 0)
	got := c.Chunk("ééééé")
	assert.Equal(t, []string{"éééé", "é"}, got)
}

func randomText(r *rand.Rand, words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		n := 1 + r.Intn(12)
		for j := 0; j < n; j++ {
			b.WriteByte(byte('a' + r.Intn(26)))
		}
		switch r.Intn(10) {
		case 0:
			b.WriteString(". ")
		case 1:
			b.WriteString("\n")
		case 2:
			// glued to the next word
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestSpansCoverInputWithoutGaps(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	params := []struct{ size, overlap int }{
		{50, 10},
		{100, 0},
		{30, 29},
		{7, 3},
		{1000, 100},
	}
	for _, p := range params {
		c := mustChunker(t, p.size, p.overlap)
		for trial := 0; trial < 20; trial++ {
			runes := []rune(randomText(r, 50+r.Intn(400)))
			spans := c.spans(runes)
			require.NotEmpty(t, spans)
			assert.Equal(t, 0, spans[0].start)
			assert.Equal(t, len(runes), spans[len(spans)-1].end)
			for i, s := range spans {
				assert.LessOrEqual(t, s.end-s.start, p.size)
				assert.Greater(t, s.end, s.start)
				if i == 0 {
					continue
				}
				prev := spans[i-1]
				assert.Greater(t, s.start, prev.start, "cursor must advance")
				assert.LessOrEqual(t, s.start, prev.end, "gap between chunks")
				assert.LessOrEqual(t, prev.end-s.start, p.overlap, "overlap too large")
			}
		}
	}
}

func TestChunkNeverEmptyAndDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	c := mustChunker(t, 40, 8)
	for trial := 0; trial < 20; trial++ {
		text := randomText(r, 200)
		first := c.Chunk(text)
		for _, chunk := range first {
			assert.NotEmpty(t, strings.TrimSpace(chunk))
		}
		assert.Equal(t, first, c.Chunk(text))
	}
}

func TestMetadata(t *testing.T) {
	long := strings.Repeat("x", 150)
	meta := Metadata([]string{"One. Two three.", long})
	require.Len(t, meta, 2)

	assert.Equal(t, domain.ChunkMetadata{
		ChunkID:        0,
		CharacterCount: 15,
		WordCount:      3,
		SentenceCount:  2,
		Preview:        "One. Two three.",
	}, meta[0])

	assert.Equal(t, 1, meta[1].ChunkID)
	assert.Equal(t, 150, meta[1].CharacterCount)
	assert.Equal(t, strings.Repeat("x", 100)+"...", meta[1].Preview)
}
