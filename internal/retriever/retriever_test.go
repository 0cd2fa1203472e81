package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveOnEmptyRetriever(t *testing.T) {
	r := New()
	assert.Empty(t, r.Retrieve("anything", 5))
	assert.Zero(t, r.Len())

	r.IndexChunks(nil)
	assert.Empty(t, r.Retrieve("anything", 5))
}

func TestIndexingEmptySequenceResetsState(t *testing.T) {
	r := New()
	r.IndexChunks([]string{"alpha beta", "gamma delta"})
	require.Equal(t, 2, r.Len())

	r.IndexChunks([]string{})
	assert.Zero(t, r.Len())
	assert.Zero(t, r.VocabularySize())
	assert.Empty(t, r.Retrieve("alpha", 3))
}

func TestSelfSimilarChunkRanksFirst(t *testing.T) {
	query := "retrieval augmented generation narrows long inputs"
	r := New()
	r.IndexChunks([]string{
		"the weather today is sunny with light winds",
		query,
		"generation of electricity from wind farms",
	})
	got := r.Retrieve(query, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, query, got[0].Text)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestTopKIsClamped(t *testing.T) {
	r := New()
	r.IndexChunks([]string{"one chunk", "two chunk", "three chunk"})
	assert.Len(t, r.Retrieve("chunk", 100), 3)
	assert.Len(t, r.Retrieve("chunk", 2), 2)
}

func TestTiesBreakByOriginalIndex(t *testing.T) {
	r := New()
	r.IndexChunks([]string{"unrelated words here", "shared topic", "shared topic", "shared topic"})
	got := r.Retrieve("shared topic", 4)
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 2, 3, 0}, []int{got[0].Index, got[1].Index, got[2].Index, got[3].Index})
	assert.Equal(t, got[0].Score, got[1].Score)
	assert.Equal(t, got[1].Score, got[2].Score)
}

func TestUnknownQueryTermsScoreZero(t *testing.T) {
	r := New()
	r.IndexChunks([]string{"first chunk", "second chunk"})
	got := r.Retrieve("zebra xylophone", 2)
	require.Len(t, got, 2)
	for i, c := range got {
		assert.Equal(t, 0.0, c.Score)
		assert.Equal(t, i, c.Index)
	}
}

func TestReindexReplacesVocabulary(t *testing.T) {
	r := New()
	r.IndexChunks([]string{"apples and oranges"})
	r.IndexChunks([]string{"bananas", "cherries"})

	assert.Equal(t, 2, r.Len())
	got := r.Retrieve("apples", 5)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].Score)
	assert.Equal(t, "bananas", got[0].Text)
}

func TestIndexChunksCopiesInput(t *testing.T) {
	chunks := []string{"original text", "other text"}
	r := New()
	r.IndexChunks(chunks)
	chunks[0] = "mutated"
	got := r.Retrieve("original", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "original text", got[0].Text)
}
