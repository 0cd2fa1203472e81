package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsum/internal/embedding/tfidf"
)

func vec(entries ...tfidf.Entry) tfidf.Vector { return entries }

func TestSearchRanksByScoreThenIndex(t *testing.T) {
	s := NewStorage(
		[]string{"zero", "one", "two", "three"},
		[]tfidf.Vector{
			vec(tfidf.Entry{Term: 1, Weight: 1}),
			vec(tfidf.Entry{Term: 0, Weight: 1}),
			vec(tfidf.Entry{Term: 0, Weight: 3}),
			vec(tfidf.Entry{Term: 0, Weight: 1}, tfidf.Entry{Term: 1, Weight: 1}),
		},
	)
	got := s.Search(vec(tfidf.Entry{Term: 0, Weight: 2}), 10)
	require.Len(t, got, 4)

	// chunks 1 and 2 are parallel to the query and tie at 1.0
	assert.Equal(t, []int{1, 2, 3, 0}, []int{got[0].Index, got[1].Index, got[2].Index, got[3].Index})
	assert.Equal(t, "one", got[0].Text)
	assert.InDelta(t, 1.0, got[0].Score, 1e-12)
	assert.Equal(t, got[0].Score, got[1].Score)
	assert.Equal(t, 0.0, got[3].Score)
}

func TestSearchClampsTopK(t *testing.T) {
	s := NewStorage([]string{"a", "b"}, []tfidf.Vector{nil, nil})
	assert.Len(t, s.Search(nil, 5), 2)
	assert.Len(t, s.Search(nil, 1), 1)
	assert.Empty(t, s.Search(nil, 0))
	assert.Equal(t, 2, s.Len())
}

func TestSearchZeroQueryKeepsOriginalOrder(t *testing.T) {
	s := NewStorage(
		[]string{"a", "b", "c"},
		[]tfidf.Vector{vec(tfidf.Entry{Term: 0, Weight: 1}), nil, vec(tfidf.Entry{Term: 1, Weight: 1})},
	)
	got := s.Search(nil, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].Index, got[1].Index, got[2].Index})
}

func TestNewStoragePanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() { NewStorage([]string{"a"}, nil) })
}
