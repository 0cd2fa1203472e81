// Package retriever ranks chunks against a query with a TF-IDF index.
//
// A TfidfRetriever is either empty or indexed. IndexChunks always rebuilds
// from scratch and publishes the new index in one step, so a Retrieve sees
// either the previous index or the new one, never a mix. Callers should let
// IndexChunks finish before issuing the queries meant for that chunk set.
package retriever

import (
	"slices"
	"sync/atomic"

	"ragsum/internal/domain"
	"ragsum/internal/embedding/tfidf"
	"ragsum/internal/vectorstore"
	"ragsum/internal/vectorstore/memory"
)

type snapshot struct {
	model *tfidf.Model
	store vectorstore.Storage
}

// TfidfRetriever owns the vocabulary and chunk vectors of the most recently
// indexed chunk sequence.
type TfidfRetriever struct {
	current atomic.Pointer[snapshot]
}

var _ domain.Retriever = (*TfidfRetriever)(nil)

// New returns an empty retriever.
func New() *TfidfRetriever {
	return &TfidfRetriever{}
}

// IndexChunks replaces any previous index with one built from chunks. An
// empty sequence returns the retriever to the empty state.
func (r *TfidfRetriever) IndexChunks(chunks []string) {
	if len(chunks) == 0 {
		r.current.Store(nil)
		return
	}
	texts := slices.Clone(chunks)
	model := tfidf.Fit(texts)
	vectors := make([]tfidf.Vector, len(texts))
	for i, text := range texts {
		vectors[i] = model.Transform(text)
	}
	r.current.Store(&snapshot{model: model, store: memory.NewStorage(texts, vectors)})
}

// Retrieve returns up to topK chunks ranked by cosine similarity to query.
// An empty retriever yields an empty result.
func (r *TfidfRetriever) Retrieve(query string, topK int) []domain.RetrievedChunk {
	snap := r.current.Load()
	if snap == nil {
		return []domain.RetrievedChunk{}
	}
	return snap.store.Search(snap.model.Transform(query), topK)
}

// Len reports how many chunks are indexed.
func (r *TfidfRetriever) Len() int {
	snap := r.current.Load()
	if snap == nil {
		return 0
	}
	return snap.store.Len()
}

// VocabularySize reports the number of distinct indexed terms.
func (r *TfidfRetriever) VocabularySize() int {
	snap := r.current.Load()
	if snap == nil {
		return 0
	}
	return snap.model.Dimension()
}
