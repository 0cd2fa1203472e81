package memory

import (
	"sort"

	"ragsum/internal/domain"
	"ragsum/internal/embedding/tfidf"
)

// Storage is an immutable in-memory vector store using brute-force cosine
// similarity. The i-th text and vector belong to chunk i.
type Storage struct {
	texts   []string
	vectors []tfidf.Vector
	norms   []float64
}

// NewStorage panics if texts and vectors differ in length.
func NewStorage(texts []string, vectors []tfidf.Vector) *Storage {
	if len(texts) != len(vectors) {
		panic("memory: texts and vectors length mismatch")
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = v.Norm()
	}
	return &Storage{texts: texts, vectors: vectors, norms: norms}
}

func (s *Storage) Len() int { return len(s.texts) }

// Search ranks every chunk against query by descending cosine similarity,
// lower chunk index first on equal scores, and returns the first topK.
func (s *Storage) Search(query tfidf.Vector, topK int) []domain.RetrievedChunk {
	if topK > len(s.texts) {
		topK = len(s.texts)
	}
	if topK <= 0 {
		return []domain.RetrievedChunk{}
	}
	qnorm := query.Norm()
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = tfidf.CosineWithNorms(query, qnorm, s.vectors[i], s.norms[i])
	}
	idxs := argsortDesc(scores)
	results := make([]domain.RetrievedChunk, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.RetrievedChunk{Text: s.texts[j], Score: scores[j], Index: j})
	}
	return results
}

// argsortDesc orders indexes by (score descending, index ascending).
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.Slice(idxs, func(a, b int) bool {
		va, vb := vals[idxs[a]], vals[idxs[b]]
		if va != vb {
			return va > vb
		}
		return idxs[a] < idxs[b]
	})
	return idxs
}
