package vectorstore

import (
	"ragsum/internal/domain"
	"ragsum/internal/embedding/tfidf"
)

// Storage holds chunk vectors and supports similarity search.
type Storage interface {
	Len() int
	Search(query tfidf.Vector, topK int) []domain.RetrievedChunk
}
