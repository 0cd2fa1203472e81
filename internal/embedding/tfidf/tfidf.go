// Package tfidf implements a term-frequency / inverse-document-frequency
// vectorizer over sparse vectors.
//
// Weights are raw term counts multiplied by the smoothed IDF
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// where N is the number of fitted documents and df(t) the number of those
// documents that contain t at least once.
package tfidf

import (
	"math"
	"sort"

	"ragsum/internal/tokenize"
)

// Entry is one non-zero component of a Vector.
type Entry struct {
	Term   int
	Weight float64
}

// Vector is a sparse vector with entries sorted by Term. The fixed order keeps
// floating point sums reproducible, so equal texts score exactly equal.
type Vector []Entry

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Term < b[j].Term:
			i++
		case a[i].Term > b[j].Term:
			j++
		default:
			sum += a[i].Weight * b[j].Weight
			i++
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// norm.
func Cosine(a, b Vector) float64 {
	return CosineWithNorms(a, a.Norm(), b, b.Norm())
}

// CosineWithNorms is Cosine with precomputed norms.
func CosineWithNorms(a Vector, normA float64, b Vector, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return Dot(a, b) / (normA * normB)
}

// Model is a fitted vocabulary with its IDF weights. It is immutable once
// built by Fit.
type Model struct {
	vocabulary map[string]int
	idf        []float64
}

// Fit builds the vocabulary and IDF weights from corpus. An empty corpus
// yields a model of dimension zero.
func Fit(corpus []string) *Model {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize.Terms(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return m
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.idf) }

// termIDF returns the learned weight of term.
func (m *Model) termIDF(term string) (float64, bool) {
	idx, ok := m.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.idf[idx], true
}

// Transform projects text into the fitted space. Terms outside the vocabulary
// are ignored; the model is never refitted.
func (m *Model) Transform(text string) Vector {
	tf := make(map[int]int)
	for _, tok := range tokenize.Terms(text) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	vec := make(Vector, 0, len(tf))
	for idx, count := range tf {
		vec = append(vec, Entry{Term: idx, Weight: float64(count) * m.idf[idx]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Term < vec[j].Term })
	return vec
}
