package summarizer

import (
	"sort"
	"strings"

	"ragsum/internal/tokenize"
)

// DefaultMaxSentences is used when a caller passes a non-positive count.
const DefaultMaxSentences = 3

// FrequencySummarizer ranks sentences by the summed frequency of their words
// across the whole text, ignoring stopwords.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based extractive summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: defaultStopwords()}
}

// Summarize returns at most maxSentences sentences of text in reading order.
// Text with no more than maxSentences sentences is returned trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := tokenize.Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.TrimSpace(text)
	}

	freq := make(map[string]int)
	for _, tok := range tokenize.Words(text) {
		freq[tok]++
	}
	for w := range s.stopwords {
		delete(freq, w)
	}

	type pair struct {
		idx   int
		score int
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		score := 0
		for _, tok := range tokenize.Words(sent) {
			score += freq[tok]
		}
		scores[i] = pair{i, score}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].idx < scores[j].idx
	})

	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, idx := range selected {
		sent := sentences[idx]
		if _, dup := seen[sent]; dup {
			continue
		}
		seen[sent] = struct{}{}
		out = append(out, sent)
	}
	return strings.Join(out, " ")
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "is", "was", "are", "be", "been", "being",
		"have", "has", "had", "do", "does", "did", "will", "would", "could",
		"should", "may", "might", "must", "can", "this", "that", "these", "those",
		"i", "you", "he", "she", "it", "we", "they",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
