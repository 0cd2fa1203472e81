package domain

import "context"

// ChunkMetadata describes one chunk for display.
type ChunkMetadata struct {
	ChunkID        int    `json:"chunk_id"`
	CharacterCount int    `json:"character_count"`
	WordCount      int    `json:"word_count"`
	SentenceCount  int    `json:"sentence_count"`
	Preview        string `json:"preview"`
}

// RetrievedChunk is a ranked chunk with its similarity to the query.
// Index is the chunk's original ordinal, not its rank.
type RetrievedChunk struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Index int     `json:"index"`
}

// TextStats are aggregate counts over a block of text.
type TextStats struct {
	CharacterCount      int     `json:"character_count"`
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
}

// SummaryStats compares an original text with its summary.
type SummaryStats struct {
	OriginalCharacters int    `json:"original_characters"`
	SummaryCharacters  int    `json:"summary_characters"`
	CompressionRatio   string `json:"compression_ratio"`
	OriginalWords      int    `json:"original_words"`
	SummaryWords       int    `json:"summary_words"`
	WordReduction      string `json:"word_reduction"`
}

// SummarySource records which path produced a summary.
type SummarySource string

const (
	SourceAbstractive SummarySource = "abstractive"
	SourceExtractive  SummarySource = "extractive"
	SourceNone        SummarySource = "none"
)

// Summary is a generated summary together with the path that produced it.
type Summary struct {
	Text   string        `json:"text"`
	Source SummarySource `json:"source"`
}

// Generator is the hosted abstractive summarization capability.
type Generator interface {
	Name() string
	Generate(ctx context.Context, text string, maxSentences int) (string, error)
}

// Retriever indexes chunks and ranks them against a query.
type Retriever interface {
	IndexChunks(chunks []string)
	Retrieve(query string, topK int) []RetrievedChunk
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxSentences int) Summary
}
