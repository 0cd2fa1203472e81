// Package pipeline runs one summarization pass: clean, chunk, index,
// retrieve and summarize.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ragsum/internal/chunker"
	"ragsum/internal/cleaner"
	"ragsum/internal/domain"
	"ragsum/internal/logger"
	"ragsum/internal/metrics"
	"ragsum/internal/retriever"
	"ragsum/internal/summarizer"
	"ragsum/internal/tokenize"
)

// Default limits on raw input length, in characters.
const (
	DefaultMinTextLength = 10
	DefaultMaxTextLength = 50000
)

const tooShortMessage = "please provide at least a few sentences of text"

// Params are the per-run tunables. Run uses them as given; callers that only
// override some fields start from Pipeline.Defaults.
type Params struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
	TopK         int `json:"top_k"`
	MaxSentences int `json:"max_sentences"`
}

// DefaultParams mirror the built-in configuration.
func DefaultParams() Params {
	return Params{ChunkSize: 1000, ChunkOverlap: 100, TopK: 5, MaxSentences: summarizer.DefaultMaxSentences}
}

func (p Params) withDefaults(def Params) Params {
	if p.ChunkSize == 0 {
		p.ChunkSize = def.ChunkSize
	}
	if p.TopK == 0 {
		p.TopK = def.TopK
	}
	if p.MaxSentences == 0 {
		p.MaxSentences = def.MaxSentences
	}
	return p
}

// Validate rejects tunables the chunker or retriever cannot honour.
func (p Params) Validate() error {
	if err := chunker.Validate(p.ChunkSize, p.ChunkOverlap); err != nil {
		return err
	}
	if p.TopK <= 0 {
		return domain.ConfigError("top k must be positive, got %d", p.TopK)
	}
	if p.MaxSentences <= 0 {
		return domain.ConfigError("summary sentences must be positive, got %d", p.MaxSentences)
	}
	return nil
}

// Options configure a Pipeline. Zero fields of Defaults take DefaultParams,
// except ChunkOverlap when any field is set.
type Options struct {
	Defaults      Params
	MinTextLength int
	MaxTextLength int
	Metrics       *metrics.Metrics
}

// Result is everything a presentation layer shows for one run.
type Result struct {
	Cleaned    string                  `json:"cleaned"`
	Chunks     []domain.ChunkMetadata  `json:"chunks"`
	Retrieved  []domain.RetrievedChunk `json:"retrieved"`
	Vocabulary int                     `json:"vocabulary_size"`
	Context    string                  `json:"context"`
	Summary    string                  `json:"summary"`
	Source     domain.SummarySource    `json:"source"`
	Stats      domain.SummaryStats     `json:"stats"`
	InputStats domain.TextStats        `json:"input_stats"`
}

// Pipeline owns a retriever whose index is rebuilt on every Run. Runs are
// serialized; Query reads the index of the most recent run.
type Pipeline struct {
	mu         sync.Mutex
	retriever  *retriever.TfidfRetriever
	summarizer domain.Summarizer
	defaults   Params
	minLen     int
	maxLen     int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a pipeline around summ.
func New(summ domain.Summarizer, opts Options) *Pipeline {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	defaults := opts.Defaults
	if defaults == (Params{}) {
		defaults = DefaultParams()
	}
	defaults = defaults.withDefaults(DefaultParams())
	return &Pipeline{
		retriever:  retriever.New(),
		summarizer: summ,
		defaults:   defaults,
		minLen:     opts.MinTextLength,
		maxLen:     opts.MaxTextLength,
		metrics:    opts.Metrics,
		logger:     logger.WithComponent("pipeline"),
	}
}

// Defaults returns the configured per-run parameters.
func (p *Pipeline) Defaults() Params {
	return p.defaults
}

// ValidateInput checks raw text against the configured length limits.
func (p *Pipeline) ValidateInput(text string) error {
	n := tokenize.CharCount(strings.TrimSpace(text))
	if n < p.minLen {
		return domain.InputError(tooShortMessage)
	}
	if n > p.maxLen {
		return domain.InputError("text is too long: %d characters (maximum %d)", n, p.maxLen)
	}
	return nil
}

// Run summarizes text. Validation failures wrap domain.ErrInvalidInput or
// domain.ErrInvalidConfig; generation failures never surface as errors.
func (p *Pipeline) Run(ctx context.Context, text string, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		p.metrics.ObserveRun(metrics.StatusRejected)
		return nil, err
	}
	if err := p.ValidateInput(text); err != nil {
		p.metrics.ObserveRun(metrics.StatusRejected)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		p.metrics.ObserveRun(metrics.StatusError)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	cleaned := cleaner.Clean(text)
	p.metrics.ObserveStage(metrics.StageClean, start)
	if cleaned == "" {
		p.metrics.ObserveRun(metrics.StatusRejected)
		return nil, domain.InputError(tooShortMessage)
	}

	start = time.Now()
	ch, err := chunker.NewTextChunker(params.ChunkSize, params.ChunkOverlap)
	if err != nil {
		p.metrics.ObserveRun(metrics.StatusRejected)
		return nil, err
	}
	chunks := ch.Chunk(cleaned)
	p.metrics.ObserveStage(metrics.StageChunk, start)
	p.metrics.ObserveChunks(len(chunks))

	start = time.Now()
	p.retriever.IndexChunks(chunks)
	p.metrics.ObserveStage(metrics.StageIndex, start)

	start = time.Now()
	retrieved := p.retriever.Retrieve(cleaned, params.TopK)
	p.metrics.ObserveStage(metrics.StageRetrieve, start)

	texts := make([]string, len(retrieved))
	for i, r := range retrieved {
		texts[i] = r.Text
	}
	contextText := strings.Join(texts, "\n\n")

	start = time.Now()
	summary := p.summarizer.Summarize(ctx, contextText, params.MaxSentences)
	p.metrics.ObserveStage(metrics.StageSummarize, start)
	p.metrics.ObserveSummary(string(summary.Source))
	p.metrics.ObserveRun(metrics.StatusOK)

	p.logger.Info("summarization complete",
		"characters", tokenize.CharCount(cleaned),
		"chunks", len(chunks),
		"retrieved", len(retrieved),
		"source", summary.Source,
	)

	return &Result{
		Cleaned:    cleaned,
		Chunks:     chunker.Metadata(chunks),
		Retrieved:  retrieved,
		Vocabulary: p.retriever.VocabularySize(),
		Context:    contextText,
		Summary:    summary.Text,
		Source:     summary.Source,
		Stats:      summarizer.Stats(cleaned, summary.Text),
		InputStats: cleaner.Stats(cleaned),
	}, nil
}

// Query ranks the chunks of the most recent run against query. Before the
// first run it returns an empty slice.
func (p *Pipeline) Query(query string, topK int) []domain.RetrievedChunk {
	if topK <= 0 {
		topK = p.defaults.TopK
	}
	return p.retriever.Retrieve(query, topK)
}

// IndexedChunks reports how many chunks the current index holds.
func (p *Pipeline) IndexedChunks() int {
	return p.retriever.Len()
}
