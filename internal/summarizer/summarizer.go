// Package summarizer produces short summaries, preferring a hosted model and
// falling back to local extractive selection.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ragsum/internal/domain"
	"ragsum/internal/logger"
)

// NoTextMessage is returned for blank input.
const NoTextMessage = "No text provided for summarization."

// DefaultTimeout bounds a single abstractive call when none is configured.
const DefaultTimeout = 10 * time.Second

// Summarizer tries the configured generator and falls back to the
// FrequencySummarizer on any failure.
type Summarizer struct {
	generator  domain.Generator
	extractive *FrequencySummarizer
	timeout    time.Duration
	logger     *slog.Logger
}

var _ domain.Summarizer = (*Summarizer)(nil)

// New creates a summarizer. A nil generator disables the abstractive path;
// that is reported once here and never again per call.
func New(generator domain.Generator, timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Summarizer{
		generator:  generator,
		extractive: NewFrequencySummarizer(),
		timeout:    timeout,
		logger:     logger.WithComponent("summarizer"),
	}
	if generator == nil {
		s.logger.Warn("no generation service configured, abstractive summarization disabled")
	}
	return s
}

// Summarize returns a summary of text and the path that produced it.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxSentences int) domain.Summary {
	if strings.TrimSpace(text) == "" {
		return domain.Summary{Text: NoTextMessage, Source: domain.SourceNone}
	}
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if s.generator != nil {
		out, err := s.generate(ctx, text, maxSentences)
		if err == nil {
			return domain.Summary{Text: out, Source: domain.SourceAbstractive}
		}
		s.logger.Warn("abstractive summarization failed, using extractive fallback",
			"generator", s.generator.Name(), "error", err)
	}
	return domain.Summary{Text: s.extractive.Summarize(text, maxSentences), Source: domain.SourceExtractive}
}

// GenerateSummary returns only the summary text.
func (s *Summarizer) GenerateSummary(ctx context.Context, text string, maxSentences int) string {
	return s.Summarize(ctx, text, maxSentences).Text
}

// generate bounds the call by the configured timeout even when the generator
// ignores its context. Panics count as failures.
func (s *Summarizer) generate(ctx context.Context, text string, maxSentences int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", domain.ErrGeneration, r)}
			}
		}()
		out, err := s.generator.Generate(ctx, text, maxSentences)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		out := strings.TrimSpace(r.out)
		if out == "" {
			return "", fmt.Errorf("%w: empty summary", domain.ErrGeneration)
		}
		return out, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w (limit: %v)", domain.ErrGeneration, ctx.Err(), s.timeout)
	}
}
