package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsum/internal/domain"
	"ragsum/internal/generation"
	"ragsum/internal/metrics"
	"ragsum/internal/summarizer"
	"ragsum/internal/tokenize"
)

const (
	paragraphOne = "Modern teams collect long reports, meeting notes and research papers that nobody has enough time to read in full every single week. " +
		"A summarization tool helps readers decide quickly which documents deserve their attention and which ones can safely wait until later. " +
		"The tool described here runs entirely on a laptop and does not require any specialised hardware or paid accounts to produce useful output. " +
		"It accepts plain text or light markup, removes the noise, and keeps the prose that carries the actual meaning of the document."
	paragraphTwo = "Retrieval is the heart of the approach, because retrieval decides which passages reach the summarizer in the first place. " +
		"Each chunk is indexed for retrieval with term weights, and retrieval then ranks chunks by cosine similarity against the query. " +
		"Good retrieval keeps the context short and focused, while poor retrieval floods the summarizer with passages that add nothing. " +
		"Tuning retrieval parameters such as chunk size, overlap and the number of retrieved chunks changes the quality of the final summary."
	paragraphThree = "When no hosted model is configured the system falls back to a frequency based extractive method that always produces an answer. " +
		"That fallback picks whole sentences from the context, preserves their original order, and never invents facts that were not present. " +
		"Users can therefore trust the output as a faithful digest even when the network is unavailable or the remote service is overloaded."
)

func document() string {
	return paragraphOne + "\n\n" + paragraphTwo + "\n\n" + paragraphThree
}

func newPipeline(t *testing.T, gen domain.Generator, m *metrics.Metrics) *Pipeline {
	t.Helper()
	return New(summarizer.New(gen, time.Second), Options{Metrics: m})
}

func TestRun_EndToEndExtractive(t *testing.T) {
	p := newPipeline(t, generation.Unavailable{}, nil)
	params := Params{ChunkSize: 1000, ChunkOverlap: 100, TopK: 2, MaxSentences: 2}

	res, err := p.Run(context.Background(), document(), params)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 2)
	require.Len(t, res.Retrieved, 2)
	assert.Equal(t, 0, res.Retrieved[0].Index, "paragraph two chunk should rank first")
	assert.GreaterOrEqual(t, res.Retrieved[0].Score, res.Retrieved[1].Score)
	assert.Equal(t, res.Retrieved[0].Text+"\n\n"+res.Retrieved[1].Text, res.Context)

	assert.Equal(t, domain.SourceExtractive, res.Source)
	sentences := tokenize.Sentences(res.Summary)
	require.Len(t, sentences, 2)
	assert.NotEqual(t, sentences[0], sentences[1])
	last := -1
	for _, s := range sentences {
		pos := strings.Index(res.Cleaned, s)
		require.GreaterOrEqual(t, pos, 0, "sentence %q not drawn from input", s)
		assert.Greater(t, pos, last)
		last = pos
	}
	assert.Equal(t,
		"Good retrieval keeps the context short and focused, while poor retrieval floods the summarizer with passages that add nothing. "+
			"Tuning retrieval parameters such as chunk size, overlap and the number of retrieved chunks changes the quality of the final summary.",
		res.Summary)

	assert.Equal(t, tokenize.CharCount(res.Cleaned), res.Stats.OriginalCharacters)
	assert.Equal(t, tokenize.CharCount(res.Summary), res.Stats.SummaryCharacters)
	assert.Equal(t, 11, res.InputStats.SentenceCount)
	assert.NotContains(t, res.Cleaned, "\n")
}

func TestRun_ShortDocumentIsSingleChunk(t *testing.T) {
	p := newPipeline(t, nil, nil)
	res, err := p.Run(context.Background(), "<p>Hello there. This is a tiny note.</p>", p.Defaults())
	require.NoError(t, err)

	assert.Equal(t, "Hello there. This is a tiny note.", res.Cleaned)
	require.Len(t, res.Chunks, 1)
	require.Len(t, res.Retrieved, 1)
	assert.Equal(t, res.Cleaned, res.Summary)
	assert.Equal(t, domain.SourceExtractive, res.Source)
}

func TestRun_UsesGenerator(t *testing.T) {
	gen := &fakeGenerator{out: "A short abstract."}
	p := newPipeline(t, gen, nil)

	res, err := p.Run(context.Background(), document(), p.Defaults())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAbstractive, res.Source)
	assert.Equal(t, "A short abstract.", res.Summary)
	assert.Equal(t, res.Context, gen.got, "generator receives the retrieved context")
}

func TestRun_RejectsInput(t *testing.T) {
	p := New(summarizer.New(nil, time.Second), Options{MaxTextLength: 200})
	tests := []struct {
		name string
		text string
	}{
		{"blank", "   \n "},
		{"too short", "  Hi.  "},
		{"markup only", "<div><script>var x = 1; var y = 2;</script></div>"},
		{"too long", strings.Repeat("word ", 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), tt.text, p.Defaults())
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
			assert.NotEmpty(t, domain.UserMessage(err))
		})
	}
}

func TestRun_RejectsParams(t *testing.T) {
	p := newPipeline(t, nil, nil)
	with := func(mutate func(*Params)) Params {
		params := p.Defaults()
		mutate(&params)
		return params
	}
	tests := []struct {
		name   string
		params Params
	}{
		{"overlap too large", with(func(x *Params) { x.ChunkSize, x.ChunkOverlap = 100, 100 })},
		{"negative overlap", with(func(x *Params) { x.ChunkOverlap = -1 })},
		{"zero chunk size", with(func(x *Params) { x.ChunkSize = 0 })},
		{"zero top k", with(func(x *Params) { x.TopK = 0 })},
		{"negative top k", with(func(x *Params) { x.TopK = -1 })},
		{"zero sentences", with(func(x *Params) { x.MaxSentences = 0 })},
		{"negative sentences", with(func(x *Params) { x.MaxSentences = -2 })},
		{"all zero", Params{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), document(), tt.params)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestNew_FillsZeroDefaults(t *testing.T) {
	p := New(summarizer.New(nil, time.Second), Options{Defaults: Params{ChunkSize: 400, ChunkOverlap: 50}})
	assert.Equal(t, Params{ChunkSize: 400, ChunkOverlap: 50, TopK: 5, MaxSentences: summarizer.DefaultMaxSentences}, p.Defaults())

	res, err := p.Run(context.Background(), document(), p.Defaults())
	require.NoError(t, err)
	assert.Greater(t, len(res.Chunks), 3)
	assert.NotEmpty(t, res.Retrieved)
	assert.LessOrEqual(t, len(res.Retrieved), 5)
	assert.Positive(t, res.Vocabulary)
}

func TestRun_CanceledContext(t *testing.T) {
	p := newPipeline(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, document(), p.Defaults())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuery(t *testing.T) {
	p := newPipeline(t, nil, nil)
	assert.Empty(t, p.Query("anything", 3), "no index before the first run")

	_, err := p.Run(context.Background(), document(), Params{ChunkSize: 300, ChunkOverlap: 30, TopK: 2, MaxSentences: 2})
	require.NoError(t, err)
	require.Greater(t, p.IndexedChunks(), 3)

	hits := p.Query("fallback picks whole sentences", 2)
	require.Len(t, hits, 2)
	assert.Contains(t, hits[0].Text, "That fallback picks whole sentences")
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Len(t, p.Query("fallback", 0), p.Defaults().TopK, "non-positive top k uses the default")
}

func TestRun_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := newPipeline(t, nil, m)

	_, err := p.Run(context.Background(), document(), p.Defaults())
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "", p.Defaults())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.StatusRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummariesTotal.WithLabelValues(string(domain.SourceExtractive))))
}

type fakeGenerator struct {
	out string
	got string
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, text string, _ int) (string, error) {
	g.got = text
	return g.out, nil
}
