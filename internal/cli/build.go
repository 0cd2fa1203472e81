package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ragsum/internal/config"
	"ragsum/internal/domain"
	"ragsum/internal/generation/huggingface"
	"ragsum/internal/generation/openai"
	"ragsum/internal/metrics"
	"ragsum/internal/pipeline"
	"ragsum/internal/summarizer"
)

// newGenerator returns the configured generation service, or nil when none is
// configured or its credentials are missing.
func newGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	timeout := time.Duration(cfg.Generator.TimeoutSecs) * time.Second
	var (
		gen domain.Generator
		err error
	)
	switch cfg.Generator.Type {
	case config.GeneratorNone:
		return nil, nil
	case config.GeneratorHuggingFace:
		gen, err = huggingface.NewClient(huggingface.Config{
			BaseURL:    cfg.Generator.HuggingFace.BaseURL,
			APIKeyEnv:  cfg.Generator.HuggingFace.APIKeyEnv,
			Model:      cfg.Generator.HuggingFace.Model,
			Timeout:    timeout,
			MaxRetries: cfg.Generator.MaxRetries,
		})
	case config.GeneratorOpenAI:
		gen, err = openai.NewClient(openai.Config{
			BaseURL:    cfg.Generator.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Generator.OpenAI.APIKeyEnv,
			Model:      cfg.Generator.OpenAI.Model,
			Timeout:    timeout,
			MaxRetries: cfg.Generator.MaxRetries,
		})
	default:
		return nil, domain.ConfigError("unknown generator type %q", cfg.Generator.Type)
	}
	if errors.Is(err, domain.ErrGenerationUnavailable) {
		slog.Debug("generation service not available", "type", cfg.Generator.Type, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func newPipeline(cfg *config.AppConfig, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	summ := summarizer.New(gen, time.Duration(cfg.Generator.TimeoutSecs)*time.Second)
	return pipeline.New(summ, pipeline.Options{
		Defaults: pipeline.Params{
			ChunkSize:    cfg.Chunker.ChunkSize,
			ChunkOverlap: cfg.Chunker.ChunkOverlap,
			TopK:         cfg.Retriever.TopK,
			MaxSentences: cfg.Summarizer.MaxSentences,
		},
		MinTextLength: cfg.Summarizer.MinTextLength,
		MaxTextLength: cfg.Summarizer.MaxTextLength,
		Metrics:       m,
	}), nil
}

// paramFlags are the per-run tunables shared by several commands.
type paramFlags struct {
	chunkSize    int
	chunkOverlap int
	topK         int
	sentences    int
}

func (f *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "characters per chunk (default from config)")
	cmd.Flags().IntVar(&f.chunkOverlap, "overlap", 0, "characters shared by consecutive chunks (default from config)")
	cmd.Flags().IntVar(&f.topK, "top-k", 0, "number of chunks to retrieve (default from config)")
	cmd.Flags().IntVar(&f.sentences, "sentences", 0, "maximum summary sentences (default from config)")
}

// params overlays explicitly set flags on def.
func (f *paramFlags) params(cmd *cobra.Command, def pipeline.Params) pipeline.Params {
	p := def
	if cmd.Flags().Changed("chunk-size") {
		p.ChunkSize = f.chunkSize
	}
	if cmd.Flags().Changed("overlap") {
		p.ChunkOverlap = f.chunkOverlap
	}
	if cmd.Flags().Changed("top-k") {
		p.TopK = f.topK
	}
	if cmd.Flags().Changed("sentences") {
		p.MaxSentences = f.sentences
	}
	return p
}

func usesStdin(args []string) bool {
	return len(args) == 0 || args[0] == "-"
}

// readInput reads the named file, or stdin when the name is "-" or absent.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if usesStdin(args) {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}
