package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragsum/internal/chunker"
	"ragsum/internal/cleaner"
	"ragsum/internal/domain"
	"ragsum/internal/pipeline"
)

func (a *app) newSummarizeCmd() *cobra.Command {
	var (
		flags   paramFlags
		asJSON  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [file|-]",
		Short: "Summarize a file or stdin",
		Long: `Run the full pipeline on one document and print the summary, compression
statistics and the retrieved chunks.

Examples:
  ragsum summarize article.txt
  ragsum summarize --sentences 5 --top-k 3 article.txt
  curl -s https://example.com | ragsum summarize --json -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			p, err := newPipeline(a.cfg, nil)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), text, flags.params(cmd, p.Defaults()))
			if err != nil {
				return userError(err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), res, verbose)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print the retrieved chunk texts")
	return cmd
}

func (a *app) newChunksCmd() *cobra.Command {
	var (
		chunkSize    int
		chunkOverlap int
	)
	cmd := &cobra.Command{
		Use:   "chunks [file|-]",
		Short: "Clean and chunk a document without summarizing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			size, overlap := a.cfg.Chunker.ChunkSize, a.cfg.Chunker.ChunkOverlap
			if cmd.Flags().Changed("chunk-size") {
				size = chunkSize
			}
			if cmd.Flags().Changed("overlap") {
				overlap = chunkOverlap
			}
			ch, err := chunker.NewTextChunker(size, overlap)
			if err != nil {
				return userError(err)
			}
			cleaned := cleaner.Clean(text)
			meta := chunker.Metadata(ch.Chunk(cleaned))
			out := cmd.OutOrStdout()
			stats := cleaner.Stats(cleaned)
			fmt.Fprintf(out, "%d characters, %d words, %d sentences -> %d chunks\n\n",
				stats.CharacterCount, stats.WordCount, stats.SentenceCount, len(meta))
			for _, m := range meta {
				fmt.Fprintf(out, "#%d  %d chars, %d words, %d sentences\n    %s\n",
					m.ChunkID, m.CharacterCount, m.WordCount, m.SentenceCount, m.Preview)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "characters per chunk (default from config)")
	cmd.Flags().IntVar(&chunkOverlap, "overlap", 0, "characters shared by consecutive chunks (default from config)")
	return cmd
}

func printResult(w io.Writer, res *pipeline.Result, verbose bool) {
	fmt.Fprintf(w, "Summary (%s):\n%s\n\n", res.Source, res.Summary)
	s := res.Stats
	fmt.Fprintf(w, "Characters: %d -> %d (%s reduction)\n", s.OriginalCharacters, s.SummaryCharacters, s.CompressionRatio)
	fmt.Fprintf(w, "Words:      %d -> %d (%s reduction)\n", s.OriginalWords, s.SummaryWords, s.WordReduction)
	fmt.Fprintf(w, "Chunks:     %d indexed, %d retrieved\n", len(res.Chunks), len(res.Retrieved))
	fmt.Fprintf(w, "Vocabulary: %d terms\n", res.Vocabulary)
	for _, r := range res.Retrieved {
		fmt.Fprintf(w, "  chunk %d  score=%.3f\n", r.Index, r.Score)
		if verbose {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(r.Text, "\n", "\n    "))
		}
	}
}

// userError strips the sentinel prefix from validation failures.
func userError(err error) error {
	if msg := domain.UserMessage(err); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}
