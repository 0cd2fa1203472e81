package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragsum/internal/domain"
	"ragsum/internal/pipeline"
)

// batchRecord is one JSON line of batch output.
type batchRecord struct {
	File    string               `json:"file"`
	Summary string               `json:"summary,omitempty"`
	Source  domain.SummarySource `json:"source,omitempty"`
	Stats   *domain.SummaryStats `json:"stats,omitempty"`
	Chunks  int                  `json:"chunks,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func (a *app) newBatchCmd() *cobra.Command {
	var (
		flags    paramFlags
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "batch <glob>...",
		Short: "Summarize every file matching the patterns, one JSON line per file",
		Long: `Summarize each matching file as an independent document. Patterns support
** for recursive matching. Failures are reported per file and do not stop the run.

Examples:
  ragsum batch 'notes/*.txt'
  ragsum batch --sentences 2 'docs/**/*.md' > summaries.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandGlobs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files match %v", args)
			}
			p, err := newPipeline(a.cfg, nil)
			if err != nil {
				return err
			}
			params := flags.params(cmd, p.Defaults())
			if err := params.Validate(); err != nil {
				return userError(err)
			}

			bar := newProgressBar(cmd.ErrOrStderr(), len(files), progress)
			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, file := range files {
				rec := summarizeFile(cmd, p, file, params)
				if rec.Error != "" {
					failed++
				}
				if err := enc.Encode(rec); err != nil {
					return err
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			if failed == len(files) {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar on stderr")
	return cmd
}

func summarizeFile(cmd *cobra.Command, p *pipeline.Pipeline, file string, params pipeline.Params) batchRecord {
	rec := batchRecord{File: file}
	data, err := os.ReadFile(file)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	res, err := p.Run(cmd.Context(), string(data), params)
	if err != nil {
		rec.Error = userError(err).Error()
		return rec
	}
	rec.Summary = res.Summary
	rec.Source = res.Source
	rec.Stats = &res.Stats
	rec.Chunks = len(res.Chunks)
	return rec
}

// expandGlobs resolves patterns to a sorted list of distinct regular files.
// A pattern without glob syntax names a file directly.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func newProgressBar(w io.Writer, total int, visible bool) *progressbar.ProgressBar {
	if !visible {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Summarizing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
