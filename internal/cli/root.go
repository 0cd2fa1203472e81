// Package cli implements the ragsum command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragsum/internal/config"
	"ragsum/internal/logger"
)

type app struct {
	cfgFile string
	cfg     *config.AppConfig
}

// NewRootCmd builds the ragsum command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ragsum",
		Short: "Summarize long text with lexical retrieval and a hosted model fallback",
		Long: `ragsum cleans a document, splits it into overlapping chunks, ranks the
chunks with TF-IDF, and summarizes the best ones. A hosted model is used when
one is configured; otherwise a local extractive summary is produced.

Example usage:
  ragsum summarize report.txt          # Summarize a file
  cat notes.txt | ragsum summarize -   # Summarize stdin
  ragsum batch 'docs/**/*.txt'         # Summarize many files as JSON lines
  ragsum serve                         # Run the HTTP API`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if a.cfgFile != "" {
				a.cfg, err = config.Load(a.cfgFile)
			} else {
				a.cfg, _, err = config.LoadDefault()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			logger.Setup(cmd.ErrOrStderr(), a.cfg.Log.Level, a.cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml, then ~/.config/ragsum/config.yaml)")

	root.AddCommand(
		a.newSummarizeCmd(),
		a.newChunksCmd(),
		a.newTUICmd(),
		a.newBatchCmd(),
		a.newServeCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
