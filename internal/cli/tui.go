package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragsum/internal/tui"
)

func (a *app) newTUICmd() *cobra.Command {
	var flags paramFlags
	cmd := &cobra.Command{
		Use:   "tui [file|-]",
		Short: "Summarize a document and browse its chunks interactively",
		Long: `Summarize a document and browse its chunks interactively. When the
document is read from stdin, keys are read from the terminal instead.`,
		Args:  cobra.MaximumNArgs(1),
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
			_, err = tea.NewProgram(tui.New(p, res), programOptions(args)...).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// programOptions reads keys from the controlling terminal when stdin carried
// the document.
func programOptions(args []string) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if usesStdin(args) {
		opts = append(opts, tea.WithInputTTY())
	}
	return opts
}
