package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/lexicon/internal/tui"
)

// NewBrowseCommand opens the interactive grid.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the editable entry grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(rootOpts)
		},
	}
}

func runBrowse(opts *RootOptions) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()
	s.logger.Info("lexicon started", "api", s.cfg.Project.API.BaseURL)

	app, err := tui.NewApp(s.cfg, s.client, tui.WithLogger(s.logger))
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "start grid", Err: err}
	}
	if err := tui.Run(app); err != nil {
		s.logger.Error("grid exited", "err", err)
		return &ExitError{Code: ExitFailure, Message: "grid exited", Err: err}
	}
	return nil
}
