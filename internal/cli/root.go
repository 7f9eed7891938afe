// Package cli wires the lexicon commands: the interactive grid and a few
// scriptable commands that drive the same edit engine without a terminal UI.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/lexicon/internal/api"
	"github.com/kingrea/lexicon/internal/config"
	"github.com/kingrea/lexicon/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Dir     string
	API     string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. With no subcommand it opens the
// grid.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Browse and edit lexicon entries",
		Long: `Browse and edit lexicon entries and their translations.

Edits apply to the grid immediately and are saved in the background; a
failed save is reverted and can be retried with r.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "directory holding .lexicon/ (default: current directory)")
	cmd.PersistentFlags().StringVar(&opts.API, "api", "", "API base URL (overrides config and LEXICON_API_URL)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug lines to .lexicon/logs/lexicon.log")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewBrowseCommand(opts))
	cmd.AddCommand(NewEntriesCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// session is what every networked command needs: config, a log file and a
// client pointed at the configured API.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	client *api.Client
}

func openSession(opts *RootOptions) (*session, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, Message: "resolve working directory", Err: err}
		}
		dir = wd
	}
	if err := config.InitDir(dir); err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "init " + config.Dir, Err: err}
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "load config", Err: err}
	}
	if base := strings.TrimRight(strings.TrimSpace(opts.API), "/"); base != "" {
		cfg.Project.API.BaseURL = base
	}
	logger, err := logging.New(cfg.LogPath(), opts.Verbose)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "open log", Err: err}
	}
	client := api.New(cfg.Project.API.BaseURL,
		api.WithToken(cfg.Project.API.Token),
		api.WithTimeout(cfg.Project.API.Timeout),
		api.WithLogger(logger),
	)
	return &session{cfg: cfg, logger: logger, client: client}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}
