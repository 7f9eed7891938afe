package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/lexicon/internal/api"
	"github.com/kingrea/lexicon/internal/lexicon"
)

func newEntriesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <entry-id>...",
		Short: "Delete entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return &ExitError{Code: ExitCommandError, Message: "refusing to delete without --yes"}
			}
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := output{format: rootOpts.Format, w: cmd.OutOrStdout()}
			deleted := make([]string, 0, len(args))
			for _, id := range args {
				if err := s.client.DeleteEntry(cmd.Context(), id); err != nil {
					s.logger.Error("delete entry", "entry", id, "err", err)
					code := ExitFailure
					if api.IsNotFound(err) {
						code = ExitCommandError
					}
					if !out.json() {
						out.linef("✗ %s", id)
					}
					return &ExitError{Code: code, Message: fmt.Sprintf("delete %s", id), Err: err}
				}
				s.logger.Info("entry deleted", "entry", id)
				deleted = append(deleted, id)
				if !out.json() {
					out.linef("✓ deleted %s", id)
				}
			}
			_, err = out.data(map[string]any{"deleted": deleted})
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

type bulkOptions struct {
	lang     string
	typ      string
	verified bool
}

func newEntriesBulkCommand(rootOpts *RootOptions) *cobra.Command {
	bo := &bulkOptions{}
	cmd := &cobra.Command{
		Use:   "bulk <entry-id>...",
		Short: "Set language, type or verification on several entries",
		Long: `Apply the same language, type or verification change to several entries
in one request. --type "" clears the type.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := bo.updates(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.client.BulkUpdate(cmd.Context(), args, updates)
			if err != nil {
				code := ExitFailure
				if api.IsNotFound(err) {
					code = ExitCommandError
				}
				return &ExitError{Code: code, Message: "bulk update", Err: err}
			}
			s.logger.Info("bulk update", "entries", len(entries), "fields", len(updates))

			out := output{format: rootOpts.Format, w: cmd.OutOrStdout()}
			if done, err := out.data(entries); done {
				return err
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				verified := "no"
				if e.IsVerified {
					verified = "yes"
				}
				rows = append(rows, []string{e.ID, e.PrimaryName, e.LanguageCode, lexicon.TypeLabel(e.TypeCode()), verified})
			}
			out.table([]string{"ID", "Name", "Lang", "Type", "Verified"}, rows)
			out.linef("%d entries updated", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&bo.lang, "lang", "", "language code to set")
	cmd.Flags().StringVar(&bo.typ, "type", "", `entry type to set ("" clears it)`)
	cmd.Flags().BoolVar(&bo.verified, "verified", false, "mark entries verified (--verified=false to unmark)")
	return cmd
}

// updates builds the bulk body from the flags the caller actually set.
func (bo *bulkOptions) updates(cmd *cobra.Command) (map[string]any, error) {
	updates := map[string]any{}
	if cmd.Flags().Changed("lang") {
		if !lexicon.ValidLanguage(bo.lang) {
			return nil, &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("unknown language code %q", bo.lang)}
		}
		updates["language_code"] = bo.lang
	}
	if cmd.Flags().Changed("type") {
		typ, err := lexicon.ParseEntryType(bo.typ)
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, Message: "invalid --type", Err: err}
		}
		if typ == nil {
			updates["entry_type"] = nil
		} else {
			updates["entry_type"] = string(*typ)
		}
	}
	if cmd.Flags().Changed("verified") {
		updates["is_verified"] = bo.verified
	}
	if len(updates) == 0 {
		return nil, &ExitError{Code: ExitCommandError, Message: "nothing to update: pass --lang, --type or --verified"}
	}
	return updates, nil
}

type statsResult struct {
	API      string            `json:"api"`
	Health   map[string]any    `json:"health"`
	Metadata *lexicon.Metadata `json:"metadata"`
}

// NewStatsCommand checks the API and prints the dashboard summary.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Check the API and show entry totals and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			health, err := s.client.Health(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("API at %s is unreachable", s.client.BaseURL()), Err: err}
			}
			md, err := s.client.Metadata(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: "load metadata", Err: err}
			}

			res := statsResult{API: s.client.BaseURL(), Health: health, Metadata: md}
			out := output{format: rootOpts.Format, w: cmd.OutOrStdout()}
			if done, err := out.data(res); done {
				return err
			}
			status, _ := health["status"].(string)
			out.linef("api     %s (%s)", res.API, strings.TrimSpace(status))
			out.linef("entries %d", md.TotalEntries)
			if len(md.NewestUpdatedEntries) > 0 {
				out.linef("")
				out.linef("Recently updated")
				out.table([]string{"ID", "Name", "Lang", "Updated"}, recentRows(md.NewestUpdatedEntries))
			}
			if len(md.NewestTranslated) > 0 {
				out.linef("")
				out.linef("Recently translated")
				out.table([]string{"ID", "Name", "Lang", "Updated"}, recentRows(md.NewestTranslated))
			}
			return nil
		},
	}
}

func recentRows(entries []*lexicon.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		updated := ""
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{e.ID, e.PrimaryName, e.LanguageCode, updated})
	}
	return rows
}
