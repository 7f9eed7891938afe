package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/lexicon/internal/api"
	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
)

// NewEntriesCommand groups the scriptable entry commands.
func NewEntriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List, edit and delete entries without the grid",
	}
	cmd.AddCommand(newEntriesListCommand(rootOpts))
	cmd.AddCommand(newEntriesSetCommand(rootOpts))
	cmd.AddCommand(newEntriesDeleteCommand(rootOpts))
	cmd.AddCommand(newEntriesBulkCommand(rootOpts))
	return cmd
}

type listOptions struct {
	search string
	fuzzy  string
	lang   string
	typ    string
	page   int
	size   int
	sort   string
	desc   bool
}

func newEntriesListCommand(rootOpts *RootOptions) *cobra.Command {
	lo := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntriesList(cmd, rootOpts, lo)
		},
	}
	cmd.Flags().StringVar(&lo.search, "search", "", "substring search")
	cmd.Flags().StringVar(&lo.fuzzy, "fuzzy", "", "fuzzy search")
	cmd.Flags().StringVar(&lo.lang, "lang", "", "language code filter")
	cmd.Flags().StringVar(&lo.typ, "type", "", "entry type filter")
	cmd.Flags().IntVar(&lo.page, "page", 1, "page number")
	cmd.Flags().IntVar(&lo.size, "size", 0, "page size (20, 50 or 100; default from config)")
	cmd.Flags().StringVar(&lo.sort, "sort", "", "sort column")
	cmd.Flags().BoolVar(&lo.desc, "desc", false, "sort descending")
	return cmd
}

func runEntriesList(cmd *cobra.Command, opts *RootOptions, lo *listOptions) error {
	if lo.lang != "" && !lexicon.ValidLanguage(lo.lang) {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("unknown language code %q", lo.lang)}
	}
	if _, err := lexicon.ParseEntryType(lo.typ); err != nil {
		return &ExitError{Code: ExitCommandError, Message: "invalid --type", Err: err}
	}
	if lo.sort != "" {
		if f, ok := grid.Column(lo.sort); !ok || !f.Sortable {
			return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("cannot sort by %q", lo.sort)}
		}
	}

	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	size := lo.size
	if size == 0 {
		size = s.cfg.Project.Grid.PageSize
	}
	q := lexicon.Query{
		Search:       lo.search,
		FuzzySearch:  lo.fuzzy,
		LanguageCode: lo.lang,
		EntryType:    lo.typ,
		SortBy:       lo.sort,
		Page:         lo.page,
		PageSize:     size,
	}
	if lo.desc {
		q.SortDirection = lexicon.SortDesc
	} else if lo.sort != "" {
		q.SortDirection = lexicon.SortAsc
	}
	page, err := s.client.ListEntries(cmd.Context(), q)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "list entries", Err: err}
	}

	out := output{format: opts.Format, w: cmd.OutOrStdout()}
	if done, err := out.data(page); done {
		return err
	}
	rows := make([][]string, 0, len(page.Items))
	for _, e := range page.Items {
		tr := ""
		if t := e.FirstTranslation(); t != nil {
			tr = t.TranslatedName
		}
		updated := ""
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{e.ID, e.PrimaryName, e.LanguageCode, lexicon.TypeLabel(e.TypeCode()), tr, updated})
	}
	out.table([]string{"ID", "Name", "Lang", "Type", "Translation", "Updated"}, rows)
	out.linef("page %d/%d · %d entries", page.Page, page.Pages, page.Total)
	return nil
}

type setResult struct {
	Entry   string `json:"entry"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

func newEntriesSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <entry-id> <field> <value>",
		Short: "Edit one field the same way the grid does",
		Long: `Edit one field of an entry through the grid's edit engine.

Translation fields edit the entry's first translation. alternative_names
takes names separated by ", ". An empty entry_type clears the type.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntriesSet(cmd, rootOpts, args[0], args[1], args[2])
		},
	}
}

func runEntriesSet(cmd *cobra.Command, opts *RootOptions, id, fieldName, value string) error {
	field, ok := grid.Lookup(fieldName)
	if !ok {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("%q is not an editable field (see `lexicon fields`)", fieldName)}
	}

	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	entry, err := s.client.GetEntry(cmd.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("entry %s not found", id), Err: err}
		}
		return &ExitError{Code: ExitFailure, Message: "load entry", Err: err}
	}

	var notices []grid.Notice
	store := grid.NewStore()
	store.Replace(&lexicon.Page{Items: []*lexicon.Entry{entry}, Total: 1, Page: 1, Pages: 1})
	editor := grid.NewEditor(store, s.client,
		grid.WithLogger(s.logger),
		grid.WithNotifier(grid.NotifierFunc(func(n grid.Notice) { notices = append(notices, n) })),
	)

	var sub []string
	if field.Scope == grid.ScopeTranslation {
		tr := entry.FirstTranslation()
		if tr == nil {
			return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("entry %s has no translation", id)}
		}
		sub = append(sub, tr.ID)
	}
	editor.StartEdit(entry.ID, field.Name, field.Value(entry), sub...)
	editor.UpdatePending(value)
	save := editor.Commit()
	if save == nil {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid value %q for %s", value, field.Name)}
	}
	outcome := editor.Settle(save.Persist(cmd.Context()))

	res := setResult{Entry: id, Field: field.Name, Value: field.Value(store.Get(id)), Outcome: outcome.String()}
	if len(notices) > 0 {
		res.Message = notices[len(notices)-1].Message
	}
	out := output{format: opts.Format, w: cmd.OutOrStdout()}
	if done, err := out.data(res); done && err != nil {
		return err
	} else if !done {
		out.linef("%s %s.%s = %q", outcomeMark(outcome), id, field.Name, res.Value)
		if res.Message != "" {
			out.linef("%s", strings.TrimSpace(res.Message))
		}
	}
	if outcome == grid.OutcomeRolledBack {
		failed, _ := editor.LastFailure()
		return &ExitError{Code: ExitFailure, Message: "save failed", Err: failed.Err}
	}
	return nil
}

func outcomeMark(o grid.Outcome) string {
	switch o {
	case grid.OutcomeConfirmed, grid.OutcomeReconciled:
		return "✓"
	case grid.OutcomeRolledBack:
		return "✗"
	}
	return "•"
}
