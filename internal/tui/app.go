// internal/tui/app.go
//
// This is the editable lexicon grid. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: the loaded page, the cursor and the active edit
// 2. Update: a function that updates state based on messages
// 3. View: a function that renders state to a string
//
// Every message is handled on the single Update loop. Saves and page loads
// run as tea.Cmds and report back as messages, so the grid never blocks on
// the network and the edit engine never sees two callers at once.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/lexicon/internal/config"
	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
	"github.com/kingrea/lexicon/internal/logbook"
	"github.com/kingrea/lexicon/internal/logging"
)

// focus represents which control receives key presses
type focus int

const (
	focusGrid     focus = iota // Moving around the table
	focusEdit                  // Typing into a text cell
	focusPicker                // Choosing a code for a choice cell
	focusSearch                // Typing the server search
	focusFilter                // Typing the local page filter
	focusComments              // Reading the comments of one entry
	focusCompose               // Writing a new comment
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogger routes engine, request and UI logging to l.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLogbook replaces the notice logbook opened from the config.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithClock overrides the clock the edit engine uses for duplicate detection.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

type picker struct {
	field   grid.Field
	options []lexicon.Code
	index   int
}

type commentsPane struct {
	entryID string
	title   string
	items   []*lexicon.Comment
	loading bool
	err     string
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	backend Backend
	store   *grid.Store
	editor  *grid.Editor
	logbook *logbook.Logbook
	logger  *logging.Logger
	clock   func() time.Time

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	editInput    textinput.Model
	searchInput  textinput.Model
	filterInput  textinput.Model
	commentInput textinput.Model

	focus    focus
	columns  []grid.Field
	row, col int
	picker   picker
	comments commentsPane
	showHelp bool

	query         lexicon.Query
	loadSeq       uint64
	loading       bool
	searchSeq     uint64
	searchPending bool
	debounce      time.Duration
	filter        string

	statusMsg   string
	statusLevel grid.NoticeLevel

	width  int
	height int
}

// NewApp creates the grid for cfg, loading and saving through backend.
func NewApp(cfg *config.Config, backend Backend, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	columns := make([]grid.Field, 0, len(cfg.Columns()))
	for _, name := range cfg.Columns() {
		field, ok := grid.Column(name)
		if !ok {
			return nil, fmt.Errorf("tui: unknown column %q", name)
		}
		columns = append(columns, field)
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		config:       cfg,
		backend:      backend,
		store:        grid.NewStore(),
		logger:       logging.Discard(),
		clock:        time.Now,
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      spin,
		editInput:    newInput("", 0),
		searchInput:  newInput("search entries…", 0),
		filterInput:  newInput("filter this page…", 0),
		commentInput: newInput("write a comment…", 500),
		columns:      columns,
		debounce:     cfg.Project.Grid.SearchDebounce,
		query: lexicon.Query{
			Page:     1,
			PageSize: cfg.Project.Grid.PageSize,
		}.Normalize(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.logbook == nil {
		if lb, err := logbook.New(cfg.NoticesPath()); err == nil {
			app.logbook = lb
		} else {
			app.logger.Warn("tui: notice logbook unavailable", "err", err)
		}
	}

	var persister grid.Persister
	if backend != nil {
		persister = backend
	}
	app.editor = grid.NewEditor(app.store, persister,
		grid.WithNotifier(grid.NotifierFunc(app.handleNotice)),
		grid.WithLogger(app.logger),
		grid.WithClock(app.clock),
		grid.WithDedupWindow(cfg.Project.Grid.DedupWindow),
	)
	app.logbook.Info("Session opened · %s", cfg.Project.API.BaseURL)
	return app, nil
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	if limit > 0 {
		ti.CharLimit = limit
	}
	return ti
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// handleNotice is the engine's notifier: the status line shows the latest
// notice and the logbook keeps them all.
func (a *App) handleNotice(n grid.Notice) {
	a.statusMsg = n.Message
	a.statusLevel = n.Level
	msg := n.Message
	if n.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, n.Err)
	}
	a.logbook.Append(logbook.Level(n.Level), msg)
}

func (a *App) notify(level grid.NoticeLevel, format string, args ...any) {
	a.handleNotice(grid.Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

// setStatus shows a transient hint without recording it.
func (a *App) setStatus(format string, args ...any) {
	a.statusMsg = fmt.Sprintf(format, args...)
	a.statusLevel = grid.NoticeInfo
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.reload()
}

// reload requests the current query. Responses to earlier requests are
// dropped when they arrive.
func (a *App) reload() tea.Cmd {
	a.loadSeq++
	a.loading = true
	return tea.Batch(fetchPage(a.backend, a.loadSeq, a.query), a.spinner.Tick)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case pageLoadedMsg:
		a.handlePageLoaded(msg)
		return a, nil

	case searchDebounceMsg:
		if msg.seq != a.searchSeq || !a.searchPending {
			return a, nil
		}
		return a, a.runSearch()

	case saveSettledMsg:
		selected := a.selectedID()
		outcome := a.editor.Settle(msg.result)
		a.followEntry(selected)
		if s := msg.result.Save; s != nil {
			a.logger.Debug("tui: save settled", "entry", s.Target.RecordID, "field", s.Target.Field, "outcome", outcome)
		}
		return a, nil

	case commentsLoadedMsg:
		if msg.entryID != a.comments.entryID {
			return a, nil
		}
		a.comments.loading = false
		if msg.err != nil {
			a.comments.err = msg.err.Error()
			a.logger.Error("tui: load comments", "entry", msg.entryID, "err", msg.err)
			return a, nil
		}
		a.comments.err = ""
		a.comments.items = msg.comments
		return a, nil

	case commentPostedMsg:
		if msg.err != nil {
			a.notify(grid.NoticeError, "Could not post comment: %v", msg.err)
			return a, nil
		}
		if msg.entryID == a.comments.entryID && msg.comment != nil {
			a.comments.items = append(a.comments.items, msg.comment)
		}
		a.notify(grid.NoticeInfo, "Comment added")
		return a, nil

	case voteFinishedMsg:
		a.handleVote(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handlePageLoaded(msg pageLoadedMsg) {
	if msg.seq != a.loadSeq {
		a.logger.Debug("tui: dropping stale page", "seq", msg.seq, "current", a.loadSeq)
		return
	}
	a.loading = false
	if msg.err != nil {
		a.logger.Error("tui: load entries", "err", msg.err)
		a.notify(grid.NoticeError, "Could not load entries: %v", msg.err)
		return
	}
	if _, editing := a.editor.Active(); editing {
		a.editor.Blur()
		a.closeEditControls()
		a.notify(grid.NoticeWarn, "Page reloaded; edit discarded")
	}
	a.store.Replace(msg.page)
	a.clampCursor()
	a.logger.Debug("tui: page loaded", "page", a.store.Page(), "rows", a.store.Len(), "total", a.store.Total())
}

func (a *App) handleVote(msg voteFinishedMsg) {
	if msg.err != nil {
		a.notify(grid.NoticeError, "Could not record vote: %v", msg.err)
		return
	}
	tr := msg.translation
	if tr == nil {
		return
	}
	a.store.Update(msg.entryID, func(cur *lexicon.Entry) *lexicon.Entry {
		for i, existing := range cur.Translations {
			if existing.ID != tr.ID {
				continue
			}
			cp := cur.Clone()
			cp.Translations = append([]*lexicon.Translation(nil), cur.Translations...)
			patched := *existing
			patched.Upvotes = tr.Upvotes
			patched.Downvotes = tr.Downvotes
			cp.Translations[i] = &patched
			return cp
		}
		return nil
	})
	if msg.vote == "" {
		a.notify(grid.NoticeInfo, "Withdrew vote on %s", tr.TranslatedName)
		return
	}
	a.notify(grid.NoticeInfo, "Voted %s on %s", msg.vote, tr.TranslatedName)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}
	switch a.focus {
	case focusEdit:
		return a.updateEdit(msg)
	case focusPicker:
		return a.updatePicker(msg)
	case focusSearch:
		return a.updateSearch(msg)
	case focusFilter:
		return a.updateFilter(msg)
	case focusComments:
		return a.updateComments(msg)
	case focusCompose:
		return a.updateCompose(msg)
	}
	return a.updateGrid(msg)
}

func (a *App) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.row > 0 {
			a.row--
		}
	case key.Matches(msg, a.keys.Down):
		if a.row < len(a.visibleEntries())-1 {
			a.row++
		}
	case key.Matches(msg, a.keys.Left):
		if a.col > 0 {
			a.col--
		}
	case key.Matches(msg, a.keys.Right):
		if a.col < len(a.columns)-1 {
			a.col++
		}
	case key.Matches(msg, a.keys.Edit):
		a.startEdit()
	case key.Matches(msg, a.keys.Search):
		a.focus = focusSearch
		a.searchInput.Focus()
	case key.Matches(msg, a.keys.Filter):
		a.focus = focusFilter
		a.filterInput.SetValue(a.filter)
		a.filterInput.CursorEnd()
		a.filterInput.Focus()
	case key.Matches(msg, a.keys.NextPage):
		if a.query.Page >= a.store.Pages() {
			a.setStatus("Already on the last page")
			return a, nil
		}
		a.query.Page++
		return a, a.reload()
	case key.Matches(msg, a.keys.PrevPage):
		if a.query.Page <= 1 {
			a.setStatus("Already on the first page")
			return a, nil
		}
		a.query.Page--
		return a, a.reload()
	case key.Matches(msg, a.keys.PageSize):
		a.query.PageSize = lexicon.NextPageSize(a.query.PageSize)
		a.query.Page = 1
		if err := a.config.SetPageSize(a.query.PageSize); err != nil {
			a.logger.Warn("tui: persist page size", "err", err)
		}
		a.setStatus("%d rows per page", a.query.PageSize)
		return a, a.reload()
	case key.Matches(msg, a.keys.Sort):
		return a, a.sortByColumn()
	case key.Matches(msg, a.keys.SortDir):
		a.query.SortDirection = a.query.SortDirection.Toggle()
		a.query.Page = 1
		return a, a.reload()
	case key.Matches(msg, a.keys.Language):
		a.query.LanguageCode = nextCode(lexicon.LanguageCodes(), a.query.LanguageCode)
		a.query.Page = 1
		return a, a.reload()
	case key.Matches(msg, a.keys.EntryType):
		a.query.EntryType = nextCode(lexicon.EntryTypes(), a.query.EntryType)
		a.query.Page = 1
		return a, a.reload()
	case key.Matches(msg, a.keys.VoteUp):
		return a, a.vote(lexicon.VoteUp)
	case key.Matches(msg, a.keys.VoteDown):
		return a, a.vote(lexicon.VoteDown)
	case key.Matches(msg, a.keys.Unvote):
		return a, a.vote("")
	case key.Matches(msg, a.keys.Comments):
		return a, a.openComments()
	case key.Matches(msg, a.keys.Retry):
		return a, a.retry()
	case key.Matches(msg, a.keys.Reload):
		return a, a.reload()
	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
	case key.Matches(msg, a.keys.Back):
		if a.filter != "" {
			a.filter = ""
			a.filterInput.SetValue("")
			a.clampCursor()
		}
	}
	return a, nil
}

// startEdit opens the control that fits the selected column.
func (a *App) startEdit() {
	entry, field, ok := a.selectedCell()
	if !ok {
		return
	}
	if !field.Editable() {
		a.setStatus("%s is read-only", field.Label)
		return
	}
	var sub []string
	if field.Scope == grid.ScopeTranslation {
		tr := entry.FirstTranslation()
		if tr == nil {
			a.setStatus("%s has no translation to edit", entry.PrimaryName)
			return
		}
		sub = append(sub, tr.ID)
	}
	current := field.Value(entry)
	a.editor.StartEdit(entry.ID, field.Name, current, sub...)

	if field.Control == grid.ControlChoice {
		options := field.Choices()
		if field.AllowEmpty {
			options = append([]lexicon.Code{{Value: "", Label: "(none)"}}, options...)
		}
		a.picker = picker{field: field, options: options}
		for i, opt := range options {
			if opt.Value == current {
				a.picker.index = i
			}
		}
		a.focus = focusPicker
		return
	}
	a.editInput.SetValue(current)
	a.editInput.CursorEnd()
	a.editInput.Focus()
	a.focus = focusEdit
}

func (a *App) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "tab" || k == "shift+tab" {
		a.editor.Blur()
		a.closeEditControls()
		return a, nil
	}
	selected := a.selectedID()
	res := a.editor.HandleKey(k)
	if res.Consumed {
		a.closeEditControls()
		a.followEntry(selected)
		return a, persist(res.Save)
	}
	var cmd tea.Cmd
	a.editInput, cmd = a.editInput.Update(msg)
	a.editor.UpdatePending(a.editInput.Value())
	return a, cmd
}

func (a *App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.picker.index > 0 {
			a.picker.index--
		}
	case "down", "j":
		if a.picker.index < len(a.picker.options)-1 {
			a.picker.index++
		}
	case "enter":
		var choice string
		if len(a.picker.options) > 0 {
			choice = a.picker.options[a.picker.index].Value
		}
		selected := a.selectedID()
		save := a.editor.Commit(choice)
		a.closeEditControls()
		a.followEntry(selected)
		return a, persist(save)
	case "esc":
		a.editor.HandleKey("esc")
		a.closeEditControls()
	case "tab", "shift+tab":
		a.editor.Blur()
		a.closeEditControls()
	}
	return a, nil
}

func (a *App) closeEditControls() {
	a.editInput.Blur()
	a.editInput.SetValue("")
	a.picker = picker{}
	a.focus = focusGrid
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.focus = focusGrid
		a.searchInput.Blur()
		if a.searchPending {
			return a, a.runSearch()
		}
		return a, nil
	case "esc":
		a.focus = focusGrid
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.searchSeq++
		a.searchPending = false
		if a.query.FuzzySearch == "" {
			return a, nil
		}
		a.query.FuzzySearch = ""
		a.query.Page = 1
		return a, a.reload()
	}
	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() == before {
		return a, cmd
	}
	a.searchSeq++
	a.searchPending = true
	return a, tea.Batch(cmd, debounceSearch(a.debounce, a.searchSeq))
}

// runSearch sends the typed search to the server as a fuzzy query.
func (a *App) runSearch() tea.Cmd {
	a.searchSeq++
	a.searchPending = false
	a.query.FuzzySearch = strings.TrimSpace(a.searchInput.Value())
	a.query.Page = 1
	return a.reload()
}

func (a *App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.focus = focusGrid
		a.filterInput.Blur()
		return a, nil
	case "esc":
		a.focus = focusGrid
		a.filterInput.Blur()
		a.filterInput.SetValue("")
		a.filter = ""
		a.clampCursor()
		return a, nil
	}
	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.filter = a.filterInput.Value()
	a.row = 0
	return a, cmd
}

func (a *App) openComments() tea.Cmd {
	entry := a.selectedEntry()
	if entry == nil {
		return nil
	}
	a.comments = commentsPane{entryID: entry.ID, title: entry.PrimaryName, loading: true}
	a.focus = focusComments
	return fetchComments(a.backend, entry.ID)
}

func (a *App) updateComments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Quit), key.Matches(msg, a.keys.Comments):
		a.focus = focusGrid
	case key.Matches(msg, a.keys.NewComment):
		a.commentInput.SetValue("")
		a.commentInput.Focus()
		a.focus = focusCompose
	case key.Matches(msg, a.keys.Reload):
		a.comments.loading = true
		return a, fetchComments(a.backend, a.comments.entryID)
	}
	return a, nil
}

func (a *App) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.commentInput.Blur()
		a.focus = focusComments
		return a, nil
	case "enter":
		content := strings.TrimSpace(a.commentInput.Value())
		a.commentInput.Blur()
		a.focus = focusComments
		if content == "" {
			return a, nil
		}
		return a, postComment(a.backend, a.comments.entryID, content)
	}
	var cmd tea.Cmd
	a.commentInput, cmd = a.commentInput.Update(msg)
	return a, cmd
}

// vote casts v on the selected entry's first translation; an empty v
// withdraws the caller's vote.
func (a *App) vote(v lexicon.VoteType) tea.Cmd {
	entry := a.selectedEntry()
	if entry == nil {
		return nil
	}
	tr := entry.FirstTranslation()
	if tr == nil {
		a.setStatus("%s has no translation to vote on", entry.PrimaryName)
		return nil
	}
	if v == "" {
		return withdrawVote(a.backend, entry.ID, tr.ID)
	}
	return castVote(a.backend, entry.ID, tr.ID, v)
}

func (a *App) retry() tea.Cmd {
	failed, ok := a.editor.LastFailure()
	if !ok {
		a.setStatus("Nothing to retry")
		return nil
	}
	save := a.editor.Retry(failed)
	if save == nil {
		a.notify(grid.NoticeWarn, "Could not retry: the entry is no longer on this page")
		return nil
	}
	a.setStatus("Retrying %s…", save.Target.Field)
	return persist(save)
}

func (a *App) sortByColumn() tea.Cmd {
	if len(a.columns) == 0 {
		return nil
	}
	field := a.columns[a.col]
	if !field.Sortable {
		a.setStatus("%s cannot be sorted", field.Label)
		return nil
	}
	if a.query.SortBy == field.Wire {
		a.query.SortDirection = a.query.SortDirection.Toggle()
	} else {
		a.query.SortBy = field.Wire
		a.query.SortDirection = lexicon.SortAsc
	}
	a.query.Page = 1
	return a.reload()
}

// visibleEntries is the loaded page narrowed by the local filter.
func (a *App) visibleEntries() []*lexicon.Entry {
	return filterEntries(a.store.Entries(), a.filter)
}

func (a *App) selectedEntry() *lexicon.Entry {
	rows := a.visibleEntries()
	if a.row < 0 || a.row >= len(rows) {
		return nil
	}
	return rows[a.row]
}

func (a *App) selectedCell() (*lexicon.Entry, grid.Field, bool) {
	entry := a.selectedEntry()
	if entry == nil || a.col < 0 || a.col >= len(a.columns) {
		return nil, grid.Field{}, false
	}
	return entry, a.columns[a.col], true
}

func (a *App) selectedID() string {
	if e := a.selectedEntry(); e != nil {
		return e.ID
	}
	return ""
}

// followEntry keeps the cursor on entry id when it is still visible.
func (a *App) followEntry(id string) {
	if id != "" {
		for i, e := range a.visibleEntries() {
			if e.ID == id {
				a.row = i
				return
			}
		}
	}
	a.clampCursor()
}

func (a *App) clampCursor() {
	n := len(a.visibleEntries())
	if a.row >= n {
		a.row = n - 1
	}
	if a.row < 0 {
		a.row = 0
	}
}

// nextCode cycles "" → codes[0] → … → codes[n-1] → "".
func nextCode(codes []lexicon.Code, current string) string {
	if current == "" {
		if len(codes) == 0 {
			return ""
		}
		return codes[0].Value
	}
	for i, c := range codes {
		if c.Value == current {
			if i+1 < len(codes) {
				return codes[i+1].Value
			}
			return ""
		}
	}
	return ""
}
