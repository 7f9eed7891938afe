package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
	"github.com/kingrea/lexicon/internal/logbook"
)

const (
	cellWidth      = 18
	logPanelLines  = 5
	commentPreview = 8
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	selectedRow   = lipgloss.NewStyle().Background(lipgloss.Color("#262626"))
	selectedCell  = lipgloss.NewStyle().Reverse(true)
	editingCell   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Underline(true)
	readOnlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#06D6A0"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// View renders the current state.
func (a *App) View() string {
	sections := []string{a.renderHeader(), a.renderTable()}
	switch a.focus {
	case focusEdit:
		sections = append(sections, a.renderEditLine())
	case focusPicker:
		sections = append(sections, a.renderPicker())
	case focusSearch:
		sections = append(sections, headerStyle.Render("Search: ")+a.searchInput.View())
	case focusFilter:
		sections = append(sections, headerStyle.Render("Filter: ")+a.filterInput.View())
	case focusComments, focusCompose:
		sections = append(sections, a.renderComments())
	}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, a.renderStatus())
	if a.showHelp {
		sections = append(sections, a.help.FullHelpView(a.keys.FullHelp()))
	} else {
		sections = append(sections, a.help.ShortHelpView(a.keys.ShortHelp()))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	parts := []string{titleStyle.Render("LEXICON")}
	page, pages := a.store.Page(), a.store.Pages()
	if page == 0 {
		page = a.query.Page
	}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("page %d/%d · %d entries · %d per page", page, max(pages, 1), a.store.Total(), a.query.PageSize)))
	parts = append(parts, dimStyle.Render(fmt.Sprintf("sort %s %s", a.query.SortBy, a.query.SortDirection)))
	if a.query.LanguageCode != "" {
		parts = append(parts, bodyStyle.Render("lang "+lexicon.LanguageLabel(a.query.LanguageCode)))
	}
	if a.query.EntryType != "" {
		parts = append(parts, bodyStyle.Render("type "+lexicon.TypeLabel(a.query.EntryType)))
	}
	if a.query.FuzzySearch != "" {
		parts = append(parts, bodyStyle.Render(fmt.Sprintf("search %q", a.query.FuzzySearch)))
	}
	if a.filter != "" {
		parts = append(parts, bodyStyle.Render(fmt.Sprintf("filter %q", a.filter)))
	}
	switch {
	case a.loading:
		parts = append(parts, a.spinner.View()+" loading")
	case a.searchPending:
		parts = append(parts, dimStyle.Render("searching…"))
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderTable() string {
	var b strings.Builder
	header := make([]string, len(a.columns))
	for i, col := range a.columns {
		label := col.Label
		if a.query.SortBy == col.Wire && col.Sortable {
			if a.query.SortDirection == lexicon.SortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		header[i] = headerStyle.Render(fit(label, cellWidth))
	}
	b.WriteString(strings.Join(header, " "))

	rows := a.visibleEntries()
	if len(rows) == 0 {
		b.WriteString("\n")
		if a.loading {
			b.WriteString(dimStyle.Render("Loading entries…"))
		} else {
			b.WriteString(dimStyle.Render("No entries match."))
		}
		return b.String()
	}
	for r, entry := range rows {
		cells := make([]string, len(a.columns))
		for c, col := range a.columns {
			cells[c] = a.renderCell(entry, col, r, c)
		}
		line := strings.Join(cells, " ")
		if r == a.row {
			line = selectedRow.Render(line)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (a *App) renderCell(entry *lexicon.Entry, col grid.Field, r, c int) string {
	value := col.Value(entry)
	switch col.Name {
	case "language_code":
		value = lexicon.LanguageLabel(value)
	case "entry_type":
		value = lexicon.TypeLabel(value)
	}
	if a.editor.IsEditing(entry.ID, col.Name) {
		pending := a.editor.Pending()
		if a.focus == focusPicker && len(a.picker.options) > 0 {
			pending = a.picker.options[a.picker.index].Label
		}
		return editingCell.Render(fit(pending, cellWidth))
	}
	text := fit(value, cellWidth)
	switch {
	case r == a.row && c == a.col:
		return selectedCell.Render(text)
	case !col.Editable():
		return readOnlyStyle.Render(text)
	}
	return text
}

func (a *App) renderEditLine() string {
	target, _ := a.editor.Active()
	field, _ := grid.Lookup(target.Field)
	hint := "enter save · esc cancel"
	if field.Control == grid.ControlList {
		hint = "separate names with \", \" · " + hint
	}
	return headerStyle.Render(field.Label+": ") + a.editInput.View() + "  " + dimStyle.Render(hint)
}

func (a *App) renderPicker() string {
	lines := []string{headerStyle.Render(a.picker.field.Label)}
	for i, opt := range a.picker.options {
		label := opt.Label
		if opt.Value != "" {
			label = fmt.Sprintf("%s (%s)", opt.Label, opt.Value)
		}
		if i == a.picker.index {
			lines = append(lines, selectedCell.Render("› "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	lines = append(lines, dimStyle.Render("↑/↓ choose · enter save · esc cancel"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderComments() string {
	lines := []string{headerStyle.Render("Comments · " + a.comments.title)}
	switch {
	case a.comments.loading:
		lines = append(lines, a.spinner.View()+" loading comments")
	case a.comments.err != "":
		lines = append(lines, errorStyle.Render(a.comments.err))
	case len(a.comments.items) == 0:
		lines = append(lines, dimStyle.Render("No comments yet."))
	default:
		items := a.comments.items
		if len(items) > commentPreview {
			items = items[len(items)-commentPreview:]
		}
		for _, c := range items {
			stamp := ""
			if !c.CreatedAt.IsZero() {
				stamp = c.CreatedAt.Format("2006-01-02 15:04") + "  "
			}
			lines = append(lines, dimStyle.Render(stamp)+c.Content)
		}
	}
	if a.focus == focusCompose {
		lines = append(lines, headerStyle.Render("New: ")+a.commentInput.View())
	} else {
		lines = append(lines, dimStyle.Render("a add · R reload · esc close"))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries, total := a.logbook.Recent(logPanelLines)
	if len(entries) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		stamp := dimStyle.Render(e.At.Local().Format("15:04:05") + " ")
		lines = append(lines, stamp+logLevelStyle(e.Level).Render(e.Message))
	}
	head := headerStyle.Render(fmt.Sprintf("LOG · %s · %d", fileName, total))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, strings.Join(lines, "\n")))
}

func logLevelStyle(level logbook.Level) lipgloss.Style {
	switch level {
	case logbook.LevelError:
		return errorStyle
	case logbook.LevelWarn:
		return warnStyle
	}
	return bodyStyle
}

func (a *App) renderStatus() string {
	if a.statusMsg == "" {
		return ""
	}
	switch a.statusLevel {
	case grid.NoticeError:
		return errorStyle.Render(a.statusMsg)
	case grid.NoticeWarn:
		return warnStyle.Render(a.statusMsg)
	}
	if strings.HasPrefix(a.statusMsg, "Saved") {
		return okStyle.Render(a.statusMsg)
	}
	return dimStyle.Render(a.statusMsg)
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
