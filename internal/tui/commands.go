package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
)

// Backend is the slice of the lexicon API the grid drives. *api.Client
// satisfies it.
type Backend interface {
	grid.Persister
	ListEntries(ctx context.Context, q lexicon.Query) (*lexicon.Page, error)
	EntryComments(ctx context.Context, entryID string) ([]*lexicon.Comment, error)
	CreateComment(ctx context.Context, entryID, content, parentID string) (*lexicon.Comment, error)
	Vote(ctx context.Context, translationID string, vote lexicon.VoteType) (*lexicon.Vote, error)
	RemoveVote(ctx context.Context, translationID string) error
	GetTranslation(ctx context.Context, id string) (*lexicon.Translation, error)
}

const requestTimeout = 30 * time.Second

type pageLoadedMsg struct {
	seq   uint64
	query lexicon.Query
	page  *lexicon.Page
	err   error
}

type searchDebounceMsg struct {
	seq uint64
}

type saveSettledMsg struct {
	result grid.Result
}

type commentsLoadedMsg struct {
	entryID  string
	comments []*lexicon.Comment
	err      error
}

type commentPostedMsg struct {
	entryID string
	comment *lexicon.Comment
	err     error
}

// voteFinishedMsg reports a cast or withdrawn vote. vote is empty for a
// withdrawal.
type voteFinishedMsg struct {
	entryID     string
	translation *lexicon.Translation
	vote        lexicon.VoteType
	err         error
}

func fetchPage(backend Backend, seq uint64, q lexicon.Query) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := backend.ListEntries(ctx, q)
		return pageLoadedMsg{seq: seq, query: q, page: page, err: err}
	}
}

func debounceSearch(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

// persist runs a Save off the event loop and feeds the result back to Settle.
func persist(s *grid.Save) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return saveSettledMsg{result: s.Persist(ctx)}
	}
}

func fetchComments(backend Backend, entryID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		comments, err := backend.EntryComments(ctx, entryID)
		return commentsLoadedMsg{entryID: entryID, comments: comments, err: err}
	}
}

func postComment(backend Backend, entryID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, err := backend.CreateComment(ctx, entryID, content, "")
		return commentPostedMsg{entryID: entryID, comment: c, err: err}
	}
}

// castVote records the vote and re-reads the translation so the grid shows
// the server's tallies.
func castVote(backend Backend, entryID, translationID string, vote lexicon.VoteType) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if _, err := backend.Vote(ctx, translationID, vote); err != nil {
			return voteFinishedMsg{entryID: entryID, vote: vote, err: err}
		}
		tr, err := backend.GetTranslation(ctx, translationID)
		return voteFinishedMsg{entryID: entryID, translation: tr, vote: vote, err: err}
	}
}

func withdrawVote(backend Backend, entryID, translationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := backend.RemoveVote(ctx, translationID); err != nil {
			return voteFinishedMsg{entryID: entryID, err: err}
		}
		tr, err := backend.GetTranslation(ctx, translationID)
		return voteFinishedMsg{entryID: entryID, translation: tr, err: err}
	}
}
