package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// EntryComments lists the comments on an entry, oldest first.
func (c *Client) EntryComments(ctx context.Context, entryID string) ([]*lexicon.Comment, error) {
	var out []*lexicon.Comment
	if err := c.do(ctx, http.MethodGet, "/api/v1/comments/entry/"+url.PathEscape(entryID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment posts a comment on an entry. parentID may be empty.
func (c *Client) CreateComment(ctx context.Context, entryID, content, parentID string) (*lexicon.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("api: comment content is required")
	}
	body := map[string]any{"entry_id": entryID, "content": content}
	if parentID != "" {
		body["parent_comment_id"] = parentID
	}
	var out lexicon.Comment
	if err := c.do(ctx, http.MethodPost, "/api/v1/comments/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vote records the caller's vote on a translation.
func (c *Client) Vote(ctx context.Context, translationID string, vote lexicon.VoteType) (*lexicon.Vote, error) {
	if vote != lexicon.VoteUp && vote != lexicon.VoteDown {
		return nil, fmt.Errorf("api: invalid vote type %q", vote)
	}
	var out lexicon.Vote
	path := "/api/v1/translations/" + url.PathEscape(translationID) + "/vote"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]any{"vote_type": vote}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveVote withdraws the caller's vote on a translation.
func (c *Client) RemoveVote(ctx context.Context, translationID string) error {
	path := "/api/v1/translations/" + url.PathEscape(translationID) + "/vote"
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetTranslation fetches a translation, including its current vote counts.
func (c *Client) GetTranslation(ctx context.Context, id string) (*lexicon.Translation, error) {
	var out lexicon.Translation
	if err := c.do(ctx, http.MethodGet, "/api/v1/translations/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
