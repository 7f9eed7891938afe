package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
)

var _ grid.Persister = (*Client)(nil)

type fakeAPI struct {
	mu       sync.Mutex
	bodies   map[string]map[string]any
	headers  http.Header
	query    map[string]string
	entries  map[string]*lexicon.Entry
	comments []*lexicon.Comment
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{
		bodies: map[string]map[string]any{},
		entries: map[string]*lexicon.Entry{
			"e1": {ID: "e1", PrimaryName: "Zeus", LanguageCode: "gr"},
		},
	}
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.headers = req.Header.Clone()
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entries", f.listEntries).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entries/metadata", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, lexicon.Metadata{TotalEntries: 1})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entries/bulk", func(w http.ResponseWriter, req *http.Request) {
		f.record("bulk", req)
		writeJSON(w, http.StatusOK, []*lexicon.Entry{f.entries["e1"]})
	}).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/entries/{id}", f.getEntry).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entries/{id}", f.putEntry).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/entries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/translations/{id}", func(w http.ResponseWriter, req *http.Request) {
		body := f.record("translation", req)
		writeJSON(w, http.StatusOK, lexicon.Translation{
			ID:             mux.Vars(req)["id"],
			TranslatedName: asString(body["translated_name"]),
		})
	}).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/translations/{id}/vote", func(w http.ResponseWriter, req *http.Request) {
		body := f.record("vote", req)
		writeJSON(w, http.StatusOK, lexicon.Vote{
			ID:            "v1",
			TranslationID: mux.Vars(req)["id"],
			VoteType:      lexicon.VoteType(asString(body["vote_type"])),
		})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/translations/{id}/vote", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/comments/entry/{id}", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.comments)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/comments/", func(w http.ResponseWriter, req *http.Request) {
		body := f.record("comment", req)
		c := &lexicon.Comment{ID: "c1", EntryID: asString(body["entry_id"]), Content: asString(body["content"])}
		f.mu.Lock()
		f.comments = append(f.comments, c)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, c)
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, New(srv.URL+"/", WithToken("secret"), WithHTTPClient(srv.Client()))
}

func (f *fakeAPI) record(key string, req *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(req.Body).Decode(&body)
	f.mu.Lock()
	f.bodies[key] = body
	f.mu.Unlock()
	return body
}

func (f *fakeAPI) listEntries(w http.ResponseWriter, req *http.Request) {
	f.mu.Lock()
	f.query = map[string]string{}
	for k := range req.URL.Query() {
		f.query[k] = req.URL.Query().Get(k)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": []*lexicon.Entry{f.entries["e1"]},
		"total": 120,
		"skip":  50,
		"limit": 50,
	})
}

func (f *fakeAPI) getEntry(w http.ResponseWriter, req *http.Request) {
	entry, ok := f.entries[mux.Vars(req)["id"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (f *fakeAPI) putEntry(w http.ResponseWriter, req *http.Request) {
	body := f.record("entry", req)
	id := mux.Vars(req)["id"]
	entry, ok := f.entries[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Entry not found"})
		return
	}
	cp := entry.Clone()
	if name, ok := body["primary_name"].(string); ok {
		cp.PrimaryName = name
	}
	writeJSON(w, http.StatusOK, cp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func TestListEntriesEncodesQuery(t *testing.T) {
	f, client := newFakeAPI(t)
	page, err := client.ListEntries(context.Background(), lexicon.Query{
		Search:       "zeus",
		LanguageCode: "gr",
		EntryType:    "personal_name",
		Page:         2,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 120, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "50", f.query["skip"])
	assert.Equal(t, "50", f.query["limit"])
	assert.Equal(t, "zeus", f.query["search"])
	assert.Equal(t, "gr", f.query["language_code"])
	assert.Equal(t, "personal_name", f.query["entry_type"])
	assert.Equal(t, "updated_at", f.query["sorted_by"])
	assert.Equal(t, "desc", f.query["sort_direction"])
	assert.Equal(t, "true", f.query["include_translations"])
	_, hasFuzzy := f.query["fuzzy_search"]
	assert.False(t, hasFuzzy)
}

func TestRequestsCarryTokenAndRequestID(t *testing.T) {
	f, client := newFakeAPI(t)
	_, err := client.Health(context.Background())
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "Bearer secret", f.headers.Get("Authorization"))
	assert.NotEmpty(t, f.headers.Get(requestIDHeader))
}

func TestUpdateEntryFieldSendsSingleProperty(t *testing.T) {
	f, client := newFakeAPI(t)
	entry, err := client.UpdateEntryField(context.Background(), "e1", "primary_name", "Zeus Pater")
	require.NoError(t, err)
	assert.Equal(t, "Zeus Pater", entry.PrimaryName)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, map[string]any{"primary_name": "Zeus Pater"}, f.bodies["entry"])
}

func TestUpdateEntryFieldSendsNull(t *testing.T) {
	f, client := newFakeAPI(t)
	_, err := client.UpdateEntryField(context.Background(), "e1", "entry_type", nil)
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.bodies["entry"]["entry_type"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestUpdateTranslationField(t *testing.T) {
	f, client := newFakeAPI(t)
	tr, err := client.UpdateTranslationField(context.Background(), "t1", "translated_name", "Jupiter")
	require.NoError(t, err)
	assert.Equal(t, "t1", tr.ID)
	assert.Equal(t, "Jupiter", tr.TranslatedName)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, map[string]any{"translated_name": "Jupiter"}, f.bodies["translation"])
}

func TestErrorCarriesStatusAndRequestID(t *testing.T) {
	_, client := newFakeAPI(t)
	client.newID = func() string { return "req-1" }

	_, err := client.GetEntry(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Contains(t, apiErr.Body, "Entry not found")

	_, err = client.UpdateEntryField(context.Background(), "missing", "primary_name", "x")
	assert.True(t, IsNotFound(err))
}

func TestDeleteAndBulk(t *testing.T) {
	f, client := newFakeAPI(t)
	require.NoError(t, client.DeleteEntry(context.Background(), "e1"))

	out, err := client.BulkUpdate(context.Background(), []string{"e1"}, map[string]any{"is_verified": true})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []any{"e1"}, f.bodies["bulk"]["entry_ids"])
	assert.Equal(t, map[string]any{"is_verified": true}, f.bodies["bulk"]["updates"])
}

func TestMetadata(t *testing.T) {
	_, client := newFakeAPI(t)
	md, err := client.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, md.TotalEntries)
}

func TestCommentsRoundTrip(t *testing.T) {
	f, client := newFakeAPI(t)
	_, err := client.CreateComment(context.Background(), "e1", "   ", "")
	require.Error(t, err)

	c, err := client.CreateComment(context.Background(), "e1", " Check the epithet. ", "")
	require.NoError(t, err)
	assert.Equal(t, "Check the epithet.", c.Content)

	f.mu.Lock()
	_, hasParent := f.bodies["comment"]["parent_comment_id"]
	f.mu.Unlock()
	assert.False(t, hasParent)

	list, err := client.EntryComments(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)
}

func TestVotes(t *testing.T) {
	f, client := newFakeAPI(t)
	_, err := client.Vote(context.Background(), "t1", lexicon.VoteType("sideways"))
	require.Error(t, err)

	vote, err := client.Vote(context.Background(), "t1", lexicon.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, lexicon.VoteUp, vote.VoteType)
	assert.Equal(t, "t1", vote.TranslationID)

	f.mu.Lock()
	assert.Equal(t, "up", f.bodies["vote"]["vote_type"])
	f.mu.Unlock()

	require.NoError(t, client.RemoveVote(context.Background(), "t1"))
}

func TestPersistRoutesThroughClient(t *testing.T) {
	f, client := newFakeAPI(t)
	store := grid.NewStore()
	store.Replace(&lexicon.Page{Items: []*lexicon.Entry{{ID: "e1", PrimaryName: "Zeus", LanguageCode: "gr"}}})
	ed := grid.NewEditor(store, client)

	ed.StartEdit("e1", "primary_name", "Zeus")
	save := ed.Commit("Zeus Pater")
	require.NotNil(t, save)

	res := save.Persist(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, grid.OutcomeConfirmed, ed.Settle(res))
	assert.Equal(t, "Zeus Pater", store.Get("e1").PrimaryName)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, map[string]any{"primary_name": "Zeus Pater"}, f.bodies["entry"])
}

func TestSaveWithoutResponseBodyKeepsCommittedValue(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/entries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/translations/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPut)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	client := New(srv.URL, WithHTTPClient(srv.Client()))

	entry, err := client.UpdateEntryField(context.Background(), "e1", "primary_name", "x")
	require.NoError(t, err)
	assert.Nil(t, entry)

	store := grid.NewStore()
	store.Replace(&lexicon.Page{Items: []*lexicon.Entry{{
		ID:           "e1",
		PrimaryName:  "Zeus",
		LanguageCode: "gr",
		Translations: []*lexicon.Translation{{ID: "t1", TranslatedName: "Jupiter"}},
	}}})
	ed := grid.NewEditor(store, client)

	ed.StartEdit("e1", "primary_name", "Zeus")
	ed.UpdatePending("Zeus (Olympian)")
	save := ed.Commit()
	require.NotNil(t, save)
	assert.Equal(t, grid.OutcomeConfirmed, ed.Settle(save.Persist(context.Background())))
	assert.Equal(t, "Zeus (Olympian)", store.Get("e1").PrimaryName)
	assert.Equal(t, "gr", store.Get("e1").LanguageCode)

	ed.StartEdit("e1", "first_translation", "Jupiter", "t1")
	save = ed.Commit("Iuppiter")
	require.NotNil(t, save)
	assert.Equal(t, grid.OutcomeConfirmed, ed.Settle(save.Persist(context.Background())))
	assert.Equal(t, "Iuppiter", store.Get("e1").FirstTranslation().TranslatedName)
}
