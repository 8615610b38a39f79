package leads_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"carfinder/apiclient"
	"carfinder/leads"
	"carfinder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notesServer is an in-memory notes API.
type notesServer struct {
	mu    sync.Mutex
	notes []models.Lead
	echo  bool
}

func (n *notesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(models.NotesResponse{Success: true, Notes: n.notes})
	case http.MethodPost:
		var in models.LeadInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.Result{Error: "URL is required"})
			return
		}
		lead := leads.Find(n.notes, in.URL)
		if lead == nil {
			n.notes = append([]models.Lead{{ID: int64(len(n.notes) + 1), Status: models.StatusNew}}, n.notes...)
			lead = &n.notes[0]
		}
		in.Apply(lead)
		res := models.Result{Success: true}
		if n.echo {
			out := *lead
			res.Note = &out
		}
		json.NewEncoder(w).Encode(res)
	case http.MethodDelete:
		var req models.DeleteNoteRequest
		json.NewDecoder(r.Body).Decode(&req)
		kept := n.notes[:0]
		for _, l := range n.notes {
			if l.URL != req.URL {
				kept = append(kept, l)
			}
		}
		n.notes = kept
		json.NewEncoder(w).Encode(models.Result{Success: true})
	}
}

func TestRemoteStore_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, echo := range []bool{true, false} {
		srv := httptest.NewServer(&notesServer{echo: echo})
		defer srv.Close()

		ctx := context.Background()
		s := leads.NewRemoteStore(apiclient.NewClient(srv.URL))

		lead, err := s.Upsert(ctx, listing("https://a.example/1"))
		require.NoError(t, err)
		assert.Equal(t, models.StatusNew, lead.Status)

		require.NoError(t, s.UpdateStatus(ctx, lead.URL, models.StatusCaptured))
		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, models.StatusCaptured, all[0].Status)
		assert.Equal(t, "2014 Honda Civic", all[0].Title)

		require.NoError(t, s.Delete(ctx, lead.URL))
		all, err = s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	}
}

func TestRemoteStore_ServerFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.NotesResponse{Success: false, Error: "database is locked"})
	}))
	defer srv.Close()

	_, err := leads.NewRemoteStore(apiclient.NewClient(srv.URL)).List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "database is locked", err.Error())
}

func TestRemoteStore_UnknownKeysAreNoOps(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(&notesServer{echo: true})
	defer srv.Close()

	ctx := context.Background()
	s := leads.NewRemoteStore(apiclient.NewClient(srv.URL))

	_, err := s.Upsert(ctx, listing("https://a.example/1"))
	require.NoError(t, err)

	assert.NoError(t, s.UpdateStatus(ctx, "https://missing.example", models.StatusRejected))
	assert.NoError(t, s.Delete(ctx, "https://missing.example"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "https://a.example/1", all[0].URL)
	assert.Equal(t, models.StatusNew, all[0].Status)
}
