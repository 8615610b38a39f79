package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"carfinder/apiclient"
	"carfinder/leads"
	"carfinder/models"
	"carfinder/scraper"
	"carfinder/services"
	"carfinder/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct{}

func (stubSearcher) SearchAll(ctx context.Context, q scraper.Query) *scraper.Results {
	res := scraper.NewResults()
	res.Add(models.SourceCraigslist, []models.Listing{
		{URL: "https://sfbay.craigslist.org/cto/1.html", Title: "2012 Honda Civic", Price: "$7,500", Source: models.SourceCraigslist},
		{URL: "https://sfbay.craigslist.org/cto/2.html", Title: "2011 Honda Fit", Price: "$5,500", Source: models.SourceCraigslist},
	}, nil)
	res.Add(models.SourceCarsCom, []models.Listing{
		{URL: "https://www.cars.com/vehicledetail/a/", Title: "2014 Honda Civic", Price: "$9,000", Source: models.SourceCarsCom},
	}, nil)
	return res
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := New(services.NewSearchService(stubSearcher{}, store), services.NewLeadService(store), store)
	ts := httptest.NewServer(srv.Router([]string{"*"}))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/search",
		`{"make":"Honda","year_min":"","max_results":"20","location":"sfbay"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, map[string]interface{}{"Craigslist": float64(2), "Cars.com": float64(1)}, body["summary"])

	resp, body = do(t, http.MethodPost, ts.URL+"/api/search", `{"make":"Honda","location":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Location is required", body["error"])

	resp, body = do(t, http.MethodGet, ts.URL+"/api/search/runs", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["runs"], 1)
}

func TestSearchEndpoint_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodPost, ts.URL+"/api/search", `{"make":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body["error"].(string), "Invalid JSON"))
}

func TestNotesThroughClient(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	store := leads.NewRemoteStore(apiclient.NewClient(ts.URL))

	l := models.Listing{URL: "https://www.cars.com/vehicledetail/a/", Title: "2014 Honda Civic", Price: "$9,000", Source: models.SourceCarsCom}
	in := models.InputFromListing(l)
	in.Notes = models.StringPtr("clean title")

	lead, err := store.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.Equal(t, "clean title", lead.Notes)

	next, err := leads.Cycle(ctx, store, l.URL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, next)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusContacted, all[0].Status)
	assert.Equal(t, lead.ID, all[0].ID)

	require.NoError(t, store.Delete(ctx, l.URL))
	require.NoError(t, store.Delete(ctx, l.URL))
	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNotesThroughClient_UnknownURL(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	store := leads.NewRemoteStore(apiclient.NewClient(ts.URL))

	require.NoError(t, store.UpdateStatus(ctx, "https://example.com/never-saved", models.StatusPending))
	require.NoError(t, store.Delete(ctx, "https://example.com/never-saved"))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCRMEndpoints(t *testing.T) {
	ts := newTestServer(t)

	_, body := do(t, http.MethodPost, ts.URL+"/api/leads",
		`{"url":"https://example.com/a","title":"2012 Honda Civic","my_offer":7000}`)
	require.Equal(t, true, body["success"])
	id := int64(body["note"].(map[string]interface{})["id"].(float64))
	base := ts.URL + "/api/leads/" + jsonInt(id)

	resp, _ := do(t, http.MethodPatch, base+"/status", `{"status":"Pending"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodPatch, base+"/status", `{"status":"Lost"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = do(t, http.MethodPatch, base+"/follow-up", `{"followUpDate":"2099-01-15"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPatch, ts.URL+"/api/leads/999/status", `{"status":"Pending"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPatch, ts.URL+"/api/leads/abc/status", `{"status":"Pending"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = do(t, http.MethodGet, ts.URL+"/api/leads?status=Pending&sort_by=my_offer&order=asc", "")
	require.Len(t, body["leads"], 1)
	lead := body["leads"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Pending", lead["status"])
	assert.True(t, strings.HasPrefix(lead["follow_up_date"].(string), "2099-01-15"))

	_, body = do(t, http.MethodGet, ts.URL+"/api/leads/stats", "")
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["upcoming_follow_ups"])
	assert.Equal(t, float64(7000), stats["total_offers_value"])

	resp, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/notes/"+jsonInt(id), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "deleting a missing id is a no-op")

	_, body = do(t, http.MethodGet, ts.URL+"/api/notes", "")
	assert.Empty(t, body["notes"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
