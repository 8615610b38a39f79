package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	main "carfinder/cmd/carfinder"
	"carfinder/config"
	"carfinder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchBackend(t *testing.T) (*httptest.Server, *models.SearchRequest) {
	t.Helper()
	got := &models.SearchRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(models.SearchResponse{
			Success: true,
			Summary: map[string]int{models.SourceCraigslist: 2, models.SourceCarsCom: 1},
			Total:   3,
			Listings: []models.Listing{
				{URL: "https://sfbay.craigslist.org/cto/1.html", Title: "2012 Honda Civic", Price: "$7,500", Source: models.SourceCraigslist},
				{URL: "https://www.cars.com/vehicledetail/a/", Title: "2014 Honda Civic", Price: "$9,000", Source: models.SourceCarsCom},
				{URL: "https://sfbay.craigslist.org/cto/2.html", Title: "2011 Honda Fit", Price: "$5,500", Source: models.SourceCraigslist},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newMain(t *testing.T, apiURL string) *main.Main {
	t.Helper()
	return &main.Main{Config: &config.Config{
		LogLevel: "info",
		Client: config.ClientConfig{
			APIURL:    apiURL,
			LeadStore: config.LeadStoreLocal,
			LeadsDir:  t.TempDir(),
			Timeout:   5 * time.Second,
		},
	}}
}

func run(t *testing.T, m *main.Main, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestSearchCmd(t *testing.T) {
	srv, got := searchBackend(t)
	m := newMain(t, srv.URL)

	out, _, err := run(t, m, "search", "--make", "Honda, Toyota", "--location", "sfbay", "--year-min", "2010", "--no-offerup", "--source", "Craigslist")
	require.NoError(t, err)

	assert.Equal(t, models.MakeList{"Honda", "Toyota"}, got.Make)
	assert.Equal(t, 2010, got.YearMin.Value())
	assert.Equal(t, 20, got.MaxResults.Value())
	require.NotNil(t, got.EnableOfferUp)
	assert.False(t, *got.EnableOfferUp)
	assert.Nil(t, got.EnableCraigslist)

	assert.Contains(t, out, "Craigslist: 2")
	assert.Contains(t, out, "Cars.com: 1")
	assert.Contains(t, out, "Total: 3")
	assert.Contains(t, out, "2011 Honda Fit")
	assert.NotContains(t, out, "vehicledetail", "filtered out by --source")
}

func TestSearchCmd_RequiresLocation(t *testing.T) {
	srv, _ := searchBackend(t)
	_, stderr, err := run(t, newMain(t, srv.URL), "search", "--make", "Honda")
	require.Error(t, err)
	assert.Contains(t, stderr, "Location is required")
}

func TestNotesCmds(t *testing.T) {
	m := newMain(t, "http://127.0.0.1:1")
	url := "https://sfbay.craigslist.org/cto/1.html"

	out, _, err := run(t, m, "notes", "save", url, "--notes", "call after 5pm", "--title", "2012 Honda Civic")
	require.NoError(t, err)
	assert.Contains(t, out, "(New)")

	out, _, err = run(t, m, "notes", "status", url, "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Status set to Pending")

	out, _, err = run(t, m, "notes", "cycle", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Status changed to Contacted")

	out, _, err = run(t, m, "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2012 Honda Civic")
	assert.Contains(t, out, "call after 5pm")
	assert.Contains(t, out, "Contacted")

	_, stderr, err := run(t, m, "notes", "status", url, "sold")
	require.Error(t, err)
	assert.Contains(t, stderr, `unknown status "sold"`)

	out, _, err = run(t, m, "notes", "delete", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted")

	out, _, err = run(t, m, "notes")
	require.NoError(t, err)
	assert.Contains(t, out, "No notes saved yet.")
}

func TestNotesSave_OmittedFlagsKeepStoredValues(t *testing.T) {
	m := newMain(t, "http://127.0.0.1:1")
	url := "https://sfbay.craigslist.org/cto/1.html"

	_, _, err := run(t, m, "notes", "save", url, "-n", "call after 5pm", "--title", "2012 Honda Civic")
	require.NoError(t, err)
	_, _, err = run(t, m, "notes", "save", url, "-p", "555-0100")
	require.NoError(t, err)

	out, _, err := run(t, m, "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "call after 5pm")
	assert.Contains(t, out, "555-0100")
	assert.Contains(t, out, "2012 Honda Civic")
}

func TestUnknownLeadStore(t *testing.T) {
	m := newMain(t, "http://127.0.0.1:1")
	m.Config.Client.LeadStore = "dropbox"
	_, _, err := run(t, m, "notes", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LEAD_STORE")
}

func TestNoCommand(t *testing.T) {
	_, _, err := run(t, newMain(t, "http://127.0.0.1:1"))
	require.Error(t, err)
}
