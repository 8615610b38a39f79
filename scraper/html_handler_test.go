package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carfinder/config"
)

func TestHTMLHandler_Search(t *testing.T) {
	fixture := loadFixture(t, "craigslist_results.html")
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing User-Agent")
		}
		queries = append(queries, r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "text/html")
		w.Write(fixture)
	}))
	defer srv.Close()

	cfg := loadSite(t, SiteCraigslist)
	cfg.RateLimitMS = 0
	cfg.Endpoints = map[string]string{
		"all":   srv.URL + "/search/cta",
		"owner": srv.URL + "/search/cto",
	}
	h := NewHTMLHandler(cfg, srv.Client())

	listings, err := h.Search(context.Background(), Query{Makes: []string{"Honda", "Toyota"}, Location: "sfbay", MaxResults: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(queries) != 2 || queries[0] != "Honda" || queries[1] != "Toyota" {
		t.Fatalf("unexpected queries %v", queries)
	}
	// two pages, each capped at two listings
	if len(listings) != 4 {
		t.Fatalf("expected 4 listings, got %d", len(listings))
	}
	if !strings.HasPrefix(listings[1].URL, srv.URL+"/eby/cto/") {
		t.Fatalf("relative link should resolve against the fetched page, got %s", listings[1].URL)
	}
	if h.ID() != SiteCraigslist || h.Name() != "Craigslist" {
		t.Fatalf("unexpected identity %s/%s", h.ID(), h.Name())
	}
}

func TestHTMLHandler_AllPagesFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := &config.SiteConfig{
		ID:        SiteCarsCom,
		Name:      "Cars.com",
		Endpoints: map[string]string{"search": srv.URL + "/shopping/results/"},
	}
	_, err := NewHTMLHandler(cfg, srv.Client()).Search(context.Background(), Query{Makes: []string{"Toyota"}})
	if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
		t.Fatalf("expected HTTP 403 error, got %v", err)
	}
}

func TestHTMLHandler_UnknownSite(t *testing.T) {
	h := NewHTMLHandler(&config.SiteConfig{ID: "nowhere"}, nil)
	if _, err := h.Search(context.Background(), Query{Makes: []string{"Ford"}}); err == nil {
		t.Fatalf("expected error for unknown site")
	}
}

func TestNewHandler(t *testing.T) {
	if _, ok := NewHandler(loadSite(t, SiteFacebook), nil).(*BrowserHandler); !ok {
		t.Fatalf("facebook should use the browser handler")
	}
	if _, ok := NewHandler(loadSite(t, SiteOfferUp), nil).(*HTMLHandler); !ok {
		t.Fatalf("offerup should use the html handler")
	}
}
