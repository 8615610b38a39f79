package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"carfinder/config"
)

func TestScrapingClientFollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClients(config.ProxyConfig{})
	resp, err := c.Scraping.Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/new" {
		t.Fatalf("expected redirect to /new, got %d %s", resp.StatusCode, resp.Request.URL.Path)
	}
}

func TestScrapingClientStopsRedirectLoops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer srv.Close()

	resp, err := NewClients(config.ProxyConfig{}).Scraping.Get(srv.URL + "/loop")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected last redirect response, got %d", resp.StatusCode)
	}
}

func TestInvalidProxyIgnored(t *testing.T) {
	c := NewClients(config.ProxyConfig{URL: "://bad"})
	if c.Scraping == nil || c.API == nil {
		t.Fatalf("clients should be built")
	}
}
