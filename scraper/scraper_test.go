package scraper

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carfinder/config"

	"github.com/PuerkitoBio/goquery"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func loadDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(loadFixture(t, name))))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	return doc
}

// loadSite reads the shipped site config so parsers are tested against the
// selectors they run with.
func loadSite(t *testing.T, id string) *config.SiteConfig {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "config", "sites", id+".yaml"))
	if err != nil {
		t.Fatalf("read site config %s: %v", id, err)
	}
	cfg, err := config.ParseSiteConfig(data)
	if err != nil {
		t.Fatalf("parse site config %s: %v", id, err)
	}
	return cfg
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %s: %v", raw, err)
	}
	return u
}
