package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carfinder/config"
	"carfinder/logging"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// site builds the result-page URLs for a query and parses a fetched page.
type site interface {
	requests(q Query) ([]string, error)
	parse(doc *goquery.Document, base *url.URL) []models.Listing
}

// HTMLHandler fetches server-rendered result pages and extracts listings
// with goquery.
type HTMLHandler struct {
	cfg     *config.SiteConfig
	client  *http.Client
	limiter *rate.Limiter
	site    site
}

func NewHTMLHandler(cfg *config.SiteConfig, client *http.Client) *HTMLHandler {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	limit := rate.Inf
	if cfg.RateLimitMS > 0 {
		limit = rate.Every(time.Duration(cfg.RateLimitMS) * time.Millisecond)
	}
	return &HTMLHandler{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		site:    newSite(cfg),
	}
}

func newSite(cfg *config.SiteConfig) site {
	switch cfg.ID {
	case SiteCraigslist:
		return &craigslist{cfg: cfg}
	case SiteCarsCom:
		return &carsCom{cfg: cfg}
	case SiteOfferUp:
		return &offerUp{cfg: cfg}
	case SiteAutoTrader:
		return &autoTrader{cfg: cfg}
	case SiteFacebook:
		return &facebook{cfg: cfg}
	default:
		return nil
	}
}

func (h *HTMLHandler) ID() string {
	return h.cfg.ID
}

func (h *HTMLHandler) Name() string {
	return h.cfg.Name
}

// Search fetches every result page for q. A page that fails is logged and
// skipped; the search only fails when no page could be fetched.
func (h *HTMLHandler) Search(ctx context.Context, q Query) ([]models.Listing, error) {
	if h.site == nil {
		return nil, fmt.Errorf("unknown site: %s", h.cfg.ID)
	}

	pages, err := h.site.requests(q)
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	var lastErr error
	fetched := 0
	for _, pageURL := range pages {
		if err := h.limiter.Wait(ctx); err != nil {
			return listings, err
		}

		doc, base, err := h.fetch(ctx, pageURL)
		if err != nil {
			logging.Logf(logging.LevelWarn, h.cfg.ID, "fetch %s: %v", pageURL, err)
			lastErr = err
			continue
		}
		fetched++

		found := h.site.parse(doc, base)
		if q.MaxResults > 0 && len(found) > q.MaxResults {
			found = found[:q.MaxResults]
		}
		logging.Logf(logging.LevelDebug, h.cfg.ID, "%d listings from %s", len(found), pageURL)
		listings = append(listings, found...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}
	return listings, nil
}

func (h *HTMLHandler) fetch(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}

	if blocked(doc) {
		logging.Logf(logging.LevelWarn, h.cfg.ID, "possible blocking detected on %s", pageURL)
	}
	return doc, resp.Request.URL, nil
}

func blocked(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Find("title").Text() + " " + doc.Find("h1").First().Text())
	return strings.Contains(text, "captcha") || strings.Contains(text, "blocked") || strings.Contains(text, "access denied")
}

// expand fills {placeholders} in an endpoint template.
func expand(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

func withQuery(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// resolve makes href absolute against the page it was found on.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}

// imageURL returns the src or lazy-load src of the first image in sel.
func imageURL(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	if src, ok := img.Attr("src"); ok && src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	src, _ := img.Attr("data-src")
	return src
}

// uniqueLinks returns the elements matching selector, first occurrence of
// each href only.
func uniqueLinks(doc *goquery.Document, selector string) []*goquery.Selection {
	seen := make(map[string]bool)
	var links []*goquery.Selection
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, sel)
	})
	return links
}
