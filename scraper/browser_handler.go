package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"carfinder/config"
	"carfinder/logging"
	"carfinder/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"
)

const (
	navigationTimeout = 30 * time.Second
	resultsTimeout    = 10 * time.Second
	scrollPasses      = 3
)

// BrowserHandler renders result pages in Chromium for sites that build
// their listings client-side. The browser profile is kept in browser_data
// so a logged-in session survives restarts.
type BrowserHandler struct {
	cfg     *config.SiteConfig
	site    site
	limiter *rate.Limiter

	mu          sync.Mutex
	pw          *playwright.Playwright
	context     playwright.BrowserContext
	initialized bool
}

func NewBrowserHandler(cfg *config.SiteConfig) *BrowserHandler {
	limit := rate.Inf
	if cfg.RateLimitMS > 0 {
		limit = rate.Every(time.Duration(cfg.RateLimitMS) * time.Millisecond)
	}
	return &BrowserHandler{
		cfg:     cfg,
		site:    newSite(cfg),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (h *BrowserHandler) ID() string {
	return h.cfg.ID
}

func (h *BrowserHandler) Name() string {
	return h.cfg.Name
}

func (h *BrowserHandler) Search(ctx context.Context, q Query) ([]models.Listing, error) {
	if h.site == nil {
		return nil, fmt.Errorf("unknown site: %s", h.cfg.ID)
	}
	pages, err := h.site.requests(q)
	if err != nil {
		return nil, err
	}

	if err := h.ensureBrowser(); err != nil {
		return nil, err
	}
	defer h.Close()

	var listings []models.Listing
	for _, pageURL := range pages {
		if err := h.limiter.Wait(ctx); err != nil {
			return listings, err
		}

		found, err := h.render(pageURL)
		if err != nil {
			logging.Logf(logging.LevelWarn, h.cfg.ID, "render %s: %v", pageURL, err)
			continue
		}
		if q.MaxResults > 0 && len(found) > q.MaxResults {
			found = found[:q.MaxResults]
		}
		listings = append(listings, found...)
	}
	return listings, nil
}

func (h *BrowserHandler) ensureBrowser() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	var err error
	h.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	cwd, _ := os.Getwd()
	userDataDir := filepath.Join(cwd, "browser_data")
	h.context, err = h.pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:  playwright.Bool(true),
		UserAgent: playwright.String(userAgent),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		h.pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	h.initialized = true
	return nil
}

func (h *BrowserHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.context != nil {
		h.context.Close()
		h.context = nil
	}
	if h.pw != nil {
		h.pw.Stop()
		h.pw = nil
	}
	h.initialized = false
}

func (h *BrowserHandler) render(pageURL string) ([]models.Listing, error) {
	page, err := h.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	logging.Logf(logging.LevelDebug, h.cfg.ID, "navigating to %s", pageURL)
	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, err
	}

	h.handleConsent(page)

	waitFor := h.cfg.Selectors["link"]
	if err := page.Locator(waitFor).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(resultsTimeout.Milliseconds())),
	}); err != nil {
		logging.Logf(logging.LevelWarn, h.cfg.ID, "no results appeared on %s", pageURL)
	}

	// lazy-loaded cards only render once scrolled into view
	for i := 0; i < scrollPasses; i++ {
		page.Mouse().Wheel(0, float64(600+rand.Intn(400)))
		page.WaitForTimeout(float64(400 + rand.Intn(400)))
	}

	content, err := page.Content()
	if err != nil {
		return nil, err
	}
	if detectLoginWall(content) {
		logging.Logf(logging.LevelWarn, h.cfg.ID, "login wall on %s, results may be partial", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(page.URL())
	return h.site.parse(doc, base), nil
}

func (h *BrowserHandler) handleConsent(page playwright.Page) {
	consentSelectors := []string{
		"button[data-cookiebanner='accept_button']",
		"button:has-text('Allow all cookies')",
		"button:has-text('Accept All')",
		"button:has-text('Accept')",
		"div[aria-label='Close'][role='button']",
	}

	for _, selector := range consentSelectors {
		btn := page.Locator(selector).First()
		if visible, _ := btn.IsVisible(); visible {
			logging.Logf(logging.LevelDebug, h.cfg.ID, "clicking consent button: %s", selector)
			btn.Click()
			page.WaitForTimeout(1000)
			break
		}
	}
}

func detectLoginWall(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "log in to continue") || strings.Contains(lower, "you must log in")
}
