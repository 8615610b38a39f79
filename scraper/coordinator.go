package scraper

import (
	"context"
	"sort"
	"sync"
	"time"

	"carfinder/identity"
	"carfinder/logging"
	"carfinder/models"

	"golang.org/x/sync/errgroup"
)

// DefaultSourceTimeout bounds each site's search.
const DefaultSourceTimeout = 12 * time.Second

// Results holds the per-source outcome of a fan-out search, keyed by the
// site's display name. A failed or timed-out source has an empty entry in
// Listings and its error in Errors.
type Results struct {
	Listings map[string][]models.Listing
	Errors   map[string]error
	order    []string
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{
		Listings: make(map[string][]models.Listing),
		Errors:   make(map[string]error),
	}
}

// Add records the outcome of one source. Sources merge in the order they
// were first added.
func (r *Results) Add(source string, listings []models.Listing, err error) {
	if !contains(r.order, source) {
		r.order = append(r.order, source)
	}
	if err != nil {
		r.Errors[source] = err
		listings = nil
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	r.Listings[source] = listings
}

// Sources returns the searched source names in merge order.
func (r *Results) Sources() []string {
	return r.order
}

type Coordinator struct {
	handlers map[string]Handler
	timeout  time.Duration
}

func NewCoordinator(handlers []Handler, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	m := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		m[h.ID()] = h
	}
	return &Coordinator{handlers: m, timeout: timeout}
}

// Sites returns the registered site IDs in merge order.
func (c *Coordinator) Sites() []string {
	var ids []string
	for _, id := range sourceOrder {
		if _, ok := c.handlers[id]; ok {
			ids = append(ids, id)
		}
	}
	var extra []string
	for id := range c.handlers {
		if !contains(sourceOrder, id) {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

// SearchAll runs every selected site in parallel, each under its own
// timeout. It never fails: sources that error out contribute nothing.
func (c *Coordinator) SearchAll(ctx context.Context, q Query) *Results {
	res := NewResults()
	if len(q.Makes) == 0 {
		return res
	}

	var selected []Handler
	for _, id := range c.Sites() {
		if q.Wants(id) {
			selected = append(selected, c.handlers[id])
		}
	}
	if len(selected) == 0 {
		logging.Logf(logging.LevelWarn, "search", "no sources selected")
		return res
	}

	for _, h := range selected {
		res.order = append(res.order, h.Name())
	}

	// Failures stay per source: they land in res and never cancel the
	// other searches, so every goroutine returns nil.
	var mu sync.Mutex
	var g errgroup.Group
	for _, h := range selected {
		h := h
		g.Go(func() error {
			start := time.Now()
			listings, err := c.searchOne(ctx, h, q)

			if err != nil {
				logging.Logf(logging.LevelError, h.ID(), "search failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
			} else {
				logging.Logf(logging.LevelInfo, h.ID(), "found %d listings in %s", len(listings), time.Since(start).Round(time.Millisecond))
			}

			mu.Lock()
			res.Add(h.Name(), listings, err)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return res
}

type searchResult struct {
	listings []models.Listing
	err      error
}

// searchOne returns when the handler finishes or its timeout passes,
// whichever is first. Handlers that ignore cancellation are left to finish
// in the background.
func (c *Coordinator) searchOne(ctx context.Context, h Handler, q Query) ([]models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan searchResult, 1)
	go func() {
		listings, err := h.Search(ctx, q)
		done <- searchResult{listings, err}
	}()

	select {
	case r := <-done:
		return r.listings, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Merge flattens per-source results in source order and drops repeated
// listings by canonical URL, or by fingerprint when mileage is known. It
// then applies the query's year and price bounds and caps each source at
// q.MaxResults. The summary counts what was kept, including sources that
// returned nothing.
func Merge(res *Results, q Query) ([]models.Listing, map[string]int) {
	summary := make(map[string]int, len(res.order))
	seen := make(map[string]bool)
	merged := []models.Listing{}

	for _, source := range res.order {
		summary[source] = 0
		for _, l := range res.Listings[source] {
			if q.MaxResults > 0 && summary[source] >= q.MaxResults {
				break
			}
			if l.URL == "" {
				continue
			}
			key := identity.CanonicalURL(l.URL)
			if seen[key] {
				continue
			}
			// reposts of the same car under a new URL
			var fp string
			if l.Mileage != "" {
				fp = identity.Fingerprint(&l)
				if seen[fp] {
					continue
				}
			}
			if !q.Keep(l) {
				continue
			}
			seen[key] = true
			if fp != "" {
				seen[fp] = true
			}
			merged = append(merged, l)
			summary[source]++
		}
	}
	return merged, summary
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
