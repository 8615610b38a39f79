// Package listings holds the most recent search result set for client-side
// filtering by source.
package listings

import (
	"sync"

	"carfinder/models"
)

// Cache owns the listings of the last search and the active source filter.
// One Cache is created per UI session and passed to whatever renders it.
type Cache struct {
	mu       sync.RWMutex
	listings []models.Listing
	filter   string
}

// NewCache returns an empty cache with the filter set to "all".
func NewCache() *Cache {
	return &Cache{filter: models.FilterAll}
}

// SetResults replaces the cached set and resets the filter to "all".
func (c *Cache) SetResults(listings []models.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listings = append([]models.Listing(nil), listings...)
	c.filter = models.FilterAll
}

// FilterBySource makes source the active filter and returns the cached
// listings from that source in their original order. "all" (or an empty
// source) returns the full set.
func (c *Cache) FilterBySource(source string) []models.Listing {
	if source == "" {
		source = models.FilterAll
	}

	c.mu.Lock()
	c.filter = source
	c.mu.Unlock()

	return c.Current()
}

// Current returns the listings that pass the active filter.
func (c *Cache) Current() []models.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filter == models.FilterAll {
		return append([]models.Listing(nil), c.listings...)
	}

	out := make([]models.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		if l.Source == c.filter {
			out = append(out, l)
		}
	}
	return out
}

// Filter returns the active filter.
func (c *Cache) Filter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Len returns the size of the unfiltered set.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listings)
}

// Sources returns the distinct sources in the order they first appear.
func (c *Cache) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var sources []string
	for _, l := range c.listings {
		if !seen[l.Source] {
			seen[l.Source] = true
			sources = append(sources, l.Source)
		}
	}
	return sources
}

// Lookup finds a cached listing by URL.
func (c *Cache) Lookup(url string) (models.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, l := range c.listings {
		if l.URL == url {
			return l, true
		}
	}
	return models.Listing{}, false
}
