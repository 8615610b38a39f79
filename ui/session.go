// Package ui is the client side of carfinder: a session holding the last
// search and the user's leads, and the terminal rendering of both.
package ui

import (
	"context"

	"carfinder/leads"
	"carfinder/listings"
	"carfinder/models"
)

// SearchClient submits a search to the backend.
type SearchClient interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
}

// Session runs user actions one at a time against one cache and one lead
// store.
type Session struct {
	client  SearchClient
	store   leads.Store
	cache   *listings.Cache
	summary map[string]int
	total   int
}

func NewSession(client SearchClient, store leads.Store) *Session {
	return &Session{
		client: client,
		store:  store,
		cache:  listings.NewCache(),
	}
}

// Cache returns the listings of the last successful search.
func (s *Session) Cache() *listings.Cache {
	return s.cache
}

// Summary returns the per-source counts and total of the last search.
func (s *Session) Summary() (map[string]int, int) {
	return s.summary, s.total
}

// Search validates the form and submits it. On any failure the previous
// results stay in place.
func (s *Session) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.SetResults(resp.Listings)
	s.summary = resp.Summary
	s.total = resp.Total
	return resp, nil
}

// Filter sets the active source filter and returns the matching listings.
func (s *Session) Filter(source string) []models.Listing {
	return s.cache.FilterBySource(source)
}

// Notes returns every saved lead.
func (s *Session) Notes(ctx context.Context) ([]models.Lead, error) {
	return s.store.List(ctx)
}

// SaveNote stores notes and phone for url. When url is a cached listing its
// title, price, source and image are snapshotted into the lead.
func (s *Session) SaveNote(ctx context.Context, url, notes, phone string) (*models.Lead, error) {
	in := s.input(url)
	in.Notes = &notes
	in.Phone = &phone
	return s.store.Upsert(ctx, in)
}

// SetStatus sets the status chosen on a listing card, creating the lead on
// first use.
func (s *Session) SetStatus(ctx context.Context, url string, status models.Status) error {
	if !status.Valid() {
		return models.Errorf(models.ErrValidation, "unknown status %q", status)
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if leads.Find(all, url) != nil {
		return s.store.UpdateStatus(ctx, url, status)
	}
	in := s.input(url)
	in.Status = &status
	_, err = s.store.Upsert(ctx, in)
	return err
}

// Cycle advances the lead for url to the next review status.
func (s *Session) Cycle(ctx context.Context, url string) (models.Status, error) {
	return leads.Cycle(ctx, s.store, url)
}

// Delete removes the lead for url.
func (s *Session) Delete(ctx context.Context, url string) error {
	return s.store.Delete(ctx, url)
}

func (s *Session) input(url string) models.LeadInput {
	if l, ok := s.cache.Lookup(url); ok {
		return models.InputFromListing(l)
	}
	return models.LeadInput{URL: url}
}
