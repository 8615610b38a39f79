// Package leads stores user annotations ("leads") keyed by listing URL.
//
// Two interchangeable backends implement Store: FileStore keeps the whole
// collection as one JSON blob on local disk, RemoteStore round-trips every
// call to the notes API. A deployment picks exactly one.
package leads

import (
	"context"

	"carfinder/models"
)

// Store is CRUD over leads keyed by URL.
type Store interface {
	// List returns every lead, most recently created first.
	List(ctx context.Context) ([]models.Lead, error)
	// Upsert updates the lead for in.URL in place or inserts a new one.
	Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error)
	// UpdateStatus sets the status of the lead for url. Unknown URLs are a no-op.
	UpdateStatus(ctx context.Context, url string, status models.Status) error
	// Delete removes the lead for url. Unknown URLs are a no-op.
	Delete(ctx context.Context, url string) error
}

// Find returns the lead for url, or nil.
func Find(leads []models.Lead, url string) *models.Lead {
	for i := range leads {
		if leads[i].URL == url {
			return &leads[i]
		}
	}
	return nil
}

// Cycle advances the status of the lead for url one step through
// models.ReviewCycle and returns the new status.
func Cycle(ctx context.Context, s Store, url string) (models.Status, error) {
	all, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	lead := Find(all, url)
	if lead == nil {
		return "", models.Errorf(models.ErrNotFound, "no lead for %s", url)
	}
	next := models.NextStatus(lead.Status)
	if err := s.UpdateStatus(ctx, url, next); err != nil {
		return "", err
	}
	return next, nil
}
