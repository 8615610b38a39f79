// Package storage holds the server-side lead stores and the backup uploader.
package storage

import (
	"context"
	"time"

	"carfinder/models"
)

// Store is implemented by SQLiteStore and PostgresStore.
type Store interface {
	List(ctx context.Context) ([]models.Lead, error)
	ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error)
	GetLeadByID(ctx context.Context, id int64) (*models.Lead, error)
	Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error)
	UpdateStatus(ctx context.Context, url string, status models.Status) error
	UpdateStatusByID(ctx context.Context, id int64, status models.Status) error
	SetFollowUp(ctx context.Context, id int64, date *time.Time) error
	Delete(ctx context.Context, url string) error
	DeleteByID(ctx context.Context, id int64) error
	DueFollowUps(ctx context.Context, asOf time.Time) ([]models.Lead, error)

	CreateSearchRun(ctx context.Context, run *models.SearchRun) error
	FinishSearchRun(ctx context.Context, run *models.SearchRun) error
	RecentSearchRuns(ctx context.Context, limit int) ([]models.SearchRun, error)

	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// mergeLead applies in to a copy of existing, or builds a new lead when
// existing is nil. Status defaults to New for new leads and updated_at never
// moves backwards.
func mergeLead(existing *models.Lead, in models.LeadInput, now time.Time) *models.Lead {
	var lead models.Lead
	if existing != nil {
		lead = *existing
	} else {
		lead = models.Lead{
			Status:    models.InitialStatus,
			CreatedAt: now,
		}
	}
	in.Apply(&lead)

	if lead.FollowUpDate != nil {
		d := models.Day(*lead.FollowUpDate)
		lead.FollowUpDate = &d
	}
	if lead.Status == models.StatusContacted && lead.ContactedAt == nil {
		t := now
		lead.ContactedAt = &t
	}
	if now.After(lead.UpdatedAt) {
		lead.UpdatedAt = now
	}
	return &lead
}

func openLeads(leads []models.Lead) []models.Lead {
	open := leads[:0]
	for _, l := range leads {
		if !l.Status.Closed() {
			open = append(open, l)
		}
	}
	return open
}
