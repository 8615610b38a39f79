package services

import (
	"context"
	"strings"
	"time"

	"carfinder/logging"
	"carfinder/models"
	"carfinder/storage"
)

// LeadService backs the notes API and the CRM endpoints.
type LeadService struct {
	store storage.Store
	now   func() time.Time
}

// NewLeadService creates a new LeadService
func NewLeadService(store storage.Store) *LeadService {
	return &LeadService{store: store, now: time.Now}
}

// Notes returns every lead, newest first.
func (s *LeadService) Notes(ctx context.Context) ([]models.Lead, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Lead{}
	}
	return notes, nil
}

// List returns leads matching f. An empty status matches every lead.
func (s *LeadService) List(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.Errorf(models.ErrValidation, "unknown status %q", f.Status)
	}
	leads, err := s.store.ListLeads(ctx, f.Normalize())
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return leads, nil
}

// Save upserts a lead keyed by URL.
func (s *LeadService) Save(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	lead, err := s.store.Upsert(ctx, in)
	if err != nil {
		return nil, err
	}
	logging.Logf(logging.LevelDebug, "leads", "saved %d %s (%s)", lead.ID, lead.URL, lead.Status)
	return lead, nil
}

// SetStatus changes the status of lead id.
func (s *LeadService) SetStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() {
		return models.Errorf(models.ErrValidation, "unknown status %q", status)
	}
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.store.UpdateStatusByID(ctx, id, status)
}

// SetFollowUp parses a YYYY-MM-DD date and stores it on lead id. A blank
// date clears the follow-up.
func (s *LeadService) SetFollowUp(ctx context.Context, id int64, date string) error {
	var day *time.Time
	if date = strings.TrimSpace(date); date != "" {
		t, err := time.Parse(models.FollowUpLayout, date)
		if err != nil {
			return models.Errorf(models.ErrValidation, "invalid follow-up date %q, expected YYYY-MM-DD", date)
		}
		day = &t
	}
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.store.SetFollowUp(ctx, id, day)
}

// Delete removes lead id. Unknown ids are not an error.
func (s *LeadService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteByID(ctx, id)
}

// DeleteByURL removes the lead for url. Unknown URLs are not an error.
func (s *LeadService) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return models.Errorf(models.ErrValidation, "URL is required")
	}
	return s.store.Delete(ctx, url)
}

// Stats summarizes every lead for the dashboard.
func (s *LeadService) Stats(ctx context.Context) (*models.LeadStats, error) {
	leads, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := models.Summarize(leads, s.now())
	return &stats, nil
}

// DueFollowUps returns open leads whose follow-up is today or overdue.
func (s *LeadService) DueFollowUps(ctx context.Context) ([]models.Lead, error) {
	return s.store.DueFollowUps(ctx, s.now())
}

func (s *LeadService) get(ctx context.Context, id int64) (*models.Lead, error) {
	lead, err := s.store.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, models.Errorf(models.ErrNotFound, "lead %d not found", id)
	}
	return lead, nil
}
