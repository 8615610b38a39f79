package leads

import (
	"context"

	"carfinder/apiclient"
	"carfinder/models"
)

var _ Store = (*RemoteStore)(nil)

// RemoteStore keeps leads on the backend through the notes API. Nothing is
// cached; every call is a round-trip.
type RemoteStore struct {
	client *apiclient.Client
}

func NewRemoteStore(client *apiclient.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

func (s *RemoteStore) List(ctx context.Context) ([]models.Lead, error) {
	notes, err := s.client.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Lead{}
	}
	return notes, nil
}

func (s *RemoteStore) Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	lead, err := s.client.SaveNote(ctx, in)
	if err != nil {
		return nil, err
	}
	if lead != nil {
		return lead, nil
	}

	// older servers only acknowledge the write
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if found := Find(all, in.URL); found != nil {
		return found, nil
	}
	return nil, models.Errorf(models.ErrNotFound, "note for %s not returned after save", in.URL)
}

// UpdateStatus posts a note carrying only the URL and the new status. The
// notes API upserts, so an unknown URL is checked first and left alone.
func (s *RemoteStore) UpdateStatus(ctx context.Context, url string, status models.Status) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}
	if Find(all, url) == nil {
		return nil
	}
	_, err = s.client.SaveNote(ctx, models.LeadInput{URL: url, Status: models.StatusPtr(status)})
	return err
}

func (s *RemoteStore) Delete(ctx context.Context, url string) error {
	return s.client.DeleteNote(ctx, url)
}
