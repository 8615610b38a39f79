package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"carfinder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// clock returns a now func that advances a second per call.
func clock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func input(url string) models.LeadInput {
	return models.LeadInput{
		URL:    url,
		Title:  "2012 Toyota Camry",
		Price:  "$7,900",
		Source: models.SourceCarsCom,
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = clock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	first, err := s.Upsert(ctx, input("https://www.cars.com/vehicledetail/1/"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, first.Status)
	assert.NotZero(t, first.ID)

	in := models.LeadInput{URL: first.URL, Notes: models.StringPtr("asked for carfax"), Phone: models.StringPtr("555-0100")}
	second, err := s.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "2012 Toyota Camry", second.Title)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "asked for carfax", all[0].Notes)
	assert.Equal(t, "555-0100", all[0].Phone)
	assert.Equal(t, models.StatusNew, all[0].Status)
}

func TestSQLiteStore_UpsertRequiresURL(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Upsert(context.Background(), models.LeadInput{})
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = clock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for _, u := range []string{"https://a.example/1", "https://a.example/2"} {
		_, err := s.Upsert(ctx, input(u))
		require.NoError(t, err)
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://a.example/2", all[0].URL)
}

func TestSQLiteStore_StatusAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lead, err := s.Upsert(ctx, input("https://a.example/1"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatusByID(ctx, lead.ID, models.StatusContacted))
	got, err := s.GetLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, got.Status)
	assert.NotNil(t, got.ContactedAt)

	require.NoError(t, s.UpdateStatus(ctx, lead.URL, models.StatusRejected))
	got, err = s.GetLead(ctx, lead.URL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)

	assert.Error(t, s.UpdateStatus(ctx, lead.URL, models.Status("bogus")))

	assert.NoError(t, s.DeleteByID(ctx, 9999))
	assert.NoError(t, s.Delete(ctx, "https://missing.example"))

	require.NoError(t, s.DeleteByID(ctx, lead.ID))
	got, err = s.GetLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListLeadsFilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = clock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	offers := map[string]float64{"https://a.example/1": 5000, "https://a.example/2": 9000, "https://a.example/3": 7000}
	for _, u := range []string{"https://a.example/1", "https://a.example/2", "https://a.example/3"} {
		in := input(u)
		offer := offers[u]
		in.MyOffer = &offer
		in.Status = models.StatusPtr(models.StatusPending)
		_, err := s.Upsert(ctx, in)
		require.NoError(t, err)
	}
	require.NoError(t, s.UpdateStatus(ctx, "https://a.example/3", models.StatusRejected))

	pending, err := s.ListLeads(ctx, models.LeadFilter{Status: models.StatusPending, SortBy: "my_offer", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "https://a.example/1", pending[0].URL)
	assert.Equal(t, "https://a.example/2", pending[1].URL)

	// unknown sort column falls back to created_at desc
	all, err := s.ListLeads(ctx, models.LeadFilter{SortBy: "id; DROP TABLE leads"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://a.example/3", all[0].URL)
}

func TestSQLiteStore_FollowUps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	today := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	a, err := s.Upsert(ctx, input("https://a.example/1"))
	require.NoError(t, err)
	b, err := s.Upsert(ctx, input("https://a.example/2"))
	require.NoError(t, err)
	c, err := s.Upsert(ctx, input("https://a.example/3"))
	require.NoError(t, err)

	overdue := today.AddDate(0, 0, -2)
	later := today.AddDate(0, 0, 3)
	require.NoError(t, s.SetFollowUp(ctx, a.ID, &today))
	require.NoError(t, s.SetFollowUp(ctx, b.ID, &overdue))
	require.NoError(t, s.SetFollowUp(ctx, c.ID, &later))

	due, err := s.DueFollowUps(ctx, today)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, b.URL, due[0].URL)
	assert.Equal(t, a.URL, due[1].URL)
	assert.Equal(t, models.Day(today), *due[1].FollowUpDate)

	require.NoError(t, s.UpdateStatusByID(ctx, b.ID, models.StatusSuccessful))
	due, err = s.DueFollowUps(ctx, today)
	require.NoError(t, err)
	assert.Len(t, due, 1, "closed leads are not due")

	require.NoError(t, s.SetFollowUp(ctx, a.ID, nil))
	got, err := s.GetLeadByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FollowUpDate)
}

func TestSQLiteStore_SearchRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &models.SearchRun{ID: "6f1c2a8e-0000-4000-8000-000000000001", Makes: "Toyota,Honda", Location: "sfbay", StartedAt: started}
	require.NoError(t, s.CreateSearchRun(ctx, run))

	finished := started.Add(4 * time.Second)
	run.FinishedAt = &finished
	run.Total = 3
	run.Summary = map[string]int{models.SourceCraigslist: 2, models.SourceCarsCom: 1}
	run.Errors = 1
	require.NoError(t, s.FinishSearchRun(ctx, run))

	runs, err := s.RecentSearchRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Toyota,Honda", runs[0].Makes)
	assert.Equal(t, 3, runs[0].Total)
	assert.Equal(t, 2, runs[0].Summary[models.SourceCraigslist])
	assert.Equal(t, 1, runs[0].Errors)
	require.NotNil(t, runs[0].FinishedAt)
}

func TestMergeLead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &models.Lead{
		ID: 7, URL: "https://a.example/1", Title: "old", Notes: "keep", Status: models.StatusPending,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(time.Hour),
	}

	got := mergeLead(existing, models.LeadInput{URL: existing.URL, Status: models.StatusPtr(models.StatusContacted)}, now)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "old", got.Title)
	assert.Equal(t, "keep", got.Notes)
	assert.Equal(t, models.StatusContacted, got.Status)
	assert.NotNil(t, got.ContactedAt)
	assert.Equal(t, existing.UpdatedAt, got.UpdatedAt, "updated_at never moves backwards")
	assert.Equal(t, models.StatusPending, existing.Status, "input lead is not modified")

	fresh := mergeLead(nil, models.LeadInput{URL: "https://a.example/2"}, now)
	assert.Equal(t, models.StatusNew, fresh.Status)
	assert.Equal(t, now, fresh.CreatedAt)
	assert.Equal(t, now, fresh.UpdatedAt)
}
