package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"carfinder/models"
	"carfinder/scraper"
	"carfinder/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type fakeSearcher struct {
	got scraper.Query
	res *scraper.Results
}

func (f *fakeSearcher) SearchAll(ctx context.Context, q scraper.Query) *scraper.Results {
	f.got = q
	return f.res
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	res := scraper.NewResults()
	res.Add(models.SourceCraigslist, []models.Listing{
		{URL: "https://sfbay.craigslist.org/cto/1.html", Title: "2012 Honda Civic", Price: "$7,500", Source: models.SourceCraigslist},
		{URL: "https://sfbay.craigslist.org/cto/2.html", Title: "2013 Honda Fit", Price: "$6,100", Source: models.SourceCraigslist},
	}, nil)
	res.Add(models.SourceCarsCom, []models.Listing{
		{URL: "https://www.cars.com/vehicledetail/a/", Title: "2014 Honda Civic", Price: "$9,000", Source: models.SourceCarsCom},
	}, nil)
	res.Add(models.SourceOfferUp, nil, errors.New("HTTP 403"))

	searcher := &fakeSearcher{res: res}
	svc := NewSearchService(searcher, store)

	resp, err := svc.Search(ctx, &models.SearchRequest{
		Make:     models.ParseMakes("Honda, Toyota"),
		Location: "sfbay",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Listings, 3)
	assert.Equal(t, map[string]int{models.SourceCraigslist: 2, models.SourceCarsCom: 1, models.SourceOfferUp: 0}, resp.Summary)
	assert.Equal(t, []string{"Honda", "Toyota"}, searcher.got.Makes)

	runs, err := store.RecentSearchRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Honda,Toyota", runs[0].Makes)
	assert.Equal(t, 3, runs[0].Total)
	assert.Equal(t, 1, runs[0].Errors)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestSearchService_RequiresLocation(t *testing.T) {
	searcher := &fakeSearcher{res: scraper.NewResults()}
	_, err := NewSearchService(searcher, nil).Search(context.Background(), &models.SearchRequest{
		Make:     models.ParseMakes("Honda"),
		Location: "  ",
	})
	require.Error(t, err)
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))
	assert.Nil(t, searcher.got.Makes, "search must not run")
}

func TestLeadService_CRM(t *testing.T) {
	ctx := context.Background()
	svc := NewLeadService(newStore(t))
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC) }

	offer := 8000.0
	a, err := svc.Save(ctx, models.LeadInput{URL: "https://example.com/a", Title: "2012 Honda Civic", MyOffer: &offer})
	require.NoError(t, err)
	b, err := svc.Save(ctx, models.LeadInput{URL: "https://example.com/b", Title: "2015 Mazda 3"})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, a.ID, models.StatusPending))
	require.NoError(t, svc.SetFollowUp(ctx, a.ID, "2026-05-10"))
	require.NoError(t, svc.SetFollowUp(ctx, b.ID, "2026-05-01"))

	pending, err := svc.List(ctx, models.LeadFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[models.StatusNew])
	assert.Equal(t, 1, stats.UpcomingFollowUps)
	assert.Equal(t, 8000.0, stats.TotalOffersValue)

	due, err := svc.DueFollowUps(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	require.NoError(t, svc.SetFollowUp(ctx, b.ID, ""))
	due, err = svc.DueFollowUps(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	require.NoError(t, svc.Delete(ctx, b.ID))
	require.NoError(t, svc.Delete(ctx, b.ID), "deleting twice is a no-op")
	notes, err := svc.Notes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestLeadService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewLeadService(newStore(t))

	_, err := svc.Save(ctx, models.LeadInput{})
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))

	err = svc.SetStatus(ctx, 42, models.StatusPending)
	assert.Equal(t, models.ErrNotFound, models.ErrorCode(err))

	err = svc.SetStatus(ctx, 42, models.Status("Lost"))
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))

	lead, err := svc.Save(ctx, models.LeadInput{URL: "https://example.com/a"})
	require.NoError(t, err)
	err = svc.SetFollowUp(ctx, lead.ID, "10/05/2026")
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))

	_, err = svc.List(ctx, models.LeadFilter{Status: "Lost"})
	assert.Equal(t, models.ErrValidation, models.ErrorCode(err))

	notes, err := svc.Notes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, notes)
}
