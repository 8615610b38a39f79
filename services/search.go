package services

import (
	"context"
	"strings"
	"time"

	"carfinder/logging"
	"carfinder/models"
	"carfinder/scraper"

	"github.com/google/uuid"
)

// Searcher fans a query out to the configured sites.
type Searcher interface {
	SearchAll(ctx context.Context, q scraper.Query) *scraper.Results
}

// RunRecorder persists search history. Recording failures never fail a
// search.
type RunRecorder interface {
	CreateSearchRun(ctx context.Context, run *models.SearchRun) error
	FinishSearchRun(ctx context.Context, run *models.SearchRun) error
}

// SearchService runs POST /api/search
type SearchService struct {
	searcher Searcher
	runs     RunRecorder
	now      func() time.Time
}

// NewSearchService creates a new SearchService. runs may be nil.
func NewSearchService(searcher Searcher, runs RunRecorder) *SearchService {
	return &SearchService{
		searcher: searcher,
		runs:     runs,
		now:      time.Now,
	}
}

// Search validates req, searches every selected site and merges the
// results. Source failures only show up as zero counts in the summary.
func (s *SearchService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q := scraper.NewQuery(req)
	run := &models.SearchRun{
		ID:        uuid.New().String(),
		Makes:     strings.Join(q.Makes, ","),
		Location:  q.Location,
		StartedAt: s.now().UTC(),
	}
	if s.runs != nil {
		if err := s.runs.CreateSearchRun(ctx, run); err != nil {
			logging.Logf(logging.LevelWarn, "search", "record search run %s: %v", run.ID, err)
		}
	}

	logging.Logf(logging.LevelInfo, "search", "run %s: makes=%q location=%q sites=%v", run.ID, run.Makes, run.Location, q.Sites)
	res := s.searcher.SearchAll(ctx, q)
	listings, summary := scraper.Merge(res, q)

	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Total = len(listings)
	run.Summary = summary
	run.Errors = len(res.Errors)
	if s.runs != nil {
		if err := s.runs.FinishSearchRun(ctx, run); err != nil {
			logging.Logf(logging.LevelWarn, "search", "finish search run %s: %v", run.ID, err)
		}
	}

	logging.Logf(logging.LevelInfo, "search", "run %s: %d listings in %s (%d sources failed)",
		run.ID, run.Total, finished.Sub(run.StartedAt).Round(time.Millisecond), run.Errors)

	return &models.SearchResponse{
		Success:  true,
		Summary:  summary,
		Total:    len(listings),
		Listings: listings,
	}, nil
}
