package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carfinder/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS leads (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'New',
		seller_name TEXT NOT NULL DEFAULT '',
		seller_email TEXT NOT NULL DEFAULT '',
		vin TEXT NOT NULL DEFAULT '',
		my_offer DOUBLE PRECISION,
		follow_up_date DATE,
		contacted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS search_runs (
		id UUID PRIMARY KEY,
		makes TEXT,
		location TEXT,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		total INTEGER DEFAULT 0,
		summary JSONB,
		errors INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
	CREATE INDEX IF NOT EXISTS idx_leads_follow_up ON leads(follow_up_date) WHERE follow_up_date IS NOT NULL;
	`)
	return err
}

// =============================================================================
// Leads
// =============================================================================

func scanPgLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	var status string
	if err := row.Scan(&l.ID, &l.URL, &l.Title, &l.Price, &l.Source, &l.ImageURL, &l.Notes, &l.Phone, &status,
		&l.SellerName, &l.SellerEmail, &l.VIN, &l.MyOffer, &l.FollowUpDate, &l.ContactedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Status = models.Status(status)
	return &l, nil
}

func (s *PostgresStore) queryLeads(ctx context.Context, query string, args ...interface{}) ([]models.Lead, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		l, err := scanPgLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Lead, error) {
	return s.queryLeads(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	f = f.Normalize()
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	if f.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(f.Status))
	}
	query += fmt.Sprintf(` ORDER BY %s %s NULLS LAST, id %s`, f.SortBy, f.Order, f.Order)
	return s.queryLeads(ctx, query, args...)
}

func (s *PostgresStore) GetLeadByID(ctx context.Context, id int64) (*models.Lead, error) {
	l, err := scanPgLead(s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// Upsert merges in into the row for in.URL in a single statement. Empty
// snapshot fields and nil pointers keep the stored values.
func (s *PostgresStore) Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var status *string
	if in.Status != nil {
		st := string(*in.Status)
		status = &st
	}
	var followUp *time.Time
	if in.FollowUpDate != nil {
		d := models.Day(*in.FollowUpDate)
		followUp = &d
	}

	query := `
		INSERT INTO leads (
			url, title, price, source, image_url, notes, phone, status,
			seller_name, seller_email, vin, my_offer, follow_up_date, contacted_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, COALESCE($6, ''), COALESCE($7, ''), COALESCE($8, 'New'),
			COALESCE($9, ''), COALESCE($10, ''), COALESCE($11, ''), $12, $13,
			CASE WHEN $8 = 'Contacted' THEN $14::timestamptz END, $14, $14
		)
		ON CONFLICT (url) DO UPDATE SET
			title = COALESCE(NULLIF(EXCLUDED.title, ''), leads.title),
			price = COALESCE(NULLIF(EXCLUDED.price, ''), leads.price),
			source = COALESCE(NULLIF(EXCLUDED.source, ''), leads.source),
			image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), leads.image_url),
			notes = COALESCE($6, leads.notes),
			phone = COALESCE($7, leads.phone),
			status = COALESCE($8, leads.status),
			seller_name = COALESCE($9, leads.seller_name),
			seller_email = COALESCE($10, leads.seller_email),
			vin = COALESCE($11, leads.vin),
			my_offer = COALESCE($12, leads.my_offer),
			follow_up_date = COALESCE($13, leads.follow_up_date),
			contacted_at = COALESCE(leads.contacted_at, EXCLUDED.contacted_at),
			updated_at = GREATEST(leads.updated_at, EXCLUDED.updated_at)
		RETURNING ` + leadColumns

	return scanPgLead(s.pool.QueryRow(ctx, query,
		in.URL, in.Title, in.Price, in.Source, in.ImageURL, in.Notes, in.Phone, status,
		in.SellerName, in.SellerEmail, in.VIN, in.MyOffer, followUp, time.Now().UTC(),
	))
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, url string, status models.Status) error {
	return s.updateStatus(ctx, "url = $2", url, status)
}

func (s *PostgresStore) UpdateStatusByID(ctx context.Context, id int64, status models.Status) error {
	return s.updateStatus(ctx, "id = $2", id, status)
}

func (s *PostgresStore) updateStatus(ctx context.Context, where string, key interface{}, status models.Status) error {
	if !status.Valid() {
		return models.Errorf(models.ErrValidation, "unknown status %q", status)
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET status = $1,
			contacted_at = CASE WHEN $1 = 'Contacted' THEN COALESCE(contacted_at, NOW()) ELSE contacted_at END,
			updated_at = GREATEST(updated_at, NOW())
		WHERE `+where, string(status), key)
	return err
}

func (s *PostgresStore) SetFollowUp(ctx context.Context, id int64, date *time.Time) error {
	var day *time.Time
	if date != nil {
		d := models.Day(*date)
		day = &d
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE leads SET follow_up_date = $1, updated_at = GREATEST(updated_at, NOW())
		WHERE id = $2`, day, id)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, url string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE url = $1`, url)
	return err
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) DueFollowUps(ctx context.Context, asOf time.Time) ([]models.Lead, error) {
	leads, err := s.queryLeads(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE follow_up_date IS NOT NULL AND follow_up_date <= $1
		ORDER BY follow_up_date, id`, models.Day(asOf))
	if err != nil {
		return nil, err
	}
	return openLeads(leads), nil
}

// =============================================================================
// Search Runs
// =============================================================================

func (s *PostgresStore) CreateSearchRun(ctx context.Context, run *models.SearchRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_runs (id, makes, location, started_at)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.Makes, run.Location, run.StartedAt)
	return err
}

func (s *PostgresStore) FinishSearchRun(ctx context.Context, run *models.SearchRun) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE search_runs SET finished_at = $2, total = $3, summary = $4, errors = $5
		WHERE id = $1`,
		run.ID, run.FinishedAt, run.Total, summary, run.Errors)
	return err
}

func (s *PostgresStore) RecentSearchRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, COALESCE(makes, ''), COALESCE(location, ''), started_at, finished_at, total,
			COALESCE(summary, '{}'::jsonb), errors
		FROM search_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SearchRun
	for rows.Next() {
		var run models.SearchRun
		var summary []byte
		if err := rows.Scan(&run.ID, &run.Makes, &run.Location, &run.StartedAt, &run.FinishedAt,
			&run.Total, &summary, &run.Errors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summary, &run.Summary); err != nil {
			return nil, fmt.Errorf("search run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
