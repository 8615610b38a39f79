package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"carfinder/models"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
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
		my_offer REAL,
		follow_up_date DATE,
		contacted_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS search_runs (
		id TEXT PRIMARY KEY,
		makes TEXT,
		location TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		total INTEGER DEFAULT 0,
		summary JSON,
		errors INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
	CREATE INDEX IF NOT EXISTS idx_leads_follow_up ON leads(follow_up_date) WHERE follow_up_date IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_runs_started ON search_runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const leadColumns = `id, url, title, price, source, image_url, notes, phone, status,
	seller_name, seller_email, vin, my_offer, follow_up_date, contacted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var l models.Lead
	var offer sql.NullFloat64
	var followUp, contacted sql.NullTime
	if err := row.Scan(&l.ID, &l.URL, &l.Title, &l.Price, &l.Source, &l.ImageURL, &l.Notes, &l.Phone, &l.Status,
		&l.SellerName, &l.SellerEmail, &l.VIN, &offer, &followUp, &contacted, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if offer.Valid {
		l.MyOffer = &offer.Float64
	}
	if followUp.Valid {
		t := followUp.Time.UTC()
		l.FollowUpDate = &t
	}
	if contacted.Valid {
		t := contacted.Time.UTC()
		l.ContactedAt = &t
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

func (s *SQLiteStore) queryLeads(ctx context.Context, query string, args ...interface{}) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// List returns every lead, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Lead, error) {
	return s.queryLeads(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC`)
}

// ListLeads is the CRM listing: optional status filter, whitelisted sort.
func (s *SQLiteStore) ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	f = f.Normalize()
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	if f.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, f.Status)
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s`, f.SortBy, f.Order, f.Order)
	return s.queryLeads(ctx, query, args...)
}

func (s *SQLiteStore) GetLead(ctx context.Context, url string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE url = ?`, url)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (s *SQLiteStore) GetLeadByID(ctx context.Context, id int64) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// Upsert merges in into the lead stored for in.URL, or inserts a new one.
// The read and the write share a transaction so concurrent saves of the same
// URL cannot both insert.
func (s *SQLiteStore) Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	existing, err := scanLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE url = ?`, in.URL))
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	lead := mergeLead(existing, in, now)
	if existing == nil {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO leads (url, title, price, source, image_url, notes, phone, status,
				seller_name, seller_email, vin, my_offer, follow_up_date, contacted_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lead.URL, lead.Title, lead.Price, lead.Source, lead.ImageURL, lead.Notes, lead.Phone, lead.Status,
			lead.SellerName, lead.SellerEmail, lead.VIN, lead.MyOffer, lead.FollowUpDate, lead.ContactedAt,
			lead.CreatedAt, lead.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert lead: %w", err)
		}
		if lead.ID, err = result.LastInsertId(); err != nil {
			return nil, err
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			UPDATE leads SET title = ?, price = ?, source = ?, image_url = ?, notes = ?, phone = ?, status = ?,
				seller_name = ?, seller_email = ?, vin = ?, my_offer = ?, follow_up_date = ?, contacted_at = ?,
				updated_at = ?
			WHERE id = ?`,
			lead.Title, lead.Price, lead.Source, lead.ImageURL, lead.Notes, lead.Phone, lead.Status,
			lead.SellerName, lead.SellerEmail, lead.VIN, lead.MyOffer, lead.FollowUpDate, lead.ContactedAt,
			lead.UpdatedAt, lead.ID)
		if err != nil {
			return nil, fmt.Errorf("update lead: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, url string, status models.Status) error {
	return s.updateStatus(ctx, "url = ?", url, status)
}

// UpdateStatusByID is UpdateStatus keyed by lead id.
func (s *SQLiteStore) UpdateStatusByID(ctx context.Context, id int64, status models.Status) error {
	return s.updateStatus(ctx, "id = ?", id, status)
}

func (s *SQLiteStore) updateStatus(ctx context.Context, where string, key interface{}, status models.Status) error {
	if !status.Valid() {
		return models.Errorf(models.ErrValidation, "unknown status %q", status)
	}
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET status = ?,
			contacted_at = CASE WHEN ? AND contacted_at IS NULL THEN ? ELSE contacted_at END,
			updated_at = CASE WHEN updated_at > ? THEN updated_at ELSE ? END
		WHERE `+where,
		status, status == models.StatusContacted, now, now, now, key)
	return err
}

// SetFollowUp sets or clears the follow-up date of a lead.
func (s *SQLiteStore) SetFollowUp(ctx context.Context, id int64, date *time.Time) error {
	var day *time.Time
	if date != nil {
		d := models.Day(*date)
		day = &d
	}
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET follow_up_date = ?,
			updated_at = CASE WHEN updated_at > ? THEN updated_at ELSE ? END
		WHERE id = ?`, day, now, now, id)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE url = ?`, url)
	return err
}

// DeleteByID is Delete keyed by lead id.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	return err
}

// DueFollowUps returns open leads whose follow-up date is on or before asOf.
func (s *SQLiteStore) DueFollowUps(ctx context.Context, asOf time.Time) ([]models.Lead, error) {
	leads, err := s.queryLeads(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE follow_up_date IS NOT NULL AND follow_up_date <= ?
		ORDER BY follow_up_date, id`, models.Day(asOf))
	if err != nil {
		return nil, err
	}
	return openLeads(leads), nil
}

func (s *SQLiteStore) CreateSearchRun(ctx context.Context, run *models.SearchRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_runs (id, makes, location, started_at, total, errors)
		VALUES (?, ?, ?, ?, 0, 0)`,
		run.ID, run.Makes, run.Location, run.StartedAt)
	return err
}

func (s *SQLiteStore) FinishSearchRun(ctx context.Context, run *models.SearchRun) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE search_runs SET finished_at = ?, total = ?, summary = ?, errors = ?
		WHERE id = ?`,
		run.FinishedAt, run.Total, string(summary), run.Errors, run.ID)
	return err
}

// RecentSearchRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentSearchRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, makes, location, started_at, finished_at, total, summary, errors
		FROM search_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SearchRun
	for rows.Next() {
		var run models.SearchRun
		var makes, location, summary sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &makes, &location, &run.StartedAt, &finished, &run.Total, &summary, &run.Errors); err != nil {
			return nil, err
		}
		run.Makes = makes.String
		run.Location = location.String
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		if summary.Valid && summary.String != "" {
			if err := json.Unmarshal([]byte(summary.String), &run.Summary); err != nil {
				return nil, fmt.Errorf("search run %s: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
