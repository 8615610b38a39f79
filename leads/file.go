package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"carfinder/models"
)

// StorageKey names the blob the local store keeps its collection under.
const StorageKey = "carfinder_leads"

var _ Store = (*FileStore)(nil)

// FileStore keeps every lead in one JSON array on disk. Each mutation reads
// the whole collection and writes it back with a rename, so a write either
// lands completely or not at all. Writes from other processes are not
// coordinated.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, StorageKey+".json"),
		now:  time.Now,
	}
}

// Path is the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) List(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Upsert(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if existing := Find(all, in.URL); existing != nil {
		in.Apply(existing)
		existing.UpdatedAt = later(existing.UpdatedAt, now)
		if err := s.save(all); err != nil {
			return nil, err
		}
		out := *existing
		return &out, nil
	}

	lead := models.Lead{
		ID:        nextID(all, now),
		Status:    models.InitialStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(&lead)

	all = append([]models.Lead{lead}, all...)
	if err := s.save(all); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *FileStore) UpdateStatus(ctx context.Context, url string, status models.Status) error {
	return s.mutate(func(l *models.Lead) bool { return l.URL == url }, func(l *models.Lead) error {
		return setStatus(l, status, s.now().UTC())
	})
}

// UpdateStatusByID is UpdateStatus keyed by lead id.
func (s *FileStore) UpdateStatusByID(ctx context.Context, id int64, status models.Status) error {
	return s.mutate(func(l *models.Lead) bool { return l.ID == id }, func(l *models.Lead) error {
		return setStatus(l, status, s.now().UTC())
	})
}

func (s *FileStore) Delete(ctx context.Context, url string) error {
	return s.remove(func(l *models.Lead) bool { return l.URL == url })
}

// DeleteByID is Delete keyed by lead id.
func (s *FileStore) DeleteByID(ctx context.Context, id int64) error {
	return s.remove(func(l *models.Lead) bool { return l.ID == id })
}

func (s *FileStore) mutate(match func(*models.Lead) bool, fn func(*models.Lead) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	for i := range all {
		if match(&all[i]) {
			if err := fn(&all[i]); err != nil {
				return err
			}
			return s.save(all)
		}
	}
	return nil
}

func (s *FileStore) remove(match func(*models.Lead) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	kept := all[:0]
	for i := range all {
		if !match(&all[i]) {
			kept = append(kept, all[i])
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.save(kept)
}

// load reads the collection. A missing or unparsable blob is an empty
// collection.
func (s *FileStore) load() ([]models.Lead, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Lead{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var all []models.Lead
	if err := json.Unmarshal(data, &all); err != nil || all == nil {
		return []models.Lead{}, nil
	}
	return all, nil
}

func (s *FileStore) save(all []models.Lead) error {
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), StorageKey+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func setStatus(l *models.Lead, status models.Status, now time.Time) error {
	if !status.Valid() {
		return models.Errorf(models.ErrValidation, "unknown status %q", status)
	}
	l.Status = status
	l.UpdatedAt = later(l.UpdatedAt, now)
	if status == models.StatusContacted && l.ContactedAt == nil {
		t := l.UpdatedAt
		l.ContactedAt = &t
	}
	return nil
}

// nextID derives an id from the creation time, moved past the largest id
// in use so two leads created in the same millisecond stay distinct.
func nextID(all []models.Lead, now time.Time) int64 {
	id := now.UnixMilli()
	for _, l := range all {
		if l.ID >= id {
			id = l.ID + 1
		}
	}
	return id
}

func later(a, b time.Time) time.Time {
	if b.Before(a) {
		return a
	}
	return b
}
