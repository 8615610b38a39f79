package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"carfinder/logging"
	"carfinder/models"
)

// LeadLister returns every stored lead.
type LeadLister interface {
	List(ctx context.Context) ([]models.Lead, error)
}

// Uploader writes objects to S3-compatible storage.
type Uploader interface {
	Key(name string) string
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	Location(key string) string
}

// BackupWorker exports the lead collection as a JSON array and uploads it.
// The export uses the same layout as the local lead blob, so a backup can
// be dropped in as carfinder_leads.json.
type BackupWorker struct {
	leads     LeadLister
	uploader  Uploader
	now       func() time.Time
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewBackupWorker(leads LeadLister, uploader Uploader) *BackupWorker {
	return &BackupWorker{
		leads:     leads,
		uploader:  uploader,
		now:       time.Now,
		triggerCh: make(chan struct{}, 1),
		logFunc:   StdLogger,
	}
}

func (w *BackupWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *BackupWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *BackupWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerCh:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logFunc(logging.LevelError, "backup", fmt.Sprintf("backup failed: %v", err))
			}
		}
	}
}

// RunOnce uploads one backup and returns its key.
func (w *BackupWorker) RunOnce(ctx context.Context) (string, error) {
	leads, err := w.leads.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []models.Lead{}
	}

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode leads: %w", err)
	}

	key := w.uploader.Key(fmt.Sprintf("leads-%s.json", w.now().UTC().Format("20060102T150405Z")))
	if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", err
	}
	w.logFunc(logging.LevelInfo, "backup", fmt.Sprintf("uploaded %d lead(s) to %s", len(leads), w.uploader.Location(key)))
	return key, nil
}
