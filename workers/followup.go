package workers

import (
	"context"
	"fmt"
	"time"

	"carfinder/logging"
	"carfinder/models"
)

// FollowUpSource lists leads that are due for a follow-up.
type FollowUpSource interface {
	DueFollowUps(ctx context.Context) ([]models.Lead, error)
}

// FollowUpWorker reports leads whose follow-up date is today or overdue.
type FollowUpWorker struct {
	source    FollowUpSource
	now       func() time.Time
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewFollowUpWorker(source FollowUpSource) *FollowUpWorker {
	return &FollowUpWorker{
		source:    source,
		now:       time.Now,
		triggerCh: make(chan struct{}, 1),
		logFunc:   StdLogger,
	}
}

func (w *FollowUpWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *FollowUpWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run sweeps once per trigger until ctx is done.
func (w *FollowUpWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerCh:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logFunc(logging.LevelError, "followup", fmt.Sprintf("sweep failed: %v", err))
			}
		}
	}
}

// RunOnce logs one line per due lead and returns them.
func (w *FollowUpWorker) RunOnce(ctx context.Context) ([]models.Lead, error) {
	due, err := w.source.DueFollowUps(ctx)
	if err != nil {
		return nil, err
	}

	today := models.Day(w.now())
	for _, l := range due {
		if l.FollowUpDate == nil {
			continue
		}
		when := "due today"
		if days := int(today.Sub(models.Day(*l.FollowUpDate)).Hours() / 24); days > 0 {
			when = fmt.Sprintf("overdue by %d day(s)", days)
		}
		w.logFunc(logging.LevelInfo, "followup", fmt.Sprintf("lead %d %q (%s) %s: %s", l.ID, l.Title, l.Status, when, l.URL))
	}
	w.logFunc(logging.LevelInfo, "followup", fmt.Sprintf("%d lead(s) need a follow-up", len(due)))
	return due, nil
}
