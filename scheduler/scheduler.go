package scheduler

import (
	"context"
	"fmt"

	"carfinder/config"
	"carfinder/logging"

	"github.com/robfig/cron/v3"
)

// Worker runs in the background and does one pass per trigger.
type Worker interface {
	Trigger()
	Run(ctx context.Context)
}

type job struct {
	name   string
	spec   string
	worker Worker
}

type Scheduler struct {
	cfg  config.SchedulerConfig
	cron *cron.Cron
	jobs []job
}

func New(cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		cron: cron.New(),
	}
}

// SetWorkers registers the follow-up sweep and the lead backup. Either may
// be nil; a worker without a cron expression only runs when triggered.
func (s *Scheduler) SetWorkers(followUp, backup Worker) {
	if followUp != nil {
		s.jobs = append(s.jobs, job{name: "followup", spec: s.cfg.FollowUpCron, worker: followUp})
	}
	if backup != nil {
		s.jobs = append(s.jobs, job{name: "backup", spec: s.cfg.BackupCron, worker: backup})
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	for _, j := range s.jobs {
		if j.spec == "" {
			continue
		}
		w := j.worker
		if _, err := s.cron.AddFunc(j.spec, w.Trigger); err != nil {
			return fmt.Errorf("invalid cron expression for %s: %w", j.name, err)
		}
		logging.Logf(logging.LevelInfo, "scheduler", "%s scheduled: %s", j.name, j.spec)
	}

	for _, j := range s.jobs {
		go j.worker.Run(ctx)
	}
	if len(s.cron.Entries()) == 0 {
		logging.Logf(logging.LevelInfo, "scheduler", "no schedule configured, workers only run when triggered")
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// TriggerNow runs every registered worker once.
func (s *Scheduler) TriggerNow() {
	for _, j := range s.jobs {
		j.worker.Trigger()
	}
}
