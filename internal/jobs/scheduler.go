package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"jobportal/internal/queue"
)

type TaskPublisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

type Scheduler struct {
	cron      *cron.Cron
	publisher TaskPublisher
	sweepSpec string
	log       zerolog.Logger
}

func NewScheduler(publisher TaskPublisher, sweepSpec string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		sweepSpec: sweepSpec,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil || s.sweepSpec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.sweepSpec, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits briefly for a running enqueue to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, queue.Task{Type: queue.TaskResumeSweep}); err != nil {
		s.log.Error().Err(err).Msg("enqueue resume sweep failed")
	}
}
