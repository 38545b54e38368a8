package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// DefaultSweepSpec re-queues missed lead notifications every quarter hour.
const DefaultSweepSpec = "*/15 * * * *"

// Scheduler enqueues periodic tasks.
type Scheduler interface {
	RegisterTasks() error
	Run(ctx context.Context) error
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	spec           string
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, spec string, log *slog.Logger) Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if spec == "" {
		spec = DefaultSweepSpec
	}

	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: newAsynqLogger(log)}),
		spec:           spec,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	if _, err := s.asynqScheduler.Register(s.spec, NewLeadSweepTask()); err != nil {
		return err
	}

	s.log.Info("scheduler: registered lead sweep task", slog.String("spec", s.spec))
	return nil
}

// Run starts the scheduler and stops it when ctx is cancelled.
func (s *scheduler) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "scheduler: starting")

	if err := s.asynqScheduler.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	s.log.Info("scheduler: shutting down")
	s.asynqScheduler.Shutdown()
	return nil
}
