package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/dataeng-assistant/internal/jobs"
	jobhandlers "github.com/Proton-105/dataeng-assistant/internal/jobs/handlers"
	"github.com/Proton-105/dataeng-assistant/internal/repository"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
)

func workerCMD() *cobra.Command {
	var withScheduler bool
	var worker = &cobra.Command{
		Use:   "worker",
		Short: "Run the background job worker without the transports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			queue := jobs.NewManager(asynqOpt(a.cfg.Redis), a.log.Logger)
			defer queue.Close()

			g, gctx := errgroup.WithContext(ctx)
			startJobs(gctx, g, asynqOpt(a.cfg.Redis), a.cfg.Jobs, db, queue, withScheduler, a.log.Logger)

			a.log.Info("worker started", slog.Bool("scheduler", withScheduler))
			return g.Wait()
		},
	}
	worker.Flags().BoolVar(&withScheduler, "scheduler", true, "also run the periodic lead sweep")

	return worker
}

// startJobs runs the task worker and, optionally, the sweep scheduler inside g.
func startJobs(ctx context.Context, g *errgroup.Group, opt asynq.RedisConnOpt, cfg config.JobsConfig, db *sql.DB, queue jobs.Manager, withScheduler bool, log *slog.Logger) {
	repo := repository.NewLeadRepository(db, log)

	w := jobs.NewWorker(opt, cfg.Concurrency, cfg.Queues, log)
	w.RegisterHandler(jobs.TaskTypeLeadNotify, jobhandlers.NewLeadNotifyHandler(repo, log))
	w.RegisterHandler(jobs.TaskTypeLeadSweep, jobhandlers.NewLeadSweepHandler(repo, queue, log))
	g.Go(func() error { return w.Run(ctx) })

	if !withScheduler {
		return
	}

	s := jobs.NewScheduler(opt, jobs.DefaultSweepSpec, log)
	if err := s.RegisterTasks(); err != nil {
		g.Go(func() error { return err })
		return
	}
	g.Go(func() error { return s.Run(ctx) })
}
