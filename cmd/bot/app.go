package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
	"github.com/Proton-105/dataeng-assistant/pkg/config"
	"github.com/Proton-105/dataeng-assistant/pkg/logger"
)

var (
	cfgPath     string
	catalogPath string
)

// app holds what every subcommand needs before it wires its own services.
type app struct {
	cfg   *config.Config
	viper *viper.Viper
	log   *logger.Logger
}

func loadApp() (*app, error) {
	var (
		cfg *config.Config
		v   *viper.Viper
		err error
	)
	if cfgPath == "" {
		cfg, v, err = config.Load()
	} else {
		cfg, v, err = config.LoadFile(cfgPath, getenv("APP_ENV", "development"))
	}
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, viper: v, log: logger.New(cfg.Logger, cfg.Sentry.Enabled)}, nil
}

func (a *app) Close() {
	_ = a.log.Close()
}

// initSentry configures the global hub; the returned func flushes buffered events.
func (a *app) initSentry() (func(), error) {
	if !a.cfg.Sentry.Enabled {
		return func() {}, nil
	}

	env := a.cfg.Sentry.Environment
	if env == "" {
		env = a.cfg.AppEnv
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         a.cfg.Sentry.DSN,
		Environment: env,
		Release:     a.cfg.App.Name + "@" + a.cfg.App.Version,
		SampleRate:  a.cfg.Sentry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func asynqOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
}

func loadKnowledge() (*knowledge.Base, error) {
	if catalogPath == "" {
		return knowledge.Default(), nil
	}

	f, err := os.Open(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return knowledge.LoadCatalog(f)
}
