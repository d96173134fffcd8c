package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/publisher"
	"github.com/maheshrc27/reelpost/internal/queue"
	"github.com/maheshrc27/reelpost/internal/repository"
	"github.com/maheshrc27/reelpost/internal/service"
)

type deps struct {
	executor        *service.ScheduleExecutor
	resultsLocation string
	closers         []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func newInputRepository(cfg *config.Config) repository.InputRepository {
	return repository.NewInputRepository(cfg.PlanPath(), cfg.MetadataPath(), cfg.URLMapPath())
}

// newResultRepository opens the configured results backend.
func newResultRepository(ctx context.Context, cfg *config.Config) (repository.PostingResultRepository, func(), error) {
	switch cfg.RegistryDriver {
	case config.RegistryFile:
		return repository.NewJSONResultRepository(cfg.ResultsPath()), func() {}, nil
	case config.RegistryPostgres:
		db, err := sqlx.Connect("postgres", cfg.PostgresURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewPostingResultRepository(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown registry driver %q", cfg.RegistryDriver)
}

// newEnqueuer returns a queue client, or nil when no Redis address is
// configured.
func newEnqueuer(cfg *config.Config) (queue.Enqueuer, func()) {
	if cfg.RedisURI == "" {
		return nil, func() {}
	}
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURI})
	return client, func() { client.Close() }
}

// wire builds the executor and its collaborators. The result notifier is
// only connected when notify is set and RABBITMQ_URL is configured.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger, notify bool) (*deps, error) {
	d := &deps{resultsLocation: cfg.ResultsPath()}
	if cfg.RegistryDriver == config.RegistryPostgres {
		d.resultsLocation = "postgres:publish_results"
	}

	results, closeResults, err := newResultRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, closeResults)

	var notifier service.ResultNotifier
	if notify && cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		d.closers = append(d.closers, func() { rabbitMQ.Close() })
		notifier = rabbitMQ
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	uploaders := []service.PlatformUploader{
		service.NewInstagramService(*cfg, client, logger),
		service.NewTiktokService(*cfg, client, logger),
		service.NewFacebookService(*cfg, client, logger),
	}

	d.executor = service.NewScheduleExecutor(
		*cfg,
		newInputRepository(cfg),
		service.NewPublishRegistry(results),
		uploaders,
		notifier,
		logger,
	)
	return d, nil
}
