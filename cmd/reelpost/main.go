package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/api"
	"github.com/maheshrc27/reelpost/internal/api/handlers"
	job "github.com/maheshrc27/reelpost/internal/jobs"
	"github.com/maheshrc27/reelpost/internal/queue"
	"github.com/maheshrc27/reelpost/internal/report"
	"github.com/maheshrc27/reelpost/internal/service"
	"github.com/maheshrc27/reelpost/pkg/utils"
)

const usage = `usage: reelpost [-config file] <command> [flags]

commands:
  scan                 pick a batch from the videos dir and write video metadata
  upload               host the batch videos on S3 and write the URL map
  validate             check the posting plan and print warnings
  run [-dry-run]       post every scheduled entry that has not succeeded yet
  daemon -every SPEC   re-run the plan on a cron schedule
  enqueue [-at TIME]   queue a plan execution for the worker
  worker               process queued plan executions
  serve                start the status API
  token [-subject S]   mint a bearer token for the status API
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	code, err := dispatch(ctx, cfg, logger, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		logger.Error("command failed", "command", flag.Arg(0), "error", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

func dispatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string, args []string) (int, error) {
	switch command {
	case "scan":
		return 0, runScan(ctx, cfg, logger)
	case "upload":
		return 0, runUpload(ctx, cfg, logger)
	case "validate":
		return 0, runValidate(cfg)
	case "run":
		return runPlan(ctx, cfg, logger, args)
	case "daemon":
		return 0, runDaemon(ctx, cfg, logger, args)
	case "enqueue":
		return 0, runEnqueue(cfg, args)
	case "worker":
		return 0, runWorker(ctx, cfg, logger)
	case "serve":
		return 0, runServe(ctx, cfg, logger)
	case "token":
		return 0, runToken(cfg, args)
	}
	fmt.Fprint(os.Stderr, usage)
	return 2, fmt.Errorf("unknown command %q", command)
}

func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	videos, err := service.ScanVideos(ctx, cfg.VideosDir, cfg.VideosPerBatch, logger)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return fmt.Errorf("no videos found in %s: drop .mp4/.mov/.avi/.mkv/.webm files there and re-run", cfg.VideosDir)
	}
	if err := newInputRepository(cfg).SaveMetadata(videos); err != nil {
		return err
	}
	fmt.Print(report.Scan(videos, cfg.MetadataPath()))
	return nil
}

func runUpload(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	inputs := newInputRepository(cfg)
	videos, err := inputs.LoadMetadata()
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Println("No videos in metadata. Nothing to upload.")
		return nil
	}
	existing, err := inputs.LoadURLMap()
	if err != nil {
		return err
	}

	s3Service, err := service.NewS3Service(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	urls, stats, err := s3Service.UploadVideos(ctx, videos, existing)
	if saveErr := inputs.SaveURLMap(urls); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	if err != nil {
		return err
	}
	fmt.Print(report.Upload(stats, cfg.URLMapPath()))
	return nil
}

// runValidate prints warnings only; they never fail the command.
func runValidate(cfg *config.Config) error {
	inputs := newInputRepository(cfg)
	plan, err := inputs.LoadPlan()
	if err != nil {
		return err
	}
	videos, err := inputs.LoadMetadata()
	if err != nil {
		return err
	}
	fmt.Print(report.Warnings(service.ValidatePlan(plan, len(videos))))
	return nil
}

func runPlan(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) (int, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "preview without posting")
	fs.Parse(args)

	deps, err := wire(ctx, cfg, logger, !*dryRun)
	if err != nil {
		return 1, err
	}
	defer deps.Close()

	summary, err := deps.executor.Run(ctx, service.RunOptions{DryRun: *dryRun})
	if summary != nil {
		fmt.Print(report.Run(summary, deps.resultsLocation))
	}
	if err != nil {
		return 1, err
	}
	return summary.ExitCode(), nil
}

func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	every := fs.String("every", "@every 1h", "cron spec for resume runs")
	fs.Parse(args)

	deps, err := wire(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	resumeJob := job.NewResumeJob(ctx, deps.executor, logger)
	c, err := resumeJob.Schedule(*every)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", *every, err)
	}

	logger.Info("starting daemon", "schedule", *every)
	c.Start()
	<-ctx.Done()
	c.Stop()
	logger.Info("daemon stopped")
	return nil
}

func runEnqueue(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "queue a preview run")
	at := fs.String("at", "", "RFC3339 time to run at (default: now)")
	fs.Parse(args)

	var delay time.Duration
	if *at != "" {
		when, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		delay = max(time.Until(when), 0)
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURI})
	defer client.Close()

	info, err := queue.EnqueuePlan(client, queue.ExecutePlanPayload{DryRun: *dryRun}, delay)
	if err != nil {
		return err
	}
	fmt.Printf("Task %s scheduled for %s\n", info.ID, info.NextProcessAt.Format(time.RFC3339))
	return nil
}

func runWorker(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps, err := wire(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	queueW := queue.NewQueue(deps.executor, logger)
	server, mux := queueW.NewServer(cfg.RedisURI)

	logger.Info("starting the asynq server")
	if err := server.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	<-ctx.Done()
	server.Shutdown()
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.SecretKey == "" {
		return errors.New("SECRET_KEY must be set to serve the status API")
	}

	results, closeResults, err := newResultRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeResults()

	enqueuer, closeEnqueuer := newEnqueuer(cfg)
	defer closeEnqueuer()
	if enqueuer == nil {
		logger.Warn("REDIS_URI is empty, run requests will be refused")
	}

	resultsHandler := handlers.NewResultsHandler(results, newInputRepository(cfg), enqueuer)
	app := api.NewApp(*cfg, resultsHandler)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	logger.Info("server is running", "addr", cfg.ListenAddr)
	return app.Listen(cfg.ListenAddr)
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "operator", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	fs.Parse(args)

	token, err := utils.GenerateToken(cfg.SecretKey, *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
