package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"srm-evaluations/internal/config"
	"srm-evaluations/internal/db"
	"srm-evaluations/internal/evaluation"
	httpSrv "srm-evaluations/internal/http"
	"srm-evaluations/internal/logging"
	"srm-evaluations/internal/migrations"
	"srm-evaluations/internal/rubric"
	"srm-evaluations/internal/store"
	"srm-evaluations/internal/worker"
)

func main() {
	cfg, err := config.Load("srm-api", os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	catalog := rubric.Default()
	opts := []evaluation.Option{evaluation.WithLogger(logger)}
	if cfg.ArchiveEnabled() {
		asq := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer asq.Close()
		opts = append(opts, evaluation.WithPublisher(worker.NewPublisher(asq)))
		logger.Info("archiving enabled", "redis", cfg.RedisAddr)
	}
	svc := evaluation.NewService(st, catalog, opts...)

	srv := httpSrv.NewServer(cfg.Addr, &httpSrv.Server{
		Evaluations: svc,
		Rubric:      catalog,
		Store:       st,
		StaticDir:   cfg.StaticDir,
		Log:         logger,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", cfg.Addr, "db", cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured backend. A database that stays down
// through the start-up retries is fatal unless the degrade policy is set.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Backend, func(), error) {
	if cfg.DBDriver == "memory" {
		logger.Warn("using in-memory store; evaluations are lost on restart")
		return store.NewMemory(), func() {}, nil
	}

	dbx, err := db.Open(ctx, db.Options{
		Engine:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnectAttempts: cfg.DBConnectAttempts,
		ConnectDelay:    cfg.DBConnectDelay,
	}, logger)
	degraded := false
	switch {
	case errors.Is(err, db.ErrUnavailable) && cfg.DBUnavailable == config.Degrade:
		logger.Warn("database unreachable, serving degraded until it recovers", "error", err)
		degraded = true
	case err != nil:
		if dbx != nil {
			_ = dbx.Close()
		}
		return nil, nil, err
	default:
		// Run embedded migrations (idempotent)
		if err := migrations.Run(cfg.DBDriver, cfg.DatabaseURL); err != nil {
			_ = dbx.Close()
			return nil, nil, err
		}
	}

	closeFn := func() { _ = dbx.Close() }
	var st store.Backend = store.NewPostgres(dbx)
	if cfg.DBDriver == "sqlite" {
		st = store.NewSQLite(dbx)
	}
	if !degraded {
		return st, closeFn, nil
	}

	ready := new(db.Readiness)
	go func() {
		_ = db.Recover(ctx, dbx, cfg.DBConnectDelay, func() error {
			return migrations.Run(cfg.DBDriver, cfg.DatabaseURL)
		}, ready, logger)
	}()
	return store.NewGated(st, ready), closeFn, nil
}
