package main

import (
	"context"
	"log"
	"os"

	"srm-evaluations/internal/config"
	"srm-evaluations/internal/logging"
	"srm-evaluations/internal/storage"
	"srm-evaluations/internal/worker"
)

func main() {
	// the worker never touches the database
	cfg, err := config.Load("srm-worker", append([]string{"-db-driver", "memory"}, os.Args[1:]...))
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireArchive(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}

	s3c, err := storage.New(context.Background(), storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
	})
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("archive worker starting", "redis", cfg.RedisAddr, "bucket", cfg.S3Bucket)
	if err := worker.Run(cfg.RedisAddr, cfg.WorkerConcurrency, s3c, logger); err != nil {
		log.Fatal(err)
	}
}
