// Package config reads process configuration from flags, SRM_* environment
// variables and an optional config file.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3"

	"srm-evaluations/internal/migrations"
)

const EnvPrefix = "SRM"

// Policies for a database that is still down after the start-up retries.
const (
	FailFast = "fail"
	Degrade  = "degrade"
)

type Config struct {
	Addr      string
	StaticDir string

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBConnectAttempts int
	DBConnectDelay    time.Duration
	DBUnavailable     string

	LogLevel  string
	LogFormat string

	RedisAddr         string
	WorkerConcurrency int

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
}

// ArchiveEnabled reports whether submissions are queued for archiving.
func (c *Config) ArchiveEnabled() bool {
	return c.RedisAddr != ""
}

// Load parses args (without the program name) and the environment.
func Load(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var c Config
	_ = fs.String("config", "", "config file (optional), one 'flag value' per line")
	fs.StringVar(&c.Addr, "addr", ":3000", "HTTP listen address")
	fs.StringVar(&c.StaticDir, "static-dir", "", "directory with login.html, index.html and assets; empty disables static files")
	fs.StringVar(&c.DBDriver, "db-driver", "postgres", "storage engine: postgres, sqlite or memory")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "postgres URL or sqlite file path")
	fs.IntVar(&c.DBMaxOpenConns, "db-max-open-conns", 10, "connection pool size")
	fs.IntVar(&c.DBConnectAttempts, "db-connect-attempts", 3, "database pings at start-up before giving up")
	fs.DurationVar(&c.DBConnectDelay, "db-connect-delay", 2*time.Second, "delay between start-up pings")
	fs.StringVar(&c.DBUnavailable, "db-unavailable", FailFast, "what to do when the database is down at start-up: fail or degrade")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", "text", "text or json")
	fs.StringVar(&c.RedisAddr, "redis-addr", "", "redis address for the archive queue; empty disables archiving")
	fs.IntVar(&c.WorkerConcurrency, "worker-concurrency", 5, "archive worker concurrency")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", "", "S3/MinIO host:port for archived evaluations")
	fs.StringVar(&c.S3Bucket, "s3-bucket", "", "bucket for archived evaluations")
	fs.StringVar(&c.S3AccessKey, "s3-access-key", "", "S3 access key")
	fs.StringVar(&c.S3SecretKey, "s3-secret-key", "", "S3 secret key")
	fs.StringVar(&c.S3Region, "s3-region", "us-east-1", "S3 region")

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database-url is required for db-driver %s", c.DBDriver)
		}
		// migrations need the URL form of the DSN
		if _, err := migrations.URL(c.DBDriver, c.DatabaseURL); err != nil {
			return fmt.Errorf("database-url: %w", err)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown db-driver %q", c.DBDriver)
	}
	if c.DBUnavailable != FailFast && c.DBUnavailable != Degrade {
		return fmt.Errorf("db-unavailable must be %q or %q, got %q", FailFast, Degrade, c.DBUnavailable)
	}
	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("db-connect-attempts must be at least 1")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log-format %q", c.LogFormat)
	}
	return nil
}

// RequireArchive checks the settings the archive worker cannot run without.
func (c *Config) RequireArchive() error {
	switch {
	case c.RedisAddr == "":
		return fmt.Errorf("redis-addr is required")
	case c.S3Endpoint == "":
		return fmt.Errorf("s3-endpoint is required")
	case c.S3Bucket == "":
		return fmt.Errorf("s3-bucket is required")
	}
	return nil
}
