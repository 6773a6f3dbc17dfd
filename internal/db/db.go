package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned by Open when every start-up ping failed.
var ErrUnavailable = errors.New("database unavailable")

type Options struct {
	// Engine is "postgres" or "sqlite".
	Engine          string
	DSN             string
	MaxOpenConns    int
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// DriverName maps an engine name to its database/sql driver.
func DriverName(engine string) (string, error) {
	switch engine {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database engine %q", engine)
}

// Open creates the pool and waits for the database to answer. When it never
// does, the pool is still returned together with an error wrapping
// ErrUnavailable so the caller can choose to serve degraded.
func Open(ctx context.Context, o Options, log *slog.Logger) (*sqlx.DB, error) {
	driver, err := DriverName(o.Engine)
	if err != nil {
		return nil, err
	}
	dbx, err := sqlx.Open(driver, o.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Engine, err)
	}
	if o.Engine == "sqlite" {
		// single writer
		dbx.SetMaxOpenConns(1)
	} else if o.MaxOpenConns > 0 {
		dbx.SetMaxOpenConns(o.MaxOpenConns)
	}
	return dbx, Connect(ctx, dbx, o.ConnectAttempts, o.ConnectDelay, log)
}

// Connect pings the database up to attempts times, sleeping delay between
// tries.
func Connect(ctx context.Context, dbx *sqlx.DB, attempts int, delay time.Duration, log *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		last = dbx.PingContext(pctx)
		cancel()
		if last == nil {
			log.Info("database connected", "attempt", i)
			return nil
		}
		log.Warn("database ping failed", "attempt", i, "attempts", attempts, "error", last)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, attempts, last)
}

// WithTx runs fn inside a transaction, rolling back on error.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
