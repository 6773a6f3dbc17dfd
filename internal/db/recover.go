package db

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotReady is returned by gated stores until the schema has been applied.
var ErrNotReady = errors.New("database not ready")

// Readiness records whether the database answers and its schema is in place.
// The zero value is not ready.
type Readiness struct {
	ok atomic.Bool
}

func (r *Readiness) Ready() bool { return r.ok.Load() }

func (r *Readiness) MarkReady() { r.ok.Store(true) }

// Recover waits for a database that was down at start-up. Every delay it
// pings once and, when the ping succeeds, runs migrate. The first clean pass
// marks r ready. It returns nil once ready or the context error on shutdown.
func Recover(ctx context.Context, dbx *sqlx.DB, delay time.Duration, migrate func() error, r *Readiness, log *slog.Logger) error {
	if delay <= 0 {
		delay = time.Second
	}
	for {
		err := Connect(ctx, dbx, 1, 0, log)
		if err == nil {
			if err = migrate(); err != nil {
				log.Warn("migrations failed, retrying", "error", err)
			}
		}
		if err == nil {
			r.MarkReady()
			log.Info("database recovered")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
