package store

import (
	"context"

	"srm-evaluations/internal/db"
	"srm-evaluations/internal/evaluation"
)

// Backend is a store that can also report reachability.
type Backend interface {
	evaluation.Store
	Ping(ctx context.Context) error
}

// Gated refuses every call with db.ErrNotReady until ready is marked, so a
// server started against a missing database reports unhealthy instead of
// failing on an absent table.
type Gated struct {
	next  Backend
	ready *db.Readiness
}

func NewGated(next Backend, ready *db.Readiness) *Gated {
	return &Gated{next: next, ready: ready}
}

func (g *Gated) Insert(ctx context.Context, rec *evaluation.Record) error {
	if !g.ready.Ready() {
		return db.ErrNotReady
	}
	return g.next.Insert(ctx, rec)
}

func (g *Gated) ListRecent(ctx context.Context, limit int) ([]evaluation.Record, error) {
	if !g.ready.Ready() {
		return nil, db.ErrNotReady
	}
	return g.next.ListRecent(ctx, limit)
}

func (g *Gated) Ping(ctx context.Context) error {
	if !g.ready.Ready() {
		return db.ErrNotReady
	}
	return g.next.Ping(ctx)
}
