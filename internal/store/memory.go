package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"srm-evaluations/internal/evaluation"
)

// Memory keeps evaluations in process memory. Used for tests and local runs
// without a database.
type Memory struct {
	mu   sync.RWMutex
	recs []evaluation.Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(_ context.Context, rec *evaluation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, clone(rec))
	return nil
}

func (m *Memory) ListRecent(_ context.Context, limit int) ([]evaluation.Record, error) {
	m.mu.RLock()
	out := make([]evaluation.Record, 0, len(m.recs))
	for i := len(m.recs) - 1; i >= 0; i-- {
		out = append(out, clone(&m.recs[i]))
	}
	m.mu.RUnlock()

	// newest insert first among equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func clone(rec *evaluation.Record) evaluation.Record {
	c := *rec
	c.Scores = make(map[string]decimal.Decimal, len(rec.Scores))
	for k, v := range rec.Scores {
		c.Scores[k] = v
	}
	return c
}
