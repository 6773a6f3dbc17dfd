package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"srm-evaluations/internal/db"
	"srm-evaluations/internal/evaluation"
)

// Postgres stores evaluations in PostgreSQL. The table's CHECK constraint
// rejects rows whose total is not the sum of their scores.
type Postgres struct {
	db         *sqlx.DB
	insertStmt string
	listStmt   string
}

func NewPostgres(dbx *sqlx.DB) *Postgres {
	return &Postgres{
		db:         dbx,
		insertStmt: insertQuery("created_at"),
		listStmt:   dbx.Rebind(selectQuery("created_at", "seq")),
	}
}

func (s *Postgres) Insert(ctx context.Context, rec *evaluation.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, s.insertStmt, row)
		return err
	})
	return errors.Wrap(err, "insert evaluation")
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]evaluation.Record, error) {
	var rows []db.Evaluation
	if err := s.db.SelectContext(ctx, &rows, s.listStmt, limit); err != nil {
		return nil, errors.Wrap(err, "list evaluations")
	}
	out := make([]evaluation.Record, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i])
	}
	return out, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
