package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"srm-evaluations/internal/db"
	"srm-evaluations/internal/evaluation"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// sqliteEvaluation keeps created_at as Unix microseconds so rows sort
// numerically.
type sqliteEvaluation struct {
	db.Evaluation
	CreatedAtMicros int64 `db:"created_at_us"`
}

// SQLite stores evaluations in a single SQLite file. Scores are kept as
// decimal text.
type SQLite struct {
	db         *sqlx.DB
	insertStmt string
	listStmt   string
}

func NewSQLite(dbx *sqlx.DB) *SQLite {
	return &SQLite{
		db:         dbx,
		insertStmt: insertQuery("created_at_us"),
		listStmt:   selectQuery("created_at AS created_at_us", "rowid"),
	}
}

func (s *SQLite) Insert(ctx context.Context, rec *evaluation.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	srow := sqliteEvaluation{Evaluation: row, CreatedAtMicros: rec.CreatedAt.UnixMicro()}
	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, s.insertStmt, srow)
		return err
	})
	return errors.Wrap(err, "insert evaluation")
}

func (s *SQLite) ListRecent(ctx context.Context, limit int) ([]evaluation.Record, error) {
	var rows []sqliteEvaluation
	if err := s.db.SelectContext(ctx, &rows, s.listStmt, limit); err != nil {
		return nil, errors.Wrap(err, "list evaluations")
	}
	out := make([]evaluation.Record, len(rows))
	for i := range rows {
		rows[i].CreatedAt = time.UnixMicro(rows[i].CreatedAtMicros)
		out[i] = fromRow(&rows[i].Evaluation)
	}
	return out, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
