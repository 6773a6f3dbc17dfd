// Package store holds the evaluation.Store implementations.
package store

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"srm-evaluations/internal/db"
	"srm-evaluations/internal/evaluation"
)

// ErrUnknownScore is returned when a record carries a score the table has
// no column for.
var ErrUnknownScore = errors.New("unknown score column")

var identityColumns = []string{"id", "category", "sub_category", "supplier_name", "evaluation_month"}

func columns() []string {
	cols := append([]string(nil), identityColumns...)
	cols = append(cols, db.ScoreColumns...)
	return append(cols, "total_score", "created_at")
}

// insertQuery builds a named insert; createdAt names the bind parameter for
// the created_at column.
func insertQuery(createdAt string) string {
	cols := columns()
	binds := make([]string, len(cols))
	for i, c := range cols {
		binds[i] = ":" + c
	}
	binds[len(binds)-1] = ":" + createdAt
	return fmt.Sprintf("INSERT INTO supplier_evaluations (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(binds, ", "))
}

// selectQuery lists the newest rows; order is the ORDER BY tie-breaker and
// createdAt the select expression for created_at.
func selectQuery(createdAt, order string) string {
	cols := columns()
	cols[len(cols)-1] = createdAt
	return fmt.Sprintf("SELECT %s FROM supplier_evaluations ORDER BY created_at DESC, %s DESC LIMIT ?",
		strings.Join(cols, ", "), order)
}

func toRow(rec *evaluation.Record) (db.Evaluation, error) {
	row := db.Evaluation{
		ID:              rec.ID,
		Category:        rec.Category,
		SubCategory:     rec.SubCategory,
		SupplierName:    rec.SupplierName,
		EvaluationMonth: rec.EvaluationMonth,
		TotalScore:      rec.TotalScore,
		CreatedAt:       rec.CreatedAt,
	}
	for key, v := range rec.Scores {
		f := row.Score(key)
		if f == nil {
			return db.Evaluation{}, errors.Wrapf(ErrUnknownScore, "%q", key)
		}
		*f = v
	}
	return row, nil
}

func fromRow(row *db.Evaluation) evaluation.Record {
	scores := make(map[string]decimal.Decimal, len(db.ScoreColumns))
	for _, col := range db.ScoreColumns {
		scores[col] = *row.Score(col)
	}
	return evaluation.Record{
		ID:              row.ID,
		Category:        row.Category,
		SubCategory:     row.SubCategory,
		SupplierName:    row.SupplierName,
		EvaluationMonth: row.EvaluationMonth,
		Scores:          scores,
		TotalScore:      row.TotalScore,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
