package evaluation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one stored evaluation. Records are written once and never
// updated; TotalScore always equals the sum of Scores.
type Record struct {
	ID              string
	Category        string
	SubCategory     string
	SupplierName    string
	EvaluationMonth string
	Scores          map[string]decimal.Decimal
	TotalScore      decimal.Decimal
	CreatedAt       time.Time
}

// Score returns the stored score for key, 0 when absent.
func (r *Record) Score(key string) decimal.Decimal {
	return r.Scores[key]
}

// Submission is the raw form input. Scores holds the submitted text per
// score key; values are coerced by ParseScore.
type Submission struct {
	Category     string
	SubCategory  string
	SupplierName string
	Month        string
	Scores       map[string]string
}

// Store persists records. Implementations must return rows newest first.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Publisher is notified after a record has been stored.
type Publisher interface {
	Publish(ctx context.Context, rec *Record) error
}
