// Package evaluation scores, stores and lists supplier evaluations.
package evaluation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"srm-evaluations/internal/rubric"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type Service struct {
	store     Store
	scoreKeys []string
	now       func() time.Time
	newID     func() string
	publisher Publisher
	log       *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithPublisher sets a publisher that receives every stored record.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService scores submissions against the catalog's score keys.
func NewService(store Store, catalog *rubric.Catalog, opts ...Option) *Service {
	s := &Service{
		store:     store,
		scoreKeys: catalog.ScoreKeys(),
		now:       time.Now,
		newID:     uuid.NewString,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the identifying fields, coerces every score, computes
// the total and stores a new record.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Record, error) {
	rec, err := s.build(sub)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "insert evaluation", "error", err, "supplier", rec.SupplierName)
		return nil, &StoreUnavailableError{Op: "insert", Err: err}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.log.WarnContext(ctx, "publish evaluation", "error", err, "id", rec.ID)
		}
	}
	return rec, nil
}

func (s *Service) build(sub Submission) (*Record, error) {
	required := []struct{ name, value string }{
		{"category", sub.Category},
		{"supplierName", sub.SupplierName},
		{"month", sub.Month},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &MissingFieldError{Field: f.name}
		}
	}

	scores := make(map[string]decimal.Decimal, len(s.scoreKeys))
	for _, key := range s.scoreKeys {
		scores[key] = ParseScore(sub.Scores[key])
	}

	return &Record{
		ID:              s.newID(),
		Category:        strings.TrimSpace(sub.Category),
		SubCategory:     strings.TrimSpace(sub.SubCategory),
		SupplierName:    strings.TrimSpace(sub.SupplierName),
		EvaluationMonth: strings.TrimSpace(sub.Month),
		Scores:          scores,
		TotalScore:      Sum(scores),
		CreatedAt:       s.now().UTC().Truncate(time.Microsecond),
	}, nil
}

// ListRecent returns up to limit records, newest first. A non-positive or
// oversized limit falls back to DefaultListLimit.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	recs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "list evaluations", "error", err)
		return nil, &StoreUnavailableError{Op: "list", Err: err}
	}
	return recs, nil
}
