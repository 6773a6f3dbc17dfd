package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"srm-evaluations/internal/evaluation"
	"srm-evaluations/internal/schemas"
)

// TypeArchive copies a stored evaluation to object storage.
const TypeArchive = "evaluation:archive"

// Uploader is the object store the worker writes snapshots to.
type Uploader interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

func NewArchiveTask(rec *evaluation.Record) (*asynq.Task, error) {
	b, err := json.Marshal(schemas.Snapshot(rec))
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeArchive, b), nil
}

// ArchiveKey is the object key for a snapshot, grouped by evaluation month.
func ArchiveKey(snap schemas.EvaluationSnapshot) string {
	month := strings.ReplaceAll(strings.TrimSpace(snap.EvaluationMonth), "/", "-")
	if month == "" {
		month = "unknown"
	}
	return fmt.Sprintf("evaluations/%s/%s.json", month, snap.ID)
}

// Publisher queues every stored evaluation for archiving.
type Publisher struct {
	client *asynq.Client
}

func NewPublisher(c *asynq.Client) *Publisher {
	return &Publisher{client: c}
}

func (p *Publisher) Publish(ctx context.Context, rec *evaluation.Record) error {
	task, err := NewArchiveTask(rec)
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	return err
}

type Server struct {
	S3  Uploader
	Log *slog.Logger
}

func (s *Server) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeArchive, s.handleArchive)
	return mux
}

func (s *Server) handleArchive(ctx context.Context, t *asynq.Task) error {
	var snap schemas.EvaluationSnapshot
	if err := json.Unmarshal(t.Payload(), &snap); err != nil {
		s.Log.Error("bad archive payload", "error", err)
		return fmt.Errorf("decode snapshot: %v: %w", err, asynq.SkipRetry)
	}
	if snap.ID == "" {
		s.Log.Error("archive payload without id")
		return fmt.Errorf("snapshot has no id: %w", asynq.SkipRetry)
	}

	ref, err := s.S3.PutJSON(ctx, ArchiveKey(snap), snap)
	if err != nil {
		s.Log.Warn("archive evaluation", "id", snap.ID, "error", err)
		return err
	}
	s.Log.Info("archived evaluation", "id", snap.ID, "ref", ref)
	return nil
}

func Run(addr string, concurrency int, up Uploader, log *slog.Logger) error {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{
		Concurrency: concurrency,
		Logger:      asynqLogger{log.With("component", "asynq")},
	})
	w := &Server{S3: up, Log: log}
	return srv.Run(w.mux())
}

// asynqLogger routes asynq's printf-style logging into slog.
type asynqLogger struct{ l *slog.Logger }

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }

func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
