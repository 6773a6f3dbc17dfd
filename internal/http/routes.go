package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"

	"srm-evaluations/internal/evaluation"
	"srm-evaluations/internal/rubric"
	"srm-evaluations/internal/schemas"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Evaluations *evaluation.Service
	Rubric      *rubric.Catalog
	Store       Pinger
	StaticDir   string
	Log         *slog.Logger
}

func NewServer(addr string, s *Server) *http.Server {
	return &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
}

func (s *Server) Handler() http.Handler {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, RequestLogger(s.Log), m.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluations", s.submitEvaluation)
		r.Get("/evaluations", s.listEvaluations)
		r.Get("/rubric", s.getRubric)
		r.Get("/suppliers", s.getSuppliers)
		r.Get("/subcategories", s.getSubCategories)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// just a simple ping endpoint
		if err := s.Store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "db error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.StaticDir != "" {
		r.Get("/", s.staticFile("login.html"))
		r.Get("/home", s.staticFile("index.html"))
		r.Handle("/*", http.FileServer(http.Dir(s.StaticDir)))
	}
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, schemas.ErrorResponse{Success: false, Message: msg})
}

func (s *Server) submitEvaluation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "Missing evaluation data")
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}
	var data gjson.Result
	if root := gjson.ParseBytes(body); root.IsObject() {
		root.ForEach(func(k, v gjson.Result) bool {
			if k.String() == "data" {
				data = v
			}
			return true
		})
	}
	if !data.IsObject() {
		writeError(w, http.StatusBadRequest, "Missing evaluation data")
		return
	}

	rec, err := s.Evaluations.Submit(r.Context(), s.submission(data))
	var missing *evaluation.MissingFieldError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, missing.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to save evaluation")
		return
	}
	writeJSON(w, http.StatusOK, schemas.SubmitResponse{
		Success:      true,
		Message:      "Evaluation submitted successfully",
		EvaluationID: rec.ID,
	})
}

// submission reads the form object. A repeated key takes its last value.
// Numbers keep their literal text so no precision is lost before ParseScore
// sees them.
func (s *Server) submission(data gjson.Result) evaluation.Submission {
	fields := make(map[string]gjson.Result)
	data.ForEach(func(k, v gjson.Result) bool {
		fields[k.String()] = v
		return true
	})
	sub := evaluation.Submission{
		Category:     text(fields["category"]),
		SubCategory:  text(fields["subCategory"]),
		SupplierName: text(fields["supplierName"]),
		Month:        text(fields["month"]),
		Scores:       make(map[string]string),
	}
	for _, key := range s.Rubric.ScoreKeys() {
		if v, ok := fields[key]; ok {
			sub.Scores[key] = text(v)
		}
	}
	return sub
}

func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

func (s *Server) listEvaluations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.Evaluations.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load evaluations")
		return
	}
	out := schemas.ListResponse{Success: true, Data: make([]schemas.EvaluationSummary, len(recs))}
	for i := range recs {
		out.Data[i] = schemas.Summarize(&recs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRubric(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	qs := s.Rubric.Questions(q.Get("category"), q.Get("subCategory"))
	writeJSON(w, http.StatusOK, schemas.RubricResponse{
		Success: true,
		Data:    schemas.Rubric(qs, s.Rubric.HiddenKeys()),
	})
}

func (s *Server) getSuppliers(w http.ResponseWriter, r *http.Request) {
	names := s.Rubric.Suppliers(r.URL.Query().Get("subCategory"))
	writeJSON(w, http.StatusOK, schemas.NamesResponse{Success: true, Data: names})
}

func (s *Server) getSubCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemas.NamesResponse{Success: true, Data: s.Rubric.SubCategories()})
}

func (s *Server) staticFile(name string) http.HandlerFunc {
	path := filepath.Join(s.StaticDir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}
