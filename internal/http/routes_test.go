package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srm-evaluations/internal/evaluation"
	"srm-evaluations/internal/rubric"
	"srm-evaluations/internal/store"
)

type brokenStore struct{}

func (brokenStore) Insert(context.Context, *evaluation.Record) error {
	return errors.New("dial tcp: connection refused")
}

func (brokenStore) ListRecent(context.Context, int) ([]evaluation.Record, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (brokenStore) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

type storeWithPing interface {
	evaluation.Store
	Pinger
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, st storeWithPing) *httptest.Server {
	t.Helper()
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	catalog := rubric.Default()
	svc := evaluation.NewService(st, catalog,
		evaluation.WithLogger(quiet),
		evaluation.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	srv := httptest.NewServer((&Server{Evaluations: svc, Rubric: catalog, Store: st, Log: quiet}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) (int, map[string]any) {
	t.Helper()
	res, err := http.Post(srv.URL+"/api/evaluations", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func get(t *testing.T, srv *httptest.Server, path string, out any) int {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	return res.StatusCode
}

type listBody struct {
	Success bool `json:"success"`
	Data    []struct {
		ID              string      `json:"id"`
		SupplierName    string      `json:"supplierName"`
		EvaluationMonth string      `json:"evaluationMonth"`
		TotalScore      json.Number `json:"totalScore"`
		CreatedAt       time.Time   `json:"createdAt"`
	} `json:"data"`
}

func TestSubmitAndList(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	code, out := post(t, srv, `{"data":{"category":"RM","subCategory":"Dairy","supplierName":"Govind","month":"2024-05","portfolio_diversity":"3","credit_term":2}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	id, _ := out["evaluationId"].(string)
	assert.NotEmpty(t, id)

	var list listBody
	require.Equal(t, http.StatusOK, get(t, srv, "/api/evaluations", &list))
	assert.True(t, list.Success)
	require.Len(t, list.Data, 1)
	assert.Equal(t, id, list.Data[0].ID)
	assert.Equal(t, "Govind", list.Data[0].SupplierName)
	assert.Equal(t, "2024-05", list.Data[0].EvaluationMonth)
	assert.Equal(t, "5.00", list.Data[0].TotalScore.String())
}

func TestSubmitCoercesBadScoresToZero(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	code, _ := post(t, srv, `{"data":{"category":"RM","supplierName":"Govind","month":"2024-05","sdp_rating":"high","cost_model":"10","legal_contracts":true,"labelling_rating":1.5,"supplier_quality":null}}`)
	require.Equal(t, http.StatusOK, code)

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "11.50", list.Data[0].TotalScore.String())
}

func TestSubmitIgnoresClientTotal(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	code, _ := post(t, srv, `{"data":{"category":"RM","supplierName":"Govind","month":"2024-05","cost_model":"5","totalScore":999,"total_score":999}}`)
	require.Equal(t, http.StatusOK, code)

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	assert.Equal(t, "5.00", list.Data[0].TotalScore.String())
}

func TestSubmitRepeatedKeysTakeLastValue(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	code, _ := post(t, srv, `{"data":{"category":"RM","supplierName":"Acme","supplierName":"Govind","month":"2024-05","cost_model":"0","cost_model":"10"}}`)
	require.Equal(t, http.StatusOK, code)

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Govind", list.Data[0].SupplierName)
	assert.Equal(t, "10.00", list.Data[0].TotalScore.String())
}

func TestSubmitRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	pad := strings.Repeat("x", maxBodyBytes)
	body := `{"data":{"category":"RM","supplierName":"Govind","month":"2024-05","note":"` + pad + `"}}`
	rec := httptest.NewRecorder()
	srv.Config.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluations", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Request body too large", out["message"])

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	assert.Empty(t, list.Data)
}

func TestSubmitBadRequests(t *testing.T) {
	cases := map[string]struct {
		body string
		msg  string
	}{
		"empty body":       {``, "Missing evaluation data"},
		"invalid json":     {`{"data":`, "Request body is not valid JSON"},
		"no data":          {`{"category":"RM"}`, "Missing evaluation data"},
		"data not object":  {`{"data":"x"}`, "Missing evaluation data"},
		"missing category": {`{"data":{"supplierName":"Govind","month":"2024-05"}}`, "category is required"},
		"missing supplier": {`{"data":{"category":"RM","month":"2024-05"}}`, "supplierName is required"},
		"missing month":    {`{"data":{"category":"RM","supplierName":"Govind","month":""}}`, "month is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			st := store.NewMemory()
			srv := newTestServer(t, st)

			code, out := post(t, srv, tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tc.msg, out["message"])

			recs, _ := st.ListRecent(context.Background(), 100)
			assert.Empty(t, recs)
		})
	}
}

func TestStoreFailures(t *testing.T) {
	srv := newTestServer(t, brokenStore{})

	code, out := post(t, srv, `{"data":{"category":"RM","supplierName":"Govind","month":"2024-05"}}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Failed to save evaluation", out["message"])

	var list map[string]any
	assert.Equal(t, http.StatusInternalServerError, get(t, srv, "/api/evaluations", &list))
	assert.Equal(t, false, list["success"])
	assert.NotContains(t, list, "data")

	var health map[string]string
	assert.Equal(t, http.StatusInternalServerError, get(t, srv, "/healthz", &health))
	assert.Equal(t, "db error", health["status"])
}

func TestListIsCappedAndNewestFirst(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	ids := make([]string, 0, 105)
	for i := 0; i < 105; i++ {
		body := fmt.Sprintf(`{"data":{"category":"RM","supplierName":"Supplier %d","month":"2024-05"}}`, i)
		code, out := post(t, srv, body)
		require.Equal(t, http.StatusOK, code)
		ids = append(ids, out["evaluationId"].(string))
	}

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	require.Len(t, list.Data, 100)
	assert.Equal(t, ids[104], list.Data[0].ID)
	assert.Equal(t, ids[5], list.Data[99].ID)
	for i := 1; i < len(list.Data); i++ {
		assert.True(t, list.Data[i-1].CreatedAt.After(list.Data[i].CreatedAt))
	}

	get(t, srv, "/api/evaluations?limit=3", &list)
	assert.Len(t, list.Data, 3)
}

func TestIdenticalSubmissionsGetDistinctIDs(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	body := `{"data":{"category":"RM","supplierName":"Govind","month":"2024-05","cost_model":"5"}}`

	_, a := post(t, srv, body)
	_, b := post(t, srv, body)
	assert.NotEqual(t, a["evaluationId"], b["evaluationId"])

	var list listBody
	get(t, srv, "/api/evaluations", &list)
	assert.Len(t, list.Data, 2)
}

func TestRubricEndpoints(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	var rub struct {
		Success bool `json:"success"`
		Data    struct {
			Questions []struct {
				Key     string `json:"key"`
				Choices []struct {
					Score json.Number `json:"score"`
					Label string      `json:"label"`
				} `json:"choices"`
			} `json:"questions"`
			HiddenKeys []string `json:"hiddenKeys"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/rubric?category=RM&subCategory=Dairy", &rub))
	require.Len(t, rub.Data.Questions, 16)
	assert.Equal(t, "portfolio_diversity", rub.Data.Questions[0].Key)
	assert.Equal(t, "1.5", rub.Data.Questions[2].Choices[0].Score.String())
	assert.Equal(t, []string{"labelling_rating", "supplier_quality"}, rub.Data.HiddenKeys)

	var names struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	get(t, srv, "/api/suppliers?subCategory=Dairy", &names)
	assert.Equal(t, []string{"Schreiber", "Parag Milk Foods Pvt Ltd", "Govind", "Modern Dairies"}, names.Data)

	get(t, srv, "/api/suppliers?subCategory=Unknown", &names)
	assert.NotNil(t, names.Data)
	assert.Empty(t, names.Data)

	get(t, srv, "/api/subcategories", &names)
	assert.Equal(t, []string{"Agri", "Nutri", "Dairy", "Packaging"}, names.Data)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	var health map[string]string
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz", &health))
	assert.Equal(t, "ok", health["status"])
}

func TestStaticPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"), []byte("login page"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("form page"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.js"), []byte("// js"), 0o644))

	st := store.NewMemory()
	catalog := rubric.Default()
	svc := evaluation.NewService(st, catalog, evaluation.WithLogger(quiet))
	srv := httptest.NewServer((&Server{Evaluations: svc, Rubric: catalog, Store: st, StaticDir: dir, Log: quiet}).Handler())
	defer srv.Close()

	for path, want := range map[string]string{"/": "login page", "/home": "form page", "/script.js": "// js"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		b, _ := io.ReadAll(res.Body)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Equal(t, want, string(b), path)
	}
}
