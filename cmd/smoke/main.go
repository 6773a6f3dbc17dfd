package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type submitResp struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	EvaluationID string `json:"evaluationId"`
}

type listResp struct {
	Success bool `json:"success"`
	Data    []struct {
		ID              string      `json:"id"`
		SupplierName    string      `json:"supplierName"`
		EvaluationMonth string      `json:"evaluationMonth"`
		TotalScore      json.Number `json:"totalScore"`
		CreatedAt       time.Time   `json:"createdAt"`
	} `json:"data"`
}

func main() {
	base := envOr("API_BASE_URL", "http://localhost:3000")

	baseFlag := flag.String("base", base, "API base URL (e.g., http://localhost:3000)")
	timeout := flag.Duration("timeout", 12*time.Second, "per-request timeout")
	wait := flag.Duration("wait", 0, "how long to wait for /healthz to report ok before starting")
	flag.Parse()

	httpc := &http.Client{Timeout: *timeout}

	// 0) Optionally wait for the API and its database
	if *wait > 0 {
		if err := waitHealthy(httpc, *baseFlag, *wait); err != nil {
			fatalf("api not healthy: %v", err)
		}
		fmt.Println("✅ API healthy")
	}

	// 1) Rubric and supplier lookups
	var suppliers struct {
		Data []string `json:"data"`
	}
	if err := getJSON(httpc, *baseFlag+"/api/suppliers?subCategory=Dairy", &suppliers); err != nil {
		fatalf("suppliers: %v", err)
	}
	if len(suppliers.Data) == 0 {
		fatalf("no suppliers for Dairy")
	}
	supplier := suppliers.Data[0]
	fmt.Printf("✅ Dairy suppliers: %v\n", suppliers.Data)

	// 2) Submit one evaluation. sdp_rating is deliberately malformed and
	// must count as zero.
	month := time.Now().UTC().Format("2006-01")
	body := map[string]any{
		"data": map[string]any{
			"category":             "RM",
			"subCategory":          "Dairy",
			"supplierName":         supplier,
			"month":                month,
			"portfolio_diversity":  "3",
			"credit_term":          2,
			"capacity_utilisation": "4.5",
			"sdp_rating":           "n/a",
		},
	}
	var created submitResp
	if err := postJSON(httpc, *baseFlag+"/api/evaluations", body, &created); err != nil {
		fatalf("submit evaluation: %v", err)
	}
	if !created.Success || created.EvaluationID == "" {
		fatalf("unexpected submit response: %s", compactJSON(created))
	}
	fmt.Printf("✅ Submitted evaluation: id=%s\n", created.EvaluationID)

	// 3) Missing month must be rejected
	bad := map[string]any{"data": map[string]any{"category": "RM", "supplierName": supplier}}
	if err := postJSON(httpc, *baseFlag+"/api/evaluations", bad, &submitResp{}); err == nil {
		fatalf("submission without month was accepted")
	}
	fmt.Println("✅ Submission without month rejected")

	// 4) List and find the new record first
	var list listResp
	if err := getJSON(httpc, *baseFlag+"/api/evaluations", &list); err != nil {
		fatalf("list evaluations: %v", err)
	}
	if len(list.Data) == 0 || list.Data[0].ID != created.EvaluationID {
		fatalf("new evaluation is not the most recent row:\n%s", compactJSON(list))
	}
	if got := list.Data[0].TotalScore.String(); got != "9.50" {
		fatalf("total score = %s, want 9.50", got)
	}
	fmt.Printf("✅ Listed %d evaluations, newest total=%s\n", len(list.Data), list.Data[0].TotalScore)

	fmt.Printf("🎉 Smoke run OK. EvaluationID=%s\n", created.EvaluationID)
}

// --- helpers ---

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func postJSON(c *http.Client, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("POST %s -> %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func getJSON(c *http.Client, url string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("GET %s -> %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func waitHealthy(c *http.Client, base string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	var health struct {
		Status string `json:"status"`
	}
	for {
		err := getJSON(c, base+"/healthz", &health)
		if err == nil && health.Status == "ok" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("gave up after %s: %v", wait, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func compactJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func fatalf(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
	os.Exit(1)
}
