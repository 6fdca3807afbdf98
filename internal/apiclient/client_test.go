package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

func TestClient_Submit(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody SubmitRequest
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"isp":"Airtel","city":"Delhi","state":"Delhi"}`))
	}))
	defer s.Close()

	c := NewClient(s.URL)
	ms := int64(120)
	resp, err := c.Submit(context.Background(), SubmitRequest{
		Results: []domain.CheckResult{
			{ServiceName: "GitHub", ServiceURL: "https://github.com", IsBlocked: false, ResponseTimeMs: &ms},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotPath != "/api/submit" {
		t.Errorf("path = %q, want /api/submit", gotPath)
	}
	if len(gotBody.Results) != 1 || gotBody.Results[0].ServiceName != "GitHub" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if !resp.Success || resp.ISP != "Airtel" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_SubmitRateLimited(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited","retryAfter":1800}`))
	}))
	defer s.Close()

	c := NewClient(s.URL)
	_, err := c.Submit(context.Background(), SubmitRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
	var rl *ErrRateLimited
	if !errors.As(err, &rl) || rl.RetryAfter != 1800*time.Second {
		t.Errorf("retryAfter = %v, want 30m", rl.RetryAfter)
	}
}

func TestClient_StatsFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"serviceStats":[],"ispStats":[],"totalChecks":42,"lastUpdated":"2026-01-01T00:00:00Z"}`))
	}))
	defer s.Close()

	c := NewClient(s.URL)
	resp, err := c.Stats(context.Background(), "jio fiber")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if gotQuery != "isp=jio+fiber" {
		t.Errorf("query = %q", gotQuery)
	}
	if resp.TotalChecks != 42 {
		t.Errorf("totalChecks = %d, want 42", resp.TotalChecks)
	}
}

func TestClient_ErrorIncludesBody(t *testing.T) {
	t.Parallel()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_input"}`))
	}))
	defer s.Close()

	c := NewClient(s.URL)
	_, err := c.Submit(context.Background(), SubmitRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error missing status: %q", err.Error())
	}
	if !strings.Contains(err.Error(), `"error":"invalid_input"`) {
		t.Errorf("error missing body: %q", err.Error())
	}
}
