package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

func TestStats_BackfillsRegistryServices(t *testing.T) {
	store := &fakeStore{
		count: 9,
		svcStats: []domain.ServiceStat{
			{ServiceName: "Claude", TotalChecks: 6, BlockedCount: 6, BlockedPct: 100},
			{ServiceName: "GitHub", TotalChecks: 3, BlockedCount: 0, BlockedPct: 0},
		},
	}
	d := testDeps(store, &fakeLimiter{allow: true}, &fakePublisher{})
	d.Registry = []domain.Service{
		{Name: "Claude", URL: "https://claude.ai"},
		{Name: "GitHub", URL: "https://github.com"},
		{Name: "Netlify", URL: "https://netlify.com"},
	}

	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	Stats(d)(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalChecks != 9 {
		t.Errorf("totalChecks = %d, want 9", resp.TotalChecks)
	}
	if len(resp.ServiceStats) != 3 {
		t.Fatalf("serviceStats = %d, want 3 (2 aggregated + 1 backfilled)", len(resp.ServiceStats))
	}
	// Aggregated rows first, zero row appended for the quiet service.
	if resp.ServiceStats[0].ServiceName != "Claude" || resp.ServiceStats[0].BlockedPct != 100 {
		t.Errorf("first row = %+v", resp.ServiceStats[0])
	}
	last := resp.ServiceStats[2]
	if last.ServiceName != "Netlify" || last.TotalChecks != 0 || last.BlockedPct != 0 {
		t.Errorf("backfilled row = %+v", last)
	}
	if resp.IspStats == nil {
		t.Error("ispStats must be [] not null")
	}
	if _, err := time.Parse(time.RFC3339, resp.LastUpdated); err != nil {
		t.Errorf("lastUpdated not RFC3339: %q", resp.LastUpdated)
	}
}

func TestStats_PassesIspFilter(t *testing.T) {
	var gotFilter string
	store := &fakeStore{}
	d := testDeps(store, &fakeLimiter{allow: true}, &fakePublisher{})
	d.Store = &filterRecordingStore{fakeStore: store, gotFilter: &gotFilter}

	r := httptest.NewRequest(http.MethodGet, "/api/stats?isp=%20jio%20", nil)
	w := httptest.NewRecorder()
	Stats(d)(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotFilter != "jio" {
		t.Errorf("filter = %q, want trimmed %q", gotFilter, "jio")
	}
}

func TestStats_DatabaseError(t *testing.T) {
	store := &fakeStore{statsErr: errTestDB}
	d := testDeps(store, &fakeLimiter{allow: true}, &fakePublisher{})

	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	Stats(d)(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != ErrDatabase {
		t.Errorf("error = %q", resp.Error)
	}
}

var errTestDB = errors.New("query failed")

type filterRecordingStore struct {
	*fakeStore
	gotFilter *string
}

func (f *filterRecordingStore) IspServiceStats(_ context.Context, _ time.Time, filter string) ([]domain.IspServiceStat, error) {
	*f.gotFilter = filter
	return nil, nil
}
