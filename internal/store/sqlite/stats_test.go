package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

// seedStats inserts a fixed distribution:
//
//	Supabase: 4 checks, 3 blocked (75%) across Jio + Airtel
//	GitHub:   4 checks, 0 blocked  (0%)
//	AWS:      2 checks, 2 blocked (100%), Airtel only
func seedStats(t *testing.T, store *Store, now time.Time) {
	t.Helper()
	ctx := context.Background()

	row := func(hash, isp, service string, blocked bool) domain.CheckRow {
		var ms *int64
		if !blocked {
			v := int64(90)
			ms = &v
		}
		return domain.CheckRow{
			IPHash:         hash,
			ISP:            isp,
			ServiceName:    service,
			ServiceURL:     "https://" + service,
			IsBlocked:      blocked,
			ResponseTimeMs: ms,
			CreatedAt:      now,
		}
	}

	batches := [][]domain.CheckRow{
		{
			row("h1", "Reliance Jio", "Supabase", true),
			row("h1", "Reliance Jio", "GitHub", false),
			row("h1", "Reliance Jio", "AWS", true),
		},
		{
			row("h2", "JIO Fiber", "Supabase", true),
			row("h2", "JIO Fiber", "GitHub", false),
		},
		{
			row("h3", "Airtel", "Supabase", true),
			row("h3", "Airtel", "GitHub", false),
			row("h3", "Airtel", "AWS", true),
		},
		{
			row("h4", "Airtel", "Supabase", false),
			row("h4", "Airtel", "GitHub", false),
		},
	}
	for _, batch := range batches {
		if err := store.InsertChecks(ctx, batch); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}
}

func TestServiceStats(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	seedStats(t, store, now)

	stats, err := store.ServiceStats(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ServiceStats returned error: %v", err)
	}

	want := map[string]struct {
		total   int64
		blocked int64
		pct     int
	}{
		"AWS":      {2, 2, 100},
		"Supabase": {4, 3, 75},
		"GitHub":   {4, 0, 0},
	}

	if len(stats) != len(want) {
		t.Fatalf("ServiceStats returned %d rows, want %d", len(stats), len(want))
	}

	// Worst connectivity first.
	order := []string{"AWS", "Supabase", "GitHub"}
	for i, stat := range stats {
		if stat.ServiceName != order[i] {
			t.Errorf("row %d = %s, want %s (blocked_pct desc)", i, stat.ServiceName, order[i])
		}
		w := want[stat.ServiceName]
		if stat.TotalChecks != w.total || stat.BlockedCount != w.blocked || stat.BlockedPct != w.pct {
			t.Errorf("%s: got (%d, %d, %d%%), want (%d, %d, %d%%)",
				stat.ServiceName, stat.TotalChecks, stat.BlockedCount, stat.BlockedPct,
				w.total, w.blocked, w.pct)
		}
		if stat.LastChecked.IsZero() {
			t.Errorf("%s: LastChecked is zero", stat.ServiceName)
		}
	}
}

func TestServiceStatsWindowExcludesHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := []domain.CheckRow{{
		IPHash:      "h-old",
		ISP:         "Airtel",
		ServiceName: "Supabase",
		ServiceURL:  "https://supabase.co",
		IsBlocked:   true,
		CreatedAt:   now.Add(-72 * time.Hour),
	}}
	if err := store.InsertChecks(ctx, old); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stats, err := store.ServiceStats(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ServiceStats returned error: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("ServiceStats over empty window returned %d rows, want 0", len(stats))
	}
}

func TestIspServiceStatsFilter(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	seedStats(t, store, now)
	ctx := context.Background()

	// Case-insensitive substring: matches both "Reliance Jio" and "JIO Fiber".
	stats, err := store.IspServiceStats(ctx, now.Add(-24*time.Hour), "jio")
	if err != nil {
		t.Fatalf("IspServiceStats returned error: %v", err)
	}
	if len(stats) == 0 {
		t.Fatal("IspServiceStats(jio) returned no rows")
	}

	isps := make(map[string]bool)
	for _, stat := range stats {
		isps[stat.ISP] = true
	}
	if !isps["Reliance Jio"] || !isps["JIO Fiber"] {
		t.Errorf("filter should match both Jio ISPs, got %v", isps)
	}
	if isps["Airtel"] {
		t.Error("filter matched Airtel, want Jio-only rows")
	}

	// Unfiltered returns every (service, isp) pair.
	all, err := store.IspServiceStats(ctx, now.Add(-24*time.Hour), "")
	if err != nil {
		t.Fatalf("IspServiceStats returned error: %v", err)
	}
	if len(all) <= len(stats) {
		t.Errorf("unfiltered rows = %d, want more than filtered %d", len(all), len(stats))
	}

	// Descending blocked percentage.
	for i := 1; i < len(all); i++ {
		if all[i].BlockedPct > all[i-1].BlockedPct {
			t.Errorf("rows not ordered by blocked_pct desc at %d: %d%% after %d%%",
				i, all[i].BlockedPct, all[i-1].BlockedPct)
		}
	}
}

func TestIspServiceStatsNoMatch(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	seedStats(t, store, now)

	stats, err := store.IspServiceStats(context.Background(), now.Add(-24*time.Hour), "comcast")
	if err != nil {
		t.Fatalf("IspServiceStats returned error: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("IspServiceStats(comcast) returned %d rows, want 0", len(stats))
	}
}
