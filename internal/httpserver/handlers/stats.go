package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/logger"
)

type statsResponse struct {
	ServiceStats []domain.ServiceStat    `json:"serviceStats"`
	IspStats     []domain.IspServiceStat `json:"ispStats"`
	TotalChecks  int64                   `json:"totalChecks"`
	LastUpdated  string                  `json:"lastUpdated"`
}

// Stats serves the aggregates, recomputed from the check log on every
// call over the trailing stats window. Read-only and stateless.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ispFilter := strings.TrimSpace(r.URL.Query().Get("isp"))
		since := d.Now().Add(-d.StatsWindow)

		serviceStats, err := d.Store.ServiceStats(ctx, since)
		if err != nil {
			d.Logger.Error("service stats query failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, ErrDatabase)
			return
		}
		serviceStats = backfillRegistry(serviceStats, d.Registry)

		ispStats, err := d.Store.IspServiceStats(ctx, since, ispFilter)
		if err != nil {
			d.Logger.Error("isp stats query failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, ErrDatabase)
			return
		}
		if ispStats == nil {
			ispStats = []domain.IspServiceStat{}
		}

		// Window total is independent of the ISP filter.
		total, err := d.Store.CountChecksSince(ctx, since)
		if err != nil {
			d.Logger.Error("check count query failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, ErrDatabase)
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			ServiceStats: serviceStats,
			IspStats:     ispStats,
			TotalChecks:  total,
			LastUpdated:  d.Now().UTC().Format(time.RFC3339),
		})
	}
}

// backfillRegistry guarantees one row per known service: services with
// no checks in the window report zero counts and 0%, not absence. The
// aggregated rows stay first (worst connectivity first); zero rows
// follow in registry order.
func backfillRegistry(stats []domain.ServiceStat, registry []domain.Service) []domain.ServiceStat {
	if stats == nil {
		stats = []domain.ServiceStat{}
	}
	seen := make(map[string]bool, len(stats))
	for _, stat := range stats {
		seen[stat.ServiceName] = true
	}
	for _, svc := range registry {
		if !seen[svc.Name] {
			stats = append(stats, domain.ServiceStat{ServiceName: svc.Name})
		}
	}
	return stats
}
