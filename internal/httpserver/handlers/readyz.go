package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/canireach/canireach/internal/httpserver/deps"
)

const dependencyPingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Readyz reports whether both backing stores answer. The check log is
// required for ingestion and stats; redis is required for rate limiting
// and insert notifications.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), dependencyPingTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Database: "ok", Redis: "ok"}

		if d.Store == nil {
			resp.Ready = false
			resp.Database = "not configured"
		} else if err := d.Store.Ping(ctx); err != nil {
			resp.Ready = false
			resp.Database = "unreachable"
		}

		if d.RedisClient == nil {
			resp.Ready = false
			resp.Redis = "not configured"
		} else if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			resp.Ready = false
			resp.Redis = "unreachable"
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
