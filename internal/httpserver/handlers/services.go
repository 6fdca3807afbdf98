package handlers

import (
	"net/http"

	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/httpserver/deps"
)

type servicesResponse struct {
	Services []domain.Service `json:"services"`
}

// Services exposes the static probe registry so agents and dashboards
// render the same list the server aggregates by.
func Services(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		writeJSON(w, http.StatusOK, servicesResponse{Services: d.Registry})
	}
}
