package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/httpserver/handlers"
)

func init() { Register(registerHealthz, WithTimeout()) }

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/api/healthz", handlers.Healthz(d))
}
