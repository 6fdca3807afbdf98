package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/httpserver/handlers"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	r.Get("/api/events", handlers.Events(d))
}
