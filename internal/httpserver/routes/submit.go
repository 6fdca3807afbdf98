package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/httpserver/handlers"
)

func init() { Register(registerSubmit, WithTimeout()) }

func registerSubmit(r chi.Router, d deps.Deps) {
	r.Post("/api/submit", handlers.Submit(d))
}
