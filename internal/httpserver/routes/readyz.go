package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/httpserver/handlers"
	"github.com/canireach/canireach/internal/httpserver/mw"
)

func init() { Register(registerReadyz, WithTimeout()) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/api/readyz", handlers.Readyz(d))
}
