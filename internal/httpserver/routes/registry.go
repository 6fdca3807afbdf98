package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canireach/canireach/internal/httpserver/deps"
)

// Request timeout for non-streaming routes. Must outlive the geo lookup
// made during submissions, which can take a few seconds on its own.
const requestTimeout = 15 * time.Second

// WithTimeout bounds a route with the standard per-request timeout.
// The SSE route must not use it.
func WithTimeout() Middleware { return middleware.Timeout(requestTimeout) }

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
