// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orbitus/orbitus/internal/middleware"
)

// Router assembles the HTTP surface from the handler set and middleware
// factory.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates the router.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: mw}
}

// Setup configures all routes and returns the root handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.middleware.CORS())

	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// Health endpoints skip rate limiting so monitors are never
		// throttled.
		r.Get("/health", rt.handler.Health)
		r.Get("/health/live", rt.handler.HealthLive)

		r.Group(func(r chi.Router) {
			r.Use(rt.middleware.RateLimit())
			r.Get("/current", rt.handler.Current)
			r.Get("/last3days", rt.handler.History)
			r.Get("/stats", rt.handler.Stats)
			r.Get("/ws", rt.handler.WebSocket)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
