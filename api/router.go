// Package api exposes the dispatch engine over HTTP. The handlers translate
// the engine's error taxonomy into status codes a dispatch UI can branch on:
// a lost assignment race renders as "someone else already took this", not as
// a generic failure.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
)

// NewRouter constructs the chi router with base middleware and all routes.
func NewRouter(h *Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/loads/{loadID}", func(r chi.Router) {
			r.Post("/assign", h.Assign)
			r.Post("/auto-assign", h.AutoAssign)
			r.Post("/accept", h.Accept)
			r.Get("/best-driver", h.BestDriver)
			r.Get("/events", h.Events)
		})
		r.Post("/routes/sequence", h.SequenceRoute)
	})
	return r
}
