package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/safe-signature-processor/pkg/handlers/requests"
	"github.com/chris/safe-signature-processor/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the operational endpoints. A nil gatherer omits /metrics.
func NewRouter(h *ApiHandler, rh *requests.RequestsHandler, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewStructuredLogger(logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.Health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/queue", h.GetQueueStats)
		r.Post("/poll", h.TriggerPoll)
		if rh != nil {
			r.Get("/signature-requests", rh.ListPendingSignatureRequests)
			r.Get("/signature-requests/{safeAddress}/{messageHash}", func(w http.ResponseWriter, r *http.Request) {
				rh.GetSignatureRequest(w, r, chi.URLParam(r, "safeAddress"), chi.URLParam(r, "messageHash"))
			})
		}
	})
	return r
}
