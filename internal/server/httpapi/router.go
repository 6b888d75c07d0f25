package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handler onto chi. gatherer backs /metrics and may be
// nil to leave the endpoint out.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, api.CodeNotFound, "route not found")
	})

	r.Get("/healthz", h.Healthz)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post(api.PathRequestUpload, h.RequestUpload)
		r.Post(api.PathConfirmUpload, h.ConfirmUpload)
		r.Post(api.PathCancelUpload, h.CancelUpload)

		r.Get(api.PathFiles+"/{entityType}/{entityId}", h.ListFiles)
		r.Get(api.PathFiles+"/{entityType}/{entityId}/latest/{fileCategory}", h.LatestFile)
		r.Delete(api.PathDeleteFile+"/{fileId}", h.DeleteFile)
	})

	return r
}
