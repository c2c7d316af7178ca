package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) RegisterRoutes(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	// System endpoints
	mux.HandleFunc("/health", h.HandleHealthCheck)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// API endpoints
	mux.HandleFunc("/api/init", h.HandleInit)
	mux.HandleFunc("/api/destroy", h.HandleDestroy)
	mux.HandleFunc("/api/open", h.HandleOpen)
	mux.HandleFunc("/api/close", h.HandleClose)
	mux.HandleFunc("/api/read", h.HandleRead)
	mux.HandleFunc("/api/write", h.HandleWrite)
	mux.HandleFunc("/api/seek", h.HandleSeek)
	mux.HandleFunc("/api/link", h.HandleLink)
	mux.HandleFunc("/api/symlink", h.HandleSymLink)
	mux.HandleFunc("/api/unlink", h.HandleUnlink)
	mux.HandleFunc("/api/lookup", h.HandleLookup)
	mux.HandleFunc("/api/iterate_dir", h.HandleIterateDir)
	mux.HandleFunc("/api/count_links", h.HandleCountLinks)
	mux.HandleFunc("/api/import", h.HandleImport)
}
